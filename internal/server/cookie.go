package server

import (
	"net/http"
	"time"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     s.cfg.Cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		// Cross-site requests only carry SameSite=None cookies, and browsers
		// only accept those when Secure is set.
		SameSite: sameSite(s.cfg.Cookie.SameSite),
		Secure:   s.cfg.Cookie.Secure,
	}
	http.SetCookie(w, c)
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     s.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: sameSite(s.cfg.Cookie.SameSite),
		Secure:   s.cfg.Cookie.Secure,
	}
	http.SetCookie(w, c)
}

func sameSite(mode string) http.SameSite {
	switch mode {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}
