package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Utilities

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func serverErr(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "Something went wrong")
}

const maxBodyBytes = 1 << 20

// Handlers

func (s *Server) handlePublic(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "This is public data accessible from any origin",
	})
}

func (s *Server) handleRestricted(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RestrictedResponse{
		Message: "This data is only accessible from specific origins",
		Users:   sampleUsers,
	})
}

// handleLogin accepts any username. The session token is a placeholder
// that no route ever checks beyond its presence.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	// An empty body logs in the empty username.
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.logger(r).Error("decode login request", "err", err)
		serverErr(w)
		return
	}
	s.setSessionCookie(w, uuid.NewString())
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Logged in as " + req.Username,
	})
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cfg.Cookie.Name); err != nil || c.Value == "" {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, ProtectedResponse{
		Message: "This is protected data",
		Secret:  "You have accessed protected content!",
	})
}

func (s *Server) handleWithHeaders(w http.ResponseWriter, r *http.Request) {
	received := make(map[string]string, len(r.Header)+1)
	// Go lifts Host out of the header map.
	received["host"] = r.Host
	for name, values := range r.Header {
		received[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	w.Header().Set(CustomResponseHeader, "Custom-Value")
	writeJSON(w, http.StatusOK, WithHeadersResponse{
		Message:         "This response includes custom headers",
		ReceivedHeaders: received,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (s *Server) handlePolicies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Policies())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
