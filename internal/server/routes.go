package server

import "net/http"

// mountRoutes binds all endpoints onto the Server's mux.
func (s *Server) mountRoutes() {
	// --- Policy-guarded API ---
	s.handle(http.MethodGet, PathPublic, s.handlePublic)
	s.handle(http.MethodGet, PathRestricted, s.handleRestricted)
	s.handle(http.MethodPost, PathLogin, s.handleLogin)
	s.handle(http.MethodGet, PathProtected, s.handleProtected)
	s.handle(http.MethodPost, PathWithHeaders, s.handleWithHeaders)
	s.handle(http.MethodPost, PathLogout, s.handleLogout)
	s.handle(http.MethodGet, PathPolicies, s.handlePolicies)

	// --- Operations; no cross-origin policy ---
	s.mux.Handle("/healthz", methodGuard(http.MethodGet, http.HandlerFunc(handleHealth)))
	if s.cfg.Metrics {
		s.mux.Handle("/metrics", methodGuard(http.MethodGet, s.metrics.handler()))
	}
	s.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
}

// handle attaches a method-guarded route behind the route's evaluator.
// The pattern carries no method, so that preflight (OPTIONS) requests reach
// the evaluator, which answers them before the guard sees them.
func (s *Server) handle(method, path string, h http.HandlerFunc) {
	ev := s.evaluators[path]
	s.mux.Handle(path, ev.Wrap(methodGuard(method, h)))
}

// methodGuard answers 405 to requests whose method is not method.
// GET routes also serve HEAD.
func methodGuard(method string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && (method != http.MethodGet || r.Method != http.MethodHead) {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}
		h.ServeHTTP(w, r)
	})
}
