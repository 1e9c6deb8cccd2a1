// Package server implements the corslab API server: a handful of JSON
// routes, each guarded by its own cross-origin policy, plus health and
// metrics endpoints that no policy applies to.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corslab/corslab"
	"github.com/corslab/corslab/internal/config"
)

// Deps are the collaborators of a Server.
type Deps struct {
	// Logger receives access logs and policy decisions; nil discards them.
	Logger *log.Logger
}

func (d *Deps) normalize() {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
}

// Server is the API server. It provides an http.Handler with all routes
// mounted; Run also listens.
type Server struct {
	cfg        config.Config
	deps       Deps
	mux        *http.ServeMux
	policies   []RoutePolicy
	evaluators map[string]*corslab.Evaluator
	metrics    *metrics
}

// New builds the route policies from cfg and mounts every route.
// It does not start listening. If some route policy is invalid, New returns
// an error that joins one error per problem.
func New(cfg config.Config, deps Deps) (*Server, error) {
	deps.normalize()
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		mux:      http.NewServeMux(),
		policies: Policies(cfg),
		metrics:  newMetrics(),
	}
	evs, err := newEvaluators(s.policies, s.observer)
	if err != nil {
		return nil, err
	}
	s.evaluators = evs
	s.mountRoutes()
	return s, nil
}

// Handler returns the http.Handler with request ids, access logs and panic
// recovery applied.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, s.requestID(), s.accessLog(), s.recoverPanics())
}

// Policies returns the normalized policy of every API route.
func (s *Server) Policies() []RoutePolicy {
	rps := make([]RoutePolicy, 0, len(s.policies))
	for _, rp := range s.policies {
		rps = append(rps, RoutePolicy{
			Path:   rp.Path,
			Policy: *s.evaluators[rp.Path].Policy(),
		})
	}
	return rps
}

// Run listens on the configured address until ctx is done, then shuts the
// server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.deps.Logger.Info("api server listening", "addr", s.cfg.Addr, "app_origin", s.cfg.AppOrigin)
	return Serve(ctx, srv, s.cfg.ShutdownTimeout)
}

// Serve runs srv until ctx is done, then shuts it down, giving in-flight
// requests at most timeout to complete. A zero timeout closes srv at once.
// Serve returns nil after a clean shutdown.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}
	if timeout <= 0 {
		_ = srv.Close()
	} else {
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
		}
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	return nil
}

// observer returns the option through which the evaluator of path reports
// its decisions.
func (s *Server) observer(path string) corslab.Option {
	return corslab.WithObserver(func(r *http.Request, d corslab.Decision) {
		s.metrics.observeDecision(path, d)
		if d.Allowed {
			s.logger(r).Debug("cors", "route", path, "kind", d.Kind, "origin", d.Origin)
			return
		}
		s.logger(r).Warn("cors denied", "route", path, "kind", d.Kind, "err", d.Err)
	})
}
