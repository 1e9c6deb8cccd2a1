package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/corslab/corslab/internal/config"
	"github.com/corslab/corslab/internal/server"
	"github.com/corslab/corslab/web"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		noFrontend bool
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the demo page",
		Long: `Run the API server and, unless --no-frontend is given, the demo page.

Open the demo page (http://localhost:5173 by default) in a browser and
watch the browser's Network tab while clicking through the requests.`,
		GroupID: "run",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
			srv, err := server.New(cfg, server.Deps{Logger: logger})
			if err != nil {
				return err
			}
			tasks := []func(context.Context) error{srv.Run}
			if !noFrontend && cfg.FrontendAddr != "" {
				tasks = append(tasks, func(ctx context.Context) error {
					return runFrontend(ctx, cfg, logger)
				})
			}
			return runAll(cmd.Context(), tasks...)
		},
	}
	cmd.Flags().BoolVar(&noFrontend, "no-frontend", false, "do not serve the demo page")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address of the API server (overrides the configuration)")
	return cmd
}

func newFrontendCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "frontend",
		Short:   "Run the demo page only",
		GroupID: "run",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.FrontendAddr == "" {
				return errors.New("frontend: frontend_addr is empty")
			}
			return runFrontend(cmd.Context(), cfg, newLogger(cmd.ErrOrStderr(), cfg.Log))
		},
	}
}

func runFrontend(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	h, err := web.Handler(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("frontend: %w", err)
	}
	srv := &http.Server{
		Addr:              cfg.FrontendAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("demo page listening", "addr", cfg.FrontendAddr, "api", cfg.APIBaseURL)
	return server.Serve(ctx, srv, cfg.ShutdownTimeout)
}

// runAll runs tasks concurrently until all of them return. The first
// failure cancels the others. Unlike errgroup.Group.Wait, runAll reports
// the errors of all tasks, joined.
func runAll(ctx context.Context, tasks ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	var (
		mu   sync.Mutex
		errs []error
	)
	for _, task := range tasks {
		g.Go(func() error {
			err := task(ctx)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
