// Package cli implements the corslab command.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corslab/corslab/cfgerrors"
	"github.com/corslab/corslab/internal/config"
)

// globals holds the persistent flags.
type globals struct {
	configPath string
	logLevel   string
}

// NewRootCmd returns the corslab command tree.
func NewRootCmd(version string) *cobra.Command {
	var g globals
	root := &cobra.Command{
		Use:   "corslab",
		Short: "A hands-on demo of cross-origin resource sharing",
		Long: `corslab - a hands-on demo of cross-origin resource sharing (CORS).

It runs an API whose routes each follow a different cross-origin policy,
a web page from which a real browser calls them, and a terminal client that
plays the part of the browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddGroup(
		&cobra.Group{ID: "run", Title: "Servers:"},
		&cobra.Group{ID: "client", Title: "Clients:"},
	)
	root.AddCommand(
		newServeCmd(&g),
		newFrontendCmd(&g),
		newClientCmd(&g),
		newCallCmd(&g),
		newPoliciesCmd(&g),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the command tree with args and returns the exit code.
// Errors are printed to stderr, one line per configuration error.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		for err := range cfgerrors.All(err) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// loadConfig loads the configuration and applies the persistent flags.
func (g *globals) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = strings.ToLower(g.logLevel)
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}
