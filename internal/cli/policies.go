package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corslab/corslab/internal/server"
)

func newPoliciesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "Validate and print the cross-origin policy of every route",
		Long: `Build the cross-origin policy of every API route from the configuration,
validate it, and print it in normalized form. Each problem is reported on
its own line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			s, err := server.New(cfg, server.Deps{})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(s.Policies(), "", "  ")
			if err != nil {
				return fmt.Errorf("policies: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
