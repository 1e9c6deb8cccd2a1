package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/corslab/corslab/client"
	"github.com/corslab/corslab/internal/tui"
)

// clientFlags are the flags shared by the client commands.
type clientFlags struct {
	origin string
	api    string
	raw    bool
}

func (f *clientFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.origin, "origin", "", `origin of the emulated page (default: app_origin; "none" sends no Origin)`)
	fs.StringVar(&f.api, "api", "", "base URL of the API (default: api_base_url)")
	fs.BoolVar(&f.raw, "raw", false, "disable browser emulation: no preflight, no CORS check")
}

// newFetcher builds the fetcher described by the flags, falling back on
// the configuration.
func (f *clientFlags) newFetcher(g *globals) (*client.Fetcher, tui.Options, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, tui.Options{}, err
	}
	opts := tui.Options{
		APIBaseURL: cfg.APIBaseURL,
		Origin:     cfg.AppOrigin,
		Raw:        f.raw,
	}
	if f.api != "" {
		opts.APIBaseURL = f.api
	}
	switch f.origin {
	case "":
	case "none":
		opts.Origin = ""
	default:
		opts.Origin = f.origin
	}
	var fopts []client.FetcherOption
	if f.raw {
		fopts = append(fopts, client.WithRaw())
	}
	fetcher, err := client.NewFetcher(opts.APIBaseURL, opts.Origin, fopts...)
	if err != nil {
		return nil, tui.Options{}, err
	}
	return fetcher, opts, nil
}

func newClientCmd(g *globals) *cobra.Command {
	var f clientFlags
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Run the terminal demo client",
		Long: `Run the terminal demo client, which plays the part of a browser showing a
page served from --origin.

Key bindings:
  ↑/↓, j/k   Select a request
  Enter, 1-9 Send a request
  c          Clear results
  h          Toggle response headers
  ?          Toggle help
  q          Quit`,
		GroupID: "client",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetcher, opts, err := f.newFetcher(g)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), client.NewDispatcher(fetcher), opts)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newCallCmd(g *globals) *cobra.Command {
	var f clientFlags
	names := make([]string, 0, len(client.Actions()))
	for _, a := range client.Actions() {
		names = append(names, a.Name)
	}
	cmd := &cobra.Command{
		Use:       "call <action>",
		Short:     "Send one request and print the outcome",
		Long:      "Send one request and print the response body, or the error.\n\nActions: " + strings.Join(names, ", "),
		GroupID:   "client",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _ := client.Lookup(args[0])
			fetcher, _, err := f.newFetcher(g)
			if err != nil {
				return err
			}
			st, err := client.NewDispatcher(fetcher).Dispatch(cmd.Context(), a)
			if err != nil {
				return err
			}
			switch st := st.(type) {
			case client.Success:
				fmt.Fprintln(cmd.OutOrStdout(), st.Pretty())
				return nil
			case client.Failure:
				if st.Rejected {
					return errors.New("CORS Error: " + st.Message)
				}
				return errors.New(st.Message)
			default:
				return fmt.Errorf("call: unexpected state %s", client.StateName(st))
			}
		},
	}
	f.register(cmd.Flags())
	return cmd
}
