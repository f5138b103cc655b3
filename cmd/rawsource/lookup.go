package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gabriel/raw-source-finder/internal/app"
	"github.com/gabriel/raw-source-finder/internal/lookup"
)

func newLookupCmd(state *cli) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "lookup <title>",
		Short: "Resolve a title and list the sites publishing it",
		Long: `lookup runs the same pipeline as GET /search and prints the response as JSON.
English titles are resolved to their raw title first unless
ENGLISH_INPUT_POLICY=reject. The response cache is not consulted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg
			cfg.CacheEnabled = false

			components, err := app.Build(cmd.Context(), cfg, state.logger)
			if err != nil {
				return err
			}
			defer components.Close()

			response, err := components.Lookup.Lookup(cmd.Context(), lookup.Request{
				Query: strings.Join(args, " "),
				Debug: debug,
			})
			if err != nil {
				return err
			}
			return writeJSON(state, response)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "include per-source search diagnostics")
	return cmd
}

func writeJSON(state *cli, value any) error {
	encoder := json.NewEncoder(state.out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
