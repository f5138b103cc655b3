package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gabriel/raw-source-finder/internal/sources"
)

func newSourcesCmd(state *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the known publishing sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors := sources.Default().Descriptors()
			if asJSON {
				return writeJSON(state, descriptors)
			}

			writer := tabwriter.NewWriter(state.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "KEY\tDOMAIN\tCANONICAL")
			for _, item := range descriptors {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", item.Key, item.Domain, item.Canonical)
			}
			return writer.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the registry as JSON")
	return cmd
}

func newDetectCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <url>",
		Short: "Report which known site a page URL belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detection, ok := sources.Default().Detect(args[0])
			if !ok {
				return fmt.Errorf("no known source matches %s", args[0])
			}
			return writeJSON(state, detection)
		},
	}
}
