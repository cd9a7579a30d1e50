package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filterql/filter"
)

func newParseCmd(a *app) *cobra.Command {
	var normalize bool

	cmd := &cobra.Command{
		Use:   "parse <filter>",
		Short: "Print the parts of a filter as JSON",
		Long: `Parse a filter without a schema and print its parts as JSON.

Examples:
  filterql parse 'name = "Pasta" AND (rating > 3 OR tags.name IN [a, b])'
  filterql parse --normalize 'dateAdded > 2024-01-01 or rating is null'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Parse(args[0], a.cfg.Filter.Limits())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if normalize {
				_, err := fmt.Fprintln(out, f.String())
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(f.Parts())
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "print the normalized filter string instead of JSON")
	return cmd
}
