package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filterql/query"
)

func newSQLCmd(a *app) *cobra.Command {
	var (
		entity    string
		columns   []string
		limit     uint64
		whereOnly bool
	)

	cmd := &cobra.Command{
		Use:   "sql <filter>",
		Short: "Compile a filter into SQL",
		Long: `Compile a filter against an entity of the schema and print the SELECT
statement, or only the WHERE clause body with --where.

Examples:
  filterql sql --schema recipes.yaml --entity recipes 'tags.slug CONTAINS ALL [quick, easy]'
  filterql sql --entity recipes --columns id,name --limit 10 'rating >= 4'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			pred, err := engine.Compile(entity, args[0])
			if err != nil {
				return err
			}
			if whereOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), pred.SQL())
				return err
			}
			stmt, err := query.ToSQL(pred, query.Options{Columns: columns, Limit: limit})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), stmt)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&entity, "entity", "e", "", "root entity (required)")
	flags.StringSliceVar(&columns, "columns", nil, "fields to select (default: all)")
	flags.Uint64Var(&limit, "limit", 0, "row limit (0 for none)")
	flags.BoolVar(&whereOnly, "where", false, "print only the WHERE clause body")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}
