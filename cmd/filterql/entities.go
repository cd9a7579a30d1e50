package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filterql/internal/serialize"
)

func newEntitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities of the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENTITY\tTABLE\tFIELDS\tRELATIONS")
			for _, e := range serialize.DescribeEntities(reg) {
				rels := make([]string, len(e.Relations))
				for i, r := range e.Relations {
					rels[i] = fmt.Sprintf("%s->%s(%s)", r.Name, r.Target, r.Cardinality)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", e.Name, e.Table, len(e.Fields), rels)
			}
			return w.Flush()
		},
	}
}
