package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/countrystats/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List selectable countries, indicators, years and views",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "COUNTRY\tCODE")
			for _, c := range catalog.Countries {
				fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Code)
			}
			fmt.Fprintln(w)

			fmt.Fprintln(w, "ANALYSIS\tINDICATOR\tLABEL")
			for _, ind := range catalog.Indicators {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ind.Name, ind.Code, ind.Label)
			}
			fmt.Fprintln(w)

			fmt.Fprintf(w, "YEARS\t%d-%d\n", catalog.MinYear, catalog.MaxYear)
			fmt.Fprintf(w, "VIEWS\t%v\n", catalog.Views)

			return w.Flush()
		},
	}
}
