package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = archive.Close() }()

			runs, err := archive.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FETCHED\tCOUNTRY\tINDICATOR\tYEARS\tVALID\tREASON\tID")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%t\t%s\t%s\n",
					r.FetchedAt.Local().Format(time.DateTime), r.Country, r.Indicator,
					r.StartYear, r.EndYear, r.Valid, r.Reason, r.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}
