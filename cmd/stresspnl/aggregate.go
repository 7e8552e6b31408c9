package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAggregateCmd(opts *rootOptions) *cobra.Command {
	var (
		filters selectionFlags
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Sum Stress PnL per date, portfolio, scenario and BRS group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := filters.selection(cmd)
			if err != nil {
				return err
			}

			svc, summary, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}

			if csvPath != "" {
				path, err := svc.SaveAggregatesCSV(cmd.Context(), summary.ID, sel, csvPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.stdout, "wrote %s\n", path)
				return nil
			}

			res, err := svc.Aggregates(cmd.Context(), summary.ID, sel)
			if err != nil {
				return err
			}
			return opts.print(aggregatesMarkdown(res.Rows))
		},
	}

	filters.register(cmd, true)
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the aggregates to this CSV file instead of printing them")
	return cmd
}
