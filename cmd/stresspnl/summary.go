package main

import (
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Describe the sheets, rows and selectable values of a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, summary, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(summaryMarkdown(summary))
		},
	}
}
