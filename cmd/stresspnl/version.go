package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giuliam-97/Stress-Test/pkg/contracts"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(opts.stdout, contracts.Version)
				return
			}
			fmt.Fprintln(opts.stdout, contracts.GetFullVersionString())
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "only print version number")
	return cmd
}
