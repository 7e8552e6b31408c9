package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giuliam-97/Stress-Test/internal/services"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

func newPeersCmd(opts *rootOptions) *cobra.Command {
	var (
		filters    selectionFlags
		req        domain.PeerRequest
		dispersion string
		xlsxPath   string
	)

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "Compare a portfolio's Stress PnL with the median of its peers per scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := filters.selection(cmd)
			if err != nil {
				return err
			}
			switch d := domain.Dispersion(dispersion); d {
			case domain.DispersionStd, domain.DispersionQuartile:
				req.Dispersion = d
			default:
				return fmt.Errorf("unknown dispersion %q (want %q or %q)", dispersion, domain.DispersionStd, domain.DispersionQuartile)
			}

			svc, summary, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			q := services.PeerQuery{Selection: sel, PeerRequest: req}

			if xlsxPath != "" {
				exp, err := svc.ExportPeers(cmd.Context(), summary.ID, q)
				if err != nil {
					return err
				}
				exp.FileName = xlsxPath
				path, err := svc.SaveExport(cmd.Context(), exp)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.stdout, "wrote %s\n", path)
				return nil
			}

			res, err := svc.Peers(cmd.Context(), summary.ID, q)
			if err != nil {
				return err
			}
			if res.Report == nil {
				fmt.Fprintf(opts.stdout, "Nothing to show: %s\n", res.Reason)
				return nil
			}
			return opts.print(peersMarkdown(*res.Report))
		},
	}

	filters.register(cmd, false)
	cmd.Flags().StringVarP(&req.Analysis, "analysis", "a", "", "portfolio to analyse")
	cmd.Flags().StringSliceVarP(&req.Peers, "peers", "p", nil, "peer portfolios")
	cmd.Flags().StringVar(&dispersion, "dispersion", string(domain.DispersionStd), "peer spread: std or quartile")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the comparison to this xlsx file instead of printing it")
	return cmd
}
