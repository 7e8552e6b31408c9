package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/infrastructure"
	"github.com/giuliam-97/Stress-Test/internal/services"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		filters selectionFlags
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one Scenario / Stress PnL workbook per portfolio, plus a combined workbook",
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
			logger := infrastructure.WithComponent(infrastructure.NewLogger(opts.logLevel, opts.stderr), "export")

			portfolios := sel.Portfolios
			if portfolios == nil {
				portfolios = summary.Domain.Portfolios
			}

			save := func(exp services.Export) error {
				exp.FileName = filepath.Join(outDir, exp.FileName)
				path, err := svc.SaveExport(cmd.Context(), exp)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.stdout, "wrote %s\n", path)
				return nil
			}

			written := 0
			for _, portfolio := range portfolios {
				exp, err := svc.ExportPortfolio(cmd.Context(), summary.ID, sel, portfolio)
				if errors.Is(err, exporter.ErrNothingToExport) {
					logger.Warn("Skipping portfolio without rows", slog.String("portfolio", portfolio))
					continue
				}
				if err != nil {
					return err
				}
				if err := save(exp); err != nil {
					return err
				}
				written++
			}

			if written > 1 {
				exp, err := svc.ExportCombined(cmd.Context(), summary.ID, sel)
				if err != nil {
					return err
				}
				return save(exp)
			}
			if written == 0 {
				return exporter.ErrNothingToExport
			}
			return nil
		},
	}

	filters.register(cmd, true)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the workbooks to")
	return cmd
}
