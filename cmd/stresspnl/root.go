package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/giuliam-97/Stress-Test/internal/dataprocessing"
	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/infrastructure"
	"github.com/giuliam-97/Stress-Test/internal/services"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	file     string
	mode     string
	logLevel string
	plain    bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "stresspnl",
		Short: "stresspnl analyses Stress PnL workbooks from the command line",
		Long: `stresspnl reads a Stress PnL workbook with one sheet per
<PORTFOLIO>_<SCENARIO> and normalizes it into a fact table. From there it
can summarize the workbook, aggregate Stress PnL per date, portfolio,
scenario and BRS group, compare a portfolio with its peers, and write the
same xlsx and CSV exports as the dashboard.`,
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "workbook to load (.xlsx or .xlsm)")
	cmd.PersistentFlags().StringVarP(&opts.mode, "mode", "m", string(domain.IngestModeDetail), "ingest mode: detail or totals")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "print markdown without terminal styling")

	cmd.AddCommand(
		newSummaryCmd(opts),
		newAggregateCmd(opts),
		newPeersCmd(opts),
		newExportCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// load ingests --file into a fresh workbook service
func (o *rootOptions) load(ctx context.Context) (*services.WorkbookService, domain.WorkbookSummary, error) {
	if o.file == "" {
		return nil, domain.WorkbookSummary{}, fmt.Errorf("--file is required")
	}
	mode, err := domain.ParseIngestMode(o.mode)
	if err != nil {
		return nil, domain.WorkbookSummary{}, err
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.WithComponent(infrastructure.NewLogger(o.logLevel, o.stderr), "cli")
	cache := dataprocessing.NewCache(dataprocessing.NewLoader(logger), 1, logger)

	svc, err := services.NewWorkbookService(cache, services.WorkbookOptions{DefaultMode: mode}, exporter.NewFileWriter(nil, logger), nil, logger)
	if err != nil {
		return nil, domain.WorkbookSummary{}, err
	}

	summary, err := svc.IngestPath(ctx, o.file, mode)
	if err != nil {
		return nil, domain.WorkbookSummary{}, err
	}
	return svc, summary, nil
}

// print renders markdown with glamour, or writes it as is with --plain
func (o *rootOptions) print(markdown string) error {
	if o.plain {
		_, err := io.WriteString(o.stdout, markdown)
		return err
	}

	out, err := renderMarkdown(markdown)
	if err != nil {
		return fmt.Errorf("could not render report: %w", err)
	}
	_, err = io.WriteString(o.stdout, out)
	return err
}
