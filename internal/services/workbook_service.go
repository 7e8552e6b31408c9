package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/giuliam-97/Stress-Test/internal/analytics"
	"github.com/giuliam-97/Stress-Test/internal/dataprocessing"
	apierrors "github.com/giuliam-97/Stress-Test/internal/errors"
	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/infrastructure"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// idLength is the number of fingerprint hex characters in a workbook ID
const idLength = 12

// Content types of the exports
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// WorkbookOptions configures ingestion for every workbook of the service
type WorkbookOptions struct {
	DefaultMode domain.IngestMode
	// DetailColumns are the column letters of risk group, tag, Stress PnL and date
	DetailColumns []string
	StrictLayout  bool
}

// WorkbookService holds ingested workbooks and answers analytics requests
// against them
type WorkbookService struct {
	cache       *dataprocessing.Cache
	files       *exporter.FileWriter
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger
	defaultMode domain.IngestMode
	detail      dataprocessing.ParseStrategy
	strict      bool

	mu        sync.RWMutex
	workbooks map[string]*workbook
	now       func() time.Time
}

type workbook struct {
	summary domain.WorkbookSummary
	facts   []domain.FactRecord
}

// FactsResult is a filtered fact table together with the selection it was
// filtered with
type FactsResult struct {
	Selection domain.Selection `json:"selection"`
	domain.SelectionFlags
	Empty bool                `json:"empty"`
	Facts []domain.FactRecord `json:"facts"`
}

// AggregatesResult holds the BRS / Non-BRS sums of a selection, sorted by
// date, portfolio, scenario and group
type AggregatesResult struct {
	Selection domain.Selection `json:"selection"`
	domain.SelectionFlags
	Empty bool                     `json:"empty"`
	Rows  []domain.AggregateRecord `json:"rows"`
}

// PeerQuery is a peer comparison over a selection
type PeerQuery struct {
	Selection domain.Selection `json:"selection"`
	domain.PeerRequest
}

// PeersResult is a peer comparison. When the comparison cannot be made,
// Empty is set and Reason says why.
type PeersResult struct {
	Selection domain.Selection `json:"selection"`
	domain.SelectionFlags
	Empty  bool               `json:"empty"`
	Reason string             `json:"reason,omitempty"`
	Report *domain.PeerReport `json:"report,omitempty"`
}

// Export is a downloadable file
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// NewWorkbookService creates a workbook service. files and metrics may be nil.
func NewWorkbookService(cache *dataprocessing.Cache, opts WorkbookOptions, files *exporter.FileWriter, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*WorkbookService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = domain.IngestModeDetail
	}

	var detail dataprocessing.ParseStrategy = dataprocessing.DefaultDetailStrategy()
	if len(opts.DetailColumns) > 0 {
		s, err := dataprocessing.PositionsFromLetters(opts.DetailColumns...)
		if err != nil {
			return nil, err
		}
		detail = s
	}

	logger.Info("WorkbookService initialized",
		slog.String("default_mode", string(opts.DefaultMode)),
		slog.String("detail_strategy", detail.Name()),
		slog.Bool("strict_layout", opts.StrictLayout))

	return &WorkbookService{
		cache:       cache,
		files:       files,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "workbook_service")),
		defaultMode: opts.DefaultMode,
		detail:      detail,
		strict:      opts.StrictLayout,
		workbooks:   make(map[string]*workbook),
		now:         time.Now,
	}, nil
}

// Ingest normalizes an uploaded workbook and registers it. An empty mode
// means the configured default.
func (s *WorkbookService) Ingest(ctx context.Context, name string, data []byte, mode domain.IngestMode) (domain.WorkbookSummary, error) {
	if err := checkFormat(name); err != nil {
		return domain.WorkbookSummary{}, err
	}
	if len(data) == 0 {
		return domain.WorkbookSummary{}, ErrEmptyUpload
	}

	uploadID := uuid.New().String()
	s.logger.InfoContext(ctx, "Ingesting uploaded workbook",
		slog.String("upload_id", uploadID),
		slog.String("name", name),
		slog.Int("bytes", len(data)))

	return s.ingest(ctx, dataprocessing.BytesSource{Filename: name, Data: data}, mode)
}

// IngestPath normalizes the workbook at path and registers it
func (s *WorkbookService) IngestPath(ctx context.Context, path string, mode domain.IngestMode) (domain.WorkbookSummary, error) {
	if err := checkFormat(path); err != nil {
		return domain.WorkbookSummary{}, err
	}

	s.logger.InfoContext(ctx, "Ingesting workbook from path", slog.String("path", path))
	return s.ingest(ctx, dataprocessing.FileSource{Path: path}, mode)
}

func (s *WorkbookService) ingest(ctx context.Context, src dataprocessing.Source, mode domain.IngestMode) (domain.WorkbookSummary, error) {
	opts := s.loadOptions(mode)

	res, err := s.cache.Load(ctx, src, opts)
	if err != nil {
		s.logger.WarnContext(ctx, "Workbook ingestion failed",
			slog.String("name", src.Name()),
			slog.String("mode", string(opts.Mode)),
			slog.String("error", err.Error()))
		return domain.WorkbookSummary{}, ingestionError(err)
	}

	summary := domain.WorkbookSummary{
		ID:            workbookID(res.Fingerprint, res.Mode),
		Name:          res.Source,
		Mode:          res.Mode,
		Fingerprint:   res.Fingerprint,
		SheetsTotal:   res.SheetsTotal,
		SheetsParsed:  res.SheetsParsed,
		SheetsSkipped: res.SkippedNames(),
		Rows:          len(res.Facts),
		LoadedAt:      s.now().UTC(),
		Domain:        analytics.DomainOf(res.Facts),
	}

	s.mu.Lock()
	_, replaced := s.workbooks[summary.ID]
	s.workbooks[summary.ID] = &workbook{summary: summary, facts: res.Facts}
	s.mu.Unlock()

	if !replaced {
		s.metrics.WorkbookAdded(ctx, 1)
	}
	infrastructure.AddSpanEvent(ctx, "workbook.registered",
		attribute.String("workbook_id", summary.ID),
		attribute.Int("rows", summary.Rows))

	s.logger.InfoContext(ctx, "Workbook registered",
		slog.String("workbook_id", summary.ID),
		slog.String("name", summary.Name),
		slog.String("mode", string(summary.Mode)),
		slog.Int("rows", summary.Rows),
		slog.Bool("replaced", replaced))

	return summary, nil
}

func (s *WorkbookService) loadOptions(mode domain.IngestMode) dataprocessing.LoadOptions {
	if mode == "" {
		mode = s.defaultMode
	}
	opts := dataprocessing.LoadOptions{Mode: mode, StrictLayout: s.strict}
	if mode == domain.IngestModeDetail {
		opts.Strategy = s.detail
	}
	return opts
}

// List returns every registered workbook, most recently loaded first
func (s *WorkbookService) List(ctx context.Context) []domain.WorkbookSummary {
	s.mu.RLock()
	out := make([]domain.WorkbookSummary, 0, len(s.workbooks))
	for _, wb := range s.workbooks {
		out = append(out, wb.summary)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].LoadedAt.After(out[j].LoadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the summary of one workbook
func (s *WorkbookService) Get(ctx context.Context, id string) (domain.WorkbookSummary, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return domain.WorkbookSummary{}, err
	}
	return wb.summary, nil
}

// Remove drops a workbook and its cached fact tables
func (s *WorkbookService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	wb, ok := s.workbooks[id]
	if ok {
		delete(s.workbooks, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}

	dropped := s.cache.InvalidateMode(wb.summary.Fingerprint, wb.summary.Mode)
	s.metrics.WorkbookAdded(ctx, -1)
	s.logger.InfoContext(ctx, "Workbook removed",
		slog.String("workbook_id", id),
		slog.Int("cache_entries_dropped", dropped))
	return nil
}

// Domain returns every date, portfolio and scenario of a workbook
func (s *WorkbookService) Domain(ctx context.Context, id string) (domain.SelectionDomain, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return domain.SelectionDomain{}, err
	}
	return wb.summary.Domain, nil
}

// Facts filters the fact table of a workbook. Nil dimensions of sel select
// everything; empty ones select nothing.
func (s *WorkbookService) Facts(ctx context.Context, id string, sel domain.Selection) (FactsResult, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return FactsResult{}, err
	}
	s.metrics.AnalyticsRequest(ctx, "facts")

	sel = analytics.FillDefaults(sel, wb.summary.Domain)
	facts := analytics.Filter(wb.facts, sel)
	return FactsResult{
		Selection:      sel,
		SelectionFlags: sel.Flags(wb.summary.Domain),
		Empty:          len(facts) == 0,
		Facts:          facts,
	}, nil
}

// Aggregates filters a workbook and sums it per date, portfolio, scenario
// and BRS group
func (s *WorkbookService) Aggregates(ctx context.Context, id string, sel domain.Selection) (AggregatesResult, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return AggregatesResult{}, err
	}
	s.metrics.AnalyticsRequest(ctx, "aggregate")

	sel = analytics.FillDefaults(sel, wb.summary.Domain)
	rows := analytics.Aggregate(analytics.Filter(wb.facts, sel))
	analytics.SortAggregates(rows)

	return AggregatesResult{
		Selection:      sel,
		SelectionFlags: sel.Flags(wb.summary.Domain),
		Empty:          len(rows) == 0,
		Rows:           rows,
	}, nil
}

// Peers compares the analysis portfolio with its peers over a selection.
// Unmet preconditions give an empty result rather than an error.
func (s *WorkbookService) Peers(ctx context.Context, id string, q PeerQuery) (PeersResult, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return PeersResult{}, err
	}
	s.metrics.AnalyticsRequest(ctx, "peers")

	sel := analytics.FillDefaults(q.Selection, wb.summary.Domain)
	result := PeersResult{
		Selection:      sel,
		SelectionFlags: sel.Flags(wb.summary.Domain),
	}

	report, err := analytics.PeerStats(analytics.Filter(wb.facts, sel), q.PeerRequest)
	if err != nil {
		if !analytics.IsNothingToShow(err) {
			return PeersResult{}, err
		}
		s.logger.DebugContext(ctx, "Peer comparison has nothing to show",
			slog.String("workbook_id", id),
			slog.String("reason", err.Error()))
		result.Empty = true
		result.Reason = err.Error()
		return result, nil
	}

	result.Empty = len(report.Rows) == 0
	result.Report = &report
	return result, nil
}

// ExportPortfolio builds the Scenario / Stress PnL workbook of one portfolio
func (s *WorkbookService) ExportPortfolio(ctx context.Context, id string, sel domain.Selection, portfolio string) (Export, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return Export{}, err
	}

	sel = analytics.FillDefaults(sel, wb.summary.Domain)
	totals := analytics.ScenarioTotals(analytics.Filter(wb.facts, sel), portfolio)
	if len(totals) == 0 {
		return Export{}, fmt.Errorf("%w: portfolio %q has no rows in the selection", exporter.ErrNothingToExport, portfolio)
	}

	data, err := exporter.PortfolioWorkbook(portfolio, totals)
	if err != nil {
		return Export{}, err
	}
	return s.export(ctx, "portfolio", exporter.ExportFileName(portfolio, ".xlsx"), ContentTypeXLSX, data), nil
}

// ExportCombined builds one sheet per portfolio in the selection
func (s *WorkbookService) ExportCombined(ctx context.Context, id string, sel domain.Selection) (Export, error) {
	wb, err := s.lookup(id)
	if err != nil {
		return Export{}, err
	}

	sel = analytics.FillDefaults(sel, wb.summary.Domain)
	data, err := exporter.CombinedWorkbook(analytics.PortfolioTotals(analytics.Filter(wb.facts, sel)))
	if err != nil {
		return Export{}, err
	}
	return s.export(ctx, "combined", "combined_portfolios.xlsx", ContentTypeXLSX, data), nil
}

// ExportPeers builds the peer comparison workbook
func (s *WorkbookService) ExportPeers(ctx context.Context, id string, q PeerQuery) (Export, error) {
	res, err := s.Peers(ctx, id, q)
	if err != nil {
		return Export{}, err
	}
	if res.Report == nil {
		return Export{}, fmt.Errorf("%w: %s", exporter.ErrNothingToExport, res.Reason)
	}

	data, err := exporter.PeerWorkbook(*res.Report)
	if err != nil {
		return Export{}, err
	}
	return s.export(ctx, "peers", exporter.ExportFileName(q.Analysis, "_peers.xlsx"), ContentTypeXLSX, data), nil
}

// ExportAggregatesCSV writes the aggregates of a selection as CSV
func (s *WorkbookService) ExportAggregatesCSV(ctx context.Context, id string, sel domain.Selection) (Export, error) {
	res, err := s.Aggregates(ctx, id, sel)
	if err != nil {
		return Export{}, err
	}

	var buf bytes.Buffer
	if err := exporter.WriteAggregatesCSV(&buf, res.Rows); err != nil {
		return Export{}, err
	}
	return s.export(ctx, "csv", "aggregates.csv", ContentTypeCSV, buf.Bytes()), nil
}

// SaveExport writes exp under the exports directory and returns its path
func (s *WorkbookService) SaveExport(ctx context.Context, exp Export) (string, error) {
	if s.files == nil {
		return "", ErrNoExportDirectory
	}
	return s.files.WriteFile(exp.FileName, exp.Data)
}

// SaveAggregatesCSV writes the aggregates of a selection as CSV to name and
// returns its path
func (s *WorkbookService) SaveAggregatesCSV(ctx context.Context, id string, sel domain.Selection, name string) (string, error) {
	if s.files == nil {
		return "", ErrNoExportDirectory
	}
	res, err := s.Aggregates(ctx, id, sel)
	if err != nil {
		return "", err
	}

	path, err := s.files.WriteAggregates(name, res.Rows)
	if err != nil {
		return "", err
	}
	s.metrics.Export(ctx, "csv")
	return path, nil
}

func (s *WorkbookService) export(ctx context.Context, kind, name, contentType string, data []byte) Export {
	s.metrics.Export(ctx, kind)
	s.logger.DebugContext(ctx, "Export built",
		slog.String("kind", kind),
		slog.String("file_name", name),
		slog.Int("bytes", len(data)))
	return Export{FileName: name, ContentType: contentType, Data: data}
}

func (s *WorkbookService) lookup(id string) (*workbook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wb, ok := s.workbooks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, id)
	}
	return wb, nil
}

// Count returns the number of registered workbooks
func (s *WorkbookService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workbooks)
}

// workbookID keys a workbook by content and mode, so one file can be
// registered once per mode
func workbookID(fingerprint string, mode domain.IngestMode) string {
	if len(fingerprint) > idLength {
		fingerprint = fingerprint[:idLength]
	}
	return fingerprint + "-" + string(mode)
}

// ingestionError wraps a failed load with the sheet, row and column it
// stopped at. Cancellation passes through unchanged.
func ingestionError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	appErr := apierrors.NewIngestionError("workbook could not be ingested", err)
	if errors.Is(err, dataprocessing.ErrInvalidCell) {
		appErr = apierrors.NewParsingError("workbook cell could not be read", err)
	}

	var ingestErr *dataprocessing.IngestError
	if errors.As(err, &ingestErr) {
		appErr.WithContext("sheet", ingestErr.Sheet).
			WithContext("row", ingestErr.Row).
			WithContext("column", ingestErr.Column)
	}
	return appErr
}

func checkFormat(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}
