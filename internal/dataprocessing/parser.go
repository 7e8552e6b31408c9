package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// LoadOptions controls a single ingestion
type LoadOptions struct {
	Mode domain.IngestMode
	// Strategy overrides the mode's default column selection
	Strategy ParseStrategy
	// StrictLayout turns differing header labels at the selected positions
	// into ErrLayoutMismatch instead of a warning
	StrictLayout bool
}

func (o LoadOptions) withDefaults() (LoadOptions, error) {
	if o.Mode == "" {
		o.Mode = domain.IngestModeDetail
	}
	mode, err := domain.ParseIngestMode(string(o.Mode))
	if err != nil {
		return o, fmt.Errorf("%w: %v", ErrInvalidStrategy, err)
	}
	o.Mode = mode
	if o.Strategy == nil {
		o.Strategy, err = StrategyFor(o.Mode)
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

// SkippedSheet is a sheet left out of the fact table
type SkippedSheet struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

const (
	skipReasonName    = "sheet name has no underscore"
	skipReasonNoTotal = "no Total row"
)

// Result is the outcome of one ingestion. Facts is shared by every cache
// hit and must be treated as read-only.
type Result struct {
	Source        string
	Fingerprint   string
	Mode          domain.IngestMode
	Strategy      string
	Facts         []domain.FactRecord
	SheetsTotal   int
	SheetsParsed  int
	SheetsSkipped []SkippedSheet
	Duration      time.Duration
}

// SkippedNames lists the names of skipped sheets
func (r *Result) SkippedNames() []string {
	names := make([]string, 0, len(r.SheetsSkipped))
	for _, s := range r.SheetsSkipped {
		names = append(names, s.Name)
	}
	return names
}

// Loader turns workbooks into fact tables
type Loader struct {
	logger    *slog.Logger
	telemetry *ingestTelemetry
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger.With(slog.String("component", "dataprocessing")),
		telemetry: newIngestTelemetry(),
	}
}

// Load reads every sheet of src and normalizes it into a fact table.
// Errors are fatal for the whole workbook.
func (l *Loader) Load(ctx context.Context, src Source, opts LoadOptions) (*Result, error) {
	fp, err := src.Fingerprint()
	if err != nil {
		return nil, err
	}
	return l.load(ctx, src, fp, opts)
}

func (l *Loader) load(ctx context.Context, src Source, fp string, opts LoadOptions) (res *Result, err error) {
	opts, err = opts.withDefaults()
	if err != nil {
		return nil, err
	}

	ctx, span := l.telemetry.tracer.Start(ctx, "dataprocessing.Load",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("workbook.name", src.Name()),
			attribute.String("workbook.fingerprint", fp),
			attribute.String("ingest.mode", string(opts.Mode)),
			attribute.String("ingest.strategy", opts.Strategy.Name()),
		),
	)
	start := time.Now()
	defer func() {
		l.telemetry.recordDuration(ctx, string(opts.Mode), start, err != nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("ingest.rows", len(res.Facts)),
				attribute.Int("ingest.sheets_parsed", res.SheetsParsed),
			)
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s as a workbook: %v", ErrSourceUnavailable, src.Name(), err)
	}
	defer f.Close()

	res, err = l.LoadWorkbook(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	res.Source = src.Name()
	res.Fingerprint = fp
	res.Duration = time.Since(start)

	l.logger.InfoContext(ctx, "workbook ingested",
		slog.String("workbook", res.Source),
		slog.String("mode", string(res.Mode)),
		slog.Int("sheets_total", res.SheetsTotal),
		slog.Int("sheets_parsed", res.SheetsParsed),
		slog.Int("sheets_skipped", len(res.SheetsSkipped)),
		slog.Int("rows", len(res.Facts)),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

// LoadWorkbook normalizes an already opened workbook
func (l *Loader) LoadWorkbook(ctx context.Context, f *excelize.File, opts LoadOptions) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	sheets := f.GetSheetList()
	res := &Result{
		Mode:        opts.Mode,
		Strategy:    opts.Strategy.Name(),
		Facts:       []domain.FactRecord{},
		SheetsTotal: len(sheets),
	}
	layout := &layoutCheck{strict: opts.StrictLayout}

	skip := func(sheet, reason string) {
		res.SheetsSkipped = append(res.SheetsSkipped, SkippedSheet{Name: sheet, Reason: reason})
		l.logger.DebugContext(ctx, "sheet skipped", slog.String("sheet", sheet), slog.String("reason", reason))
	}

	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		portfolio, scenario, ok := SplitSheetName(sheet)
		if !ok {
			skip(sheet, skipReasonName)
			continue
		}

		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &IngestError{Sheet: sheet, Err: fmt.Errorf("%w: %v", ErrSourceUnavailable, err)}
		}

		facts, err := l.parseSheet(ctx, sheet, portfolio, scenario, rows, opts, layout)
		if err != nil {
			return nil, err
		}
		if opts.Mode == domain.IngestModeTotals && len(facts) == 0 {
			skip(sheet, skipReasonNoTotal)
			continue
		}

		res.SheetsParsed++
		res.Facts = append(res.Facts, facts...)
		l.logger.DebugContext(ctx, "sheet parsed",
			slog.String("sheet", sheet),
			slog.String("portfolio", portfolio),
			slog.String("scenario", scenario),
			slog.Int("rows", len(facts)),
		)
	}

	l.telemetry.recordSheets(ctx, res.SheetsParsed, len(res.SheetsSkipped))

	if opts.Mode == domain.IngestModeTotals && len(res.Facts) == 0 {
		return nil, ErrNoTotalRows
	}
	return res, nil
}

func (l *Loader) parseSheet(ctx context.Context, sheet, portfolio, scenario string, rows [][]string, opts LoadOptions, layout *layoutCheck) ([]domain.FactRecord, error) {
	if len(rows) == 0 {
		return nil, &IngestError{Sheet: sheet, Err: fmt.Errorf("%w: sheet has no header row", ErrMissingColumn)}
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := rows[0]

	cols, err := opts.Strategy.Resolve(header, width)
	if err != nil {
		var ie *IngestError
		if errors.As(err, &ie) {
			ie.Sheet = sheet
			return nil, ie
		}
		return nil, &IngestError{Sheet: sheet, Err: err}
	}

	if labeler, ok := opts.Strategy.(headerLabeler); ok {
		if err := layout.observe(sheet, labeler.HeaderLabels(header)); err != nil {
			return nil, err
		} else if layout.mismatch != "" {
			l.logger.WarnContext(ctx, "header labels differ from first sheet",
				slog.String("sheet", sheet),
				slog.String("first_sheet", layout.firstSheet),
				slog.String("detail", layout.mismatch),
			)
		}
	}

	facts := make([]domain.FactRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row, cols) {
			continue
		}

		riskGroup := cellAt(row, cols.Index(FieldRiskGroup))
		switch opts.Mode {
		case domain.IngestModeDetail:
			if riskGroup == domain.TotalRiskGroup {
				continue
			}
		case domain.IngestModeTotals:
			if riskGroup != domain.TotalRiskGroup {
				continue
			}
		}

		date, err := parseDateCell(cellAt(row, cols.Index(FieldDate)))
		if err != nil {
			return nil, cellError(sheet, rowNum, cols.Index(FieldDate), err)
		}
		pnl, err := parseStressPnL(cellAt(row, cols.Index(FieldStressPnL)))
		if err != nil {
			return nil, cellError(sheet, rowNum, cols.Index(FieldStressPnL), err)
		}

		fact := domain.FactRecord{
			Date:      date,
			Portfolio: portfolio,
			Scenario:  scenario,
			RiskGroup: riskGroup,
			StressPnL: pnl,
		}
		if idx := cols.Index(FieldTag); idx >= 0 {
			fact.IsBRS = IsBRSTag(cellAt(row, idx))
		}
		if opts.Mode == domain.IngestModeTotals {
			if v := strings.TrimSpace(cellAt(row, cols.Index(FieldPortfolio))); v != "" {
				fact.Portfolio = v
			}
			if v := strings.TrimSpace(cellAt(row, cols.Index(FieldScenario))); v != "" {
				fact.Scenario = v
			}
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func cellError(sheet string, row, col int, err error) error {
	letter, _ := excelize.ColumnNumberToName(col + 1)
	return &IngestError{Sheet: sheet, Row: row, Column: letter, Err: err}
}

type headerLabeler interface {
	HeaderLabels(header []string) []string
}

// layoutCheck compares the header labels of every sheet with the first one
type layoutCheck struct {
	strict     bool
	firstSheet string
	labels     []string
	mismatch   string
}

func (c *layoutCheck) observe(sheet string, labels []string) error {
	c.mismatch = ""
	if c.labels == nil {
		c.firstSheet = sheet
		c.labels = labels
		return nil
	}
	for i := range labels {
		if i < len(c.labels) && strings.EqualFold(labels[i], c.labels[i]) {
			continue
		}
		want := ""
		if i < len(c.labels) {
			want = c.labels[i]
		}
		c.mismatch = fmt.Sprintf("position %d: %q, first sheet has %q", i+1, labels[i], want)
		if c.strict {
			return &IngestError{Sheet: sheet, Err: fmt.Errorf("%w: %s", ErrLayoutMismatch, c.mismatch)}
		}
		return nil
	}
	return nil
}

// LoadFile ingests the workbook at path with the default options of mode
func LoadFile(ctx context.Context, path string, mode domain.IngestMode) (*Result, error) {
	return NewLoader(nil).Load(ctx, FileSource{Path: path}, LoadOptions{Mode: mode})
}

// LoadReader ingests a workbook read fully from r
func LoadReader(ctx context.Context, name string, r io.Reader, mode domain.IngestMode) (*Result, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return NewLoader(nil).Load(ctx, BytesSource{Filename: name, Data: buf.Bytes()}, LoadOptions{Mode: mode})
}
