package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/giuliam-97/Stress-Test/internal/analytics"
	"github.com/giuliam-97/Stress-Test/internal/config"
	"github.com/giuliam-97/Stress-Test/internal/dataprocessing"
	apierrors "github.com/giuliam-97/Stress-Test/internal/errors"
	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/shared/testutil"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

var jan31 = domain.NewDate(2024, time.January, 31)

func newTestService(t *testing.T) *WorkbookService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cache := dataprocessing.NewCache(dataprocessing.NewLoader(logger), 4, logger)
	files := exporter.NewFileWriter(&config.Paths{ExportsDir: t.TempDir()}, logger)

	svc, err := NewWorkbookService(cache, WorkbookOptions{DefaultMode: domain.IngestModeTotals}, files, nil, logger)
	require.NoError(t, err)
	return svc
}

func ingestStress(t *testing.T, svc *WorkbookService) domain.WorkbookSummary {
	t.Helper()
	summary, err := svc.Ingest(context.Background(), "stress.xlsx", testutil.StressWorkbook(t), "")
	require.NoError(t, err)
	return summary
}

func detailWorkbook(t *testing.T) []byte {
	return testutil.Workbook(t, testutil.Sheet{Name: "FUND3_BASE", Rows: [][]interface{}{
		testutil.DetailHeader(),
		testutil.DetailRow("Equity", "BRS_EQ", -10, "2024-01-31"),
		testutil.DetailRow("Rates", "NONBRS", -5, "2024-01-31"),
		testutil.DetailRow("Total", "", -15, "2024-01-31"),
	}})
}

func TestNewWorkbookService_InvalidColumns(t *testing.T) {
	cache := dataprocessing.NewCache(dataprocessing.NewLoader(nil), 1, nil)
	_, err := NewWorkbookService(cache, WorkbookOptions{DetailColumns: []string{"A", "B"}}, nil, nil, nil)
	assert.ErrorIs(t, err, dataprocessing.ErrInvalidStrategy)
}

func TestWorkbookService_Ingest(t *testing.T) {
	svc := newTestService(t)
	summary := ingestStress(t, svc)

	assert.Equal(t, summary.Fingerprint[:12]+"-totals", summary.ID)
	assert.Equal(t, "stress.xlsx", summary.Name)
	assert.Equal(t, domain.IngestModeTotals, summary.Mode)
	assert.Equal(t, 3, summary.SheetsTotal)
	assert.Equal(t, 3, summary.SheetsParsed)
	assert.Empty(t, summary.SheetsSkipped)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, []domain.Date{jan31}, summary.Domain.Dates)
	assert.Equal(t, []string{"FUND1", "FUND2"}, summary.Domain.Portfolios)
	assert.Equal(t, []string{"BASE", "SEVERE"}, summary.Domain.Scenarios)

	got, err := svc.Get(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, summary, got)
	assert.Equal(t, 1, svc.Count())

	// the same content registers once
	ingestStress(t, svc)
	assert.Equal(t, 1, svc.Count())
}

func TestWorkbookService_IngestErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		file    string
		data    []byte
		mode    domain.IngestMode
		wantErr error
	}{
		{"csv upload", "stress.csv", []byte("a,b"), "", ErrUnsupportedFormat},
		{"no extension", "stress", []byte("x"), "", ErrUnsupportedFormat},
		{"empty upload", "stress.xlsx", nil, "", ErrEmptyUpload},
		{"not a workbook", "stress.xlsx", []byte("junk"), "", dataprocessing.ErrSourceUnavailable},
		{"totals sheets in detail mode", "stress.xlsm", testutil.StressWorkbook(t), domain.IngestModeDetail, dataprocessing.ErrMissingColumn},
		{"no total rows", "equity.xlsx", testutil.Workbook(t, testutil.Sheet{Name: "FUND1_BASE", Rows: [][]interface{}{
			testutil.TotalsHeader(),
			{"Equity", -1, "2024-01-31"},
		}}), domain.IngestModeTotals, dataprocessing.ErrNoTotalRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(ctx, tt.file, tt.data, tt.mode)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, svc.Count())
}

func TestWorkbookService_IngestErrorContext(t *testing.T) {
	svc := newTestService(t)
	data := testutil.Workbook(t, testutil.Sheet{Name: "FUND3_BASE", Rows: [][]interface{}{
		testutil.DetailHeader(),
		testutil.DetailRow("Equity", "BRS_EQ", -10, "2024-01-31"),
		testutil.DetailRow("Rates", "BRS_RT", "oops", "2024-01-31"),
	}})

	_, err := svc.Ingest(context.Background(), "bad.xlsx", data, domain.IngestModeDetail)
	require.ErrorIs(t, err, dataprocessing.ErrInvalidCell)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
	assert.Equal(t, map[string]interface{}{"sheet": "FUND3_BASE", "row": 3, "column": "R"}, appErr.Context)

	_, err = svc.Ingest(context.Background(), "totals.xlsx", testutil.StressWorkbook(t), domain.IngestModeDetail)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeIngestion, appErr.Type)
	assert.ErrorIs(t, err, dataprocessing.ErrMissingColumn)
}

func TestWorkbookService_IngestPath(t *testing.T) {
	svc := newTestService(t)
	path := filepath.Join(t.TempDir(), "fixed.xlsx")
	require.NoError(t, os.WriteFile(path, testutil.StressWorkbook(t), 0644))

	summary, err := svc.IngestPath(context.Background(), path, domain.IngestModeTotals)
	require.NoError(t, err)
	assert.Equal(t, "fixed.xlsx", summary.Name)
	assert.Equal(t, 3, summary.Rows)

	_, err = svc.IngestPath(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.ErrorIs(t, err, dataprocessing.ErrSourceUnavailable)
}

func TestWorkbookService_DetailMode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Ingest(ctx, "detail.xlsx", detailWorkbook(t), domain.IngestModeDetail)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Rows)

	res, err := svc.Aggregates(ctx, summary.ID, domain.Selection{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, domain.GroupBRS, res.Rows[0].Group)
	assert.Equal(t, -10.0, res.Rows[0].StressPnL)
	assert.Equal(t, domain.GroupNonBRS, res.Rows[1].Group)
	assert.Equal(t, -5.0, res.Rows[1].StressPnL)
}

func TestWorkbookService_SameFileInBothModes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	data := detailWorkbook(t)

	detail, err := svc.Ingest(ctx, "fund3.xlsx", data, domain.IngestModeDetail)
	require.NoError(t, err)
	totals, err := svc.Ingest(ctx, "fund3.xlsx", data, domain.IngestModeTotals)
	require.NoError(t, err)

	assert.Equal(t, detail.Fingerprint, totals.Fingerprint)
	assert.NotEqual(t, detail.ID, totals.ID)
	assert.Equal(t, 2, svc.Count())

	got, err := svc.Get(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestModeDetail, got.Mode)
	assert.Equal(t, 2, got.Rows)

	got, err = svc.Get(ctx, totals.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestModeTotals, got.Mode)
	assert.Equal(t, 1, got.Rows)

	// removing one mode leaves the other registered
	require.NoError(t, svc.Remove(ctx, totals.ID))
	res, err := svc.Aggregates(ctx, detail.ID, domain.Selection{})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestWorkbookService_ListAndRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	clock := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first := ingestStress(t, svc)
	second, err := svc.Ingest(ctx, "detail.xlsx", detailWorkbook(t), domain.IngestModeDetail)
	require.NoError(t, err)

	list := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	require.NoError(t, svc.Remove(ctx, first.ID))
	_, err = svc.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrWorkbookNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, first.ID), ErrWorkbookNotFound)
	assert.Len(t, svc.List(ctx), 1)
}

func TestWorkbookService_UnknownWorkbook(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Domain(ctx, "nope")
	assert.ErrorIs(t, err, ErrWorkbookNotFound)
	_, err = svc.Facts(ctx, "nope", domain.Selection{})
	assert.ErrorIs(t, err, ErrWorkbookNotFound)
	_, err = svc.Peers(ctx, "nope", PeerQuery{})
	assert.ErrorIs(t, err, ErrWorkbookNotFound)
	_, err = svc.ExportCombined(ctx, "nope", domain.Selection{})
	assert.ErrorIs(t, err, ErrWorkbookNotFound)
}

func TestWorkbookService_Aggregates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := ingestStress(t, svc).ID

	tests := []struct {
		name      string
		sel       domain.Selection
		wantRows  int
		wantSum   float64
		wantFlags domain.SelectionFlags
	}{
		{
			name:      "nil dimensions select everything",
			sel:       domain.Selection{},
			wantRows:  3,
			wantSum:   -280,
			wantFlags: domain.SelectionFlags{AllDates: true, AllPortfolios: true, AllScenarios: true},
		},
		{
			name:      "explicit date",
			sel:       domain.Selection{Dates: []domain.Date{jan31}},
			wantRows:  3,
			wantSum:   -280,
			wantFlags: domain.SelectionFlags{AllDates: true, AllPortfolios: true, AllScenarios: true},
		},
		{
			name:      "one portfolio",
			sel:       domain.Selection{Portfolios: []string{"FUND1"}},
			wantRows:  2,
			wantSum:   -250,
			wantFlags: domain.SelectionFlags{AllDates: true, AllPortfolios: false, AllScenarios: true},
		},
		{
			name:      "empty dimension selects nothing",
			sel:       domain.Selection{Scenarios: []string{}},
			wantRows:  0,
			wantFlags: domain.SelectionFlags{AllDates: true, AllPortfolios: true, AllScenarios: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Aggregates(ctx, id, tt.sel)
			require.NoError(t, err)

			assert.Len(t, res.Rows, tt.wantRows)
			assert.Equal(t, tt.wantRows == 0, res.Empty)
			assert.Equal(t, tt.wantFlags, res.SelectionFlags)

			var sum float64
			for _, r := range res.Rows {
				sum += r.StressPnL
				assert.Equal(t, domain.GroupNonBRS, r.Group)
			}
			assert.Equal(t, tt.wantSum, sum)
		})
	}
}

func TestWorkbookService_Facts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := ingestStress(t, svc).ID

	res, err := svc.Facts(ctx, id, domain.Selection{Portfolios: []string{"FUND2"}})
	require.NoError(t, err)
	require.Len(t, res.Facts, 1)
	assert.Equal(t, "FUND2", res.Facts[0].Portfolio)
	assert.Equal(t, "BASE", res.Facts[0].Scenario)
	assert.Equal(t, -30.0, res.Facts[0].StressPnL)
	assert.False(t, res.Empty)
	assert.Equal(t, []string{"FUND2"}, res.Selection.Portfolios)
}

func TestWorkbookService_Peers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := ingestStress(t, svc).ID

	res, err := svc.Peers(ctx, id, PeerQuery{PeerRequest: domain.PeerRequest{Analysis: "FUND1", Peers: []string{"FUND2"}}})
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	require.Len(t, res.Report.Rows, 1)

	row := res.Report.Rows[0]
	assert.Equal(t, "BASE", row.Scenario)
	assert.Equal(t, -50.0, row.AnalysisValue)
	assert.Equal(t, -30.0, row.PeerMedian)
	assert.Equal(t, 1, row.PeerCount)
	assert.Nil(t, row.PeerStd)
	assert.Nil(t, row.ZScore)
}

func TestWorkbookService_PeersNothingToShow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := ingestStress(t, svc).ID

	tests := []struct {
		name  string
		query PeerQuery
		want  error
	}{
		{"no peers", PeerQuery{PeerRequest: domain.PeerRequest{Analysis: "FUND1"}}, analytics.ErrNoPeers},
		{"overlap", PeerQuery{PeerRequest: domain.PeerRequest{Analysis: "FUND1", Peers: []string{"FUND1"}}}, analytics.ErrPeerOverlap},
		{"one portfolio selected", PeerQuery{
			Selection:   domain.Selection{Portfolios: []string{"FUND1"}},
			PeerRequest: domain.PeerRequest{Analysis: "FUND1", Peers: []string{"FUND2"}},
		}, analytics.ErrInsufficientPortfolios},
		{"unknown analysis", PeerQuery{PeerRequest: domain.PeerRequest{Analysis: "FUND9", Peers: []string{"FUND2"}}}, analytics.ErrAnalysisMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Peers(ctx, id, tt.query)
			require.NoError(t, err)
			assert.True(t, res.Empty)
			assert.Nil(t, res.Report)
			assert.Equal(t, tt.want.Error(), res.Reason)

			_, err = svc.ExportPeers(ctx, id, tt.query)
			assert.ErrorIs(t, err, exporter.ErrNothingToExport)
		})
	}
}

func TestWorkbookService_Exports(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := ingestStress(t, svc).ID

	t.Run("portfolio", func(t *testing.T) {
		exp, err := svc.ExportPortfolio(ctx, id, domain.Selection{}, "FUND1")
		require.NoError(t, err)
		assert.Equal(t, "FUND1.xlsx", exp.FileName)
		assert.Equal(t, ContentTypeXLSX, exp.ContentType)

		f, err := excelize.OpenReader(bytes.NewReader(exp.Data))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("FUND1")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Scenario", "Stress PnL"}, {"BASE", "-50"}, {"SEVERE", "-200"}}, rows)
	})

	t.Run("portfolio outside selection", func(t *testing.T) {
		_, err := svc.ExportPortfolio(ctx, id, domain.Selection{Portfolios: []string{"FUND2"}}, "FUND1")
		assert.ErrorIs(t, err, exporter.ErrNothingToExport)
	})

	t.Run("combined", func(t *testing.T) {
		exp, err := svc.ExportCombined(ctx, id, domain.Selection{})
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(exp.Data))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"FUND1", "FUND2"}, f.GetSheetList())
	})

	t.Run("combined empty selection", func(t *testing.T) {
		_, err := svc.ExportCombined(ctx, id, domain.Selection{Dates: []domain.Date{}})
		assert.ErrorIs(t, err, exporter.ErrNothingToExport)
	})

	t.Run("peers", func(t *testing.T) {
		exp, err := svc.ExportPeers(ctx, id, PeerQuery{PeerRequest: domain.PeerRequest{Analysis: "FUND1", Peers: []string{"FUND2"}}})
		require.NoError(t, err)
		assert.Equal(t, "FUND1_peers.xlsx", exp.FileName)
	})

	t.Run("aggregates csv", func(t *testing.T) {
		exp, err := svc.ExportAggregatesCSV(ctx, id, domain.Selection{Portfolios: []string{"FUND2"}})
		require.NoError(t, err)
		assert.Equal(t, ContentTypeCSV, exp.ContentType)
		assert.True(t, bytes.HasPrefix(exp.Data, []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, string(exp.Data), "FUND2")

		path, err := svc.SaveExport(ctx, exp)
		require.NoError(t, err)
		saved, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, exp.Data, saved)
	})

	t.Run("aggregates csv to file", func(t *testing.T) {
		path, err := svc.SaveAggregatesCSV(ctx, id, domain.Selection{Portfolios: []string{"FUND2"}}, "fund2.csv")
		require.NoError(t, err)
		assert.Equal(t, "fund2.csv", filepath.Base(path))

		saved, err := os.ReadFile(path)
		require.NoError(t, err)
		exp, err := svc.ExportAggregatesCSV(ctx, id, domain.Selection{Portfolios: []string{"FUND2"}})
		require.NoError(t, err)
		assert.Equal(t, exp.Data, saved)

		_, err = svc.SaveAggregatesCSV(ctx, "missing", domain.Selection{}, "x.csv")
		assert.ErrorIs(t, err, ErrWorkbookNotFound)
	})
}

func TestWorkbookService_SaveWithoutExportDirectory(t *testing.T) {
	cache := dataprocessing.NewCache(dataprocessing.NewLoader(nil), 1, nil)
	svc, err := NewWorkbookService(cache, WorkbookOptions{DefaultMode: domain.IngestModeTotals}, nil, nil, nil)
	require.NoError(t, err)
	id := ingestStress(t, svc).ID

	_, err = svc.SaveExport(context.Background(), Export{FileName: "a.csv"})
	assert.ErrorIs(t, err, ErrNoExportDirectory)
	_, err = svc.SaveAggregatesCSV(context.Background(), id, domain.Selection{}, "a.csv")
	assert.ErrorIs(t, err, ErrNoExportDirectory)
}

func TestWorkbookService_ConcurrentReads(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := ingestStress(t, svc).ID

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Aggregates(ctx, id, domain.Selection{})
			assert.NoError(t, err)
			assert.Len(t, res.Rows, 3)
		}()
	}
	wg.Wait()
}
