package http

import (
	"context"

	"github.com/giuliam-97/Stress-Test/internal/services"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// WorkbookServiceInterface defines the workbook operations the handlers use
type WorkbookServiceInterface interface {
	Ingest(ctx context.Context, name string, data []byte, mode domain.IngestMode) (domain.WorkbookSummary, error)
	List(ctx context.Context) []domain.WorkbookSummary
	Get(ctx context.Context, id string) (domain.WorkbookSummary, error)
	Remove(ctx context.Context, id string) error
	Domain(ctx context.Context, id string) (domain.SelectionDomain, error)
	Facts(ctx context.Context, id string, sel domain.Selection) (services.FactsResult, error)
	Aggregates(ctx context.Context, id string, sel domain.Selection) (services.AggregatesResult, error)
	Peers(ctx context.Context, id string, q services.PeerQuery) (services.PeersResult, error)
	ExportPortfolio(ctx context.Context, id string, sel domain.Selection, portfolio string) (services.Export, error)
	ExportCombined(ctx context.Context, id string, sel domain.Selection) (services.Export, error)
	ExportPeers(ctx context.Context, id string, q services.PeerQuery) (services.Export, error)
	ExportAggregatesCSV(ctx context.Context, id string, sel domain.Selection) (services.Export, error)
	SaveExport(ctx context.Context, exp services.Export) (string, error)
}
