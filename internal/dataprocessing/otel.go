package dataprocessing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "stresspnl.dataprocessing"
	MeterName  = "stresspnl.dataprocessing"
)

// ingestTelemetry holds the tracer and instruments of the ingestion path.
// It uses the global providers, which are no-ops until
// infrastructure.InitializeOTel installs real ones.
type ingestTelemetry struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	sheets   metric.Int64Counter
	cache    metric.Int64Counter
}

func newIngestTelemetry() *ingestTelemetry {
	meter := otel.Meter(MeterName)
	t, err := createIngestInstruments(meter)
	if err != nil {
		// instrument creation only fails on invalid names
		t, _ = createIngestInstruments(noop.NewMeterProvider().Meter(MeterName))
	}
	t.tracer = otel.Tracer(TracerName)
	return t
}

func createIngestInstruments(meter metric.Meter) (*ingestTelemetry, error) {
	duration, err := meter.Float64Histogram(
		"stresspnl.ingest.duration",
		metric.WithDescription("Workbook ingestion duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sheets, err := meter.Int64Counter(
		"stresspnl.ingest.sheets",
		metric.WithDescription("Sheets seen during ingestion, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	cache, err := meter.Int64Counter(
		"stresspnl.ingest.cache",
		metric.WithDescription("Ingestion cache lookups, by result"),
	)
	if err != nil {
		return nil, err
	}

	return &ingestTelemetry{duration: duration, sheets: sheets, cache: cache}, nil
}

func (t *ingestTelemetry) recordSheets(ctx context.Context, parsed, skipped int) {
	if parsed > 0 {
		t.sheets.Add(ctx, int64(parsed), metric.WithAttributes(attribute.String("outcome", "parsed")))
	}
	if skipped > 0 {
		t.sheets.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("outcome", "skipped")))
	}
}

func (t *ingestTelemetry) recordDuration(ctx context.Context, mode string, start time.Time, failed bool) {
	t.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.Bool("failed", failed),
		),
	)
}

func (t *ingestTelemetry) recordCache(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	t.cache.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
