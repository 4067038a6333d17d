package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/compozy/docsplit/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	meterName      = "docsplit.ingest"
	subsystem      = "ingest"
)

var (
	metricsOnce        sync.Once
	metricsMu          sync.Mutex
	metricsInitErr     error
	documentsCounter   metric.Int64Counter
	chunksCounter      metric.Int64Counter
	processDuration    metric.Float64Histogram
	extractDuration    metric.Float64Histogram
	chunksPerDocument  metric.Int64Histogram
	cacheLookupCounter metric.Int64Counter
)

// InitMetrics registers the ingest instruments on meter. Only the first call has an effect
// until ResetMetricsForTesting runs. A nil meter leaves every instrument unset.
func InitMetrics(meter metric.Meter) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	metricsOnce.Do(func() {
		if meter == nil {
			return
		}
		metricsInitErr = initMetrics(meter)
	})
	return metricsInitErr
}

func ensureMetrics() error {
	return InitMetrics(otel.GetMeterProvider().Meter(meterName))
}

func initMetrics(meter metric.Meter) error {
	var err error
	documentsCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem(subsystem, "documents_total"),
		metric.WithDescription("Documents processed by format and outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	chunksCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem(subsystem, "chunks_total"),
		metric.WithDescription("Chunks produced by format"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	processDuration, err = meter.Float64Histogram(
		metrics.MetricNameWithSubsystem(subsystem, "process_duration_seconds"),
		metric.WithDescription("Latency of a full Process call"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.ProcessDurationBuckets...),
	)
	if err != nil {
		return err
	}
	extractDuration, err = meter.Float64Histogram(
		metrics.MetricNameWithSubsystem(subsystem, "extract_duration_seconds"),
		metric.WithDescription("Latency of format extraction"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.ExtractDurationBuckets...),
	)
	if err != nil {
		return err
	}
	chunksPerDocument, err = meter.Int64Histogram(
		metrics.MetricNameWithSubsystem(subsystem, "chunks_per_document"),
		metric.WithDescription("Chunks produced per processed document"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(metrics.ChunkCountBuckets...),
	)
	if err != nil {
		return err
	}
	cacheLookupCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem(subsystem, "cache_lookups_total"),
		metric.WithDescription("Extraction cache lookups by result"),
		metric.WithUnit("1"),
	)
	return err
}

func recordProcess(ctx context.Context, format, outcome string, d time.Duration, chunks int) {
	if err := ensureMetrics(); err != nil || documentsCounter == nil {
		return
	}
	formatAttr := attribute.String("format", format)
	documentsCounter.Add(ctx, 1, metric.WithAttributes(formatAttr, attribute.String("outcome", outcome)))
	processDuration.Record(ctx, d.Seconds(), metric.WithAttributes(formatAttr, attribute.String("outcome", outcome)))
	if outcome != outcomeSuccess {
		return
	}
	chunksPerDocument.Record(ctx, int64(chunks), metric.WithAttributes(formatAttr))
	if chunks > 0 {
		chunksCounter.Add(ctx, int64(chunks), metric.WithAttributes(formatAttr))
	}
}

func recordExtract(ctx context.Context, format string, d time.Duration) {
	if err := ensureMetrics(); err != nil || extractDuration == nil {
		return
	}
	extractDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("format", format)))
}

func recordCacheLookup(ctx context.Context, hit bool) {
	if err := ensureMetrics(); err != nil || cacheLookupCounter == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// ResetMetricsForTesting clears instrument state so tests can install their own meter.
func ResetMetricsForTesting() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	metricsOnce = sync.Once{}
	metricsInitErr = nil
	documentsCounter = nil
	chunksCounter = nil
	processDuration = nil
	extractDuration = nil
	chunksPerDocument = nil
	cacheLookupCounter = nil
}
