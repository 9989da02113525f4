package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusMetrics records service telemetry. A nil receiver or missing
// instrument is a no-op, so callers never guard their recording sites.
type PrometheusMetrics struct {
	pipelineDuration metric.Float64Histogram
	pipelineRuns     metric.Int64Counter
	pipelineErrors   metric.Int64Counter

	llmDuration metric.Float64Histogram
	llmTokens   metric.Int64Counter
	llmCost     metric.Float64Counter
	llmErrors   metric.Int64Counter

	cacheOps metric.Int64Counter
}

// RecordPipelineRun records one process call.
func (m *PrometheusMetrics) RecordPipelineRun(ctx context.Context, duration time.Duration, cached bool, err error) {
	if m == nil || m.pipelineDuration == nil || m.pipelineRuns == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("cached", cached),
	}

	m.pipelineDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.pipelineRuns.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil && m.pipelineErrors != nil {
		m.pipelineErrors.Add(ctx, 1)
	}
}

// RecordLLMCall implements the gateway recorder.
func (m *PrometheusMetrics) RecordLLMCall(ctx context.Context, operation string, tokens int, costUSD float64, elapsed time.Duration, err error) {
	if m == nil || m.llmDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
	}

	m.llmDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	if tokens > 0 && m.llmTokens != nil {
		m.llmTokens.Add(ctx, int64(tokens), metric.WithAttributes(attrs...))
	}
	if costUSD > 0 && m.llmCost != nil {
		m.llmCost.Add(ctx, costUSD, metric.WithAttributes(attrs...))
	}
	if err != nil && m.llmErrors != nil {
		m.llmErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordCacheOp records one cache operation and its outcome, e.g.
// ("get", "hit") or ("set", "ok").
func (m *PrometheusMetrics) RecordCacheOp(ctx context.Context, op, outcome string) {
	if m == nil || m.cacheOps == nil {
		return
	}

	m.cacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
