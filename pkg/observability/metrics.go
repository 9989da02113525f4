// Package observability wires OpenTelemetry metrics, exported through
// Prometheus, for the pipeline and its LLM traffic.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics builds the meter provider with a Prometheus reader and
// instantiates the service instruments. The exporter registers against
// the default Prometheus registry, so promhttp serves it.
func InitMetrics(ctx context.Context) (*PrometheusMetrics, error) {
	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("lens")

	pipelineDuration, err := meter.Float64Histogram(
		"lens_pipeline_duration_seconds",
		metric.WithDescription("End-to-end question processing duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline duration histogram: %w", err)
	}

	pipelineRuns, err := meter.Int64Counter(
		"lens_pipeline_runs_total",
		metric.WithDescription("Total processed questions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline runs counter: %w", err)
	}

	pipelineErrors, err := meter.Int64Counter(
		"lens_pipeline_errors_total",
		metric.WithDescription("Total failed question runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline errors counter: %w", err)
	}

	llmDuration, err := meter.Float64Histogram(
		"lens_llm_request_duration_seconds",
		metric.WithDescription("LLM request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm duration histogram: %w", err)
	}

	llmTokens, err := meter.Int64Counter(
		"lens_llm_tokens_total",
		metric.WithDescription("Total tokens consumed by LLM calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm tokens counter: %w", err)
	}

	llmCost, err := meter.Float64Counter(
		"lens_llm_cost_usd_total",
		metric.WithDescription("Cumulative LLM spend in USD"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm cost counter: %w", err)
	}

	llmErrors, err := meter.Int64Counter(
		"lens_llm_errors_total",
		metric.WithDescription("Total failed LLM calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm errors counter: %w", err)
	}

	cacheOps, err := meter.Int64Counter(
		"lens_cache_operations_total",
		metric.WithDescription("Total cache operations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache operations counter: %w", err)
	}

	return &PrometheusMetrics{
		pipelineDuration: pipelineDuration,
		pipelineRuns:     pipelineRuns,
		pipelineErrors:   pipelineErrors,
		llmDuration:      llmDuration,
		llmTokens:        llmTokens,
		llmCost:          llmCost,
		llmErrors:        llmErrors,
		cacheOps:         cacheOps,
	}, nil
}
