// Package gateway mediates all LLM traffic for the service: prompt
// construction, structured-output schemas, rate limiting, and cost
// accounting live here so callers never talk to a provider directly.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/llms"
	"github.com/getlens/lens/pkg/logger"
)

// Recorder receives per-call telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordLLMCall(ctx context.Context, operation string, tokens int, costUSD float64, elapsed time.Duration, err error)
}

// Gateway is the single entry point for model calls.
type Gateway struct {
	provider llms.Provider
	cfg      config.LLMConfig
	limiter  *intervalLimiter
	ledger   *CostLedger
	counter  *tokenCounter
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRecorder attaches a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		g.recorder = r
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// New builds a Gateway over the given provider.
func New(provider llms.Provider, cfg config.LLMConfig, opts ...Option) *Gateway {
	g := &Gateway{
		provider: provider,
		cfg:      cfg,
		limiter:  newIntervalLimiter(time.Duration(cfg.MinIntervalMs) * time.Millisecond),
		ledger:   &CostLedger{},
		counter:  newTokenCounter(cfg.Model),
		logger:   logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Costs returns the cumulative spend across all calls.
func (g *Gateway) Costs() CostSnapshot {
	return g.ledger.Snapshot()
}

// intentPayload is the schema the model must fill for classification.
type intentPayload struct {
	Intent                  string   `json:"intent" jsonschema:"required,enum=trend_analysis,enum=comparison,enum=prediction,enum=root_cause,enum=recommendation,enum=general_analysis"`
	Confidence              float64  `json:"confidence" jsonschema:"required,minimum=0,maximum=1"`
	Categories              []string `json:"categories" jsonschema:"required"`
	DataSources             []string `json:"data_sources" jsonschema:"required"`
	SuggestedVisualizations []string `json:"suggested_visualizations" jsonschema:"required"`
}

// insightPayload is the schema the model must fill for insight generation.
type insightPayload struct {
	Insights []insightItem `json:"insights" jsonschema:"required"`
}

type insightItem struct {
	Title           string   `json:"title" jsonschema:"required"`
	Description     string   `json:"description" jsonschema:"required"`
	Category        string   `json:"category" jsonschema:"required,enum=trend,enum=anomaly,enum=recommendation,enum=prediction,enum=correlation,enum=summary"`
	ConfidenceScore float64  `json:"confidence_score" jsonschema:"required,minimum=0,maximum=1"`
	ActionItems     []string `json:"action_items"`
	DataEvidence    []string `json:"data_evidence"`
}

const intentSystemPrompt = `You are a business intelligence query classifier.
Classify the user's question and respond only with the declared JSON schema.
Valid intents: trend_analysis, comparison, prediction, root_cause, recommendation, general_analysis.
Valid data sources: sales_data, inventory_data, customer_data, business_metrics.
Valid visualizations: bar_chart, line_chart, pie_chart, doughnut_chart, scatter_plot, bubble_chart, radar_chart, horizontal_bar_chart, stacked_bar_chart, multi_line_chart, area_chart.
Categories are short free-form topic labels such as sales, performance, inventory.`

const insightSystemPrompt = `You are a senior business analyst.
Given a question, its classified intent, and a summary of the relevant data,
produce up to 3 concrete insights. Respond only with the declared JSON schema.
Every description must cite specific numbers from the data summary.
Action items must be concrete steps a manager could take this week.
Data evidence entries quote the figures each insight rests on.`

// ClassifyIntent asks the model to classify a question. Callers are
// expected to fall back on keyword heuristics when this returns an error.
func (g *Gateway) ClassifyIntent(ctx context.Context, question string) (*bi.Intent, error) {
	schema, err := llms.SchemaFor[intentPayload]()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrLLMSchema, err)
	}

	messages := []llms.Message{
		{Role: "system", Content: intentSystemPrompt},
		{Role: "user", Content: question},
	}

	text, err := g.call(ctx, "classify_intent", messages, llms.GenerateOptions{
		Temperature: g.cfg.IntentTemperature,
		MaxTokens:   g.cfg.IntentMaxTokens,
		Schema:      schema,
		SchemaName:  "query_intent",
	})
	if err != nil {
		return nil, err
	}

	var payload intentPayload
	if err := llms.DecodeStructured(text, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrLLMSchema, err)
	}

	intent := payloadToIntent(payload)
	if err := intent.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrLLMSchema, err)
	}

	return intent, nil
}

// GenerateInsights asks the model for insights over the prepared data
// summary. Results are normalized before they are returned.
func (g *Gateway) GenerateInsights(ctx context.Context, question string, intent *bi.Intent, dataSummary string) ([]bi.Insight, error) {
	schema, err := llms.SchemaFor[insightPayload]()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrLLMSchema, err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Question: %s\n", question)
	fmt.Fprintf(&prompt, "Intent: %s (confidence %.2f)\n", intent.Intent, intent.Confidence)
	if len(intent.Categories) > 0 {
		fmt.Fprintf(&prompt, "Categories: %s\n", strings.Join(intent.Categories, ", "))
	}
	fmt.Fprintf(&prompt, "\nData summary:\n%s\n", dataSummary)

	messages := []llms.Message{
		{Role: "system", Content: insightSystemPrompt},
		{Role: "user", Content: prompt.String()},
	}

	text, err := g.call(ctx, "generate_insights", messages, llms.GenerateOptions{
		Temperature: g.cfg.InsightTemperature,
		MaxTokens:   g.cfg.InsightMaxTokens,
		Schema:      schema,
		SchemaName:  "business_insights",
	})
	if err != nil {
		return nil, err
	}

	var payload insightPayload
	if err := llms.DecodeStructured(text, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrLLMSchema, err)
	}

	insights := make([]bi.Insight, 0, len(payload.Insights))
	for _, item := range payload.Insights {
		if len(insights) == bi.MaxInsightsPerQuestion {
			break
		}
		insight := bi.Insight{
			Title:           item.Title,
			Description:     item.Description,
			Category:        bi.InsightCategory(item.Category),
			ConfidenceScore: item.ConfidenceScore,
			DataSources:     intent.DataSources,
			ActionItems:     item.ActionItems,
			DataEvidence:    item.DataEvidence,
		}
		insight.Normalize()
		if err := insight.Validate(); err != nil {
			g.logger.Warn("dropping invalid insight from model", "title", item.Title, "error", err)
			continue
		}
		insights = append(insights, insight)
	}

	if len(insights) == 0 {
		return nil, fmt.Errorf("%w: model returned no usable insights", bi.ErrLLMSchema)
	}

	return insights, nil
}

// call runs one rate-limited model call and records its cost.
func (g *Gateway) call(ctx context.Context, operation string, messages []llms.Message, opts llms.GenerateOptions) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", bi.ErrLLMUnavailable, err)
	}

	start := time.Now()
	result, err := g.provider.Generate(ctx, messages, opts)
	elapsed := time.Since(start)

	tokens := 0
	cost := 0.0
	if result != nil {
		tokens = result.Usage.TotalTokens
		if tokens == 0 {
			tokens = g.estimateTokens(messages, result.Text)
		}
		cost = float64(tokens) / 1000 * g.cfg.CostPer1KTokens
		g.ledger.Record(tokens, cost)
	}

	if g.recorder != nil {
		g.recorder.RecordLLMCall(ctx, operation, tokens, cost, elapsed, err)
	}

	if err != nil {
		g.logger.Warn("LLM call failed", "operation", operation, "elapsed", elapsed, "error", err)
		return "", err
	}

	g.logger.Info("LLM call completed",
		"operation", operation,
		"model", g.provider.ModelName(),
		"tokens", tokens,
		"cost_usd", fmt.Sprintf("%.6f", cost),
		"elapsed", elapsed)

	return result.Text, nil
}

func (g *Gateway) estimateTokens(messages []llms.Message, response string) int {
	total := 0
	for _, m := range messages {
		total += g.counter.Count(m.Content) + 3
	}
	total += g.counter.Count(response) + 3
	return total
}

func payloadToIntent(p intentPayload) *bi.Intent {
	intent := &bi.Intent{
		Intent:     bi.IntentTag(p.Intent),
		Confidence: p.Confidence,
		Categories: p.Categories,
	}

	for _, src := range p.DataSources {
		ds := bi.DataSource(src)
		if ds.Valid() {
			intent.DataSources = append(intent.DataSources, ds)
		}
	}

	for _, viz := range p.SuggestedVisualizations {
		kind := bi.ChartKind(viz)
		if kind.Valid() {
			intent.SuggestedVisualizations = append(intent.SuggestedVisualizations, kind)
		}
	}

	return intent
}
