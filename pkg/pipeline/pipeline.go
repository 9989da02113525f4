// Package pipeline orchestrates the query-to-insight flow: validation,
// cache lookup, persistence, intent analysis, data retrieval, insight
// generation, and visualization, in that order. Every external
// dependency is optional at runtime: the pipeline degrades rather than
// fails for anything except input validation.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/cache"
	"github.com/getlens/lens/pkg/gateway"
	"github.com/getlens/lens/pkg/insights"
	"github.com/getlens/lens/pkg/logger"
)

// Repository is the metadata-store surface the pipeline needs.
type Repository interface {
	Create(ctx context.Context, text, userID string) (*bi.Question, error)
	MarkProcessed(ctx context.Context, id int64, summary string) error
	StoreInsights(ctx context.Context, questionID int64, list []bi.Insight) error
}

// IntentAnalyzer resolves a question's intent.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, question string) *bi.Intent
}

// ContextRetriever fetches the data context and its summary.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string, intent *bi.Intent) (bi.DataContext, string)
}

// InsightEngine produces insights from a question and data summary.
type InsightEngine interface {
	Generate(ctx context.Context, question string, intent *bi.Intent, dataSummary string) []bi.Insight
}

// VizBuilder produces visualizations from intent and context.
type VizBuilder interface {
	Build(intent *bi.Intent, dataCtx bi.DataContext) []bi.Visualization
}

// CostReporter exposes the running LLM spend, used to attribute cost to
// individual runs.
type CostReporter interface {
	Costs() gateway.CostSnapshot
}

// Config bounds one process call.
type Config struct {
	RequestTimeout  time.Duration
	MetadataTimeout time.Duration
}

// Pipeline processes natural-language business questions end to end.
type Pipeline struct {
	cache     *cache.Cache
	repo      Repository
	analyzer  IntentAnalyzer
	retriever ContextRetriever
	engine    InsightEngine
	viz       VizBuilder
	cfg       Config
	costs     CostReporter
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCostReporter attributes LLM spend deltas to individual runs.
func WithCostReporter(r CostReporter) Option {
	return func(p *Pipeline) {
		p.costs = r
	}
}

// WithLogger overrides the process logger. Used by tests.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New builds a Pipeline. repo may be nil (questions stay in memory) and
// cache may be nil or disabled.
func New(c *cache.Cache, repo Repository, analyzer IntentAnalyzer, retriever ContextRetriever,
	engine InsightEngine, viz VizBuilder, cfg Config, opts ...Option) *Pipeline {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = 2 * time.Second
	}
	p := &Pipeline{
		cache:     c,
		repo:      repo,
		analyzer:  analyzer,
		retriever: retriever,
		engine:    engine,
		viz:       viz,
		cfg:       cfg,
		logger:    logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process answers one question. It returns an error only when the input
// fails validation; every downstream failure degrades to a fallback.
func (p *Pipeline) Process(ctx context.Context, questionText, userID string) (*bi.ResponseEnvelope, error) {
	if err := bi.ValidateQuestion(questionText, userID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	// The verbatim submission (trimmed) is what gets persisted; the
	// normalized form is only for fingerprinting and prompting.
	trimmed := strings.TrimSpace(questionText)
	normalized := bi.Normalize(questionText)
	fingerprint := bi.Fingerprint(normalized)
	correlationID := fmt.Sprintf("q-%s", uuid.NewString())

	start := time.Now()
	costBefore := p.costSnapshot()
	p.logger.Info("processing question",
		"correlation_id", correlationID,
		"fingerprint", fingerprint,
		"user_id", userID,
		"text_length", len(trimmed))

	cacheKey := cache.NamespaceQuery + fingerprint
	if envelope := p.cachedEnvelope(ctx, cacheKey); envelope != nil {
		p.logger.Info("question processed",
			"correlation_id", correlationID,
			"intent", envelope.Intent.Intent,
			"insights", len(envelope.Insights),
			"visualizations", len(envelope.Visualizations),
			"cache_hit", true,
			"cost_usd", 0.0,
			"elapsed_ms", time.Since(start).Milliseconds())
		return envelope, nil
	}

	question := p.createQuestion(ctx, trimmed, userID, correlationID)
	if question.ID != 0 {
		correlationID = fmt.Sprintf("q-%d", question.ID)
	}

	intent := p.analyzer.Analyze(ctx, normalized)
	dataCtx, summary := p.retriever.Retrieve(ctx, normalized, intent)
	insightList := p.engine.Generate(ctx, normalized, intent, summary)
	recommendations := insights.Recommendations(insightList)
	visualizations := p.viz.Build(intent, dataCtx)

	p.persistResults(ctx, question, insightList, correlationID)

	envelope := &bi.ResponseEnvelope{
		Success:         true,
		Query:           *question,
		Intent:          *intent,
		Insights:        insightList,
		Recommendations: recommendations,
		Visualizations:  visualizations,
		ProcessedAt:     time.Now().UTC(),
	}

	p.storeEnvelope(ctx, cacheKey, envelope)

	p.logger.Info("question processed",
		"correlation_id", correlationID,
		"intent", intent.Intent,
		"insights", len(insightList),
		"visualizations", len(visualizations),
		"cache_hit", false,
		"cost_usd", p.costSnapshot()-costBefore,
		"elapsed_ms", time.Since(start).Milliseconds())

	return envelope, nil
}

// costSnapshot reads the gateway's running spend, 0 when no reporter is
// wired. The per-run figure is the before/after delta, an estimate that
// can over-attribute under concurrent runs.
func (p *Pipeline) costSnapshot() float64 {
	if p.costs == nil {
		return 0
	}
	return p.costs.Costs().TotalCostUSD
}

// cachedEnvelope returns the cached response for the key, with cached_at
// refreshed, or nil on a miss.
func (p *Pipeline) cachedEnvelope(ctx context.Context, key string) *bi.ResponseEnvelope {
	if p.cache == nil {
		return nil
	}

	raw, ok := p.cache.Get(ctx, key)
	if !ok {
		return nil
	}

	var envelope bi.ResponseEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		p.logger.Warn("malformed cached envelope, dropping", "key", key, "error", err)
		p.cache.Delete(ctx, key)
		return nil
	}

	now := time.Now().UTC()
	envelope.CachedAt = &now
	return &envelope
}

// createQuestion persists a new question, or falls back to an in-memory
// one with id 0 when the metadata store is unavailable.
func (p *Pipeline) createQuestion(ctx context.Context, text, userID, correlationID string) *bi.Question {
	if p.repo == nil {
		return p.inMemoryQuestion(text, userID)
	}

	opCtx, cancel := context.WithTimeout(ctx, p.cfg.MetadataTimeout)
	defer cancel()

	question, err := p.repo.Create(opCtx, text, userID)
	if err != nil {
		p.logger.Warn("question persistence failed, continuing in memory",
			"correlation_id", correlationID, "error", err)
		return p.inMemoryQuestion(text, userID)
	}
	return question
}

func (p *Pipeline) inMemoryQuestion(text, userID string) *bi.Question {
	now := time.Now().UTC()
	return &bi.Question{
		Text:      text,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// persistResults stores insights and marks the question processed. All
// failures are logged, never surfaced.
func (p *Pipeline) persistResults(ctx context.Context, question *bi.Question, list []bi.Insight, correlationID string) {
	summary := insights.Summary(list)
	question.Processed = true
	question.Response = summary
	question.UpdatedAt = time.Now().UTC()

	if p.repo == nil || question.ID == 0 {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, p.cfg.MetadataTimeout)
	defer cancel()

	if err := p.repo.StoreInsights(opCtx, question.ID, list); err != nil {
		p.logger.Warn("insight persistence failed",
			"correlation_id", correlationID, "error", err)
	}
	if err := p.repo.MarkProcessed(opCtx, question.ID, summary); err != nil {
		p.logger.Warn("failed to mark question processed",
			"correlation_id", correlationID, "error", err)
	}
}

func (p *Pipeline) storeEnvelope(ctx context.Context, key string, envelope *bi.ResponseEnvelope) {
	if p.cache == nil {
		return
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Warn("failed to encode envelope for cache", "key", key, "error", err)
		return
	}
	p.cache.Set(ctx, key, string(raw), 0)
}
