// Package analyzer classifies questions into query intents, backed by
// the LLM gateway with a deterministic keyword fallback and a Redis
// intent cache keyed by question fingerprint.
package analyzer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/cache"
	"github.com/getlens/lens/pkg/logger"
)

// Classifier is the gateway surface the analyzer needs.
type Classifier interface {
	ClassifyIntent(ctx context.Context, question string) (*bi.Intent, error)
}

// Analyzer resolves the intent for a question.
type Analyzer struct {
	gateway Classifier
	cache   *cache.Cache
	logger  *slog.Logger
}

// New builds an Analyzer. The cache may be nil.
func New(gateway Classifier, c *cache.Cache) *Analyzer {
	return &Analyzer{
		gateway: gateway,
		cache:   c,
		logger:  logger.GetLogger(),
	}
}

// Analyze returns the intent for a question, preferring the cached
// classification, then the model, then the keyword fallback. It never
// returns an error: degraded classification is still a classification.
func (a *Analyzer) Analyze(ctx context.Context, question string) *bi.Intent {
	fingerprint := bi.Fingerprint(question)
	key := cache.NamespaceIntent + fingerprint

	if a.cache != nil {
		if raw, ok := a.cache.Get(ctx, key); ok {
			var intent bi.Intent
			if err := json.Unmarshal([]byte(raw), &intent); err == nil && intent.Validate() == nil {
				return &intent
			}
			a.cache.Delete(ctx, key)
		}
	}

	if a.gateway == nil {
		return FallbackIntent(question)
	}

	intent, err := a.gateway.ClassifyIntent(ctx, question)
	if err != nil {
		a.logger.Warn("intent classification degraded to keyword fallback", "error", err)
		return FallbackIntent(question)
	}

	if a.cache != nil {
		if raw, err := json.Marshal(intent); err == nil {
			a.cache.Set(ctx, key, string(raw), 0)
		}
	}

	return intent
}

// keywordRules map question substrings to intents. Evaluated in order,
// first match wins.
var keywordRules = []struct {
	keywords []string
	intent   bi.IntentTag
}{
	{[]string{"trend", "pattern", "over time"}, bi.IntentTrendAnalysis},
	{[]string{"compare", "vs", "versus", "difference"}, bi.IntentComparison},
	{[]string{"predict", "forecast", "future"}, bi.IntentPrediction},
	{[]string{"why", "cause", "reason"}, bi.IntentRootCause},
	{[]string{"recommend", "suggest", "action"}, bi.IntentRecommendation},
}

// FallbackIntent classifies a question by keyword lookup alone.
func FallbackIntent(question string) *bi.Intent {
	lowered := strings.ToLower(question)

	tag := bi.IntentGeneralAnalysis
	for _, rule := range keywordRules {
		matched := false
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				matched = true
				break
			}
		}
		if matched {
			tag = rule.intent
			break
		}
	}

	return &bi.Intent{
		Intent:                  tag,
		Confidence:              0.6,
		Categories:              []string{"sales", "performance"},
		DataSources:             []bi.DataSource{bi.SourceSales},
		SuggestedVisualizations: append([]bi.ChartKind(nil), bi.ChartKinds...),
	}
}
