// Package insights turns a question and its data summary into business
// insights, with a deterministic fallback when the model is unavailable.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/logger"
)

// Generator is the gateway surface the insight engine needs.
type Generator interface {
	GenerateInsights(ctx context.Context, question string, intent *bi.Intent, dataSummary string) ([]bi.Insight, error)
}

// Engine produces insights for processed questions.
type Engine struct {
	gateway Generator
	logger  *slog.Logger
}

// New builds an Engine.
func New(gateway Generator) *Engine {
	return &Engine{
		gateway: gateway,
		logger:  logger.GetLogger(),
	}
}

// Generate returns 1-3 insights for the question. A gateway failure
// degrades to the deterministic fallback insight, never an error.
func (e *Engine) Generate(ctx context.Context, question string, intent *bi.Intent, dataSummary string) []bi.Insight {
	if e.gateway == nil {
		return []bi.Insight{FallbackInsight(question)}
	}

	results, err := e.gateway.GenerateInsights(ctx, question, intent, dataSummary)
	if err != nil {
		e.logger.Warn("insight generation degraded to fallback", "error", err)
		return []bi.Insight{FallbackInsight(question)}
	}

	if len(results) > bi.MaxInsightsPerQuestion {
		results = results[:bi.MaxInsightsPerQuestion]
	}
	return results
}

// FallbackInsight is the deterministic substitute used when the model
// cannot be reached.
func FallbackInsight(question string) bi.Insight {
	return bi.Insight{
		Title: "General Business Analysis",
		Description: fmt.Sprintf(
			"Unable to generate a model-backed analysis for %q. Review the underlying data directly.", question),
		Category:        bi.CategorySummary,
		ConfidenceScore: 0.6,
		DataSources:     []bi.DataSource{bi.SourceFallback},
		ActionItems:     []string{"Review data regularly", "Monitor key metrics"},
		DataEvidence:    []string{"Based on query analysis"},
	}
}

// Recommendations composes the deduplicated recommendation list from all
// action items, order preserved, duplicates removed case-insensitively.
// An empty result gets the two default recommendations.
func Recommendations(insights []bi.Insight) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, in := range insights {
		for _, item := range in.ActionItems {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}

	if len(out) == 0 {
		out = append(out, "Monitor trend continuation", "Consider implementing suggested actions")
	}

	return out
}

// Summary derives the persisted response line for a question.
func Summary(insights []bi.Insight) string {
	if len(insights) > 0 && insights[0].Title != "" {
		return insights[0].Title
	}
	return "Processed"
}
