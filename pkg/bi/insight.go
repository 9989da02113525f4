package bi

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// InsightCategory classifies a single finding. Distinct from IntentTag:
// the model occasionally emits intent tags here, which Normalize coerces.
type InsightCategory string

const (
	CategoryTrend          InsightCategory = "trend"
	CategoryAnomaly        InsightCategory = "anomaly"
	CategoryRecommendation InsightCategory = "recommendation"
	CategoryPrediction     InsightCategory = "prediction"
	CategoryCorrelation    InsightCategory = "correlation"
	CategorySummary        InsightCategory = "summary"
)

// Valid reports whether the category belongs to the closed set.
func (c InsightCategory) Valid() bool {
	switch c {
	case CategoryTrend, CategoryAnomaly, CategoryRecommendation,
		CategoryPrediction, CategoryCorrelation, CategorySummary:
		return true
	}
	return false
}

const (
	// MaxInsightTitleLen and MaxInsightDescriptionLen bound insight text.
	MaxInsightTitleLen       = 200
	MaxInsightDescriptionLen = 2000

	// MaxActionItems and MaxDataEvidence bound the insight's lists.
	MaxActionItems  = 10
	MaxDataEvidence = 10

	// MaxInsightsPerQuestion caps how many insights a question yields.
	MaxInsightsPerQuestion = 3
)

// Insight is one atomic finding generated for a question.
type Insight struct {
	ID              int64           `json:"id,omitempty"`
	QuestionID      int64           `json:"question_id,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        InsightCategory `json:"category"`
	ConfidenceScore float64         `json:"confidence_score"`
	DataSources     []DataSource    `json:"data_sources"`
	ActionItems     []string        `json:"action_items"`
	DataEvidence    []string        `json:"data_evidence,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}

// Normalize coerces model output into the entity contract: unknown
// categories become summary, confidence clamps to [0,1], over-long lists
// are trimmed. It never rejects; Validate does.
func (in *Insight) Normalize() {
	if !in.Category.Valid() {
		in.Category = CategorySummary
	}
	if in.ConfidenceScore < 0 {
		in.ConfidenceScore = 0
	}
	if in.ConfidenceScore > 1 {
		in.ConfidenceScore = 1
	}
	if len(in.ActionItems) > MaxActionItems {
		in.ActionItems = in.ActionItems[:MaxActionItems]
	}
	if len(in.DataEvidence) > MaxDataEvidence {
		in.DataEvidence = in.DataEvidence[:MaxDataEvidence]
	}
	if utf8.RuneCountInString(in.Title) > MaxInsightTitleLen {
		in.Title = string([]rune(in.Title)[:MaxInsightTitleLen])
	}
	if utf8.RuneCountInString(in.Description) > MaxInsightDescriptionLen {
		in.Description = string([]rune(in.Description)[:MaxInsightDescriptionLen])
	}
}

// Validate checks the insight against the entity contract.
func (in *Insight) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: insight title must be non-empty", ErrValidation)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: insight description must be non-empty", ErrValidation)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unknown insight category %q", ErrValidation, in.Category)
	}
	if in.ConfidenceScore < 0 || in.ConfidenceScore > 1 {
		return fmt.Errorf("%w: insight confidence %f out of [0,1]", ErrValidation, in.ConfidenceScore)
	}
	if len(in.ActionItems) > MaxActionItems {
		return fmt.Errorf("%w: insight has more than %d action items", ErrValidation, MaxActionItems)
	}
	if len(in.DataEvidence) > MaxDataEvidence {
		return fmt.Errorf("%w: insight has more than %d evidence entries", ErrValidation, MaxDataEvidence)
	}
	return nil
}
