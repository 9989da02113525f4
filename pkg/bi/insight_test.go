package bi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsightNormalize(t *testing.T) {
	in := Insight{
		Title:           strings.Repeat("t", MaxInsightTitleLen+50),
		Description:     "revenue grew 12%",
		Category:        InsightCategory("trend_analysis"),
		ConfidenceScore: 1.7,
		ActionItems:     make([]string, MaxActionItems+5),
	}
	in.Normalize()

	assert.Equal(t, CategorySummary, in.Category)
	assert.Equal(t, 1.0, in.ConfidenceScore)
	assert.Len(t, in.ActionItems, MaxActionItems)
	assert.Len(t, in.Title, MaxInsightTitleLen)

	in = Insight{Category: CategoryTrend, ConfidenceScore: -0.3}
	in.Normalize()
	assert.Equal(t, CategoryTrend, in.Category)
	assert.Equal(t, 0.0, in.ConfidenceScore)
}

func TestInsightValidate(t *testing.T) {
	in := Insight{
		Title:           "Revenue trending up",
		Description:     "Revenue grew 12% month over month",
		Category:        CategoryTrend,
		ConfidenceScore: 0.9,
	}
	assert.NoError(t, in.Validate())

	in.Title = ""
	assert.ErrorIs(t, in.Validate(), ErrValidation)

	in.Title = "ok"
	in.Category = "bogus"
	assert.ErrorIs(t, in.Validate(), ErrValidation)
}

func TestIntentValidate(t *testing.T) {
	intent := Intent{
		Intent:                  IntentTrendAnalysis,
		Confidence:              0.8,
		Categories:              []string{"sales"},
		DataSources:             []DataSource{SourceSales},
		SuggestedVisualizations: []ChartKind{ChartLine},
	}
	assert.NoError(t, intent.Validate())

	intent.Intent = "nope"
	assert.Error(t, intent.Validate())
}

func TestChartKindValid(t *testing.T) {
	for _, k := range ChartKinds {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, ChartKind("sparkline").Valid())
}

func TestDynamicContextSourcesSales(t *testing.T) {
	c := &DynamicContext{}
	assert.Equal(t, []DataSource{SourceFallback}, c.Sources())

	c.Srcs = []DataSource{SourceSales}
	assert.Equal(t, []DataSource{SourceSales}, c.Sources())
}
