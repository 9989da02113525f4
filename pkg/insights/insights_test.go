package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlens/lens/pkg/bi"
)

type stubGenerator struct {
	insights []bi.Insight
	err      error
}

func (s *stubGenerator) GenerateInsights(context.Context, string, *bi.Intent, string) ([]bi.Insight, error) {
	return s.insights, s.err
}

func TestGenerateFallsBackOnError(t *testing.T) {
	e := New(&stubGenerator{err: errors.New("llm down")})

	list := e.Generate(context.Background(), "show me sales", nil, "")

	require.Len(t, list, 1)
	in := list[0]
	assert.Equal(t, "General Business Analysis", in.Title)
	assert.Equal(t, bi.CategorySummary, in.Category)
	assert.Equal(t, 0.6, in.ConfidenceScore)
	assert.Equal(t, []bi.DataSource{bi.SourceFallback}, in.DataSources)
	assert.Equal(t, []string{"Review data regularly", "Monitor key metrics"}, in.ActionItems)
	assert.Equal(t, []string{"Based on query analysis"}, in.DataEvidence)
	assert.NoError(t, in.Validate())
}

func TestGenerateNilGateway(t *testing.T) {
	e := New(nil)
	list := e.Generate(context.Background(), "anything", nil, "")
	require.Len(t, list, 1)
	assert.Equal(t, "General Business Analysis", list[0].Title)
}

func TestGenerateCapsCount(t *testing.T) {
	many := make([]bi.Insight, 5)
	for i := range many {
		many[i] = bi.Insight{Title: "t", Description: "d", Category: bi.CategoryTrend}
	}
	e := New(&stubGenerator{insights: many})

	list := e.Generate(context.Background(), "q", nil, "")
	assert.Len(t, list, bi.MaxInsightsPerQuestion)
}

func TestRecommendationsDedupe(t *testing.T) {
	list := []bi.Insight{
		{ActionItems: []string{"Restock Widget", "Review pricing"}},
		{ActionItems: []string{"restock widget", "Expand the South store"}},
	}

	recs := Recommendations(list)
	assert.Equal(t, []string{"Restock Widget", "Review pricing", "Expand the South store"}, recs)
}

func TestRecommendationsDefaults(t *testing.T) {
	recs := Recommendations([]bi.Insight{{ActionItems: []string{"  ", ""}}})
	assert.Equal(t, []string{"Monitor trend continuation", "Consider implementing suggested actions"}, recs)

	recs = Recommendations(nil)
	assert.Len(t, recs, 2)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Processed", Summary(nil))
	assert.Equal(t, "Revenue up 12%", Summary([]bi.Insight{{Title: "Revenue up 12%"}}))
	assert.Equal(t, "Processed", Summary([]bi.Insight{{Title: ""}}))
}
