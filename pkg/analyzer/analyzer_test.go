package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/cache"
)

type stubClassifier struct {
	intent *bi.Intent
	err    error
	calls  int
}

func (s *stubClassifier) ClassifyIntent(ctx context.Context, question string) (*bi.Intent, error) {
	s.calls++
	return s.intent, s.err
}

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewWithClient(client, cache.TTLs{
		Default: time.Hour,
		Intent:  2 * time.Hour,
	}, 100*time.Millisecond)
}

func TestFallbackIntentKeywords(t *testing.T) {
	cases := []struct {
		question string
		want     bi.IntentTag
	}{
		{"What is the sales trend this month?", bi.IntentTrendAnalysis},
		{"Show revenue patterns over time", bi.IntentTrendAnalysis},
		{"Compare store A vs store B", bi.IntentComparison},
		{"What is the difference between regions?", bi.IntentComparison},
		{"Forecast next quarter revenue", bi.IntentPrediction},
		{"Why did profit drop?", bi.IntentRootCause},
		{"Recommend actions for Q3", bi.IntentRecommendation},
		{"Show me sales numbers", bi.IntentGeneralAnalysis},
	}

	for _, tc := range cases {
		intent := FallbackIntent(tc.question)
		assert.Equal(t, tc.want, intent.Intent, tc.question)
		assert.Equal(t, 0.6, intent.Confidence)
		assert.Equal(t, []string{"sales", "performance"}, intent.Categories)
		assert.Equal(t, []bi.DataSource{bi.SourceSales}, intent.DataSources)
		assert.Equal(t, bi.ChartKinds, intent.SuggestedVisualizations)
		assert.NoError(t, intent.Validate())
	}
}

func TestAnalyzeUsesGateway(t *testing.T) {
	stub := &stubClassifier{intent: FallbackIntent("compare stores")}
	a := New(stub, nil)

	intent := a.Analyze(context.Background(), "compare stores")
	require.NotNil(t, intent)
	assert.Equal(t, 1, stub.calls)
}

func TestAnalyzeFallsBackOnError(t *testing.T) {
	stub := &stubClassifier{err: errors.New("boom")}
	a := New(stub, nil)

	intent := a.Analyze(context.Background(), "why did sales drop")
	assert.Equal(t, bi.IntentRootCause, intent.Intent)
	assert.Equal(t, 0.6, intent.Confidence)
}

func TestAnalyzeNilGateway(t *testing.T) {
	a := New(nil, nil)
	intent := a.Analyze(context.Background(), "predict next month")
	assert.Equal(t, bi.IntentPrediction, intent.Intent)
}

func TestAnalyzeCachesClassification(t *testing.T) {
	c := testCache(t)
	want := FallbackIntent("trend of sales")
	stub := &stubClassifier{intent: want}
	a := New(stub, c)

	first := a.Analyze(context.Background(), "trend of sales")
	second := a.Analyze(context.Background(), "  TREND of   sales ")

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, first.Intent, second.Intent)
}
