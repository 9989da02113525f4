package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/pipeline"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, _ string) *bi.Intent {
	return &bi.Intent{
		Intent:                  bi.IntentGeneralAnalysis,
		Confidence:              0.6,
		Categories:              []string{"sales"},
		DataSources:             []bi.DataSource{bi.SourceSales},
		SuggestedVisualizations: []bi.ChartKind{bi.ChartBar},
	}
}

type stubRetriever struct{}

func (stubRetriever) Retrieve(_ context.Context, _ string, _ *bi.Intent) (bi.DataContext, string) {
	return &bi.SalesContext{Records: []bi.SalesRecord{
		{Date: "2026-08-01", Product: "Widget", Store: "North", Quantity: 1, Revenue: 10, Profit: 4},
	}}, "Sales data: 1 records"
}

type stubEngine struct{}

func (stubEngine) Generate(_ context.Context, question string, _ *bi.Intent, _ string) []bi.Insight {
	return []bi.Insight{{
		Title:           "Steady demand",
		Description:     "Demand held flat.",
		Category:        bi.CategorySummary,
		ConfidenceScore: 0.6,
		DataSources:     []bi.DataSource{bi.SourceSales},
	}}
}

type stubViz struct{}

func (stubViz) Build(_ *bi.Intent, _ bi.DataContext) []bi.Visualization { return nil }

type stubReader struct {
	questions map[int64]*bi.Question
	insights  map[int64][]bi.Insight
	err       error
}

func (r *stubReader) Get(_ context.Context, id int64) (*bi.Question, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.questions[id], nil
}

func (r *stubReader) List(_ context.Context, _, _ int) ([]bi.Question, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []bi.Question
	for _, q := range r.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (r *stubReader) InsightsFor(_ context.Context, id int64) ([]bi.Insight, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.insights[id], nil
}

func newTestServer(reader Reader) *Server {
	cfg := config.ServerConfig{}
	cfg.SetDefaults()
	p := pipeline.New(nil, nil, stubAnalyzer{}, stubRetriever{}, stubEngine{}, stubViz{}, pipeline.Config{})
	return New(cfg, p, reader, nil, nil, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) bi.ErrorEnvelope {
	t.Helper()
	var envelope bi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHandleProcess(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/questions", `{"query_text": "How are sales?", "user_id": "u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope bi.ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "How are sales?", envelope.Query.Text)
	assert.Len(t, envelope.Insights, 1)
}

func TestHandleProcessValidation(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/questions", `{"query_text": "hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeErrorEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Equal(t, "validation", envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "at least 3 characters")
}

func TestHandleProcessBadJSON(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/questions", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeErrorEnvelope(t, rec).Error.Kind)
}

func TestHandleGetQuestion(t *testing.T) {
	reader := &stubReader{questions: map[int64]*bi.Question{
		7: {ID: 7, Text: "How are sales?", Processed: true, CreatedAt: time.Now()},
	}}
	s := newTestServer(reader)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/questions/7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var q bi.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, int64(7), q.ID)
}

func TestHandleGetQuestionNotFound(t *testing.T) {
	s := newTestServer(&stubReader{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/questions/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetQuestionBadID(t *testing.T) {
	s := newTestServer(&stubReader{})

	for _, path := range []string{"/api/v1/questions/abc", "/api/v1/questions/0", "/api/v1/questions/-3"} {
		rec := doRequest(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHandleGetQuestionReaderError(t *testing.T) {
	s := newTestServer(&stubReader{err: errors.New("db down")})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/questions/7", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeErrorEnvelope(t, rec).Error.Message)
}

func TestHandleListQuestions(t *testing.T) {
	reader := &stubReader{questions: map[int64]*bi.Question{1: {ID: 1, Text: "q"}}}
	s := newTestServer(reader)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/questions?limit=500&offset=-2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Questions []bi.Question `json:"questions"`
		Offset    int           `json:"offset"`
		Limit     int           `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Questions, 1)
	// Out-of-range paging collapses to defaults.
	assert.Equal(t, 0, body.Offset)
	assert.Equal(t, 20, body.Limit)
}

func TestHandleQuestionInsightsEmpty(t *testing.T) {
	s := newTestServer(&stubReader{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/questions/7/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"insights": []}`, rec.Body.String())
}

func TestReadEndpointsWithoutReader(t *testing.T) {
	s := newTestServer(nil)

	for _, path := range []string{"/api/v1/questions", "/api/v1/questions/1", "/api/v1/questions/1/insights"} {
		rec := doRequest(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, "metadata_unavailable", decodeErrorEnvelope(t, rec).Error.Kind, path)
	}
}

func TestHandleCacheStatsUnconfigured(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/cache/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleLLMCostUnconfigured(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/llm/cost", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(nil)

	rec := doRequest(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
