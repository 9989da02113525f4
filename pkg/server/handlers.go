package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/getlens/lens/pkg/bi"
)

// processRequest is the body of POST /api/v1/questions.
type processRequest struct {
	QueryText string `json:"query_text"`
	UserID    string `json:"user_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, bi.ErrorEnvelope{
		Success: false,
		Error:   bi.ErrorBody{Kind: kind, Message: message},
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "request body must be valid JSON")
		return
	}

	start := time.Now()
	envelope, err := s.pipeline.Process(r.Context(), req.QueryText, req.UserID)
	if s.metrics != nil {
		cached := envelope != nil && envelope.CachedAt != nil
		s.metrics.RecordPipelineRun(r.Context(), time.Since(start), cached, err)
	}

	if err != nil {
		if errors.Is(err, bi.ErrValidation) {
			writeError(w, http.StatusBadRequest, bi.ErrorKind(err), err.Error())
			return
		}
		s.logger.Error("question processing failed", "error", err)
		writeError(w, http.StatusInternalServerError, bi.ErrorKind(err), "internal error")
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata_unavailable", "metadata store not configured")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "validation", "id must be a positive integer")
		return
	}

	question, err := s.reader.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("question lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, bi.ErrorKind(err), "internal error")
		return
	}
	if question == nil {
		writeError(w, http.StatusNotFound, "validation", "question not found")
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata_unavailable", "metadata store not configured")
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	questions, err := s.reader.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("question listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, bi.ErrorKind(err), "internal error")
		return
	}
	if questions == nil {
		questions = []bi.Question{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
		"offset":    offset,
		"limit":     limit,
	})
}

func (s *Server) handleQuestionInsights(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata_unavailable", "metadata store not configured")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "validation", "id must be a positive integer")
		return
	}

	list, err := s.reader.InsightsFor(r.Context(), id)
	if err != nil {
		s.logger.Error("insight lookup failed", "question_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, bi.ErrorKind(err), "internal error")
		return
	}
	if list == nil {
		list = []bi.Insight{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"insights": list})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache_unavailable", "cache not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleLLMCost(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, http.StatusServiceUnavailable, "llm_unavailable", "LLM gateway not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.gateway.Costs())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
