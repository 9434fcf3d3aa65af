package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/finsight/internal/models"
)

// handleAsk handles POST /api/ask — answer a question about the
// ingested documents, optionally with a chart or table.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Question string            `json:"question"`
		History  []models.ChatTurn `json:"chat_history"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	envelope, err := s.app.AnswerService.Ask(r.Context(), req.Question, req.History)
	if err != nil {
		if errors.Is(err, models.ErrNoDocuments) {
			WriteError(w, http.StatusConflict, "No documents have been uploaded")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to answer question: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, envelope)
}

// handleAskHistory handles GET /api/ask/history — return recent
// question/answer exchanges, newest first.
func (s *Server) handleAskHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	records, err := s.app.AnswerService.History(r.Context(), 20)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load answer history: "+err.Error())
		return
	}
	if records == nil {
		records = []*models.AnswerRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": records,
		"count":   len(records),
	})
}

// handleAskChartPNG handles GET /api/ask/chart.png?spec={json} — render
// a previously returned chart spec as a PNG image.
func (s *Server) handleAskChartPNG(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	specParam := r.URL.Query().Get("spec")
	if specParam == "" {
		WriteError(w, http.StatusBadRequest, "spec query parameter is required")
		return
	}

	var spec models.ChartSpec
	if err := json.Unmarshal([]byte(specParam), &spec); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid chart spec: "+err.Error())
		return
	}
	if !spec.Valid() {
		WriteError(w, http.StatusBadRequest, "Chart spec does not satisfy the chart shape")
		return
	}

	png, err := s.app.AnswerService.RenderChartPNG(&spec)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Chart rendering failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
