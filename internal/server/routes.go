package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/finsight/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Documents
	mux.HandleFunc("/api/documents/", s.routeDocuments)
	mux.HandleFunc("/api/documents", s.handleDocuments)

	// Questions
	mux.HandleFunc("/api/ask/chart.png", s.handleAskChartPNG)
	mux.HandleFunc("/api/ask/history", s.handleAskHistory)
	mux.HandleFunc("/api/ask", s.handleAsk)

	// Dashboard
	mux.HandleFunc("/api/dashboard/generate", s.handleDashboardGenerate)
	mux.HandleFunc("/api/dashboard/sections/", s.handleDashboardSection)
	mux.HandleFunc("/api/dashboard", s.handleDashboardGet)
}

// routeDocuments dispatches /api/documents/{id} to the appropriate handler.
func (s *Server) routeDocuments(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if id == "" {
		s.handleDocuments(w, r)
		return
	}
	s.handleDocumentDelete(w, r, id)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	geminiKey := s.app.Config.Clients.Gemini.APIKey
	if geminiKey != "" {
		geminiKey = maskSecret(geminiKey)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"storage_data_path": s.app.Config.Storage.Data.Path,
		"uploads_path":      s.app.Config.Storage.Uploads.Path,
		"logging_level":     s.app.Config.Logging.Level,
		"gemini_configured": s.app.GeminiClient != nil,
		"gemini_api_key":    geminiKey,
		"gemini_model":      s.app.Config.Clients.Gemini.Model,
		"search_configured": s.app.SearchClient != nil,
		"pipeline":          s.app.Config.Pipeline,
	})
}
