package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/finsight/internal/models"
)

// handleDashboardGenerate handles POST /api/dashboard/generate — build
// all sections and replace the cached record.
func (s *Server) handleDashboardGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	record, err := s.app.DashboardService.Generate(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrNoDocuments) {
			WriteError(w, http.StatusConflict, "No documents have been uploaded")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Dashboard generation failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// handleDashboardGet handles GET /api/dashboard — return the cached
// dashboard for the current document set, generating when absent.
func (s *Server) handleDashboardGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	record, err := s.app.DashboardService.Get(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrNoDocuments) {
			WriteError(w, http.StatusConflict, "No documents have been uploaded")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load dashboard: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// handleDashboardSection handles GET /api/dashboard/sections/{name}.
func (s *Server) handleDashboardSection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/dashboard/sections/")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "section name is required in path")
		return
	}

	section, err := s.app.DashboardService.GetSection(r.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrNoDocuments) {
			WriteError(w, http.StatusConflict, "No documents have been uploaded")
			return
		}
		if strings.Contains(err.Error(), "unknown dashboard section") {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load section: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, section)
}
