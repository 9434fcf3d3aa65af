package server

import (
	"io"
	"net/http"
	"strings"
)

const maxUploadBytes = 50 << 20 // 50MB

// handleDocuments handles GET /api/documents (list) and POST
// /api/documents (multipart upload + ingest).
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleDocumentList(w, r)
	case http.MethodPost:
		s.handleDocumentUpload(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.app.DocumentService.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list documents: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Form field 'file' is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		WriteError(w, http.StatusBadRequest, "Only PDF uploads are supported")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	doc, err := s.app.DocumentService.Ingest(r.Context(), header.Filename, content)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Ingestion failed: "+err.Error())
		return
	}

	// Text and chunks are internal; return the summary shape.
	doc.Text = ""
	doc.Chunks = nil

	WriteJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleDocumentDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.DocumentService.Delete(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			WriteError(w, http.StatusNotFound, "Document not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to delete document: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
