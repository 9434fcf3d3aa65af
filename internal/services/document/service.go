// Package document manages PDF ingestion: upload persistence, text
// extraction, chunking, and the active-set fingerprint.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

const (
	maxExtractChars = 50000
	chunkSize       = 2000
)

// Service implements interfaces.DocumentService.
type Service struct {
	documents  interfaces.DocumentStore
	uploadsDir string
	logger     *common.Logger
}

// NewService creates the document service. uploadsDir is created on
// first ingest if missing.
func NewService(documents interfaces.DocumentStore, uploadsDir string, logger *common.Logger) *Service {
	return &Service{documents: documents, uploadsDir: uploadsDir, logger: logger}
}

// Ingest stores an uploaded PDF on disk, extracts and chunks its text,
// and persists the document record.
func (s *Service) Ingest(ctx context.Context, name string, content []byte) (*models.Document, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(s.uploadsDir, id+".pdf")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	text, pages, err := extractPDFText(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	sum := sha256.Sum256(content)
	doc := &models.Document{
		ID:         id,
		Name:       name,
		Path:       path,
		Text:       text,
		Chunks:     chunkText(text, chunkSize),
		Pages:      pages,
		SHA256:     hex.EncodeToString(sum[:]),
		UploadedAt: time.Now().UTC(),
	}

	if err := s.documents.Save(ctx, doc); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info().
		Str("id", doc.ID).
		Str("name", doc.Name).
		Int("pages", doc.Pages).
		Int("chunks", len(doc.Chunks)).
		Msg("Document ingested")

	return doc, nil
}

// List returns all documents with text and chunks omitted.
func (s *Service) List(ctx context.Context) ([]*models.Document, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Document, len(docs))
	for i, doc := range docs {
		summary := *doc
		summary.Text = ""
		summary.Chunks = nil
		out[i] = &summary
	}
	return out, nil
}

// Delete removes the stored record and the on-disk upload.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}

	if doc.Path != "" {
		if err := os.Remove(doc.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", doc.Path).Msg("Failed to remove upload file")
		}
	}

	s.logger.Info().Str("id", id).Msg("Document deleted")
	return nil
}

// Fingerprint computes the deterministic identifier of the active
// document set: SHA-256 over the sorted per-document content hashes.
// Adding, removing, or replacing any document changes the fingerprint.
func (s *Service) Fingerprint(ctx context.Context) (string, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", models.ErrNoDocuments
	}

	hashes := make([]string, len(docs))
	for i, doc := range docs {
		hashes[i] = doc.SHA256
	}
	sort.Strings(hashes)

	sum := sha256.Sum256([]byte(strings.Join(hashes, "\n")))
	return hex.EncodeToString(sum[:]), nil
}

// DeepExtract re-reads a stored PDF page by page, keeping per-page text
// even when individual pages fail. Used as the OCR-style fallback when
// the fast extraction produced too little text for a dashboard section.
func (s *Service) DeepExtract(ctx context.Context, id string) (string, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return "", err
	}

	f, r, err := pdf.Open(doc.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()

	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		texts := page.Content().Text
		var pageText strings.Builder
		lastY := -1.0
		for _, t := range texts {
			if lastY >= 0 && t.Y != lastY {
				pageText.WriteString("\n")
			}
			pageText.WriteString(t.S)
			lastY = t.Y
		}

		if pageText.Len() > 0 {
			sb.WriteString(pageText.String())
			sb.WriteString("\n")
		}

		if sb.Len() > maxExtractChars {
			break
		}
	}

	result := sb.String()
	if len(result) > maxExtractChars {
		result = result[:maxExtractChars]
	}

	if len(result) > len(doc.Text) {
		doc.Text = result
		doc.Chunks = chunkText(result, chunkSize)
		if err := s.documents.Save(ctx, doc); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to persist deep extraction")
		}
	}

	return result, nil
}

// extractPDFText pulls plain text from a PDF, truncated to
// maxExtractChars to stay within model context limits.
func extractPDFText(pdfPath string) (string, int, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()

	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")

		if sb.Len() > maxExtractChars {
			break
		}
	}

	result := sb.String()
	if len(result) > maxExtractChars {
		result = result[:maxExtractChars]
	}

	return result, totalPages, nil
}

// chunkText splits text into chunks of roughly size chars, breaking on
// whitespace so words stay intact.
func chunkText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > size {
		cut := size
		if idx := strings.LastIndexAny(text[:size], " \n\t"); idx > size/2 {
			cut = idx
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
