// Package interfaces defines service contracts for FinSight
package interfaces

import (
	"context"

	"github.com/bobmcallan/finsight/internal/models"
)

// AnswerService answers questions about ingested documents, optionally
// returning a chart or table alongside the text answer.
type AnswerService interface {
	// Ask runs the full classify → extract → build → guard chain
	Ask(ctx context.Context, question string, history []models.ChatTurn) (*models.AnswerEnvelope, error)

	// RenderChartPNG renders a chart spec to PNG bytes
	RenderChartPNG(spec *models.ChartSpec) ([]byte, error)

	// History returns the most recent logged exchanges, newest first
	History(ctx context.Context, limit int) ([]*models.AnswerRecord, error)
}

// DashboardService generates and caches the multi-section financial
// dashboard for the active document set.
type DashboardService interface {
	// Generate builds all sections, scores completeness, and caches the
	// record under the current document fingerprint
	Generate(ctx context.Context) (*models.DashboardRecord, error)

	// Get returns the cached dashboard for the current fingerprint,
	// regenerating when the fingerprint has changed
	Get(ctx context.Context) (*models.DashboardRecord, error)

	// GetSection returns a single section from the current dashboard
	GetSection(ctx context.Context, name string) (*models.SectionResult, error)
}

// DocumentService manages document ingestion and the active-set fingerprint.
type DocumentService interface {
	// Ingest stores an uploaded PDF, extracts its text, and chunks it
	Ingest(ctx context.Context, name string, content []byte) (*models.Document, error)

	// List returns all ingested documents (text omitted)
	List(ctx context.Context) ([]*models.Document, error)

	// Delete removes a document from the active set
	Delete(ctx context.Context, id string) error

	// Fingerprint computes the deterministic identifier of the active
	// document set
	Fingerprint(ctx context.Context) (string, error)

	// DeepExtract re-reads a document page by page, reconstructing text
	// the fast pass missed
	DeepExtract(ctx context.Context, id string) (string, error)
}

// Retriever supplies question-relevant context from ingested documents.
type Retriever interface {
	// Retrieve returns context text relevant to the query
	Retrieve(ctx context.Context, query string) (string, error)

	// RetrieveFresh re-queries with an expanded term set, used when the
	// first context was too sparse
	RetrieveFresh(ctx context.Context, query string) (string, error)
}

// IntentClassifier determines the caller's desired output shape.
type IntentClassifier interface {
	// Classify determines chart, table, or none from the question text
	Classify(ctx context.Context, text string) models.Intent
}

// Extractor turns raw context text into a typed intermediate
// representation via LLM JSON extraction.
type Extractor interface {
	// ExtractSeries extracts a named series of labeled numeric values
	ExtractSeries(ctx context.Context, contextText, question string) (*models.ExtractedSeries, error)

	// ExtractTable extracts a headers/rows table
	ExtractTable(ctx context.Context, contextText, question string) (*models.ExtractedTable, error)
}
