// Package interfaces defines service contracts for FinSight
package interfaces

import (
	"context"

	"github.com/bobmcallan/finsight/internal/models"
)

// GeminiClient provides access to the Gemini API. It is the black-box
// llm_complete collaborator: prompt in, text or JSON out, fallible.
type GeminiClient interface {
	// GenerateContent generates free-text content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// GenerateJSON generates content constrained to a JSON response
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// SearchClient provides web search results for the news and competitor
// dashboard sections. Optional — implementations may be absent entirely.
type SearchClient interface {
	// Search runs a query and returns result snippets
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}
