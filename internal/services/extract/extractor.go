// Package extract turns raw document context into typed intermediate
// representations (series or table) via LLM JSON extraction.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

// Service implements interfaces.Extractor.
type Service struct {
	gemini      interfaces.GeminiClient
	retriever   interfaces.Retriever
	logger      *common.Logger
	sparseChars int
}

// NewService creates an extractor. retriever may be nil — the fresh-query
// retry is skipped when no retriever is wired.
func NewService(gemini interfaces.GeminiClient, retriever interfaces.Retriever, logger *common.Logger, sparseChars int) *Service {
	if sparseChars <= 0 {
		sparseChars = 500
	}
	return &Service{
		gemini:      gemini,
		retriever:   retriever,
		logger:      logger,
		sparseChars: sparseChars,
	}
}

// ExtractSeries extracts a named series of labeled numeric values.
func (s *Service) ExtractSeries(ctx context.Context, contextText, question string) (*models.ExtractedSeries, error) {
	if s.gemini == nil {
		return nil, fmt.Errorf("%w: llm client not configured", models.ErrExtractionFailed)
	}
	contextText = s.expandSparseContext(ctx, contextText, question)

	prompt := buildSeriesPrompt(contextText, question)

	// Two attempts against the LLM before giving up.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		response, err := s.gemini.GenerateJSON(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		series, err := parseSeriesResponse(response)
		if err != nil {
			lastErr = err
			continue
		}
		if series.Empty() {
			lastErr = fmt.Errorf("empty series")
			continue
		}

		return series, nil
	}

	s.logger.Warn().Err(lastErr).Str("question", question).Msg("Series extraction failed")
	return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, lastErr)
}

// ExtractTable extracts a headers/rows table.
func (s *Service) ExtractTable(ctx context.Context, contextText, question string) (*models.ExtractedTable, error) {
	if s.gemini == nil {
		return nil, fmt.Errorf("%w: llm client not configured", models.ErrExtractionFailed)
	}
	contextText = s.expandSparseContext(ctx, contextText, question)

	prompt := buildTablePrompt(contextText, question)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		response, err := s.gemini.GenerateJSON(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		table, err := parseTableResponse(response)
		if err != nil {
			lastErr = err
			continue
		}
		if table.Empty() {
			lastErr = fmt.Errorf("empty table")
			continue
		}

		return table, nil
	}

	s.logger.Warn().Err(lastErr).Str("question", question).Msg("Table extraction failed")
	return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, lastErr)
}

// expandSparseContext re-queries the retriever once when the supplied
// context is below the sparse threshold — the signal that the chunk is
// too thin to hold the needed figures. The retry widens the query, it
// does not re-run the LLM on the same weak input.
func (s *Service) expandSparseContext(ctx context.Context, contextText, question string) string {
	if len(contextText) >= s.sparseChars || s.retriever == nil {
		return contextText
	}

	s.logger.Debug().
		Int("context_len", len(contextText)).
		Int("threshold", s.sparseChars).
		Msg("Context too sparse, re-querying retriever")

	fresh, err := s.retriever.RetrieveFresh(ctx, question)
	if err != nil || len(fresh) <= len(contextText) {
		return contextText
	}
	return fresh
}

// buildSeriesPrompt creates the extraction prompt for the series schema.
func buildSeriesPrompt(contextText, question string) string {
	var sb strings.Builder

	sb.WriteString("You are a financial data extractor. From the document context below, extract the numeric data needed to answer the question.\n\n")
	sb.WriteString("## Question\n")
	sb.WriteString(question)
	sb.WriteString("\n\n## Document Context\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\n")
	sb.WriteString(`Return ONLY valid JSON with this exact shape:
{
  "name": "series name, e.g. Revenue",
  "points": [{"label": "FY2023", "value": 1200000}, {"label": "FY2024", "value": 1350000}]
}

Rules:
- Values must be plain numbers: no currency symbols, no thousands separators
- Negative amounts (often shown in parentheses in the documents) must be negative numbers
- Labels follow document order
- If the context contains no relevant numbers, return {"name": "", "points": []}
- Return ONLY the JSON object, no markdown code fences, no explanation`)

	return sb.String()
}

// buildTablePrompt creates the extraction prompt for the table schema.
func buildTablePrompt(contextText, question string) string {
	var sb strings.Builder

	sb.WriteString("You are a financial data extractor. From the document context below, extract a table answering the question.\n\n")
	sb.WriteString("## Question\n")
	sb.WriteString(question)
	sb.WriteString("\n\n## Document Context\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\n")
	sb.WriteString(`Return ONLY valid JSON with this exact shape:
{
  "headers": ["Account", "FY2023", "FY2024"],
  "rows": [["Revenue", "1200000", "1350000"], ["Net Profit", "80000", "95000"]]
}

Rules:
- Every row must have exactly as many cells as there are headers
- Keep cell values as strings exactly as they appear in the documents
- If the context contains no relevant data, return {"headers": [], "rows": []}
- Return ONLY the JSON object, no markdown code fences, no explanation`)

	return sb.String()
}

// parseSeriesResponse parses and validates an LLM series response.
func parseSeriesResponse(response string) (*models.ExtractedSeries, error) {
	cleaned := StripFences(response)

	var series models.ExtractedSeries
	if err := json.Unmarshal([]byte(cleaned), &series); err != nil {
		// Repair pass: some models wrap values as strings.
		repaired, rerr := repairSeriesJSON(cleaned)
		if rerr != nil {
			return nil, fmt.Errorf("malformed series JSON: %w", err)
		}
		series = *repaired
	}

	return &series, nil
}

// parseTableResponse parses, repairs, and validates an LLM table response.
func parseTableResponse(response string) (*models.ExtractedTable, error) {
	cleaned := StripFences(response)

	var table models.ExtractedTable
	if err := json.Unmarshal([]byte(cleaned), &table); err != nil {
		return nil, fmt.Errorf("malformed table JSON: %w", err)
	}

	normalized, err := NormalizeTable(&table)
	if err != nil {
		return nil, err
	}

	return normalized, nil
}

// StripFences removes markdown code fences from an LLM response.
func StripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// Ensure Service implements Extractor
var _ interfaces.Extractor = (*Service)(nil)
