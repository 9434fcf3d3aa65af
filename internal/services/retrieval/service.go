// Package retrieval selects question-relevant chunks from the ingested
// document set using lexical term overlap scoring.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

// Financial synonym groups used to expand a fresh query. A term on
// either side of a group pulls in the rest of the group.
var synonymGroups = [][]string{
	{"revenue", "sales", "turnover", "income"},
	{"profit", "earnings", "net income", "margin"},
	{"debt", "liabilities", "borrowings", "payables"},
	{"cash", "liquidity", "cash flow"},
	{"assets", "receivables", "inventory", "property"},
	{"equity", "capital", "shareholders", "retained"},
	{"expenses", "costs", "expenditure", "overheads"},
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true,
	"for": true, "to": true, "and": true, "or": true, "is": true,
	"are": true, "was": true, "were": true, "what": true, "how": true,
	"show": true, "me": true, "chart": true, "table": true, "graph": true,
	"with": true, "by": true, "on": true, "as": true, "from": true,
}

// Service implements interfaces.Retriever.
type Service struct {
	documents interfaces.DocumentStore
	logger    *common.Logger
	maxChars  int
}

// NewService creates a retriever. maxChars caps the assembled context.
func NewService(documents interfaces.DocumentStore, maxChars int, logger *common.Logger) *Service {
	return &Service{documents: documents, logger: logger, maxChars: maxChars}
}

// Retrieve returns the highest-scoring chunks for the query, joined into
// a single context string capped at maxChars.
func (s *Service) Retrieve(ctx context.Context, query string) (string, error) {
	return s.retrieve(ctx, queryTerms(query))
}

// RetrieveFresh re-queries with financial synonyms folded into the term
// set. Used when the first context came back too sparse.
func (s *Service) RetrieveFresh(ctx context.Context, query string) (string, error) {
	return s.retrieve(ctx, expandTerms(queryTerms(query)))
}

func (s *Service) retrieve(ctx context.Context, terms []string) (string, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return "", fmt.Errorf("document listing failed: %w", err)
	}
	if len(docs) == 0 {
		return "", models.ErrNoDocuments
	}

	type scored struct {
		chunk string
		score int
		order int
	}

	var candidates []scored
	order := 0
	for _, doc := range docs {
		for _, chunk := range doc.Chunks {
			candidates = append(candidates, scored{
				chunk: chunk,
				score: scoreChunk(chunk, terms),
				order: order,
			})
			order++
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	var sb strings.Builder
	for _, c := range candidates {
		if c.score == 0 && sb.Len() > 0 {
			break
		}
		if sb.Len()+len(c.chunk)+2 > s.maxChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(c.chunk)
	}

	// No term matched anywhere: fall back to the leading chunks so the
	// model still sees the document at all.
	if sb.Len() == 0 && len(candidates) > 0 {
		for _, c := range candidates {
			if sb.Len()+len(c.chunk)+2 > s.maxChars {
				break
			}
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(c.chunk)
		}
	}

	s.logger.Debug().
		Int("documents", len(docs)).
		Int("chunks", len(candidates)).
		Int("context_chars", sb.Len()).
		Msg("Context assembled")

	return sb.String(), nil
}

// scoreChunk counts term occurrences in the lowercased chunk.
func scoreChunk(chunk string, terms []string) int {
	lower := strings.ToLower(chunk)
	score := 0
	for _, term := range terms {
		score += strings.Count(lower, term)
	}
	return score
}

// queryTerms tokenizes a query, dropping stop words and single letters.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, f := range fields {
		term := strings.Trim(f, ".,?!:;\"'()")
		if len(term) < 2 || stopWords[term] || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}

// expandTerms folds in the synonym group of every matched term.
func expandTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	expanded := make([]string, 0, len(terms))
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			expanded = append(expanded, term)
		}
	}

	for _, term := range terms {
		add(term)
		for _, group := range synonymGroups {
			inGroup := false
			for _, synonym := range group {
				if synonym == term {
					inGroup = true
					break
				}
			}
			if inGroup {
				for _, synonym := range group {
					add(synonym)
				}
			}
		}
	}
	return expanded
}
