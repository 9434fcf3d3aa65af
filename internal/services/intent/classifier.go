// Package intent classifies whether a question wants a chart, a table,
// or a plain text answer. The classification happens exactly once per
// request and is threaded through every downstream stage — downstream
// code must never re-derive it.
package intent

import (
	"context"
	"strings"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

// Keyword families for the deterministic first pass. Multi-word phrases
// are matched as substrings of the lowercased question.
var (
	chartKeywords = []string{
		"chart", "graph", "visualize", "visualise", "plot",
		"pie", "bar chart", "line chart", "trend chart",
	}
	tableKeywords = []string{
		"table", "tabular", "tabulate", "trial balance",
		"in a table", "as a table",
	}
)

// Classifier implements interfaces.IntentClassifier.
type Classifier struct {
	gemini interfaces.GeminiClient
	logger *common.Logger
}

// NewClassifier creates a classifier. gemini may be nil, in which case
// ambiguous questions resolve to IntentNone without a tie-break call.
func NewClassifier(gemini interfaces.GeminiClient, logger *common.Logger) *Classifier {
	return &Classifier{gemini: gemini, logger: logger}
}

// Classify determines the desired output shape for the question.
// Deterministic keyword scan first; exactly one family hit wins without
// an LLM call. Both families or neither go to the LLM tie-break, and
// any tie-break failure defaults to IntentNone.
func (c *Classifier) Classify(ctx context.Context, text string) models.Intent {
	lower := strings.ToLower(text)

	chartHit := matchesAny(lower, chartKeywords)
	tableHit := matchesAny(lower, tableKeywords)

	switch {
	case chartHit && !tableHit:
		return models.IntentChart
	case tableHit && !chartHit:
		return models.IntentTable
	}

	return c.tieBreak(ctx, text)
}

// matchesAny reports whether any keyword occurs in the lowercased text.
func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// tieBreak asks the LLM to resolve an ambiguous question, constrained to
// exactly one of CHART, TABLE, or NONE.
func (c *Classifier) tieBreak(ctx context.Context, text string) models.Intent {
	if c.gemini == nil {
		return models.IntentNone
	}

	prompt := "Classify the desired output format for this question about financial documents.\n" +
		"Reply with exactly one word: CHART, TABLE, or NONE.\n\nQuestion: " + text

	response, err := c.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Intent tie-break call failed, defaulting to none")
		return models.IntentNone
	}

	switch strings.ToUpper(strings.TrimSpace(response)) {
	case "CHART":
		return models.IntentChart
	case "TABLE":
		return models.IntentTable
	case "NONE":
		return models.IntentNone
	default:
		c.logger.Debug().Str("response", response).Msg("Ambiguous tie-break response, defaulting to none")
		return models.IntentNone
	}
}

// Ensure Classifier implements IntentClassifier
var _ interfaces.IntentClassifier = (*Classifier)(nil)
