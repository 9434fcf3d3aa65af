package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

const maxHistoryTurns = 6

// Service implements interfaces.AnswerService.
type Service struct {
	classifier interfaces.IntentClassifier
	retriever  interfaces.Retriever
	extractor  interfaces.Extractor
	gemini     interfaces.GeminiClient
	log        interfaces.AnswerLogStore
	logger     *common.Logger
}

// NewService creates the answer service. log may be nil to disable the
// question/answer history.
func NewService(
	classifier interfaces.IntentClassifier,
	retriever interfaces.Retriever,
	extractor interfaces.Extractor,
	gemini interfaces.GeminiClient,
	log interfaces.AnswerLogStore,
	logger *common.Logger,
) *Service {
	return &Service{
		classifier: classifier,
		retriever:  retriever,
		extractor:  extractor,
		gemini:     gemini,
		log:        log,
		logger:     logger,
	}
}

// Ask answers a question about the ingested documents. The returned
// envelope always satisfies intent/shape coherence; extraction and
// generation failures degrade to plain text rather than surfacing as
// errors. A non-nil error means the request itself could not run.
func (s *Service) Ask(ctx context.Context, question string, history []models.ChatTurn) (*models.AnswerEnvelope, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}

	intent := s.classifier.Classify(ctx, question)
	s.logger.Debug().Str("intent", intent.String()).Str("question", question).Msg("Intent classified")

	contextText, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		if errors.Is(err, models.ErrNoDocuments) {
			return s.finish(intent, question, history, Guarded{},
				"No documents have been uploaded yet. Upload a financial document to ask questions about it."), nil
		}
		return nil, fmt.Errorf("context retrieval failed: %w", err)
	}

	candidate := s.extractCandidate(ctx, intent, contextText, question)
	guarded := Enforce(intent, candidate)

	narrative := s.narrate(ctx, intent, question, contextText, history, guarded)
	envelope := s.finish(intent, question, history, guarded, narrative)
	s.record(ctx, question, envelope, guarded)
	return envelope, nil
}

// record appends the exchange to the answer log. Log failures are
// reported but never affect the response.
func (s *Service) record(ctx context.Context, question string, envelope *models.AnswerEnvelope, g Guarded) {
	if s.log == nil {
		return
	}
	err := s.log.Append(ctx, &models.AnswerRecord{
		Question: question,
		Answer:   envelope.Answer,
		Intent:   envelope.Intent,
		Blocked:  g.Blocked,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to append answer log record")
	}
}

// History returns the most recent logged exchanges, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*models.AnswerRecord, error) {
	if s.log == nil {
		return nil, nil
	}
	return s.log.Recent(ctx, limit)
}

// extractCandidate runs the extraction appropriate to the intent. For a
// chart request a failed series extraction falls back to table
// extraction so the guard can attempt a conversion.
func (s *Service) extractCandidate(ctx context.Context, intent models.Intent, contextText, question string) Guarded {
	switch intent {
	case models.IntentChart:
		series, err := s.extractor.ExtractSeries(ctx, contextText, question)
		if err == nil {
			chart, buildErr := BuildChart(series, question)
			if buildErr == nil {
				return Guarded{Chart: chart}
			}
			err = buildErr
		}
		s.logger.Debug().Err(err).Msg("Series path failed, trying table extraction")

		table, tableErr := s.extractor.ExtractTable(ctx, contextText, question)
		if tableErr != nil {
			return Guarded{}
		}
		return Guarded{Table: BuildTable(table)}

	case models.IntentTable:
		table, err := s.extractor.ExtractTable(ctx, contextText, question)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Table extraction failed")
			return Guarded{}
		}
		return Guarded{Table: BuildTable(table)}

	default:
		return Guarded{}
	}
}

// narrate produces the text portion of the answer. Generation failures
// fall back to a minimal description of whatever structured output
// survived the guard.
func (s *Service) narrate(ctx context.Context, intent models.Intent, question, contextText string, history []models.ChatTurn, g Guarded) string {
	if g.Blocked {
		return g.Message
	}

	if s.gemini == nil {
		return fallbackNarrative(g)
	}

	prompt := buildNarrativePrompt(question, contextText, history, g)
	text, err := s.gemini.GenerateContent(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn().Err(err).Msg("Narrative generation failed, using fallback text")
		return fallbackNarrative(g)
	}
	return strings.TrimSpace(text)
}

func buildNarrativePrompt(question, contextText string, history []models.ChatTurn, g Guarded) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst assistant. Answer the question using ONLY the document context below.\n\n")

	if len(history) > 0 {
		start := len(history) - maxHistoryTurns
		if start < 0 {
			start = 0
		}
		sb.WriteString("Conversation so far:\n")
		for _, turn := range history[start:] {
			sb.WriteString(turn.Role)
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Document context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")

	switch {
	case g.Chart != nil:
		sb.WriteString("A chart titled \"")
		sb.WriteString(g.Chart.Title)
		sb.WriteString("\" accompanies your answer. Summarize the key insight it shows in 2-3 sentences. Do not restate every data point.")
	case g.Table != nil:
		sb.WriteString("A data table accompanies your answer. Briefly introduce what it contains in 1-2 sentences.")
	default:
		sb.WriteString("Answer concisely in plain prose. If the context does not contain the answer, say so.")
	}

	return sb.String()
}

func fallbackNarrative(g Guarded) string {
	switch {
	case g.Chart != nil:
		return "Here is the chart generated from the document data."
	case g.Table != nil:
		return "Here is the data extracted from the document."
	default:
		return "I could not find relevant information in the uploaded documents for that question."
	}
}

// finish applies the final guard pass and assembles the envelope. The
// guard runs immediately before assembly so no later stage can break
// coherence.
func (s *Service) finish(intent models.Intent, question string, history []models.ChatTurn, g Guarded, narrative string) *models.AnswerEnvelope {
	final := Enforce(intent, g)
	if final.Blocked {
		narrative = final.Message
	}

	updated := append(append([]models.ChatTurn{}, history...),
		models.ChatTurn{Role: "user", Content: question},
		models.ChatTurn{Role: "assistant", Content: narrative},
	)

	return &models.AnswerEnvelope{
		Answer:      narrative,
		Chart:       final.Chart,
		Table:       final.Table,
		Intent:      intent.String(),
		ChatHistory: updated,
	}
}

// RenderChartPNG renders a chart spec to PNG bytes.
func (s *Service) RenderChartPNG(spec *models.ChartSpec) ([]byte, error) {
	return RenderChartPNG(spec)
}
