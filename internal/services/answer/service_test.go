package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

type fakeClassifier struct {
	intent models.Intent
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) models.Intent {
	return f.intent
}

type fakeRetriever struct {
	text string
	err  error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func (f *fakeRetriever) RetrieveFresh(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type fakeExtractor struct {
	series    *models.ExtractedSeries
	seriesErr error
	table     *models.ExtractedTable
	tableErr  error
}

func (f *fakeExtractor) ExtractSeries(_ context.Context, _, _ string) (*models.ExtractedSeries, error) {
	return f.series, f.seriesErr
}

func (f *fakeExtractor) ExtractTable(_ context.Context, _, _ string) (*models.ExtractedTable, error) {
	return f.table, f.tableErr
}

type fakeGemini struct {
	response string
	err      error
}

func (f *fakeGemini) GenerateContent(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

func (f *fakeGemini) GenerateJSON(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

func newTestService(intent models.Intent, retriever *fakeRetriever, extractor *fakeExtractor, gemini *fakeGemini) *Service {
	return NewService(
		&fakeClassifier{intent: intent},
		retriever,
		extractor,
		gemini,
		nil,
		common.NewSilentLogger(),
	)
}

func TestAskChartHappyPath(t *testing.T) {
	extractor := &fakeExtractor{
		series: &models.ExtractedSeries{
			Name: "Revenue",
			Points: []models.SeriesPoint{
				{Label: "2023", Value: 100},
				{Label: "2024", Value: 180},
			},
		},
	}
	svc := newTestService(models.IntentChart,
		&fakeRetriever{text: "Revenue was $100 in 2023 and $180 in 2024."},
		extractor,
		&fakeGemini{response: "Revenue grew 80% year over year."},
	)

	env, err := svc.Ask(context.Background(), "chart revenue by year", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.Chart == nil {
		t.Fatal("expected a chart in the envelope")
	}
	if env.Table != nil {
		t.Error("envelope must not carry a table alongside a chart")
	}
	if env.Intent != "chart" {
		t.Errorf("intent = %q, want chart", env.Intent)
	}
	if env.Answer != "Revenue grew 80% year over year." {
		t.Errorf("answer = %q", env.Answer)
	}
	if err := env.Coherent(); err != nil {
		t.Errorf("envelope coherence: %v", err)
	}
	if len(env.ChatHistory) != 2 {
		t.Errorf("chat history has %d turns, want 2", len(env.ChatHistory))
	}
}

func TestAskChartFallsBackToTableConversion(t *testing.T) {
	extractor := &fakeExtractor{
		seriesErr: models.ErrExtractionFailed,
		table: &models.ExtractedTable{
			Headers: []string{"Account", "Amount"},
			Rows:    [][]string{{"Cash", "100"}, {"Debt", "50"}},
		},
	}
	svc := newTestService(models.IntentChart,
		&fakeRetriever{text: "Cash 100, Debt 50."},
		extractor,
		&fakeGemini{response: "Cash is double the debt balance."},
	)

	env, err := svc.Ask(context.Background(), "chart the balances", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.Chart == nil {
		t.Fatal("expected a converted chart")
	}
	if env.Chart.Type != models.ChartTypeBar {
		t.Errorf("chart type = %q, want bar", env.Chart.Type)
	}
	if env.Table != nil {
		t.Error("source table must be dropped after conversion")
	}
}

func TestAskChartBlocked(t *testing.T) {
	extractor := &fakeExtractor{
		seriesErr: models.ErrExtractionFailed,
		tableErr:  models.ErrExtractionFailed,
	}
	svc := newTestService(models.IntentChart,
		&fakeRetriever{text: "Narrative discussion with no figures."},
		extractor,
		&fakeGemini{response: "unused"},
	)

	env, err := svc.Ask(context.Background(), "chart something", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.Chart != nil || env.Table != nil {
		t.Error("blocked envelope must carry no structured output")
	}
	if env.Answer != models.BlockedChartMessage {
		t.Errorf("answer = %q, want %q", env.Answer, models.BlockedChartMessage)
	}
}

func TestAskNoDocuments(t *testing.T) {
	svc := newTestService(models.IntentNone,
		&fakeRetriever{err: models.ErrNoDocuments},
		&fakeExtractor{},
		&fakeGemini{},
	)

	env, err := svc.Ask(context.Background(), "what is the revenue", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(env.Answer, "Upload") {
		t.Errorf("answer should prompt for an upload, got %q", env.Answer)
	}
	if env.Chart != nil || env.Table != nil {
		t.Error("no-documents answer must be plain text")
	}
}

func TestAskRetrieverFailure(t *testing.T) {
	svc := newTestService(models.IntentNone,
		&fakeRetriever{err: errors.New("store closed")},
		&fakeExtractor{},
		&fakeGemini{},
	)

	if _, err := svc.Ask(context.Background(), "what is the revenue", nil); err == nil {
		t.Error("infrastructure failures should surface as errors")
	}
}

func TestAskNarrativeFallback(t *testing.T) {
	extractor := &fakeExtractor{
		series: &models.ExtractedSeries{
			Name: "Revenue",
			Points: []models.SeriesPoint{
				{Label: "2023", Value: 100},
				{Label: "2024", Value: 180},
			},
		},
	}
	svc := newTestService(models.IntentChart,
		&fakeRetriever{text: "Revenue figures."},
		extractor,
		&fakeGemini{err: errors.New("model unavailable")},
	)

	env, err := svc.Ask(context.Background(), "chart revenue", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.Chart == nil {
		t.Fatal("chart should survive a narrative failure")
	}
	if env.Answer == "" {
		t.Error("fallback narrative should not be empty")
	}
}

func TestAskPreservesHistory(t *testing.T) {
	svc := newTestService(models.IntentNone,
		&fakeRetriever{text: "Some context."},
		&fakeExtractor{},
		&fakeGemini{response: "The answer."},
	)

	history := []models.ChatTurn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	env, err := svc.Ask(context.Background(), "follow-up", history)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(env.ChatHistory) != 4 {
		t.Fatalf("chat history has %d turns, want 4", len(env.ChatHistory))
	}
	if env.ChatHistory[2].Content != "follow-up" || env.ChatHistory[3].Content != "The answer." {
		t.Errorf("history tail = %+v", env.ChatHistory[2:])
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newTestService(models.IntentNone, &fakeRetriever{}, &fakeExtractor{}, &fakeGemini{})
	if _, err := svc.Ask(context.Background(), "   ", nil); err == nil {
		t.Error("empty question should be rejected")
	}
}

type fakeAnswerLog struct {
	records []*models.AnswerRecord
}

func (f *fakeAnswerLog) Append(_ context.Context, record *models.AnswerRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAnswerLog) Recent(_ context.Context, limit int) ([]*models.AnswerRecord, error) {
	if limit > 0 && len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func TestAskAppendsToAnswerLog(t *testing.T) {
	log := &fakeAnswerLog{}
	svc := NewService(
		&fakeClassifier{intent: models.IntentNone},
		&fakeRetriever{text: "Some context."},
		&fakeExtractor{},
		&fakeGemini{response: "The answer."},
		log,
		common.NewSilentLogger(),
	)

	if _, err := svc.Ask(context.Background(), "what was revenue?", nil); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if len(log.records) != 1 {
		t.Fatalf("answer log has %d records, want 1", len(log.records))
	}
	rec := log.records[0]
	if rec.Question != "what was revenue?" || rec.Answer != "The answer." {
		t.Errorf("logged record = %+v", rec)
	}
	if rec.Intent != "none" {
		t.Errorf("logged intent = %q, want none", rec.Intent)
	}

	got, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("History() returned %d records, want 1", len(got))
	}
}
