package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

type fakeDocumentStore struct {
	docs []*models.Document
	err  error
}

func (f *fakeDocumentStore) Get(_ context.Context, id string) (*models.Document, error) {
	for _, d := range f.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, models.ErrNoDocuments
}

func (f *fakeDocumentStore) Save(_ context.Context, _ *models.Document) error { return nil }

func (f *fakeDocumentStore) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeDocumentStore) List(_ context.Context) ([]*models.Document, error) {
	return f.docs, f.err
}

func newTestRetriever(docs []*models.Document, maxChars int) *Service {
	return NewService(&fakeDocumentStore{docs: docs}, maxChars, common.NewSilentLogger())
}

func TestRetrieveRanksRelevantChunks(t *testing.T) {
	docs := []*models.Document{{
		ID: "doc1",
		Chunks: []string{
			"The company headquarters relocated to Sydney during the year.",
			"Revenue for 2024 was $180 million, up from revenue of $100 million.",
			"Board membership remained unchanged.",
		},
	}}

	svc := newTestRetriever(docs, 4000)
	got, err := svc.Retrieve(context.Background(), "what was the revenue in 2024?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !strings.HasPrefix(got, "Revenue for 2024") {
		t.Errorf("highest-scoring chunk should lead the context, got %q", got)
	}
}

func TestRetrieveNoDocuments(t *testing.T) {
	svc := newTestRetriever(nil, 4000)
	if _, err := svc.Retrieve(context.Background(), "revenue"); err != models.ErrNoDocuments {
		t.Errorf("Retrieve() error = %v, want ErrNoDocuments", err)
	}
}

func TestRetrieveRespectsMaxChars(t *testing.T) {
	big := strings.Repeat("revenue figures ", 50)
	docs := []*models.Document{{
		ID:     "doc1",
		Chunks: []string{big, big, big},
	}}

	svc := newTestRetriever(docs, len(big)+10)
	got, err := svc.Retrieve(context.Background(), "revenue")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) > len(big)+10 {
		t.Errorf("context length %d exceeds cap %d", len(got), len(big)+10)
	}
}

func TestRetrieveFallsBackToLeadingChunks(t *testing.T) {
	docs := []*models.Document{{
		ID:     "doc1",
		Chunks: []string{"First chunk of text.", "Second chunk of text."},
	}}

	svc := newTestRetriever(docs, 4000)
	got, err := svc.Retrieve(context.Background(), "zymurgy")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if got == "" {
		t.Error("context should not be empty when documents exist")
	}
	if !strings.HasPrefix(got, "First chunk") {
		t.Errorf("fallback should keep document order, got %q", got)
	}
}

func TestRetrieveFreshExpandsSynonyms(t *testing.T) {
	docs := []*models.Document{{
		ID: "doc1",
		Chunks: []string{
			"General narrative about operations.",
			"Turnover reached $50 million this period.",
		},
	}}

	svc := newTestRetriever(docs, 4000)
	got, err := svc.RetrieveFresh(context.Background(), "revenue")
	if err != nil {
		t.Fatalf("RetrieveFresh() error = %v", err)
	}
	if !strings.HasPrefix(got, "Turnover reached") {
		t.Errorf("synonym expansion should rank the turnover chunk first, got %q", got)
	}
}

func TestQueryTerms(t *testing.T) {
	terms := queryTerms("What was the Revenue, in 2024?")
	want := []string{"revenue", "2024"}
	if len(terms) != len(want) {
		t.Fatalf("queryTerms() = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestExpandTermsNoDuplicates(t *testing.T) {
	expanded := expandTerms([]string{"revenue", "sales"})
	seen := make(map[string]int)
	for _, term := range expanded {
		seen[term]++
	}
	for term, n := range seen {
		if n > 1 {
			t.Errorf("term %q appears %d times", term, n)
		}
	}
	if seen["turnover"] != 1 {
		t.Error("expansion should include group member turnover")
	}
}
