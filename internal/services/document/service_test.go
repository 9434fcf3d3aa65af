package document

import (
	"context"
	"strings"
	"testing"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

type fakeDocumentStore struct {
	docs map[string]*models.Document
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[string]*models.Document)}
}

func (f *fakeDocumentStore) Get(_ context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, models.ErrNoDocuments
	}
	return doc, nil
}

func (f *fakeDocumentStore) Save(_ context.Context, doc *models.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentStore) List(_ context.Context) ([]*models.Document, error) {
	out := make([]*models.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, nil
}

func TestChunkTextBreaksOnWhitespace(t *testing.T) {
	text := strings.Repeat("revenue and costs ", 300) // ~5400 chars
	chunks := chunkText(text, 2000)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 2000 {
			t.Errorf("chunk %d has %d chars, want <= 2000", i, len(chunk))
		}
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk %d has leading or trailing whitespace", i)
		}
	}

	rejoined := strings.Join(chunks, " ")
	if !strings.Contains(rejoined, "revenue and costs") {
		t.Error("chunking should keep words intact")
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if got := chunkText("   ", 2000); got != nil {
		t.Errorf("chunkText(blank) = %v, want nil", got)
	}
}

func TestChunkTextShort(t *testing.T) {
	chunks := chunkText("short document", 2000)
	if len(chunks) != 1 || chunks[0] != "short document" {
		t.Errorf("chunkText(short) = %v, want single chunk", chunks)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	store := newFakeDocumentStore()
	store.docs["a"] = &models.Document{ID: "a", SHA256: "aaa"}
	store.docs["b"] = &models.Document{ID: "b", SHA256: "bbb"}

	svc := NewService(store, t.TempDir(), common.NewSilentLogger())

	first, err := svc.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	second, err := svc.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if first != second {
		t.Errorf("fingerprint not deterministic: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(first))
	}
}

func TestFingerprintChangesWithSet(t *testing.T) {
	store := newFakeDocumentStore()
	store.docs["a"] = &models.Document{ID: "a", SHA256: "aaa"}

	svc := NewService(store, t.TempDir(), common.NewSilentLogger())
	before, err := svc.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	store.docs["b"] = &models.Document{ID: "b", SHA256: "bbb"}
	after, err := svc.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	if before == after {
		t.Error("fingerprint should change when a document is added")
	}
}

func TestFingerprintNoDocuments(t *testing.T) {
	svc := NewService(newFakeDocumentStore(), t.TempDir(), common.NewSilentLogger())
	if _, err := svc.Fingerprint(context.Background()); err != models.ErrNoDocuments {
		t.Errorf("Fingerprint() error = %v, want ErrNoDocuments", err)
	}
}

func TestListOmitsText(t *testing.T) {
	store := newFakeDocumentStore()
	store.docs["a"] = &models.Document{
		ID:     "a",
		Name:   "annual-report.pdf",
		Text:   "full extracted text",
		Chunks: []string{"chunk one", "chunk two"},
	}

	svc := NewService(store, t.TempDir(), common.NewSilentLogger())
	docs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("List() returned %d docs, want 1", len(docs))
	}
	if docs[0].Text != "" || docs[0].Chunks != nil {
		t.Error("List() should omit text and chunks")
	}
	if docs[0].Name != "annual-report.pdf" {
		t.Errorf("name = %q", docs[0].Name)
	}

	// The stored record must be untouched.
	if store.docs["a"].Text == "" {
		t.Error("List() must not mutate stored documents")
	}
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	svc := NewService(newFakeDocumentStore(), t.TempDir(), common.NewSilentLogger())
	if _, err := svc.Ingest(context.Background(), "empty.pdf", nil); err == nil {
		t.Error("empty upload should be rejected")
	}
}
