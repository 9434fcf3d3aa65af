package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

type documentStorage struct {
	store  *Store
	logger *common.Logger
}

// NewDocumentStorage creates a new DocumentStore backed by BadgerHold.
func NewDocumentStorage(store *Store, logger *common.Logger) *documentStorage {
	return &documentStorage{store: store, logger: logger}
}

func (s *documentStorage) Get(_ context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.store.db.Get(id, &doc)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get document '%s': %w", id, err)
	}
	return &doc, nil
}

func (s *documentStorage) Save(_ context.Context, doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if err := s.store.db.Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document '%s': %w", doc.ID, err)
	}
	s.logger.Debug().Str("id", doc.ID).Str("name", doc.Name).Msg("Document saved")
	return nil
}

func (s *documentStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, &models.Document{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("document '%s' not found", id)
		}
		return fmt.Errorf("failed to delete document '%s': %w", id, err)
	}
	return nil
}

// List returns all documents, most recently uploaded first. The order
// is the tiebreak for retrieval scoring, so it must be deterministic.
func (s *documentStorage) List(_ context.Context) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.store.db.Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}
