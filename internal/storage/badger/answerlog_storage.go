package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

type answerLogStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAnswerLogStorage creates a new AnswerLogStore backed by BadgerHold.
func NewAnswerLogStorage(store *Store, logger *common.Logger) *answerLogStorage {
	return &answerLogStorage{store: store, logger: logger}
}

func (s *answerLogStorage) Append(_ context.Context, record *models.AnswerRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if err := s.store.db.Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to append answer record '%s': %w", record.ID, err)
	}
	return nil
}

func (s *answerLogStorage) Recent(_ context.Context, limit int) ([]*models.AnswerRecord, error) {
	var records []*models.AnswerRecord
	if err := s.store.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list answer records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
