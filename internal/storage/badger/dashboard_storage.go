package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

type dashboardStorage struct {
	store  *Store
	logger *common.Logger
}

// NewDashboardStorage creates a new DashboardStore backed by BadgerHold.
// Records are keyed by document-set fingerprint; Put replaces the whole
// record so a cached dashboard never mixes sections from two different
// document sets.
func NewDashboardStorage(store *Store, logger *common.Logger) *dashboardStorage {
	return &dashboardStorage{store: store, logger: logger}
}

func (s *dashboardStorage) Get(_ context.Context, fingerprint string) (*models.DashboardRecord, error) {
	var record models.DashboardRecord
	err := s.store.db.Get(fingerprint, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("dashboard for fingerprint '%s' not found", fingerprint)
		}
		return nil, fmt.Errorf("failed to get dashboard '%s': %w", fingerprint, err)
	}
	return &record, nil
}

func (s *dashboardStorage) Put(_ context.Context, record *models.DashboardRecord) error {
	if record.Fingerprint == "" {
		return fmt.Errorf("dashboard fingerprint is required")
	}
	if err := s.store.db.Upsert(record.Fingerprint, record); err != nil {
		return fmt.Errorf("failed to save dashboard '%s': %w", record.Fingerprint, err)
	}
	s.logger.Debug().
		Str("fingerprint", record.Fingerprint).
		Int("sections", len(record.Sections)).
		Msg("Dashboard record saved")
	return nil
}

func (s *dashboardStorage) Delete(_ context.Context, fingerprint string) error {
	err := s.store.db.Delete(fingerprint, &models.DashboardRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete dashboard '%s': %w", fingerprint, err)
	}
	return nil
}
