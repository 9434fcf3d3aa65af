// Package storage provides the top-level StorageManager coordinating the
// BadgerHold-backed stores.
package storage

import (
	"fmt"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold
// database.
type Manager struct {
	store      *badger.Store
	documents  interfaces.DocumentStore
	dashboards interfaces.DashboardStore
	answerLog  interfaces.AnswerLogStore
	kv         interfaces.KeyValueStore
	logger     *common.Logger
}

// NewManager creates a new StorageManager at the configured data path.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %w", err)
	}

	return &Manager{
		store:      store,
		documents:  badger.NewDocumentStorage(store, logger),
		dashboards: badger.NewDashboardStorage(store, logger),
		answerLog:  badger.NewAnswerLogStorage(store, logger),
		kv:         badger.NewKVStorage(store, logger),
		logger:     logger,
	}, nil
}

// DocumentStore returns the document store.
func (m *Manager) DocumentStore() interfaces.DocumentStore {
	return m.documents
}

// DashboardStore returns the dashboard cache.
func (m *Manager) DashboardStore() interfaces.DashboardStore {
	return m.dashboards
}

// AnswerLogStore returns the question/answer history log.
func (m *Manager) AnswerLogStore() interfaces.AnswerLogStore {
	return m.answerLog
}

// KeyValueStore returns the system KV store.
func (m *Manager) KeyValueStore() interfaces.KeyValueStore {
	return m.kv
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
