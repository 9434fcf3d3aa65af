// Package interfaces defines service contracts for FinSight
package interfaces

import (
	"context"

	"github.com/bobmcallan/finsight/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	DocumentStore() DocumentStore
	DashboardStore() DashboardStore
	AnswerLogStore() AnswerLogStore
	KeyValueStore() KeyValueStore

	// Lifecycle
	Close() error
}

// DocumentStore persists ingested documents.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Document, error)
}

// DashboardStore is the content-addressed dashboard cache, keyed by
// document-set fingerprint. Put replaces the whole record atomically —
// there is no partial-section update.
type DashboardStore interface {
	Get(ctx context.Context, fingerprint string) (*models.DashboardRecord, error)
	Put(ctx context.Context, record *models.DashboardRecord) error
	Delete(ctx context.Context, fingerprint string) error
}

// AnswerLogStore keeps a history of answered questions.
type AnswerLogStore interface {
	Append(ctx context.Context, record *models.AnswerRecord) error
	Recent(ctx context.Context, limit int) ([]*models.AnswerRecord, error)
}

// KeyValueStore manages system-level key-value settings (API keys set at
// runtime, schema version).
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
