package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/models"
)

func newTestConfig(t *testing.T) *common.Config {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Storage.Data.Path = t.TempDir()
	return config
}

func TestManager_StoresShareDatabase(t *testing.T) {
	manager, err := NewManager(common.NewSilentLogger(), newTestConfig(t))
	require.NoError(t, err)
	defer manager.Close()

	ctx := context.Background()

	doc := &models.Document{
		ID:         "doc-1",
		Name:       "annual-report.pdf",
		SHA256:     "abc123",
		UploadedAt: time.Now(),
	}
	require.NoError(t, manager.DocumentStore().Save(ctx, doc))

	record := &models.DashboardRecord{
		Fingerprint: "fp-1",
		GeneratedAt: time.Now(),
	}
	require.NoError(t, manager.DashboardStore().Put(ctx, record))

	require.NoError(t, manager.KeyValueStore().Set(ctx, "finsight_schema_version", "1"))

	got, err := manager.DocumentStore().Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "annual-report.pdf", got.Name)

	cached, err := manager.DashboardStore().Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "fp-1", cached.Fingerprint)

	version, err := manager.KeyValueStore().Get(ctx, "finsight_schema_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
}

func TestManager_PersistsAcrossReopen(t *testing.T) {
	config := newTestConfig(t)
	ctx := context.Background()

	manager, err := NewManager(common.NewSilentLogger(), config)
	require.NoError(t, err)
	require.NoError(t, manager.KeyValueStore().Set(ctx, "gemini_api_key", "secret"))
	require.NoError(t, manager.Close())

	reopened, err := NewManager(common.NewSilentLogger(), config)
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.KeyValueStore().Get(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret", val)
}
