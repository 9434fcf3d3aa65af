// Package app wires configuration, storage, clients, and services into
// the shared core used by cmd/finsight-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/finsight/internal/clients/gemini"
	"github.com/bobmcallan/finsight/internal/clients/websearch"
	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/services/answer"
	"github.com/bobmcallan/finsight/internal/services/dashboard"
	"github.com/bobmcallan/finsight/internal/services/document"
	"github.com/bobmcallan/finsight/internal/services/extract"
	"github.com/bobmcallan/finsight/internal/services/intent"
	"github.com/bobmcallan/finsight/internal/services/retrieval"
	"github.com/bobmcallan/finsight/internal/storage"
)

// schemaVersion identifies the stored data layout. Cached dashboards are
// purged when it changes; documents survive.
const schemaVersion = "1"

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	GeminiClient     interfaces.GeminiClient
	SearchClient     interfaces.SearchClient
	DocumentService  interfaces.DocumentService
	Retriever        interfaces.Retriever
	AnswerService    interfaces.AnswerService
	DashboardService interfaces.DashboardService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be
// empty, in which case FINSIGHT_CONFIG and the binary directory are
// consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FINSIGHT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finsight.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finsight.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Data.Path != "" && !filepath.IsAbs(config.Storage.Data.Path) {
		config.Storage.Data.Path = filepath.Join(binDir, config.Storage.Data.Path)
	}
	if config.Storage.Uploads.Path != "" && !filepath.IsAbs(config.Storage.Uploads.Path) {
		config.Storage.Uploads.Path = filepath.Join(binDir, config.Storage.Uploads.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	checkSchemaVersion(ctx, storageManager, logger)

	geminiKey, err := common.ResolveAPIKey(ctx, storageManager.KeyValueStore(), "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - extraction and answers will be unavailable")
	}

	var geminiClient interfaces.GeminiClient
	if geminiKey != "" {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = client
		}
	}

	var searchClient interfaces.SearchClient
	if config.Clients.Search.Enabled {
		opts := []websearch.ClientOption{
			websearch.WithLogger(logger),
			websearch.WithTimeout(config.Clients.Search.GetTimeout()),
		}
		if config.Clients.Search.BaseURL != "" {
			opts = append(opts, websearch.WithBaseURL(config.Clients.Search.BaseURL))
		}
		searchClient = websearch.NewClient(opts...)
	}

	documentService := document.NewService(storageManager.DocumentStore(), config.Storage.Uploads.Path, logger)
	retriever := retrieval.NewService(storageManager.DocumentStore(), config.Pipeline.MaxContextChars, logger)
	classifier := intent.NewClassifier(geminiClient, logger)
	extractor := extract.NewService(geminiClient, retriever, logger, config.Pipeline.SparseContextChars)
	answerService := answer.NewService(classifier, retriever, extractor, geminiClient, storageManager.AnswerLogStore(), logger)
	dashboardService := dashboard.NewService(
		documentService, retriever, geminiClient, searchClient,
		storageManager.DashboardStore(), config.Pipeline, logger,
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		GeminiClient:     geminiClient,
		SearchClient:     searchClient,
		DocumentService:  documentService,
		Retriever:        retriever,
		AnswerService:    answerService,
		DashboardService: dashboardService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// checkSchemaVersion compares the stored schema version against the
// current one and records the current version. Cached dashboards become
// unreadable across schema changes, so a mismatch logs a notice; records
// regenerate lazily on the next fingerprint lookup.
func checkSchemaVersion(ctx context.Context, storageManager interfaces.StorageManager, logger *common.Logger) {
	kv := storageManager.KeyValueStore()

	stored, err := kv.Get(ctx, "finsight_schema_version")
	if err == nil && stored != schemaVersion {
		logger.Info().
			Str("stored", stored).
			Str("current", schemaVersion).
			Msg("Schema version changed, cached dashboards will regenerate")
	}

	if err := kv.Set(ctx, "finsight_schema_version", schemaVersion); err != nil {
		logger.Warn().Err(err).Msg("Failed to record schema version")
	}
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
