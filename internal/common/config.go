// Package common provides shared utilities for FinSight
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/finsight/internal/interfaces"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for FinSight
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage paths for the 2 storage areas.
type StorageConfig struct {
	Data    AreaConfig `toml:"data"`    // Badger database (documents, dashboards, KV)
	Uploads AreaConfig `toml:"uploads"` // Raw uploaded PDFs on disk
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
	Search SearchConfig `toml:"search"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	RateLimit int    `toml:"rate_limit"` // requests per minute
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// SearchConfig holds web search client configuration.
// An empty BaseURL disables web search — the news and competitor
// dashboard sections fall back to placeholders.
type SearchConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SearchConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// PipelineConfig holds tuning parameters for the extraction and
// dashboard pipelines. SparseContextChars is the threshold below which
// retrieved context is considered too thin to hold the needed figures.
type PipelineConfig struct {
	SparseContextChars    int     `toml:"sparse_context_chars"`
	SectionTimeout        string  `toml:"section_timeout"`
	Workers               int     `toml:"workers"`
	CompletenessThreshold float64 `toml:"completeness_threshold"`
	MaxContextChars       int     `toml:"max_context_chars"`
}

// GetSectionTimeout parses and returns the per-section timeout.
func (c *PipelineConfig) GetSectionTimeout() time.Duration {
	d, err := time.ParseDuration(c.SectionTimeout)
	if err != nil {
		return 90 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"`
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Data:    AreaConfig{Path: "data/db"},
			Uploads: AreaConfig{Path: "data/uploads"},
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:     "gemini-2.0-flash",
				RateLimit: 30,
				Timeout:   "60s",
			},
			Search: SearchConfig{
				Enabled: true,
				BaseURL: "https://html.duckduckgo.com/html/",
				Timeout: "20s",
			},
		},
		Pipeline: PipelineConfig{
			SparseContextChars:    500,
			SectionTimeout:        "90s",
			Workers:               4,
			CompletenessThreshold: 0.90,
			MaxContextChars:       50000,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			FilePath: "./logs/finsight.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validatePipeline(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINSIGHT_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINSIGHT_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINSIGHT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINSIGHT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FINSIGHT_DATA_PATH"); path != "" {
		config.Storage.Data.Path = path
	}

	if path := os.Getenv("FINSIGHT_UPLOADS_PATH"); path != "" {
		config.Storage.Uploads.Path = path
	}

	if model := os.Getenv("FINSIGHT_GEMINI_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}

	if v := os.Getenv("FINSIGHT_SECTION_TIMEOUT"); v != "" {
		config.Pipeline.SectionTimeout = v
	}

	if v := os.Getenv("FINSIGHT_SPARSE_CONTEXT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Pipeline.SparseContextChars = n
		}
	}

	if v := os.Getenv("FINSIGHT_SEARCH_ENABLED"); v != "" {
		config.Clients.Search.Enabled = v == "true" || v == "1"
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, system KV, or fallback
func ResolveAPIKey(ctx context.Context, store interfaces.KeyValueStore, name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "FINSIGHT_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Check environment variables first (highest priority)
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try system KV (medium priority)
	if store != nil {
		apiKey, err := store.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback (lowest priority)
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}

// validatePipeline clamps pipeline parameters to usable ranges.
func validatePipeline(config *Config) {
	if config.Pipeline.SparseContextChars <= 0 {
		config.Pipeline.SparseContextChars = 500
	}
	if config.Pipeline.Workers <= 0 {
		config.Pipeline.Workers = 4
	}
	if config.Pipeline.CompletenessThreshold <= 0 || config.Pipeline.CompletenessThreshold > 1 {
		config.Pipeline.CompletenessThreshold = 0.90
	}
	if config.Pipeline.MaxContextChars <= 0 {
		config.Pipeline.MaxContextChars = 50000
	}
}
