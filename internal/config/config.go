// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, storage, LLM providers, snapshot backup, and session store.
package config

import (
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/gradelens/gradelens-go/internal/errors"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Directory holding the SQLite grade database

	// LLM Configuration
	GeminiAPIKey string // Gemini API key for narrative generation
	GroqAPIKey   string // Groq API key (OpenAI-compatible fallback provider)

	// LLM Model Configuration (optional, defaults apply if empty)
	GeminiNarrativeModel string
	GroqNarrativeModel   string

	// NarrativeTimeout bounds one narrative generation call end to end.
	NarrativeTimeout time.Duration

	// NarrativeCacheTTL controls how long identical prompts may short-circuit
	// to a previously generated narrative. Zero disables the cache.
	NarrativeCacheTTL time.Duration

	// Session Configuration
	SessionIdleTTL time.Duration // Idle eviction for per-session conversation context

	// Catalog Configuration
	CatalogRefreshInterval time.Duration // Periodic professor-catalog reload from storage

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Logging/Error shipping (optional)
	BetterstackToken string // Better Stack log source token
	SentryToken      string // Better Stack Errors token (Sentry-compatible)
	SentryHost       string // Better Stack Errors ingesting host
	Environment      string // Deployment environment name

	// Ingest Configuration
	IngestTimeout    time.Duration
	IngestMaxRetries int
	IngestWorkers    int

	// Snapshot Configuration (S3-compatible object storage; disabled when
	// bucket or credentials are missing)
	SnapshotBucket    string
	SnapshotEndpoint  string
	SnapshotAccessKey string
	SnapshotSecretKey string
	SnapshotInterval  time.Duration
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DataDir: getEnv("DATA_DIR", "./data"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:           getEnv("GROQ_API_KEY", ""),
		GeminiNarrativeModel: getEnv("GEMINI_NARRATIVE_MODEL", ""),
		GroqNarrativeModel:   getEnv("GROQ_NARRATIVE_MODEL", ""),
		NarrativeTimeout:     getEnvDuration("NARRATIVE_TIMEOUT", 20*time.Second),
		NarrativeCacheTTL:    getEnvDuration("NARRATIVE_CACHE_TTL", 10*time.Minute),

		SessionIdleTTL:         getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		CatalogRefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 6*time.Hour),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		BetterstackToken: getEnv("BETTERSTACK_TOKEN", ""),
		SentryToken:      getEnv("SENTRY_TOKEN", ""),
		SentryHost:       getEnv("SENTRY_HOST", ""),
		Environment:      getEnv("ENVIRONMENT", "production"),

		IngestTimeout:    getEnvDuration("INGEST_TIMEOUT", 60*time.Second),
		IngestMaxRetries: getEnvInt("INGEST_MAX_RETRIES", 3),
		IngestWorkers:    getEnvInt("INGEST_WORKERS", 4),

		SnapshotBucket:    getEnv("SNAPSHOT_BUCKET", ""),
		SnapshotEndpoint:  getEnv("SNAPSHOT_ENDPOINT", ""),
		SnapshotAccessKey: getEnv("SNAPSHOT_ACCESS_KEY_ID", ""),
		SnapshotSecretKey: getEnv("SNAPSHOT_SECRET_ACCESS_KEY", ""),
		SnapshotInterval:  getEnvDuration("SNAPSHOT_INTERVAL", 24*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.NewValidationError("PORT", "must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.NewValidationError("SHUTDOWN_TIMEOUT", "must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return errors.NewValidationError("SESSION_IDLE_TTL", "must be positive")
	}
	if c.IngestWorkers <= 0 {
		return errors.NewValidationError("INGEST_WORKERS", "must be positive")
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		return errors.NewValidationError("SENTRY_HOST", "required when SENTRY_TOKEN is set")
	}
	return nil
}

// SQLitePath returns the full path to the grade database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "grades.db")
}

// HasNarrator reports whether at least one LLM provider is configured.
func (c *Config) HasNarrator() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// SnapshotEnabled reports whether snapshot backup is fully configured.
func (c *Config) SnapshotEnabled() bool {
	return c.SnapshotBucket != "" && c.SnapshotEndpoint != "" &&
		c.SnapshotAccessKey != "" && c.SnapshotSecretKey != ""
}
