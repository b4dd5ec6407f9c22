// Package main provides the GradeLens chat server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gradelens/gradelens-go/internal/buildinfo"
	"github.com/gradelens/gradelens-go/internal/catalog"
	"github.com/gradelens/gradelens-go/internal/chat"
	"github.com/gradelens/gradelens-go/internal/config"
	"github.com/gradelens/gradelens-go/internal/convo"
	"github.com/gradelens/gradelens-go/internal/genai"
	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/respond"
	"github.com/gradelens/gradelens-go/internal/s3client"
	"github.com/gradelens/gradelens-go/internal/search"
	"github.com/gradelens/gradelens-go/internal/sentry"
	"github.com/gradelens/gradelens-go/internal/snapshot"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// snapshotObjectKey is where database backups live inside the bucket.
const snapshotObjectKey = "snapshots/grades.db.gz"

// sessionSweepInterval is how often idle conversation contexts are evicted.
const sessionSweepInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger, with Better Stack shipping when configured
	var log *logger.Logger
	if cfg.BetterstackToken != "" {
		log = logger.NewWithShipping(cfg.LogLevel, cfg.BetterstackToken, os.Stdout)
	} else {
		log = logger.New(cfg.LogLevel)
	}
	log.Info("Starting GradeLens server", "version", buildinfo.Version)

	// Initialize error tracking (no-op when unconfigured)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	}

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Object storage for database backups (optional)
	var objStore *s3client.Client
	if cfg.SnapshotEnabled() {
		objStore, err = s3client.New(context.Background(), s3client.Config{
			Endpoint:    cfg.SnapshotEndpoint,
			AccessKeyID: cfg.SnapshotAccessKey,
			SecretKey:   cfg.SnapshotSecretKey,
			BucketName:  cfg.SnapshotBucket,
		})
		if err != nil {
			log.WithError(err).Warn("Snapshot storage unavailable, backups disabled")
		}
	}

	// A fresh host restores the latest backup before the database opens
	if objStore != nil {
		if _, statErr := os.Stat(cfg.SQLitePath()); os.IsNotExist(statErr) {
			restoreDatabase(objStore, cfg, log)
		}
	}

	// Open the grade database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Professor catalog and per-session conversation store
	cat := catalog.New(db, m, log)
	sessions := convo.NewMemoryStore(cfg.SessionIdleTTL)

	// Narrative generator (optional, needs at least one API key)
	narrator, err := genai.CreateNarrator(ctx, genai.Config{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiNarrativeModel,
		GroqAPIKey:   cfg.GroqAPIKey,
		GroqModel:    cfg.GroqNarrativeModel,
		CacheTTL:     cfg.NarrativeCacheTTL,
		Retry:        genai.DefaultRetryConfig(),
		Metrics:      m,
	}, log)
	if err != nil {
		log.WithError(err).Warn("Failed to create narrator, deterministic summaries only")
	}
	narrator = genai.WithTimeout(narrator, cfg.NarrativeTimeout)

	var assemblerNarrator respond.Narrator
	if narrator != nil {
		assemblerNarrator = narrator
	}
	assembler := respond.New(assemblerNarrator, log)

	// Chat pipeline. Registers the catalog refresh hook, so it is built
	// before the first catalog load.
	pipeline := chat.New(cat, db, sessions, assembler, m, log)

	if err := cat.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial catalog load failed, retrying on refresh interval")
	} else {
		log.WithField("professors", cat.Len()).Info("Professor catalog loaded")
	}
	cat.StartRefresher(ctx, cfg.CatalogRefreshInterval)
	sessions.StartSweeper(ctx, sessionSweepInterval)

	// Course search index
	searchIdx := search.New(db, m, log)
	if err := searchIdx.Rebuild(ctx); err != nil {
		log.WithError(err).Warn("Course search index build failed")
	} else {
		log.WithField("courses", searchIdx.Len()).Info("Course search index built")
	}
	go refreshSearchIndex(ctx, searchIdx, cfg.CatalogRefreshInterval, log)

	// Periodic database backups
	if objStore != nil {
		snapMgr := snapshot.New(objStore, db, m, log, snapshot.Config{
			ObjectKey: snapshotObjectKey,
			Interval:  cfg.SnapshotInterval,
			TempDir:   cfg.DataDir,
		})
		snapMgr.Start(ctx)
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(m))
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	setupRoutes(router, cfg, pipeline, searchIdx, cat, sessions, db, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background loops
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if narrator != nil {
		if err := narrator.Close(); err != nil {
			log.WithError(err).Error("Failed to close narrator")
		}
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	sentry.Flush(2 * time.Second)
	log.Info("Server stopped")
}

// restoreDatabase pulls the latest backup into the data directory. Any
// failure just means starting from an empty database.
func restoreDatabase(objStore *s3client.Client, cfg *config.Config, log *logger.Logger) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.WithError(err).Warn("Failed to create data directory, skipping restore")
		return
	}

	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer restoreCancel()

	err := snapshot.Restore(restoreCtx, objStore, snapshotObjectKey, cfg.SQLitePath())
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		log.Info("No database snapshot found, starting fresh")
	case err != nil:
		log.WithError(err).Warn("Snapshot restore failed, starting fresh")
	default:
		log.Info("Database restored from snapshot")
	}
}
