// Package main provides the grade-report loader CLI. It ingests CSV and
// HTML grade reports (local files or URLs) into the SQLite grade database
// and optionally pushes a fresh backup when object storage is configured.
//
// Usage:
//
//	loader [flags] <source> [<source>...]
//
// Each source is a file path or http(s) URL; .gz sources are decompressed
// transparently.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gradelens/gradelens-go/internal/config"
	"github.com/gradelens/gradelens-go/internal/ingest"
	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/s3client"
	"github.com/gradelens/gradelens-go/internal/snapshot"
	"github.com/gradelens/gradelens-go/internal/storage"
)

func main() {
	var (
		dataDir  = flag.String("data-dir", "", "directory holding the grade database (defaults to DATA_DIR)")
		workers  = flag.Int("workers", 0, "concurrent source loads (defaults to INGEST_WORKERS)")
		retries  = flag.Int("retries", 0, "HTTP fetch retries (defaults to INGEST_MAX_RETRIES)")
		timeout  = flag.Duration("timeout", 0, "HTTP fetch timeout (defaults to INGEST_TIMEOUT)")
		backup   = flag.Bool("backup", true, "upload a database snapshot after a successful load when object storage is configured")
		logLevel = flag.String("log-level", "", "log level (defaults to LOG_LEVEL)")
	)
	flag.Parse()

	sources := flag.Args()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "usage: loader [flags] <source> [<source>...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *workers > 0 {
		cfg.IngestWorkers = *workers
	}
	if *retries > 0 {
		cfg.IngestMaxRetries = *retries
	}
	if *timeout > 0 {
		cfg.IngestTimeout = *timeout
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := logger.New(cfg.LogLevel)

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	m := metrics.New(prometheus.NewRegistry())
	client := ingest.NewClient(cfg.IngestTimeout, cfg.IngestMaxRetries)
	loader := ingest.NewLoader(db, client, m, log, cfg.IngestWorkers)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	total, err := loader.LoadAll(ctx, sources)
	if err != nil {
		log.WithError(err).Fatal("Ingest failed")
	}
	log.WithFields(map[string]any{
		"rows":     total,
		"sources":  len(sources),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Ingest completed")

	if *backup && cfg.SnapshotEnabled() {
		uploadBackup(ctx, cfg, db, m, log)
	}
}

func uploadBackup(ctx context.Context, cfg *config.Config, db *storage.DB, m *metrics.Metrics, log *logger.Logger) {
	objStore, err := s3client.New(ctx, s3client.Config{
		Endpoint:    cfg.SnapshotEndpoint,
		AccessKeyID: cfg.SnapshotAccessKey,
		SecretKey:   cfg.SnapshotSecretKey,
		BucketName:  cfg.SnapshotBucket,
	})
	if err != nil {
		log.WithError(err).Warn("Snapshot storage unavailable, skipping backup")
		return
	}

	mgr := snapshot.New(objStore, db, m, log, snapshot.Config{
		Interval: cfg.SnapshotInterval,
		TempDir:  cfg.DataDir,
	})
	etag, err := mgr.Upload(ctx)
	if err != nil {
		log.WithError(err).Warn("Snapshot upload failed")
		return
	}
	log.WithField("etag", etag).Info("Snapshot uploaded")
}
