package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// Loader ingests grade reports into storage. Sources are local file paths
// or http(s) URLs; the format is chosen by extension (.html/.htm parse as
// HTML report tables, everything else as CSV).
type Loader struct {
	repo    storage.GradeRepository
	client  *Client
	metrics *metrics.Metrics
	log     *logger.Logger
	workers int
}

// NewLoader creates a Loader running at most workers concurrent sources.
func NewLoader(repo storage.GradeRepository, client *Client, m *metrics.Metrics, log *logger.Logger, workers int) *Loader {
	if workers <= 0 {
		workers = 4
	}
	return &Loader{
		repo:    repo,
		client:  client,
		metrics: m,
		log:     log.WithModule("ingest"),
		workers: workers,
	}
}

// LoadAll ingests every source and returns the total row count. Sources run
// concurrently; the first failure cancels the rest. Each source is saved as
// its own batch, so a failing source does not roll back completed ones.
func (l *Loader) LoadAll(ctx context.Context, sources []string) (int, error) {
	var total atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for _, source := range sources {
		source := source
		g.Go(func() error {
			n, err := l.loadOne(ctx, source)
			if err != nil {
				return fmt.Errorf("loading %s: %w", source, err)
			}
			total.Add(int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(total.Load()), err
	}
	return int(total.Load()), nil
}

func (l *Loader) loadOne(ctx context.Context, source string) (int, error) {
	start := time.Now()
	format := formatOf(source)

	reader, err := l.open(ctx, source)
	if err != nil {
		l.metrics.IngestRequestsTotal.WithLabelValues(format, "error").Inc()
		return 0, err
	}
	defer func() { _ = reader.Close() }()

	var rows []storage.GradeRow
	switch format {
	case "html":
		rows, err = ParseHTML(reader)
	default:
		rows, err = ParseCSV(reader)
	}
	if err != nil {
		l.metrics.IngestRequestsTotal.WithLabelValues(format, "error").Inc()
		return 0, err
	}

	if err := l.repo.SaveGradeRowsBatch(ctx, rows); err != nil {
		l.metrics.IngestRequestsTotal.WithLabelValues(format, "error").Inc()
		return 0, fmt.Errorf("saving batch: %w", err)
	}

	l.metrics.IngestRequestsTotal.WithLabelValues(format, "success").Inc()
	l.metrics.IngestRowsTotal.WithLabelValues(format).Add(float64(len(rows)))
	l.log.WithFields(map[string]any{
		"source":      source,
		"rows":        len(rows),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("source ingested")
	return len(rows), nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.client.Get(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

func formatOf(source string) string {
	s := strings.ToLower(source)
	s = strings.TrimSuffix(s, ".gz")
	if strings.HasSuffix(s, ".html") || strings.HasSuffix(s, ".htm") {
		return "html"
	}
	return "csv"
}
