// Package main provides the GradeLens chat server entry point.
package main

import (
	"context"
	"time"

	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/search"
)

// refreshSearchIndex rebuilds the course search index on an interval so
// newly ingested courses become searchable without a restart.
func refreshSearchIndex(ctx context.Context, idx *search.Index, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := idx.Rebuild(ctx); err != nil {
				log.WithError(err).Warn("Course search index rebuild failed")
			}
		}
	}
}
