// Package catalog caches the professor-name catalog in memory. The grade
// table changes only on ingest, so the catalog is read-heavy and refreshed
// on an interval; concurrent refreshes are deduplicated.
package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/sliceutil"
	"github.com/gradelens/gradelens-go/internal/storage"
	"github.com/gradelens/gradelens-go/internal/stringutil"
)

// Cache holds the current catalog snapshot. Safe for concurrent use.
type Cache struct {
	repo    storage.CatalogRepository
	metrics *metrics.Metrics
	log     *logger.Logger

	mu       sync.RWMutex
	names    []string
	loadedAt time.Time

	sf singleflight.Group

	// onRefresh is invoked after each successful refresh, outside the lock.
	// The chat pipeline uses it to drop matcher memoization tied to the old
	// candidate set.
	onRefresh func([]string)
}

// New creates an empty cache; call Refresh before serving.
func New(repo storage.CatalogRepository, m *metrics.Metrics, log *logger.Logger) *Cache {
	return &Cache{
		repo:    repo,
		metrics: m,
		log:     log.WithModule("catalog"),
	}
}

// OnRefresh registers a callback invoked with the new names after every
// successful refresh. Must be called before the cache is shared.
func (c *Cache) OnRefresh(fn func([]string)) {
	c.onRefresh = fn
}

// Names returns the current catalog, loading it on first use. The returned
// slice is shared and must not be mutated.
func (c *Cache) Names(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	names := c.names
	loaded := !c.loadedAt.IsZero()
	c.mu.RUnlock()

	if loaded {
		return names, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names, nil
}

// Refresh reloads the catalog from storage. Concurrent calls share one
// storage query.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.sf.Do("refresh", func() (interface{}, error) {
		names, err := c.repo.GetAllProfessorNames(ctx)
		if err != nil {
			c.metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		// Entries differing only in case or diacritics would rank as
		// distinct candidates and split fuzzy scores between them.
		names = sliceutil.Deduplicate(names, stringutil.FoldName)

		c.mu.Lock()
		c.names = names
		c.loadedAt = time.Now()
		c.mu.Unlock()

		c.metrics.CatalogRefreshTotal.WithLabelValues("success").Inc()
		c.log.WithField("professors", len(names)).Debug("catalog refreshed")
		if c.onRefresh != nil {
			c.onRefresh(names)
		}
		return nil, nil
	})
	return err
}

// Len reports the size of the current snapshot.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// StartRefresher starts a goroutine that reloads the catalog on the given
// interval until ctx is cancelled. Refresh failures keep the previous
// snapshot and are logged.
func (c *Cache) StartRefresher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.log.WithError(err).Warn("catalog refresh failed, keeping previous snapshot")
				}
			}
		}
	}()
}
