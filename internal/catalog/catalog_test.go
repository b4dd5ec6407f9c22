package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
)

type fakeCatalogRepo struct {
	mu    sync.Mutex
	names []string
	err   error
	calls atomic.Int64
}

func (f *fakeCatalogRepo) GetAllProfessorNames(context.Context) ([]string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

func testLog() *logger.Logger {
	return logger.New("error")
}

func TestNamesLoadsOnFirstUse(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J", "JOHNSON, A"}}
	c := New(repo, metrics.NewTest(), testLog())

	names, err := c.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SMITH, J", "JOHNSON, A"}, names)
	assert.Equal(t, 2, c.Len())

	// Second call serves the snapshot without touching storage.
	_, err = c.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestRefreshDeduplicatesFoldedNames(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"GARCÍA, M", "GARCIA, M", "SMITH, J", "smith, j"}}
	c := New(repo, metrics.NewTest(), testLog())

	names, err := c.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GARCÍA, M", "SMITH, J"}, names)
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J"}}
	c := New(repo, metrics.NewTest(), testLog())
	require.NoError(t, c.Refresh(context.Background()))

	repo.mu.Lock()
	repo.names = []string{"SMITH, J", "CHYN, E"}
	repo.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))

	names, err := c.Names(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J"}}
	c := New(repo, metrics.NewTest(), testLog())
	require.NoError(t, c.Refresh(context.Background()))

	repo.mu.Lock()
	repo.err = errors.New("db locked")
	repo.mu.Unlock()

	assert.Error(t, c.Refresh(context.Background()))
	names, err := c.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SMITH, J"}, names)
}

func TestOnRefreshCallback(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J"}}
	c := New(repo, metrics.NewTest(), testLog())

	var got []string
	c.OnRefresh(func(names []string) { got = names })

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"SMITH, J"}, got)
}

func TestRefreshRecordsOutcomes(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J"}}
	m := metrics.NewTest()
	c := New(repo, m, testLog())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRefreshTotal.WithLabelValues("success")))

	repo.mu.Lock()
	repo.err = errors.New("db locked")
	repo.mu.Unlock()

	assert.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRefreshTotal.WithLabelValues("error")))
}

func TestStartRefresherRunsInBackground(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J"}}
	c := New(repo, metrics.NewTest(), testLog())
	require.NoError(t, c.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Returns immediately; the reload loop runs on its own goroutine.
	c.StartRefresher(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return repo.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond, "background refresher should keep reloading")
}

func TestConcurrentNames(t *testing.T) {
	t.Parallel()

	repo := &fakeCatalogRepo{names: []string{"SMITH, J"}}
	c := New(repo, metrics.NewTest(), testLog())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Names(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
