package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/s3client"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// fakeStore keeps uploaded objects in memory.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads int
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return "", errors.New("upload refused")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	f.uploads++
	return "etag-1", nil
}

func (f *fakeStore) Download(_ context.Context, key string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, "", s3client.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "etag-1", nil
}

func (f *fakeStore) HeadObject(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return "", s3client.ErrNotFound
	}
	return "etag-1", nil
}

func newTestManager(t *testing.T, store ObjectStore, db Snapshotter) (*Manager, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewTest()
	mgr := New(store, db, m, logger.New("error"), Config{
		ObjectKey: "snapshots/test.db.gz",
		Interval:  time.Hour,
		TempDir:   t.TempDir(),
	})
	return mgr, m
}

func seedDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows := []storage.GradeRow{
		{Term: "SP25 REG", Subject: "CSCI", Nbr: "212", CourseName: "Data Structures", Section: "01", Prof: "SMITH, J", Total: 30, A: 12, B: 10, C: 8, AvgGPA: 3.1},
		{Term: "FA24 REG", Subject: "CSCI", Nbr: "111", CourseName: "Intro Programming", Section: "02", Prof: "JOHNSON, A", Total: 25, A: 9, B: 9, C: 7, AvgGPA: 2.9},
	}
	require.NoError(t, db.SaveGradeRowsBatch(context.Background(), rows))
	return db
}

func TestUploadProducesGzippedDatabase(t *testing.T) {
	store := newFakeStore()
	mgr, _ := newTestManager(t, store, seedDB(t))

	etag, err := mgr.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)

	data := store.objects["snapshots/test.db.gz"]
	require.NotEmpty(t, data)
	// gzip magic bytes
	assert.Equal(t, byte(0x1f), data[0])
	assert.Equal(t, byte(0x8b), data[1])
}

func TestUploadAndRestoreRoundTrip(t *testing.T) {
	store := newFakeStore()
	mgr, _ := newTestManager(t, store, seedDB(t))

	_, err := mgr.Upload(context.Background())
	require.NoError(t, err)

	restoredPath := filepath.Join(t.TempDir(), "restored.db")
	require.NoError(t, Restore(context.Background(), store, "snapshots/test.db.gz", restoredPath))

	restored, err := storage.New(restoredPath)
	require.NoError(t, err)
	defer restored.Close()

	count, err := restored.CountGradeRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	err := Restore(context.Background(), newFakeStore(), "snapshots/test.db.gz", filepath.Join(t.TempDir(), "restored.db"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	store := newFakeStore()
	mgr, _ := newTestManager(t, store, seedDB(t))

	ok, err := mgr.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = mgr.Upload(context.Background())
	require.NoError(t, err)

	ok, err = mgr.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadOnceCountsFailures(t *testing.T) {
	store := newFakeStore()
	store.failPut = true
	mgr, m := newTestManager(t, store, seedDB(t))

	mgr.uploadOnce(context.Background())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SnapshotTotal.WithLabelValues("error")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.SnapshotTotal.WithLabelValues("success")))
}

func TestUploadOnceCountsSuccess(t *testing.T) {
	store := newFakeStore()
	mgr, m := newTestManager(t, store, seedDB(t))

	mgr.uploadOnce(context.Background())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SnapshotTotal.WithLabelValues("success")))
	assert.Equal(t, 1, store.uploads)
}
