package convo

import (
	"context"
	"sync"
	"time"
)

// Store is per-session conversation storage. Implementations must be safe
// for concurrent use; concurrent requests for the same session are
// last-write-wins, which is acceptable for best-effort conversational state.
type Store interface {
	Get(sessionID string) (Context, bool)
	Save(sessionID string, c Context)
}

type entry struct {
	context  Context
	lastSeen time.Time
}

// MemoryStore keeps session contexts in memory and drops sessions that have
// been idle longer than the configured TTL.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	idleTTL time.Duration
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose sessions expire after idleTTL without
// activity. A non-positive idleTTL disables expiry.
func NewMemoryStore(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the stored context for the session. An expired session reads
// as absent.
func (s *MemoryStore) Get(sessionID string) (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return Context{}, false
	}
	if s.expired(e) {
		delete(s.entries, sessionID)
		return Context{}, false
	}
	return e.context, true
}

// Save stores the context and refreshes the session's idle timer.
func (s *MemoryStore) Save(sessionID string, c Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = entry{context: c, lastSeen: s.now()}
}

// Len reports the number of live sessions, sweeping expired ones first.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	return len(s.entries)
}

// StartSweeper starts a goroutine that evicts idle sessions on the given
// interval until ctx is cancelled. Eviction also happens lazily on Get, so
// the sweeper only bounds memory held by abandoned sessions.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				s.sweepLocked()
				s.mu.Unlock()
			}
		}
	}()
}

func (s *MemoryStore) sweepLocked() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) expired(e entry) bool {
	return s.idleTTL > 0 && s.now().Sub(e.lastSeen) > s.idleTTL
}
