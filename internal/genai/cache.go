package genai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// narrativeCache memoizes generated narratives per prompt for a policy
// window, so repeated identical questions do not burn provider quota.
// Entries are keyed by prompt hash; prompts embed full row dumps and can be
// large.
type narrativeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	text    string
	savedAt time.Time
}

func newNarrativeCache(ttl time.Duration) *narrativeCache {
	return &narrativeCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

func (c *narrativeCache) get(prompt string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(prompt)
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.savedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.text, true
}

func (c *narrativeCache) put(prompt, text string) {
	if c == nil || c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistic sweep keeps the map from growing without bound between
	// requests for distinct data sets.
	for key, e := range c.entries {
		if c.now().Sub(e.savedAt) > c.ttl {
			delete(c.entries, key)
		}
	}

	c.entries[cacheKey(prompt)] = cacheEntry{text: text, savedAt: c.now()}
}
