package match

import (
	"fmt"
	"testing"
)

var catalog = []string{"SMITH, J", "SMYTH, K", "JOHNSON, A", "CHYN, E"}

func TestFindBestMatchesThresholdAndLimit(t *testing.T) {
	t.Parallel()

	m := NewMatcher()

	results := m.FindBestMatches("smith", catalog, 0.4, 10)
	for _, r := range results {
		if r.Similarity < 0.4 {
			t.Errorf("result %q below threshold: %v", r.Name, r.Similarity)
		}
	}
	if len(results) == 0 || results[0].Name != "SMITH, J" {
		t.Fatalf("best match should be SMITH, J, got %v", results)
	}

	limited := m.FindBestMatches("smith", catalog, 0.0, 2)
	if len(limited) != 2 {
		t.Errorf("maxResults not honored: got %d", len(limited))
	}
}

func TestFindBestMatchesStableTies(t *testing.T) {
	t.Parallel()

	// Equidistant candidates keep input order.
	candidates := []string{"ab", "ba"}
	results := NewMatcher().FindBestMatches("aa", candidates, 0.0, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "ab" || results[1].Name != "ba" {
		t.Errorf("tie order not stable: %v", results)
	}
}

func TestFindBestMatchesEdgeCases(t *testing.T) {
	t.Parallel()

	m := NewMatcher()

	if got := m.FindBestMatches("anything", nil, 0.5, 5); len(got) != 0 {
		t.Errorf("empty candidates: got %v, want empty", got)
	}
	if got := m.FindBestMatches("", catalog, 0.5, 5); len(got) != 0 {
		t.Errorf("empty query above zero threshold: got %v, want empty", got)
	}
	// Threshold 0 admits everything, even an empty query.
	if got := m.FindBestMatches("", catalog, 0.0, len(catalog)); len(got) != len(catalog) {
		t.Errorf("zero threshold should admit all candidates, got %d", len(got))
	}
}

func TestMatcherMemoization(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	first := m.FindBestMatches("chyn", catalog, 0.5, 1)
	second := m.FindBestMatches("chyn", catalog, 0.5, 1)
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("repeated lookups disagree: %v vs %v", first, second)
	}

	m.mu.Lock()
	cacheSize := len(m.cache)
	m.mu.Unlock()
	if cacheSize != 1 {
		t.Errorf("expected one memoized ranking, got %d", cacheSize)
	}

	m.Reset()
	m.mu.Lock()
	cacheSize = len(m.cache)
	m.mu.Unlock()
	if cacheSize != 0 {
		t.Errorf("Reset should drop memoized rankings, got %d", cacheSize)
	}
}
