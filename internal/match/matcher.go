package match

import (
	"sort"
	"strconv"
	"sync"
)

// Match pairs a candidate name with its similarity to the query.
type Match struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Matcher ranks catalog candidates against query fragments. Rankings are
// memoized per (query, candidate-set-size) so repeated resolution of the same
// query within a request batch stays O(1) after the first pass; the catalog
// can hold thousands of names. Create one Matcher per request batch, or call
// Reset after the candidate set changes.
type Matcher struct {
	mu    sync.Mutex
	cache map[string][]Match
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string][]Match)}
}

// FindBestMatches ranks candidates by similarity to query, keeps those at or
// above threshold, sorts descending (stable, so ties preserve candidate input
// order), and truncates to maxResults. An empty query or candidate list
// yields an empty result, never an error.
func (m *Matcher) FindBestMatches(query string, candidates []string, threshold float64, maxResults int) []Match {
	if len(candidates) == 0 || maxResults <= 0 {
		return nil
	}

	ranked := m.rank(query, candidates)

	out := make([]Match, 0, maxResults)
	for _, match := range ranked {
		if match.Similarity < threshold {
			break // ranked descending, nothing further can qualify
		}
		out = append(out, match)
		if len(out) == maxResults {
			break
		}
	}
	return out
}

// Reset drops all memoized rankings. Call when the candidate set changes.
func (m *Matcher) Reset() {
	m.mu.Lock()
	m.cache = make(map[string][]Match)
	m.mu.Unlock()
}

func (m *Matcher) rank(query string, candidates []string) []Match {
	key := query + "\x00" + strconv.Itoa(len(candidates))

	m.mu.Lock()
	cached, ok := m.cache[key]
	m.mu.Unlock()
	if ok {
		return cached
	}

	ranked := make([]Match, len(candidates))
	for i, candidate := range candidates {
		ranked[i] = Match{Name: candidate, Similarity: Similarity(query, candidate)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	m.mu.Lock()
	m.cache[key] = ranked
	m.mu.Unlock()
	return ranked
}

// FindBestMatches is the package-level convenience form without memoization.
func FindBestMatches(query string, candidates []string, threshold float64, maxResults int) []Match {
	return NewMatcher().FindBestMatches(query, candidates, threshold, maxResults)
}
