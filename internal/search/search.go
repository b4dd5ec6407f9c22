// Package search provides keyword search over the course list using BM25,
// backing the course search endpoint. The index is small (one document per
// distinct course) and rebuilt from storage on demand.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/iwilltry42/bm25-go/bm25"

	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// Result is one course hit, sorted by descending BM25 score.
type Result struct {
	Subject string  `json:"subject"`
	Nbr     string  `json:"nbr"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
}

// Index is a BM25 index over course names. Safe for concurrent use; Rebuild
// swaps the whole index atomically.
type Index struct {
	repo    storage.GradeRepository
	metrics *metrics.Metrics
	log     *logger.Logger

	mu      sync.RWMutex
	okapi   *bm25.BM25Okapi
	courses []storage.CourseSummary
}

// New creates an empty index; call Rebuild before searching.
func New(repo storage.GradeRepository, m *metrics.Metrics, log *logger.Logger) *Index {
	return &Index{
		repo:    repo,
		metrics: m,
		log:     log.WithModule("search"),
	}
}

// Rebuild reloads the course list from storage and reindexes it. BM25 needs
// the full corpus for IDF, so updates are whole-index rebuilds.
func (idx *Index) Rebuild(ctx context.Context) error {
	courses, err := idx.repo.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("listing courses: %w", err)
	}

	var okapi *bm25.BM25Okapi
	if len(courses) > 0 {
		corpus := make([]string, len(courses))
		for i, c := range courses {
			corpus[i] = c.Subject + " " + c.Nbr + " " + c.Name
		}
		// k1=1.5, b=0.75 are the standard BM25 parameters.
		okapi, err = bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
		if err != nil {
			return fmt.Errorf("building bm25 index: %w", err)
		}
	}

	idx.mu.Lock()
	idx.okapi = okapi
	idx.courses = courses
	idx.mu.Unlock()

	idx.log.WithField("courses", len(courses)).Debug("course index rebuilt")
	return nil
}

// Search returns up to topN courses matching the query, best first. An
// unbuilt or empty index returns no results, not an error.
func (idx *Index) Search(query string, topN int) ([]Result, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 || topN <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.okapi == nil {
		idx.metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		idx.metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("bm25 scoring failed: %w", err)
	}

	results := make([]Result, 0, len(scores))
	for i, score := range scores {
		if score <= 0 || i >= len(idx.courses) {
			continue
		}
		c := idx.courses[i]
		results = append(results, Result{
			Subject: c.Subject,
			Nbr:     c.Nbr,
			Name:    c.Name,
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topN {
		results = results[:topN]
	}
	if len(results) == 0 {
		idx.metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		idx.metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	}
	return results, nil
}

// Len reports the number of indexed courses.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.courses)
}

// tokenize lowercases and splits on anything that is not a letter or digit.
// Course names are plain English, so no segmenter is needed.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
