// Package match provides approximate string matching for resolving
// user-typed name fragments against the professor catalog.
package match

import "strings"

// Similarity computes a normalized edit-distance similarity in [0,1].
// Defined as (maxLen - editDistance) / maxLen over the lowercased inputs,
// where editDistance is classic Levenshtein (insert/delete/substitute).
// Two empty strings are identical (1.0). Symmetric, but not a metric once
// normalized; suitable for ranking, not transitive clustering.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	return float64(maxLen-editDistance(ra, rb)) / float64(maxLen)
}

// editDistance is the classic two-row Levenshtein DP.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
