package match

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarityIdentity(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "a", "SMITH, J", "garcía", "hello world"} {
		if got := Similarity(s, s); !almostEqual(got, 1.0) {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"smith", "smyth"},
		{"chyn", "chen"},
		{"", "x"},
		{"johnson", "jonson"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		if a, b := Similarity(p[0], p[1]), Similarity(p[1], p[0]); !almostEqual(a, b) {
			t.Errorf("Similarity(%q,%q)=%v != Similarity(%q,%q)=%v", p[0], p[1], a, p[1], p[0], b)
		}
	}
}

func TestSimilarityKnownValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"", "x", 0.0},
		{"abc", "abc", 1.0},
		{"abc", "abd", 2.0 / 3.0},   // one substitution
		{"abc", "ab", 2.0 / 3.0},    // one deletion
		{"kitten", "sitting", 4.0 / 7.0},
		{"Smith", "smith", 1.0},     // case-insensitive
		{"abc", "xyz", 0.0},
	}
	for _, tc := range cases {
		if got := Similarity(tc.a, tc.b); !almostEqual(got, tc.want) {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
