// Package semester normalizes semester expressions ("spring 24", "fa24")
// into the term codes used by the grade store, and applies semester and
// course filters to query results.
package semester

import (
	"regexp"
	"strings"

	"github.com/gradelens/gradelens-go/internal/extract"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// semesterPattern captures a season word immediately followed by a year
// fragment, with or without a separating space.
var semesterPattern = regexp.MustCompile(`(?i)\b(spring|fall|summer|sp|fa|su)\s*(\d{1,4})\b`)

var seasonCodes = map[string]string{
	"spring": "SP", "sp": "SP",
	"fall": "FA", "fa": "FA",
	"summer": "SU", "su": "SU",
}

// Normalize extracts the first semester expression from text and returns its
// term code ("Spring 25" -> "SP25"). The year digits are carried verbatim:
// the result feeds a substring filter against stored term fields, so no
// century inference is applied. Returns "" when no semester is recognized.
func Normalize(text string) string {
	m := semesterPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return seasonCodes[strings.ToLower(m[1])] + m[2]
}

// ApplyFilters trims rows to those matching the given semester and course.
// The semester filter is a case-insensitive substring test against the term
// field, tolerating storage terms that carry extra characters. The course
// filter requires a case-insensitive subject match and the exact number
// when a subject is given, and the number alone otherwise. Order-preserving; empty filters
// pass everything through.
func ApplyFilters(rows []storage.GradeRow, sem string, course *extract.CourseRef) []storage.GradeRow {
	if sem == "" && course == nil {
		return rows
	}

	semLower := strings.ToLower(sem)
	filtered := make([]storage.GradeRow, 0, len(rows))
	for _, row := range rows {
		if semLower != "" && !strings.Contains(strings.ToLower(row.Term), semLower) {
			continue
		}
		if course != nil && !matchesCourse(row, course) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func matchesCourse(row storage.GradeRow, course *extract.CourseRef) bool {
	if row.Nbr != course.Number {
		return false
	}
	if course.Subject == "" {
		return true
	}
	return strings.EqualFold(row.Subject, course.Subject)
}
