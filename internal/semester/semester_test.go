package semester

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradelens/gradelens-go/internal/extract"
	"github.com/gradelens/gradelens-go/internal/storage"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Spring 25":                "SP25",
		"fa24":                     "FA24",
		"SUMMER 2023":              "SU2023",
		"grades for smith fall 24": "FA24",
		"sp 25 distribution":       "SP25",
		"whenever":                 "",
		"":                         "",
		"the spring semester":      "",
		"fall guy":                 "",
	}
	for text, want := range cases {
		assert.Equal(t, want, Normalize(text), "Normalize(%q)", text)
	}
}

func TestNormalizeTakesFirstExpression(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SP25", Normalize("spring 25 or fall 24"))
}

func testRows() []storage.GradeRow {
	return []storage.GradeRow{
		{Term: "SP25", Subject: "CSCI", Nbr: "111", Prof: "SMITH, J"},
		{Term: "FA24", Subject: "CSCI", Nbr: "111", Prof: "SMITH, J"},
		{Term: "FA24", Subject: "CSCI", Nbr: "212", Prof: "SMITH, J"},
		{Term: "FA24", Subject: "MATH", Nbr: "212", Prof: "SMITH, J"},
	}
}

func TestApplyFiltersSemester(t *testing.T) {
	t.Parallel()

	out := ApplyFilters(testRows(), "fa24", nil)
	assert.Len(t, out, 3)
	for _, row := range out {
		assert.Equal(t, "FA24", row.Term)
	}
}

func TestApplyFiltersSemesterSubstring(t *testing.T) {
	t.Parallel()

	rows := []storage.GradeRow{
		{Term: "2025 SP25 REG", Subject: "CSCI", Nbr: "111"},
		{Term: "2024 FA24 REG", Subject: "CSCI", Nbr: "111"},
	}
	out := ApplyFilters(rows, "SP25", nil)
	assert.Len(t, out, 1)
	assert.Equal(t, "2025 SP25 REG", out[0].Term)
}

func TestApplyFiltersCourseWithSubject(t *testing.T) {
	t.Parallel()

	out := ApplyFilters(testRows(), "", &extract.CourseRef{Subject: "CSCI", Number: "212"})
	assert.Len(t, out, 1)
	assert.Equal(t, "CSCI", out[0].Subject)
	assert.Equal(t, "212", out[0].Nbr)
}

func TestApplyFiltersCourseSubjectCaseInsensitive(t *testing.T) {
	t.Parallel()

	out := ApplyFilters(testRows(), "", &extract.CourseRef{Subject: "csci", Number: "212"})
	assert.Len(t, out, 1)
	assert.Equal(t, "CSCI", out[0].Subject)
}

func TestApplyFiltersCourseNumberOnly(t *testing.T) {
	t.Parallel()

	out := ApplyFilters(testRows(), "", &extract.CourseRef{Number: "212"})
	assert.Len(t, out, 2)
	for _, row := range out {
		assert.Equal(t, "212", row.Nbr)
	}
}

func TestApplyFiltersCombined(t *testing.T) {
	t.Parallel()

	out := ApplyFilters(testRows(), "FA24", &extract.CourseRef{Subject: "csci", Number: "111"})
	assert.Len(t, out, 1)
	assert.Equal(t, "FA24", out[0].Term)
	assert.Equal(t, "CSCI", out[0].Subject)
}

func TestApplyFiltersEmptyPassesThrough(t *testing.T) {
	t.Parallel()

	rows := testRows()
	out := ApplyFilters(rows, "", nil)
	assert.Equal(t, rows, out)
}

func TestApplyFiltersOrderPreserving(t *testing.T) {
	t.Parallel()

	out := ApplyFilters(testRows(), "FA24", nil)
	assert.Equal(t, "111", out[0].Nbr)
	assert.Equal(t, "212", out[1].Nbr)
	assert.Equal(t, "212", out[2].Nbr)
}
