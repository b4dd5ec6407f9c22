package storage

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found in the database
	ErrNotFound = errors.New("resource not found")
)

// GradeRow represents one section's grade distribution for one term.
// Professor names are stored in catalog form: "LASTNAME, FIRSTINITIAL".
type GradeRow struct {
	Term       string  `json:"term"`
	Subject    string  `json:"subject"`
	Nbr        string  `json:"nbr"`
	CourseName string  `json:"course_name"`
	Section    string  `json:"section"`
	Prof       string  `json:"prof"`
	Total      int     `json:"total"`
	APlus      int     `json:"a_plus"`
	A          int     `json:"a"`
	AMinus     int     `json:"a_minus"`
	BPlus      int     `json:"b_plus"`
	B          int     `json:"b"`
	BMinus     int     `json:"b_minus"`
	CPlus      int     `json:"c_plus"`
	C          int     `json:"c"`
	CMinus     int     `json:"c_minus"`
	D          int     `json:"d"`
	F          int     `json:"f"`
	W          int     `json:"w"`
	IncNA      int     `json:"inc_na"`
	AvgGPA     float64 `json:"avg_gpa"`
}

// CourseSummary is a distinct course as known to the grade table,
// used to build the course search index.
type CourseSummary struct {
	Subject string `json:"subject"`
	Nbr     string `json:"nbr"`
	Name    string `json:"name"`
}
