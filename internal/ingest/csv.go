package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gradelens/gradelens-go/internal/storage"
	"github.com/gradelens/gradelens-go/internal/stringutil"
)

// csvColumns is the exact header set a grade export must carry. Column
// order is free; names are matched case-insensitively.
var csvColumns = []string{
	"term", "subject", "nbr", "course_name", "section", "prof", "total",
	"a_plus", "a", "a_minus", "b_plus", "b", "b_minus",
	"c_plus", "c", "c_minus", "d", "f", "w", "inc_na", "avg_gpa",
}

// ParseCSV reads a grade export, gzipped or plain, and returns its rows.
// Rows with a missing professor or term are skipped rather than failing the
// whole file; a malformed header fails immediately.
func ParseCSV(r io.Reader) ([]storage.GradeRow, error) {
	plain, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(plain)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []storage.GradeRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv record: %w", err)
		}

		row := rowFromRecord(record, cols)
		if row.Prof == "" || row.Term == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mapColumns maps column name to index, requiring every known column.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range csvColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", want)
		}
	}
	return cols, nil
}

func rowFromRecord(record []string, cols map[string]int) storage.GradeRow {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	count := func(name string) int {
		n, _ := strconv.Atoi(field(name))
		return n
	}

	gpa, _ := strconv.ParseFloat(field("avg_gpa"), 64)

	return storage.GradeRow{
		Term:       field("term"),
		Subject:    strings.ToUpper(field("subject")),
		Nbr:        field("nbr"),
		CourseName: field("course_name"),
		Section:    field("section"),
		Prof:       stringutil.CanonicalProfessor(field("prof")),
		Total:      count("total"),
		APlus:      count("a_plus"),
		A:          count("a"),
		AMinus:     count("a_minus"),
		BPlus:      count("b_plus"),
		B:          count("b"),
		BMinus:     count("b_minus"),
		CPlus:      count("c_plus"),
		C:          count("c"),
		CMinus:     count("c_minus"),
		D:          count("d"),
		F:          count("f"),
		W:          count("w"),
		IncNA:      count("inc_na"),
		AvgGPA:     gpa,
	}
}
