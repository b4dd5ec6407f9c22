package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gradelens/gradelens-go/internal/storage"
)

// htmlHeaderAliases maps the header captions that appear in published HTML
// report tables to the canonical column names used by the CSV path.
var htmlHeaderAliases = map[string]string{
	"term":        "term",
	"subject":     "subject",
	"nbr":         "nbr",
	"number":      "nbr",
	"course name": "course_name",
	"course":      "course_name",
	"section":     "section",
	"prof":        "prof",
	"professor":   "prof",
	"instructor":  "prof",
	"total":       "total",
	"a+":          "a_plus",
	"a":           "a",
	"a-":          "a_minus",
	"b+":          "b_plus",
	"b":           "b",
	"b-":          "b_minus",
	"c+":          "c_plus",
	"c":           "c",
	"c-":          "c_minus",
	"d":           "d",
	"f":           "f",
	"w":           "w",
	"inc/na":      "inc_na",
	"inc":         "inc_na",
	"avg gpa":     "avg_gpa",
	"gpa":         "avg_gpa",
}

// ParseHTML extracts grade rows from the first report table in an HTML
// document. The table's header row names the columns; unrecognized columns
// are ignored, rows without professor or term are skipped.
func ParseHTML(r io.Reader) ([]storage.GradeRow, error) {
	plain, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(plain)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no report table found")
	}

	cols := make(map[string]int)
	table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		caption := strings.ToLower(strings.TrimSpace(cell.Text()))
		if name, ok := htmlHeaderAliases[caption]; ok {
			cols[name] = i
		}
	})
	for _, required := range []string{"term", "prof"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("report table missing %q column", required)
		}
	}

	var rows []storage.GradeRow
	table.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
		if rowIdx == 0 {
			return // header
		}
		record := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		if len(record) == 0 {
			return
		}

		row := rowFromRecord(record, cols)
		if row.Prof == "" || row.Term == "" {
			return
		}
		rows = append(rows, row)
	})

	return rows, nil
}
