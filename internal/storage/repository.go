package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const gradeColumns = `term, subject, nbr, course_name, section, prof, total,
	a_plus, a, a_minus, b_plus, b, b_minus, c_plus, c, c_minus, d, f, w, inc_na, avg_gpa`

// GetAllProfessorNames returns the distinct set of canonical professor names
// in the grade table, ordered alphabetically.
func (db *DB) GetAllProfessorNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT prof FROM grades ORDER BY prof`)
	if err != nil {
		return nil, fmt.Errorf("failed to query professor names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan professor name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// QueryByProfessor returns all grade rows for a professor. The lookup tries an
// exact case-insensitive match first, then falls back to a substring match on
// the surname so unresolved extractor candidates still have a chance to hit.
func (db *DB) QueryByProfessor(ctx context.Context, name string) ([]GradeRow, error) {
	query := `SELECT ` + gradeColumns + ` FROM grades
		WHERE prof = ? COLLATE NOCASE
		ORDER BY term, subject, nbr, section`
	results, err := db.queryGradeRows(ctx, query, name)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results, nil
	}

	surname := name
	if i := strings.IndexByte(surname, ','); i >= 0 {
		surname = strings.TrimSpace(surname[:i])
	}
	if surname == "" {
		return nil, nil
	}
	fallback := `SELECT ` + gradeColumns + ` FROM grades
		WHERE prof LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY term, subject, nbr, section`
	return db.queryGradeRows(ctx, fallback, surname)
}

// QueryByProfessorAndCourse returns a professor's grade rows narrowed to one
// course. An empty subject matches on the course number alone.
func (db *DB) QueryByProfessorAndCourse(ctx context.Context, name, subject, number string) ([]GradeRow, error) {
	rows, err := db.QueryByProfessor(ctx, name)
	if err != nil {
		return nil, err
	}

	subject = strings.ToUpper(strings.TrimSpace(subject))
	filtered := make([]GradeRow, 0, len(rows))
	for _, row := range rows {
		if row.Nbr != number {
			continue
		}
		if subject != "" && !strings.EqualFold(row.Subject, subject) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered, nil
}

// ListCourses returns every distinct course in the grade table.
func (db *DB) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT subject, nbr, COALESCE(course_name, '')
		 FROM grades ORDER BY subject, nbr`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var courses []CourseSummary
	for rows.Next() {
		var c CourseSummary
		if err := rows.Scan(&c.Subject, &c.Nbr, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// SaveGradeRowsBatch persists grade rows in a single transaction.
// Rows sharing (term, subject, nbr, section, prof) replace earlier imports.
func (db *DB) SaveGradeRowsBatch(ctx context.Context, gradeRows []GradeRow) error {
	if len(gradeRows) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO grades (`+gradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range gradeRows {
		_, err := stmt.ExecContext(ctx,
			r.Term, r.Subject, r.Nbr, r.CourseName, r.Section, r.Prof, r.Total,
			r.APlus, r.A, r.AMinus, r.BPlus, r.B, r.BMinus,
			r.CPlus, r.C, r.CMinus, r.D, r.F, r.W, r.IncNA, r.AvgGPA)
		if err != nil {
			return fmt.Errorf("failed to insert grade row (%s %s %s): %w",
				r.Term, r.Subject, r.Nbr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grade rows: %w", err)
	}
	return nil
}

// CountGradeRows returns the total number of grade rows.
func (db *DB) CountGradeRows(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM grades`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count grade rows: %w", err)
	}
	return count, nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Ready checks the database can actually serve queries.
func (db *DB) Ready(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	var one int
	if err := db.conn.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}

func (db *DB) queryGradeRows(ctx context.Context, query string, args ...any) ([]GradeRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grade rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []GradeRow
	for rows.Next() {
		var r GradeRow
		var courseName, section sql.NullString
		err := rows.Scan(
			&r.Term, &r.Subject, &r.Nbr, &courseName, &section, &r.Prof, &r.Total,
			&r.APlus, &r.A, &r.AMinus, &r.BPlus, &r.B, &r.BMinus,
			&r.CPlus, &r.C, &r.CMinus, &r.D, &r.F, &r.W, &r.IncNA, &r.AvgGPA)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grade row: %w", err)
		}
		r.CourseName = courseName.String
		r.Section = section.String
		results = append(results, r)
	}
	return results, rows.Err()
}
