package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	return createGradesTable(db)
}

func createGradesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS grades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		term TEXT NOT NULL,
		subject TEXT NOT NULL,
		nbr TEXT NOT NULL,
		course_name TEXT,
		section TEXT,
		prof TEXT NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		a_plus INTEGER NOT NULL DEFAULT 0,
		a INTEGER NOT NULL DEFAULT 0,
		a_minus INTEGER NOT NULL DEFAULT 0,
		b_plus INTEGER NOT NULL DEFAULT 0,
		b INTEGER NOT NULL DEFAULT 0,
		b_minus INTEGER NOT NULL DEFAULT 0,
		c_plus INTEGER NOT NULL DEFAULT 0,
		c INTEGER NOT NULL DEFAULT 0,
		c_minus INTEGER NOT NULL DEFAULT 0,
		d INTEGER NOT NULL DEFAULT 0,
		f INTEGER NOT NULL DEFAULT 0,
		w INTEGER NOT NULL DEFAULT 0,
		inc_na INTEGER NOT NULL DEFAULT 0,
		avg_gpa REAL NOT NULL DEFAULT 0,
		UNIQUE(term, subject, nbr, section, prof)
	);
	CREATE INDEX IF NOT EXISTS idx_grades_prof ON grades(prof);
	CREATE INDEX IF NOT EXISTS idx_grades_subject_nbr ON grades(subject, nbr);
	CREATE INDEX IF NOT EXISTS idx_grades_term ON grades(term);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create grades table: %w", err)
	}

	return nil
}
