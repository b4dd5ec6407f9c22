// Package storage provides repository interfaces for data access abstraction.
// These interfaces enable dependency inversion and facilitate testing by
// decoupling the chat pipeline from the concrete SQLite implementation.
package storage

import (
	"context"
)

// CatalogRepository exposes the professor-name catalog. The catalog is the
// full distinct set of canonical name strings in the grade table; it is
// read-only from the chat pipeline's point of view.
type CatalogRepository interface {
	GetAllProfessorNames(ctx context.Context) ([]string, error)
}

// GradeRepository defines the interface for grade data operations.
type GradeRepository interface {
	QueryByProfessor(ctx context.Context, name string) ([]GradeRow, error)
	QueryByProfessorAndCourse(ctx context.Context, name, subject, number string) ([]GradeRow, error)
	ListCourses(ctx context.Context) ([]CourseSummary, error)
	SaveGradeRowsBatch(ctx context.Context, rows []GradeRow) error
	CountGradeRows(ctx context.Context) (int, error)
}

// HealthRepository defines the interface for health check operations.
type HealthRepository interface {
	// Ping verifies database connection is alive.
	Ping(ctx context.Context) error

	// Ready checks if database is ready to serve queries.
	// Performs more thorough checks than Ping.
	Ready(ctx context.Context) error
}

// Repository is the aggregate interface combining all repository interfaces.
// The DB type implements this interface.
type Repository interface {
	CatalogRepository
	GradeRepository
	HealthRepository
	Close() error
}

// Ensure DB implements all repository interfaces at compile time.
var (
	_ CatalogRepository = (*DB)(nil)
	_ GradeRepository   = (*DB)(nil)
	_ HealthRepository  = (*DB)(nil)
	_ Repository        = (*DB)(nil)
)
