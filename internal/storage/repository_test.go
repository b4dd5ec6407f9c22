package storage

import (
	"context"
	"testing"
)

func testRows() []GradeRow {
	return []GradeRow{
		{
			Term: "SP25", Subject: "CSCI", Nbr: "111", CourseName: "Intro to Programming",
			Section: "01", Prof: "SMITH, J", Total: 30,
			APlus: 4, A: 8, AMinus: 5, BPlus: 4, B: 3, BMinus: 2,
			CPlus: 1, C: 1, CMinus: 0, D: 1, F: 1, W: 0, IncNA: 0, AvgGPA: 3.21,
		},
		{
			Term: "FA24", Subject: "CSCI", Nbr: "212", CourseName: "Data Structures",
			Section: "02", Prof: "SMITH, J", Total: 25,
			APlus: 2, A: 6, AMinus: 4, BPlus: 3, B: 4, BMinus: 2,
			CPlus: 1, C: 1, CMinus: 1, D: 0, F: 1, W: 0, IncNA: 0, AvgGPA: 3.05,
		},
		{
			Term: "SP25", Subject: "MATH", Nbr: "201", CourseName: "Calculus I",
			Section: "01", Prof: "JOHNSON, A", Total: 40,
			APlus: 3, A: 10, AMinus: 6, BPlus: 5, B: 6, BMinus: 3,
			CPlus: 2, C: 2, CMinus: 1, D: 1, F: 1, W: 0, IncNA: 0, AvgGPA: 3.12,
		},
	}
}

func newSeededDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SaveGradeRowsBatch(context.Background(), testRows()); err != nil {
		t.Fatalf("SaveGradeRowsBatch: %v", err)
	}
	return db
}

func TestGetAllProfessorNames(t *testing.T) {
	t.Parallel()

	db := newSeededDB(t)
	names, err := db.GetAllProfessorNames(context.Background())
	if err != nil {
		t.Fatalf("GetAllProfessorNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2: %v", len(names), names)
	}
	// Alphabetical order
	if names[0] != "JOHNSON, A" || names[1] != "SMITH, J" {
		t.Errorf("unexpected catalog order: %v", names)
	}
}

func TestQueryByProfessor(t *testing.T) {
	t.Parallel()

	db := newSeededDB(t)
	ctx := context.Background()

	t.Run("exact match", func(t *testing.T) {
		rows, err := db.QueryByProfessor(ctx, "SMITH, J")
		if err != nil {
			t.Fatalf("QueryByProfessor: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		// Deterministic order: term asc
		if rows[0].Term != "FA24" || rows[1].Term != "SP25" {
			t.Errorf("unexpected order: %s, %s", rows[0].Term, rows[1].Term)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		rows, err := db.QueryByProfessor(ctx, "smith, j")
		if err != nil {
			t.Fatalf("QueryByProfessor: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("got %d rows, want 2", len(rows))
		}
	})

	t.Run("surname fallback", func(t *testing.T) {
		rows, err := db.QueryByProfessor(ctx, "Smith")
		if err != nil {
			t.Fatalf("QueryByProfessor: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("surname-only query should fall back to LIKE, got %d rows", len(rows))
		}
	})

	t.Run("unknown professor", func(t *testing.T) {
		rows, err := db.QueryByProfessor(ctx, "NOBODY, X")
		if err != nil {
			t.Fatalf("QueryByProfessor: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("got %d rows, want 0", len(rows))
		}
	})
}

func TestQueryByProfessorAndCourse(t *testing.T) {
	t.Parallel()

	db := newSeededDB(t)
	ctx := context.Background()

	rows, err := db.QueryByProfessorAndCourse(ctx, "SMITH, J", "CSCI", "212")
	if err != nil {
		t.Fatalf("QueryByProfessorAndCourse: %v", err)
	}
	if len(rows) != 1 || rows[0].Nbr != "212" {
		t.Fatalf("got %v, want single 212 row", rows)
	}

	// Empty subject matches on number alone
	rows, err = db.QueryByProfessorAndCourse(ctx, "SMITH, J", "", "111")
	if err != nil {
		t.Fatalf("QueryByProfessorAndCourse: %v", err)
	}
	if len(rows) != 1 || rows[0].Nbr != "111" {
		t.Fatalf("got %v, want single 111 row", rows)
	}

	// Wrong subject excludes
	rows, err = db.QueryByProfessorAndCourse(ctx, "SMITH, J", "MATH", "212")
	if err != nil {
		t.Fatalf("QueryByProfessorAndCourse: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestSaveGradeRowsBatchReplaces(t *testing.T) {
	t.Parallel()

	db := newSeededDB(t)
	ctx := context.Background()

	update := testRows()[:1]
	update[0].AvgGPA = 3.5
	if err := db.SaveGradeRowsBatch(ctx, update); err != nil {
		t.Fatalf("SaveGradeRowsBatch: %v", err)
	}

	count, err := db.CountGradeRows(ctx)
	if err != nil {
		t.Fatalf("CountGradeRows: %v", err)
	}
	if count != 3 {
		t.Errorf("re-import should replace, not duplicate: count = %d", count)
	}

	rows, err := db.QueryByProfessorAndCourse(ctx, "SMITH, J", "CSCI", "111")
	if err != nil {
		t.Fatalf("QueryByProfessorAndCourse: %v", err)
	}
	if len(rows) != 1 || rows[0].AvgGPA != 3.5 {
		t.Errorf("replacement row not applied: %+v", rows)
	}
}

func TestListCourses(t *testing.T) {
	t.Parallel()

	db := newSeededDB(t)
	courses, err := db.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("got %d courses, want 3", len(courses))
	}
	if courses[0].Subject != "CSCI" || courses[0].Nbr != "111" {
		t.Errorf("unexpected first course: %+v", courses[0])
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	db := newSeededDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := db.Ready(context.Background()); err != nil {
		t.Errorf("Ready: %v", err)
	}
}
