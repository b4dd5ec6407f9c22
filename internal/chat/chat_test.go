package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradelens/gradelens-go/internal/catalog"
	"github.com/gradelens/gradelens-go/internal/convo"
	"github.com/gradelens/gradelens-go/internal/ctxutil"
	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/respond"
	"github.com/gradelens/gradelens-go/internal/storage"
)

type fakeCatalogRepo struct {
	names []string
	err   error
}

func (f *fakeCatalogRepo) GetAllProfessorNames(context.Context) ([]string, error) {
	return f.names, f.err
}

type fakeGradeRepo struct {
	rows []storage.GradeRow
	err  error
}

func (f *fakeGradeRepo) QueryByProfessor(_ context.Context, name string) ([]storage.GradeRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []storage.GradeRow
	for _, row := range f.rows {
		if row.Prof == name {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeGradeRepo) QueryByProfessorAndCourse(ctx context.Context, name, subject, number string) ([]storage.GradeRow, error) {
	rows, err := f.QueryByProfessor(ctx, name)
	if err != nil {
		return nil, err
	}
	var out []storage.GradeRow
	for _, row := range rows {
		if row.Nbr != number {
			continue
		}
		if subject != "" && !strings.EqualFold(row.Subject, subject) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeGradeRepo) ListCourses(context.Context) ([]storage.CourseSummary, error) {
	return nil, nil
}

func (f *fakeGradeRepo) SaveGradeRowsBatch(context.Context, []storage.GradeRow) error {
	return nil
}

func (f *fakeGradeRepo) CountGradeRows(context.Context) (int, error) {
	return len(f.rows), nil
}

func smithRows() []storage.GradeRow {
	return []storage.GradeRow{
		{
			Term: "SP25", Subject: "CSCI", Nbr: "111", CourseName: "Intro to Programming",
			Section: "01", Prof: "SMITH, J", Total: 30,
			APlus: 2, A: 8, AMinus: 4, BPlus: 5, B: 4, BMinus: 2,
			CPlus: 1, C: 2, D: 1, W: 1, AvgGPA: 3.21,
		},
		{
			Term: "FA24", Subject: "CSCI", Nbr: "212", CourseName: "Data Structures",
			Section: "02", Prof: "SMITH, J", Total: 25,
			APlus: 1, A: 5, AMinus: 3, BPlus: 4, B: 5, BMinus: 2,
			CPlus: 2, C: 1, CMinus: 1, F: 1, AvgGPA: 2.98,
		},
	}
}

func newTestPipeline(t *testing.T, grades *fakeGradeRepo) *Pipeline {
	t.Helper()

	log := logger.New("error")
	cat := catalog.New(&fakeCatalogRepo{names: []string{"SMITH, J", "JOHNSON, A"}}, metrics.NewTest(), log)
	assembler := respond.New(nil, log)
	sessions := convo.NewMemoryStore(time.Hour)
	return New(cat, grades, sessions, assembler, metrics.NewTest(), log)
}

func TestHandleResolvesProfessor(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	resp, err := p.Handle(context.Background(), Request{
		Message:   "What's the grade distribution for Professor Smith?",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.False(t, resp.Ambiguous)
	assert.Contains(t, resp.Response, "SMITH, J")
	assert.Len(t, resp.GradeData, 2)
}

func TestHandleFollowUpUsesSessionContext(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	ctx := context.Background()

	_, err := p.Handle(ctx, Request{
		Message:   "What's the grade distribution for Professor Smith?",
		SessionID: "s1",
	})
	require.NoError(t, err)

	first, err := p.Handle(ctx, Request{Message: "give me just the numbers", SessionID: "s1"})
	require.NoError(t, err)
	assert.False(t, first.Ambiguous)
	assert.Contains(t, first.Response, "Grade distributions for SMITH, J")
	assert.Contains(t, first.Response, "Total students: 30")
	assert.Contains(t, first.Response, "Average GPA: 3.21")

	// Byte-reproducible: the same follow-up yields the identical dump.
	second, err := p.Handle(ctx, Request{Message: "give me just the numbers", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, first.Response, second.Response)
}

func TestHandleSessionIDFromContext(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	ctx := ctxutil.WithSessionID(context.Background(), "ctx-sess")

	_, err := p.Handle(ctx, Request{Message: "What's the grade distribution for Professor Smith?"})
	require.NoError(t, err)

	// The session was keyed by the context value, so a follow-up naming
	// the same session resolves against it.
	resp, err := p.Handle(context.Background(), Request{Message: "what about the numbers", SessionID: "ctx-sess"})
	require.NoError(t, err)
	assert.False(t, resp.Ambiguous)
	assert.Contains(t, resp.Response, "SMITH, J")
}

func TestHandleFollowUpWithoutContextIsAmbiguous(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	resp, err := p.Handle(context.Background(), Request{
		Message:   "just give me the numbers",
		SessionID: "fresh",
	})
	require.NoError(t, err)
	assert.True(t, resp.Ambiguous)
	assert.Contains(t, resp.Response, "Which professor")
}

func TestHandleSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	ctx := context.Background()

	_, err := p.Handle(ctx, Request{Message: "professor smith", SessionID: "a"})
	require.NoError(t, err)

	resp, err := p.Handle(ctx, Request{Message: "just give me the numbers", SessionID: "b"})
	require.NoError(t, err)
	assert.True(t, resp.Ambiguous, "session b has no context of its own")
}

func TestHandleCourseFilter(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	resp, err := p.Handle(context.Background(), Request{
		Message:   "grades for professor smith in CSCI 212",
		SessionID: "s1",
	})
	require.NoError(t, err)
	require.Len(t, resp.GradeData, 1)
	assert.Equal(t, "212", resp.GradeData[0].Nbr)
}

func TestHandleSemesterFilter(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	resp, err := p.Handle(context.Background(), Request{
		Message:   "grades for professor smith fall 24",
		SessionID: "s1",
	})
	require.NoError(t, err)
	require.Len(t, resp.GradeData, 1)
	assert.Equal(t, "FA24", resp.GradeData[0].Term)
}

func TestHandleNoDataFound(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{})
	resp, err := p.Handle(context.Background(), Request{
		Message:   "professor johnson",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.False(t, resp.Ambiguous)
	assert.Nil(t, resp.GradeData)
	assert.Contains(t, resp.Response, "couldn't find any grade data")
	assert.Contains(t, resp.Response, "JOHNSON, A")
}

func TestHandleEmptyMessage(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	resp, err := p.Handle(context.Background(), Request{Message: "   ", SessionID: "s1"})
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "Ask me about")
}

func TestHandleUnparseableMessage(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})
	resp, err := p.Handle(context.Background(), Request{
		Message:   "tell me a joke about compilers and lunch",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Ambiguous)
}

func TestHandleStorageErrorPropagates(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{err: errors.New("disk I/O error")})
	_, err := p.Handle(context.Background(), Request{
		Message:   "professor smith",
		SessionID: "s1",
	})
	assert.Error(t, err)
}

func TestHandleCancelledRequestDoesNotCommitContext(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeGradeRepo{rows: smithRows()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The fakes ignore cancellation, so the turn completes; only the
	// context commit must observe it.
	_, err := p.Handle(ctx, Request{Message: "professor smith", SessionID: "s1"})
	require.NoError(t, err)

	resp, err := p.Handle(context.Background(), Request{
		Message:   "just give me the numbers",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Ambiguous, "cancelled request must not have saved context")
}
