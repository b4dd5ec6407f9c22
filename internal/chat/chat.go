// Package chat orchestrates one chat turn: extraction, context resolution,
// storage lookup, filtering and response assembly. Every outcome in the
// error taxonomy folds into a well-formed reply; only infrastructure
// failures (storage unreachable) propagate to the transport layer.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gradelens/gradelens-go/internal/catalog"
	"github.com/gradelens/gradelens-go/internal/convo"
	"github.com/gradelens/gradelens-go/internal/ctxutil"
	apperrors "github.com/gradelens/gradelens-go/internal/errors"
	"github.com/gradelens/gradelens-go/internal/extract"
	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
	"github.com/gradelens/gradelens-go/internal/respond"
	"github.com/gradelens/gradelens-go/internal/semester"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// Request is one inbound chat message.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Response is the reply for one chat turn. GradeData carries the filtered
// rows for chart rendering; it is nil when no rows matched. Ambiguous marks
// a clarification request.
type Response struct {
	Response  string             `json:"response"`
	GradeData []storage.GradeRow `json:"grade_data,omitempty"`
	Ambiguous bool               `json:"ambiguous"`
}

// Pipeline wires the chat components together. Safe for concurrent use;
// per-session context is isolated by the session store.
type Pipeline struct {
	catalog   *catalog.Cache
	grades    storage.GradeRepository
	sessions  convo.Store
	extractor *extract.Extractor
	assembler *respond.Assembler
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// New creates a Pipeline. The extractor's memoization is reset whenever the
// catalog refreshes, since rankings are only valid per candidate set.
func New(
	cat *catalog.Cache,
	grades storage.GradeRepository,
	sessions convo.Store,
	assembler *respond.Assembler,
	m *metrics.Metrics,
	log *logger.Logger,
) *Pipeline {
	p := &Pipeline{
		catalog:   cat,
		grades:    grades,
		sessions:  sessions,
		extractor: extract.New(),
		assembler: assembler,
		metrics:   m,
		log:       log.WithModule("chat"),
	}
	cat.OnRefresh(func(names []string) {
		p.extractor.Reset()
		m.CatalogSize.Set(float64(len(names)))
	})
	return p
}

// Handle processes one chat turn. The returned error is non-nil only for
// infrastructure failures; every user-level outcome is a normal Response.
func (p *Pipeline) Handle(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	if req.SessionID == "" {
		req.SessionID = ctxutil.GetSessionID(ctx)
	}
	log := p.log.WithSessionID(req.SessionID)

	if strings.TrimSpace(req.Message) == "" {
		p.metrics.ChatRequestsTotal.WithLabelValues("malformed").Inc()
		return Response{Response: usageHint}, nil
	}

	names, err := p.catalog.Names(ctx)
	if err != nil {
		p.metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return Response{}, catalogErrors.Wrap(err, "The professor catalog is temporarily unavailable. Please try again.")
	}

	res := p.extractor.Extract(req.Message, names)
	p.recordExtraction(res)

	prior, _ := p.sessions.Get(req.SessionID)
	sem := semester.Normalize(req.Message)

	resolution, err := convo.Resolve(res, sem, prior)
	if err != nil {
		return p.clarify(log, err, start), nil
	}

	rows, err := p.queryRows(ctx, resolution)
	if err != nil {
		p.metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return Response{}, queryErrors.Wrap(err, "Grade lookup is temporarily unavailable. Please try again.")
	}
	rows = semester.ApplyFilters(rows, resolution.Semester, resolution.Course)

	text, mode := p.assembler.Assemble(ctx, resolution, rows, res.WantsNumbers)
	p.metrics.ResponseModesTotal.WithLabelValues(string(mode)).Inc()
	if mode == respond.ModeFallback {
		p.metrics.NarrativeFallbackTotal.Inc()
	}

	// Context is committed write-after-use: only now, with the reply fully
	// assembled and the request not cancelled, does session memory change.
	if ctx.Err() == nil {
		p.sessions.Save(req.SessionID, resolution.Context())
	}

	p.metrics.ChatRequestsTotal.WithLabelValues("resolved").Inc()
	p.metrics.ChatDurationSeconds.Observe(time.Since(start).Seconds())
	log.WithFields(map[string]any{
		"professor": resolution.Professor,
		"rows":      len(rows),
		"mode":      string(mode),
	}).Debug("chat turn resolved")

	var data []storage.GradeRow
	if len(rows) > 0 {
		data = rows
	}
	return Response{Response: text, GradeData: data}, nil
}

// queryRows picks the storage operation matching the resolution shape.
func (p *Pipeline) queryRows(ctx context.Context, res convo.Resolution) ([]storage.GradeRow, error) {
	if res.Course != nil {
		return p.grades.QueryByProfessorAndCourse(ctx, res.Professor, res.Course.Subject, res.Course.Number)
	}
	return p.grades.QueryByProfessor(ctx, res.Professor)
}

func (p *Pipeline) clarify(log *logger.Logger, err error, start time.Time) Response {
	p.metrics.ChatDurationSeconds.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, apperrors.ErrAmbiguousFollowUp):
		p.metrics.ChatRequestsTotal.WithLabelValues("ambiguous").Inc()
		return Response{
			Response:  "Which professor do you mean? Ask about someone first, for example \"grades for professor Smith\".",
			Ambiguous: true,
		}
	case errors.Is(err, apperrors.ErrNoEntityFound):
		p.metrics.ChatRequestsTotal.WithLabelValues("no_entity").Inc()
		return Response{
			Response:  "I couldn't tell which professor you're asking about. Try something like \"what's the grade distribution for professor Smith?\".",
			Ambiguous: true,
		}
	default:
		log.WithError(err).Warn("unexpected resolution error")
		p.metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return Response{Response: usageHint, Ambiguous: true}
	}
}

func (p *Pipeline) recordExtraction(res extract.Result) {
	switch {
	case res.IsFollowUp:
		p.metrics.ExtractionResultsTotal.WithLabelValues("follow_up").Inc()
	case res.ProfessorName != "":
		p.metrics.ExtractionResultsTotal.WithLabelValues("professor").Inc()
	case res.Course != nil:
		p.metrics.ExtractionResultsTotal.WithLabelValues("course").Inc()
	default:
		p.metrics.ExtractionResultsTotal.WithLabelValues("none").Inc()
	}
}

// Infrastructure failures carry a user-facing message separate from the
// internal cause; the transport layer surfaces only the former.
var (
	catalogErrors = apperrors.NewWrapper("chat", "load_catalog")
	queryErrors   = apperrors.NewWrapper("chat", "query_grades")
)

const usageHint = "Ask me about a professor's grade distributions, for example " +
	"\"what's the grade distribution for professor Smith?\" or \"how is Johnson in CSCI 111?\"."
