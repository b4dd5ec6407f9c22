// Package respond turns resolved entities and filtered grade rows into the
// final chat reply. Three modes: a structured not-found explanation, a
// deterministic per-course numeric dump, and an AI-phrased narrative that
// degrades to the deterministic dump when the narrator is unavailable.
package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/gradelens/gradelens-go/internal/convo"
	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/storage"
)

// Mode identifies which output path produced a reply.
type Mode string

const (
	ModeNotFound  Mode = "not_found"
	ModeNumbers   Mode = "numbers"
	ModeNarrative Mode = "narrative"
	ModeFallback  Mode = "fallback"
)

// Narrator phrases a prose summary from a prepared prompt. Implementations
// may fail (timeout, quota, unconfigured); the assembler recovers locally.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// Assembler builds chat replies. A nil narrator is valid and forces the
// deterministic path for every narrative request.
type Assembler struct {
	narrator Narrator
	log      *logger.Logger
}

// New creates an Assembler.
func New(narrator Narrator, log *logger.Logger) *Assembler {
	return &Assembler{
		narrator: narrator,
		log:      log.WithModule("respond"),
	}
}

// Assemble picks the output mode for one resolved request and renders it.
// The returned text is never empty and the method never returns an error:
// every failure folds into a well-formed reply.
func (a *Assembler) Assemble(ctx context.Context, res convo.Resolution, rows []storage.GradeRow, wantsNumbers bool) (string, Mode) {
	if len(rows) == 0 {
		return NotFound(res), ModeNotFound
	}
	if wantsNumbers {
		return Dump(res.Professor, rows), ModeNumbers
	}

	if a.narrator != nil {
		narrative, err := a.narrator.Narrate(ctx, BuildPrompt(res.Professor, rows))
		if err == nil && strings.TrimSpace(narrative) != "" {
			return narrative, ModeNarrative
		}
		if err != nil {
			a.log.WithError(err).Warn("narrative generation failed, using deterministic summary")
		}
	}

	var b strings.Builder
	b.WriteString("I couldn't generate a summary right now, so here are the numbers directly.\n\n")
	b.WriteString(Dump(res.Professor, rows))
	return b.String(), ModeFallback
}

// NotFound renders the zero-rows reply. It names everything that was
// searched so the user can see which constraint to loosen.
func NotFound(res convo.Resolution) string {
	var b strings.Builder
	b.WriteString("I couldn't find any grade data for ")
	b.WriteString(res.Professor)
	if res.Course != nil {
		b.WriteString(" in ")
		if res.Course.Subject != "" {
			b.WriteString(res.Course.Subject)
			b.WriteString(" ")
		}
		b.WriteString(res.Course.Number)
	}
	if res.Semester != "" {
		b.WriteString(" for ")
		b.WriteString(res.Semester)
	}
	b.WriteString(".\n\nA few things to try:\n")
	b.WriteString("- Check the spelling of the professor's name\n")
	b.WriteString("- Try a different semester\n")
	b.WriteString("- Ask without a course filter to see everything I have\n")
	return b.String()
}

// Dump renders the deterministic per-section breakdown of every grade
// bucket. Output depends only on the input rows, in their given order, so
// identical rows always produce identical bytes.
func Dump(professor string, rows []storage.GradeRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade distributions for %s:\n", professor)
	for _, row := range rows {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s", row.Subject, row.Nbr)
		if row.CourseName != "" {
			fmt.Fprintf(&b, " (%s)", row.CourseName)
		}
		fmt.Fprintf(&b, " - %s", row.Term)
		if row.Section != "" {
			fmt.Fprintf(&b, ", section %s", row.Section)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Total students: %d\n", row.Total)
		fmt.Fprintf(&b, "  A+: %d  A: %d  A-: %d\n", row.APlus, row.A, row.AMinus)
		fmt.Fprintf(&b, "  B+: %d  B: %d  B-: %d\n", row.BPlus, row.B, row.BMinus)
		fmt.Fprintf(&b, "  C+: %d  C: %d  C-: %d\n", row.CPlus, row.C, row.CMinus)
		fmt.Fprintf(&b, "  D: %d  F: %d  W: %d  INC/NA: %d\n", row.D, row.F, row.W, row.IncNA)
		fmt.Fprintf(&b, "  Average GPA: %.2f\n", row.AvgGPA)
	}
	return b.String()
}

// BuildPrompt embeds the filtered rows into the instruction the narrator
// receives. The row rendering reuses Dump so the narrator and the fallback
// describe exactly the same data.
func BuildPrompt(professor string, rows []storage.GradeRow) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant summarizing university grade distributions for a student.\n")
	b.WriteString("Summarize the data below in two or three sentences of plain prose.\n")
	b.WriteString("Mention the average GPA and anything notable about the grade spread.\n")
	b.WriteString("Do not invent numbers that are not in the data.\n\n")
	b.WriteString(Dump(professor, rows))
	return b.String()
}
