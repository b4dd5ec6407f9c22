// Package convo tracks per-session conversational context so follow-up
// messages ("just give me the numbers") resolve against the professor,
// course and semester discussed earlier in the session.
package convo

import (
	"github.com/gradelens/gradelens-go/internal/errors"
	"github.com/gradelens/gradelens-go/internal/extract"
)

// Context is the remembered state of one conversation. The zero value is a
// fresh conversation with nothing discussed yet.
type Context struct {
	LastProfessor string
	LastCourse    *extract.CourseRef
	LastSemester  string
}

// Resolution is a fully resolved query identity: the professor is always
// set, course and semester are optional filters.
type Resolution struct {
	Professor string
	Course    *extract.CourseRef
	Semester  string
}

// Context returns the conversation state a successful request should commit.
// Contexts are committed write-after-use: only once the request has fully
// succeeded, so a failed request never corrupts session memory.
func (r Resolution) Context() Context {
	return Context{
		LastProfessor: r.Professor,
		LastCourse:    r.Course,
		LastSemester:  r.Semester,
	}
}

// Resolve merges one extraction pass with the remembered session context.
//
// An explicitly named professor wins outright. A missing professor is filled
// from context, both for follow-up phrasings and for messages that name only
// a course. When neither the message nor the context yields a professor,
// resolution fails: ErrAmbiguousFollowUp for a follow-up with no history,
// ErrNoEntityFound otherwise. Course and semester default from context only
// when the current message did not name them itself.
func Resolve(res extract.Result, semester string, prior Context) (Resolution, error) {
	professor := res.ProfessorName
	if professor == "" {
		professor = prior.LastProfessor
	}
	if professor == "" {
		if res.IsFollowUp {
			return Resolution{}, errors.ErrAmbiguousFollowUp
		}
		return Resolution{}, errors.ErrNoEntityFound
	}

	course := res.Course
	if course == nil {
		course = prior.LastCourse
	}

	if semester == "" {
		semester = prior.LastSemester
	}

	return Resolution{
		Professor: professor,
		Course:    course,
		Semester:  semester,
	}, nil
}
