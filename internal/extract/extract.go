// Package extract pulls professor and course references out of free-text
// chat messages. It is a layered cascade of pattern rules with stoplist
// rejection, backed by fuzzy catalog resolution. Extraction is best-effort:
// malformed input yields empty results, never errors.
package extract

import (
	"strings"

	"github.com/gradelens/gradelens-go/internal/match"
	"github.com/gradelens/gradelens-go/internal/stringutil"
)

// Similarity thresholds for catalog resolution. The template path demands a
// closer match than the single-token fallback, which sees much noisier input.
const (
	templateResolveThreshold    = 0.6
	singleTokenResolveThreshold = 0.5
)

// CourseRef identifies a course. Number is always present; an empty Subject
// means "unspecified, resolve from context".
type CourseRef struct {
	Subject string `json:"subject,omitempty"`
	Number  string `json:"number"`
}

// Result is the outcome of one extraction pass over one message.
type Result struct {
	// ProfessorName is the resolved catalog name, or the raw candidate when
	// no catalog entry cleared the threshold, or empty when nothing was found.
	ProfessorName string

	// Course is the extracted course reference, if any.
	Course *CourseRef

	// IsFollowUp marks a context-only request that must resolve against the
	// remembered conversation.
	IsFollowUp bool

	// WantsNumbers marks an explicit request for the raw tabulated counts
	// rather than a narrative.
	WantsNumbers bool
}

// Extractor resolves raw name candidates against the professor catalog.
// Safe for concurrent use; rankings are memoized per catalog size.
type Extractor struct {
	names    *match.Matcher
	surnames *match.Matcher
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{
		names:    match.NewMatcher(),
		surnames: match.NewMatcher(),
	}
}

// Reset drops memoized rankings. Call after the catalog is refreshed.
func (e *Extractor) Reset() {
	e.names.Reset()
	e.surnames.Reset()
}

// Extract runs the full cascade over one message.
//
// Branch order is load-bearing: follow-up detection, possessive form,
// phrase templates, single-token fallback. Course extraction runs
// independently, except that a fired possessive branch suppresses it:
// course digits inside a possessive clause are not reliably separable from
// the professor token, so precedence favors not mis-extracting a course.
func (e *Extractor) Extract(message string, catalog []string) Result {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return Result{}
	}

	if isFollowUpRequest(trimmed) {
		return Result{
			IsFollowUp:   true,
			WantsNumbers: mentionsRawData(trimmed),
		}
	}

	professor, possessive := e.extractProfessor(trimmed, catalog)

	var course *CourseRef
	if !possessive && !hasCollidingSurname(trimmed) {
		course = extractCourse(trimmed)
	}

	return Result{
		ProfessorName: professor,
		Course:        course,
		WantsNumbers:  numbersOnlyPattern.MatchString(trimmed),
	}
}

func isFollowUpRequest(message string) bool {
	for _, pattern := range followUpPatterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}

func mentionsRawData(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "number") ||
		strings.Contains(lower, "data") ||
		strings.Contains(lower, "stats")
}

// extractProfessor returns the resolved professor candidate and whether the
// possessive branch fired.
func (e *Extractor) extractProfessor(message string, catalog []string) (string, bool) {
	if candidate, ok := possessiveCandidate(message); ok {
		return e.resolve(candidate, catalog, templateResolveThreshold), true
	}

	for _, rule := range phraseRules {
		m := rule.pattern.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if !validCandidate(candidate) {
			continue // later, more generic rules may still find a real name
		}
		return e.resolve(candidate, catalog, templateResolveThreshold), false
	}

	if token, ok := singleTokenCandidate(message); ok {
		return e.resolve(token, catalog, singleTokenResolveThreshold), false
	}

	return "", false
}

// possessiveCandidate finds an "X's" owner that survives the contraction and
// structural stoplists. All matches of each pattern are considered so a
// leading "what's" does not mask a real owner later in the message.
func possessiveCandidate(message string) (string, bool) {
	for _, pattern := range possessivePatterns {
		for _, m := range pattern.FindAllStringSubmatch(message, -1) {
			candidate := strings.TrimSpace(m[1])
			if isContraction(candidate) {
				continue
			}
			if !validCandidate(candidate) {
				continue
			}
			return candidate, true
		}
	}
	return "", false
}

func isContraction(candidate string) bool {
	return inContractionStop(strings.ToLower(candidate))
}

// validCandidate implements the shared rejection rules for raw name
// candidates: minimum length and the structural-word stoplist.
func validCandidate(candidate string) bool {
	if len([]rune(candidate)) < 2 {
		return false
	}
	return !inCandidateStop(strings.ToLower(candidate))
}

// singleTokenCandidate accepts the whole message as a name candidate when it
// is exactly one token of length >= 3 outside the extended stoplist.
func singleTokenCandidate(message string) (string, bool) {
	fields := strings.Fields(message)
	if len(fields) != 1 {
		return "", false
	}
	token := strings.Trim(fields[0], ".,!?;:\"'")
	if len([]rune(token)) < 3 {
		return "", false
	}
	if inSingleTokenStop(strings.ToLower(token)) {
		return "", false
	}
	return token, true
}

// resolve matches a raw candidate against the catalog, first against full
// catalog names, then against surnames alone so "chyn" can still reach
// "CHYN, E". When nothing clears the threshold the raw candidate is returned
// unmodified; downstream storage lookup attempts its own matching.
func (e *Extractor) resolve(candidate string, catalog []string, threshold float64) string {
	if len(catalog) == 0 {
		return candidate
	}

	folded := stringutil.FoldName(candidate)
	if ms := e.names.FindBestMatches(folded, catalog, threshold, 1); len(ms) > 0 {
		return ms[0].Name
	}

	surnames := make([]string, len(catalog))
	for i, entry := range catalog {
		surnames[i] = stringutil.LastNameOf(entry)
	}
	if ms := e.surnames.FindBestMatches(folded, surnames, threshold, 1); len(ms) > 0 {
		for _, entry := range catalog {
			if stringutil.LastNameOf(entry) == ms[0].Name {
				return entry
			}
		}
	}

	return candidate
}

// hasCollidingSurname reports whether any message token exactly matches a
// surname known to collide with course-like tokens.
func hasCollidingSurname(message string) bool {
	for _, field := range strings.Fields(strings.ToLower(message)) {
		token := strings.Trim(field, ".,!?;:\"'")
		if _, ok := courseCollidingSurnames[token]; ok {
			return true
		}
	}
	return false
}

// extractCourse runs the course template list and returns the first hit.
func extractCourse(message string) *CourseRef {
	if m := courseRules[0].FindStringSubmatch(message); m != nil {
		subject := strings.ToUpper(m[1])
		if _, stop := courseSubjectStop[strings.ToLower(m[1])]; !stop {
			return &CourseRef{Subject: subject, Number: m[2]}
		}
	}
	for _, rule := range courseRules[1:] {
		if m := rule.FindStringSubmatch(message); m != nil {
			return &CourseRef{Number: m[1]}
		}
	}
	return nil
}
