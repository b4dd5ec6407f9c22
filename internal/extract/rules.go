package extract

import "regexp"

// followUpPatterns match context-only requests ("just give me the numbers")
// that carry no entity of their own and must resolve against the remembered
// conversation. The whole message has to match; partial hits would swallow
// messages that also name a professor.
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:can you |could you |please )?(?:just )?(?:give|show|get) me (?:just |only )?the (?:numbers|data|stats|grades|distribution)(?: please)?\s*[.!?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:what|how) about the (?:numbers|data|stats|grades|distribution)\s*[.!?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:just |only )?the (?:numbers|data|stats|grades|distribution)(?: please)?\s*[.!?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:numbers|data|stats|raw numbers) only(?: please)?\s*[.!?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:just |only )(?:numbers|data|stats)(?: please)?\s*[.!?]*\s*$`),
}

// numbersOnlyPattern detects an explicit raw-data request inside a larger
// message ("give me just the numbers for professor Smith").
var numbersOnlyPattern = regexp.MustCompile(`(?i)\b(?:just|only|raw)\b[^.?!]{0,40}\b(?:numbers|data|stats)\b|\b(?:numbers|data|stats)\s+only\b`)

// possessivePatterns capture "X's" owners, most specific form first:
// catalog form "Smith, J's", then "First Last's", then a single word.
var possessivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Za-z]+,\s*[A-Za-z])\.?'s\b`),
	regexp.MustCompile(`\b([A-Z][A-Za-z]+\s+[A-Z][A-Za-z]+)'s\b`),
	regexp.MustCompile(`\b([A-Za-z]+)'s\b`),
}

// phraseRule is one (pattern, capture) pair of the professor template
// cascade. Rules run in declaration order: specific phrasings first so the
// generic tail rules cannot swallow keywords.
type phraseRule struct {
	name    string
	pattern *regexp.Regexp
}

var phraseRules = []phraseRule{
	{
		name:    "title_prefix",
		pattern: regexp.MustCompile(`(?i)\b(?:professor|prof\.?|dr\.?)\s+([A-Za-z]+(?:,\s*[A-Za-z]\.?)?)`),
	},
	{
		name:    "distribution_for",
		pattern: regexp.MustCompile(`(?i)\bgrade\s+distributions?\s+(?:for|of)\s+(?:professor\s+|prof\.?\s+|dr\.?\s+)?([A-Za-z]+(?:,\s*[A-Za-z]\.?)?)`),
	},
	{
		name:    "grades_for",
		pattern: regexp.MustCompile(`(?i)\bgrades?\s+(?:for|of|from)\s+(?:professor\s+|prof\.?\s+|dr\.?\s+)?([A-Za-z]+(?:,\s*[A-Za-z]\.?)?)`),
	},
	{
		name:    "tell_me_about",
		pattern: regexp.MustCompile(`(?i)\btell\s+me\s+about\s+([A-Za-z]+)`),
	},
	{
		name:    "what_is_like",
		pattern: regexp.MustCompile(`(?i)\bwhat\s+(?:is|was|are)\s+([A-Za-z]+)(?:'s)?\s+grade`),
	},
	{
		name:    "name_semester",
		pattern: regexp.MustCompile(`(?i)^\s*([A-Za-z]+)\s+(?:spring|fall|summer|sp|fa|su)\s*\d{1,4}\b`),
	},
	{
		name:    "how_is",
		pattern: regexp.MustCompile(`(?i)\bhow\s+(?:is|was|are)\s+([A-Za-z]+)`),
	},
	{
		name:    "what_about",
		pattern: regexp.MustCompile(`(?i)\bwhat\s+about\s+([A-Za-z]+)`),
	},
}

// courseRules match course references, most specific first. The first rule
// captures (subject, number); the bare-number rules capture number only.
var courseRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b([A-Za-z]{2,4})[\s-]*(\d{3,4})\b`),
	regexp.MustCompile(`(?i)\b(\d{3,4})\s+(?:class|course|section)\b`),
	regexp.MustCompile(`(?i)\b(?:class|course|section)\s+(\d{3,4})\b`),
}

// courseSubjectStop rejects semester and filler words that the subject
// capture of the first course rule would otherwise mistake for department
// codes ("fall 2024").
var courseSubjectStop = map[string]struct{}{
	"sp": {}, "fa": {}, "su": {}, "fall": {}, "the": {}, "for": {},
	"was": {}, "and": {}, "but": {},
}
