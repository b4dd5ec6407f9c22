package extract

// Contractions and question words that precede 's without being names.
// "what's the grade distribution" must never yield professor "what".
var contractionStop = map[string]struct{}{
	"what": {}, "it": {}, "that": {}, "this": {}, "there": {},
	"here": {}, "where": {}, "when": {}, "why": {}, "how": {},
}

// Structural and question words that a name candidate may never equal.
var candidateStop = map[string]struct{}{
	"spring": {}, "fall": {}, "summer": {}, "sp": {}, "fa": {}, "su": {},
	"what": {}, "is": {}, "was": {}, "the": {}, "grade": {}, "distribution": {},
	"grades": {}, "like": {}, "for": {}, "give": {}, "me": {}, "just": {},
	"numbers": {}, "data": {}, "show": {}, "only": {}, "about": {}, "how": {},
	"tell": {}, "can": {}, "you": {}, "display": {}, "professor": {},
	"prof": {}, "dr": {}, "of": {}, "in": {}, "with": {},
}

// Greeting, politeness and meta words that a bare single-token message may
// not be mistaken for. Applied on top of candidateStop in the single-token
// fallback.
var singleTokenStop = map[string]struct{}{
	"hello": {}, "hey": {}, "hii": {}, "thanks": {}, "thank": {},
	"please": {}, "help": {}, "yes": {}, "yep": {}, "nope": {}, "okay": {},
	"sure": {}, "cool": {}, "nice": {}, "bye": {}, "goodbye": {},
	"morning": {}, "evening": {}, "test": {}, "testing": {}, "anyone": {},
	"something": {}, "nothing": {}, "more": {}, "info": {}, "stats": {},
}

// Professor surnames that read like course tokens in short messages
// ("MA 212" is the math course, not professor MA). Course extraction is
// skipped when a message token matches one of these exactly.
var courseCollidingSurnames = map[string]struct{}{
	"ma": {}, "law": {}, "art": {},
}

func inContractionStop(word string) bool {
	_, ok := contractionStop[word]
	return ok
}

func inCandidateStop(word string) bool {
	_, ok := candidateStop[word]
	return ok
}

func inSingleTokenStop(word string) bool {
	if _, ok := singleTokenStop[word]; ok {
		return true
	}
	return inCandidateStop(word)
}
