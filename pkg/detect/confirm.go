package detect

import (
	"strings"
)

// Answer is the outcome of classifying a message against the yes/no
// confirmation protocol. AnswerUnknown must never trigger a phase
// transition; the orchestrator re-prompts instead.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// affirmations map to yes after normalization.
var affirmations = map[string]bool{
	"yes":            true,
	"yeah":           true,
	"yep":            true,
	"yup":            true,
	"sure":           true,
	"ok":             true,
	"okay":           true,
	"sounds good":    true,
	"looks good":     true,
	"let's do it":    true,
	"lets do it":     true,
	"go ahead":       true,
	"go for it":      true,
	"do it":          true,
	"confirm":        true,
	"confirmed":      true,
	"perfect":        true,
	"great":          true,
	"that works":     true,
	"works for me":   true,
	"love it":        true,
	"looks perfect":  true,
	"yes please":     true,
	"sounds perfect": true,
}

// negations map to no, including phrases implying a desire to change
// something.
var negations = map[string]bool{
	"no":                 true,
	"nope":               true,
	"nah":                true,
	"not yet":            true,
	"wait":               true,
	"hold on":            true,
	"not quite":          true,
	"not really":         true,
	"no thanks":          true,
	"change":             true,
	"change it":          true,
	"needs changes":      true,
	"i want to change":   true,
	"i'd like to change": true,
	"can we change":      true,
	"not right":          true,
	"something's off":    true,
}

// ClassifyConfirmation maps a message onto the yes/no protocol. Matching is
// over the closed phrase sets after lowercasing, trimming and stripping
// trailing punctuation; anything else is unknown.
func ClassifyConfirmation(message string) Answer {
	normalized := normalizePhrase(message)
	if affirmations[normalized] {
		return AnswerYes
	}
	if negations[normalized] {
		return AnswerNo
	}
	return AnswerUnknown
}

// IsNone reports whether the message is exactly "none" (case-insensitive),
// the refinement-phase escape back to the unmodified plan.
func IsNone(message string) bool {
	return strings.EqualFold(strings.TrimSpace(message), "none")
}

func normalizePhrase(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, "!.?,")
	return strings.TrimSpace(normalized)
}
