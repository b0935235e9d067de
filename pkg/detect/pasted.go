// Package detect holds the pure text classifiers the orchestrator runs
// before spending any LLM calls: the pasted-conversation heuristic and the
// confirmation / negation / "none" phrase matchers.
package detect

import (
	"regexp"
	"strings"
)

const (
	// minPastedSteps is the minimum count of step-like fragments before the
	// first message is treated as an already-written plan.
	minPastedSteps = 3
	// maxPastedSteps caps the extracted steps.
	maxPastedSteps = 15
	// pastedLengthThreshold is the message length above which the keyword
	// requirement is waived.
	pastedLengthThreshold = 200
)

var (
	// Line-anchored numbered list items: "1. do the thing".
	numberedLineRe = regexp.MustCompile(`(?m)^\s*(\d+)[.)]\s+(.+)$`)
	// Inline numbered steps, tolerant of a leading emoji or marker before
	// the number: "... ✅ 1. book flights 2. reserve hotel ...".
	inlineStepRe = regexp.MustCompile(`(?:^|\s)\W{0,8}(\d+)[.)]\s+([^.\d][^\d]{2,}?)(?:\s+\W{0,8}\d+[.)]|\s*$)`)

	planningKeywords = []string{"step", "plan", "action", "workflow", "process", "guide"}

	boilerplatePrefixes = []string{"here's", "here is", "important", "note:", "note that", "remember", "summary"}
)

// PastedPlan is the result of a positive pasted-conversation match: the
// cleaned step strings in their original order.
type PastedPlan struct {
	Steps []string
}

// DetectPasted decides whether a first message is itself a fully specified
// multi-step plan. It matches when either extraction method yields at least
// three distinct step fragments and the message is either long enough or
// mentions a planning keyword. On a match the orchestrator bypasses question
// gathering entirely.
func DetectPasted(message string) (PastedPlan, bool) {
	steps := extractNumberedLines(message)
	if len(steps) < minPastedSteps {
		steps = extractInlineSteps(message)
	}
	if len(steps) < minPastedSteps {
		return PastedPlan{}, false
	}

	if len(message) <= pastedLengthThreshold && !containsPlanningKeyword(message) {
		return PastedPlan{}, false
	}

	if len(steps) > maxPastedSteps {
		steps = steps[:maxPastedSteps]
	}
	return PastedPlan{Steps: steps}, true
}

func extractNumberedLines(message string) []string {
	matches := numberedLineRe.FindAllStringSubmatch(message, -1)
	seen := map[string]bool{}
	var steps []string
	for _, m := range matches {
		step := cleanStep(m[2])
		if step == "" || seen[step] {
			continue
		}
		seen[step] = true
		steps = append(steps, step)
	}
	return steps
}

func extractInlineSteps(message string) []string {
	// The inline pattern consumes the delimiter of the following step, so
	// scan repeatedly from each match's step start.
	seen := map[string]bool{}
	var steps []string
	rest := message
	for {
		m := inlineStepRe.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		step := cleanStep(rest[m[4]:m[5]])
		if step != "" && !seen[step] {
			seen[step] = true
			steps = append(steps, step)
		}
		// Continue scanning from just after the captured step text so the
		// next step's own number is still visible to the pattern.
		rest = rest[m[5]:]
	}
	return steps
}

func cleanStep(raw string) string {
	step := strings.TrimSpace(raw)
	step = strings.Trim(step, "-–—*•:>")
	step = strings.TrimSpace(step)
	if step == "" {
		return ""
	}
	lower := strings.ToLower(step)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}
	return step
}

func containsPlanningKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range planningKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
