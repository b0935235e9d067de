// Package gap computes which questions of the active set are already
// answered by the slot document and which still need asking. Analysis is a
// pure function of its inputs and is recomputed every turn.
package gap

import (
	"math"
	"sort"

	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

// Analysis is the derived completion picture for one (questions, slots) pair.
// Invariant: len(Answered) + len(Remaining) == the size of the input set.
type Analysis struct {
	Answered   []registry.Question `json:"answered"`
	Remaining  []registry.Question `json:"remaining"`
	Percentage int                 `json:"percentage"`
}

// Total returns the size of the analyzed question set.
func (a Analysis) Total() int {
	return len(a.Answered) + len(a.Remaining)
}

// Complete reports whether every question is answered. An empty question set
// counts as complete: there is nothing left to ask.
func (a Analysis) Complete() bool {
	return len(a.Remaining) == 0
}

// RequiredComplete reports whether every required question is answered.
func (a Analysis) RequiredComplete() bool {
	for _, q := range a.Remaining {
		if q.Required {
			return false
		}
	}
	return true
}

// Analyze buckets each question by whether its slot path holds a usable
// answer: present, non-null and not an empty string. No partial credit. An
// empty question set yields 0%, not a division error.
func Analyze(questions []registry.Question, doc slots.Slots) Analysis {
	analysis := Analysis{}
	for _, q := range questions {
		if slots.IsFilled(doc, q.SlotPath) {
			analysis.Answered = append(analysis.Answered, q)
		} else {
			analysis.Remaining = append(analysis.Remaining, q)
		}
	}
	if total := len(questions); total > 0 {
		analysis.Percentage = int(math.Round(100 * float64(len(analysis.Answered)) / float64(total)))
	}
	return analysis
}

// Next selects the highest-priority remaining question whose id is not in
// asked. Ties keep the question set's original order. The second return is
// false when every remaining question has already been asked, which tells
// the orchestrator to stop asking and synthesize with what it has.
func Next(remaining []registry.Question, asked map[string]bool) (registry.Question, bool) {
	candidates := make([]registry.Question, 0, len(remaining))
	order := make(map[string]int, len(remaining))
	for i, q := range remaining {
		order[q.ID] = i
		if !asked[q.ID] {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return registry.Question{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return order[candidates[i].ID] < order[candidates[j].ID]
	})
	return candidates[0], true
}

// Chip is the UI-facing projection of one question's fill status. Derived,
// never authoritative.
type Chip struct {
	QuestionID string `json:"question_id"`
	Label      string `json:"label"`
	SlotPath   string `json:"slot_path"`
	Filled     bool   `json:"filled"`
	Value      string `json:"value,omitempty"`
}

// Chips projects the fill status of every question in the set.
func Chips(questions []registry.Question, doc slots.Slots) []Chip {
	chips := make([]Chip, 0, len(questions))
	for _, q := range questions {
		chip := Chip{
			QuestionID: q.ID,
			Label:      q.Text,
			SlotPath:   q.SlotPath,
		}
		if slots.IsFilled(doc, q.SlotPath) {
			chip.Filled = true
			if v, ok := slots.Get(doc, q.SlotPath); ok {
				chip.Value = v.Text()
			}
		}
		chips = append(chips, chip)
	}
	return chips
}
