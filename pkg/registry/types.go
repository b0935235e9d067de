// Package registry holds the catalog of planning domains: for each domain a
// name, detection metadata, and the ordered quick/detailed question sets the
// orchestrator walks through. The catalog is loaded once at startup and is
// read-only afterwards; Reload swaps the whole table atomically.
package registry

import (
	"fmt"
	"strings"
)

// PlanMode selects which question set a conversation walks through.
type PlanMode string

const (
	// PlanModeQuick asks the short question set.
	PlanModeQuick PlanMode = "quick"
	// PlanModeDetailed asks the full question set.
	PlanModeDetailed PlanMode = "detailed"
)

// ParsePlanMode normalizes a mode string, defaulting to quick.
func ParsePlanMode(s string) PlanMode {
	if strings.EqualFold(strings.TrimSpace(s), string(PlanModeDetailed)) {
		return PlanModeDetailed
	}
	return PlanModeQuick
}

// InputType describes how the UI should collect the answer to a question.
type InputType string

const (
	InputFreeText     InputType = "free-text"
	InputSingleChoice InputType = "single-choice"
	InputDateRange    InputType = "date-range"
	InputNumber       InputType = "number"
)

// Question is one unit of information the orchestrator still needs. Within a
// single domain/mode question set both ID and SlotPath are unique. Questions
// are immutable once handed out for a turn.
type Question struct {
	ID        string    `yaml:"id" json:"id"`
	Text      string    `yaml:"text" json:"text"`
	Rationale string    `yaml:"rationale" json:"rationale,omitempty"`
	Priority  int       `yaml:"priority" json:"priority"`
	Required  bool      `yaml:"required" json:"required"`
	SlotPath  string    `yaml:"slot_path" json:"slot_path"`
	InputType InputType `yaml:"input_type" json:"input_type"`
	Choices   []string  `yaml:"choices,omitempty" json:"choices,omitempty"`
}

// Validate checks the per-question invariants.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question has empty id")
	}
	if q.SlotPath == "" {
		return fmt.Errorf("question %q has empty slot_path", q.ID)
	}
	if q.Priority < 1 || q.Priority > 10 {
		return fmt.Errorf("question %q has priority %d outside 1-10", q.ID, q.Priority)
	}
	switch q.InputType {
	case InputFreeText, InputSingleChoice, InputDateRange, InputNumber:
	case "":
		return fmt.Errorf("question %q has empty input_type", q.ID)
	default:
		return fmt.Errorf("question %q has unknown input_type %q", q.ID, q.InputType)
	}
	if q.InputType == InputSingleChoice && len(q.Choices) == 0 {
		return fmt.Errorf("question %q is single-choice but has no choices", q.ID)
	}
	return nil
}

// QuestionSets holds the two modes a domain supports.
type QuestionSets struct {
	Quick    []Question `yaml:"quick" json:"quick"`
	Detailed []Question `yaml:"detailed" json:"detailed"`
}

// Domain is one planning category together with its detection metadata and
// question sets.
type Domain struct {
	Name         string       `yaml:"name" json:"name"`
	Aliases      []string     `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Description  string       `yaml:"description" json:"description"`
	Keywords     []string     `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	QuestionSets QuestionSets `yaml:"questions" json:"questions"`
}

// Questions returns the question set for the given mode. The detailed set
// falls back to quick when a domain does not define one.
func (d *Domain) Questions(mode PlanMode) []Question {
	if mode == PlanModeDetailed && len(d.QuestionSets.Detailed) > 0 {
		return d.QuestionSets.Detailed
	}
	return d.QuestionSets.Quick
}

// Validate checks the per-domain invariants: valid questions and unique
// id/slot_path within each mode.
func (d *Domain) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("domain has empty name")
	}
	for mode, set := range map[string][]Question{
		"quick":    d.QuestionSets.Quick,
		"detailed": d.QuestionSets.Detailed,
	} {
		seenIDs := map[string]bool{}
		seenPaths := map[string]bool{}
		for _, q := range set {
			if err := q.Validate(); err != nil {
				return fmt.Errorf("domain %q %s set: %w", d.Name, mode, err)
			}
			if seenIDs[q.ID] {
				return fmt.Errorf("domain %q %s set: duplicate question id %q", d.Name, mode, q.ID)
			}
			if seenPaths[q.SlotPath] {
				return fmt.Errorf("domain %q %s set: duplicate slot_path %q", d.Name, mode, q.SlotPath)
			}
			seenIDs[q.ID] = true
			seenPaths[q.SlotPath] = true
		}
	}
	return nil
}
