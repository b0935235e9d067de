// Package collaborators defines the narrow typed contracts the orchestrator
// consumes — domain classification, intent inference, question generation,
// NLU gap analysis, enrichment and plan synthesis — along with LLM-backed
// implementations of each. Every implementation has an explicit
// parse-failure path that returns a documented fallback value instead of an
// error, so a garbled LLM response never corrupts conversation state.
package collaborators

import (
	"time"

	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

// UserProfile is the caller-supplied context about who is planning.
type UserProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// HistoryEntry is one prior turn of the conversation.
type HistoryEntry struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DomainDetection is the domain classifier's answer for one message.
type DomainDetection struct {
	Domain         string      `json:"domain"`
	Confidence     float64     `json:"confidence"`
	ExtractedSlots slots.Slots `json:"extracted_slots,omitempty"`
}

// IntentInference is the broader classification of a message against the
// current conversation: is this even a planning request, which domain does it
// look like, and what slot fragments does it carry.
type IntentInference struct {
	IsPlanningRequest bool        `json:"is_planning_request"`
	IsNoneResponse    bool        `json:"is_none_response"`
	InferredDomain    string      `json:"inferred_domain,omitempty"`
	ExtractedInfo     slots.Slots `json:"extracted_info,omitempty"`
	Confidence        float64     `json:"confidence"`
}

// GapReport is the NLU variant of gap analysis: beyond bucketing questions it
// maps the user's latest free-text answer onto slot paths.
type GapReport struct {
	Answered             []string    `json:"answered"`
	Unanswered           []string    `json:"unanswered"`
	ExtractedSlots       slots.Slots `json:"extracted_slots,omitempty"`
	CompletionPercentage int         `json:"completion_percentage"`
	ReadyToGenerate      bool        `json:"ready_to_generate"`
	NextQuestionToAsk    string      `json:"next_question_to_ask,omitempty"`
}

// EnrichedFact is one supplementary, time-boxed fact fetched to make a plan
// concrete (pricing, timing, weather and similar).
type EnrichedFact struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// EnrichedData is the enrichment gateway's response, cached per session so
// the refinement loop never re-fetches.
type EnrichedData struct {
	Domain    string         `json:"domain"`
	Facts     []EnrichedFact `json:"facts"`
	Warning   string         `json:"warning,omitempty"`
	FetchedAt time.Time      `json:"fetched_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the enrichment's time box has lapsed.
func (e *EnrichedData) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// ActivityDraft is the structured activity part of a synthesized plan.
type ActivityDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TaskDraft is one structured task of a synthesized plan, in display order.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// GeneratedPlan is the synthesizer's output: a human-readable summary plus
// the structured activity/task payload the storage layer persists on
// confirmation.
type GeneratedPlan struct {
	RichContent string        `json:"rich_content"`
	Activity    ActivityDraft `json:"activity"`
	Tasks       []TaskDraft   `json:"tasks"`
	Warning     string        `json:"warning,omitempty"`
}

// HasStructuredPayload reports whether the plan carries enough structure to
// persist: a titled activity with at least one task.
func (p *GeneratedPlan) HasStructuredPayload() bool {
	return p != nil && p.Activity.Title != "" && len(p.Tasks) > 0
}

// SynthesisRequest bundles everything the plan synthesizer needs for one
// generation. Refinements are the cumulative ordered change requests from
// the refinement loop.
type SynthesisRequest struct {
	Domain      string
	Slots       slots.Slots
	Enrichment  *EnrichedData
	Profile     UserProfile
	Refinements []string
	// PastedSteps short-circuits normal synthesis: the user already wrote
	// the plan and only wants it summarized and structured.
	PastedSteps []string
}

// QuestionRequest bundles the inputs of dynamic question generation.
type QuestionRequest struct {
	Domain  string
	Mode    registry.PlanMode
	Profile UserProfile
	Message string
}
