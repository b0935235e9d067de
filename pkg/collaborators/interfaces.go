package collaborators

import (
	"context"

	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

// DomainClassifier guesses the planning domain of a single message.
type DomainClassifier interface {
	Detect(ctx context.Context, message string) (DomainDetection, error)
}

// IntentInferencer classifies a message against the running conversation.
type IntentInferencer interface {
	Infer(ctx context.Context, message string, historyTail []HistoryEntry, doc slots.Slots, currentDomain string) (IntentInference, error)
}

// QuestionGenerator produces a per-request question set for a domain. The
// returned questions are pre-sorted by descending priority.
type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionRequest) ([]registry.Question, error)
}

// GapNLU is the LLM-backed variant of gap analysis: it maps the user's
// latest free-text answer onto the open questions' slot paths.
type GapNLU interface {
	AnalyzeGaps(ctx context.Context, message string, historyTail []HistoryEntry, questions []registry.Question, doc slots.Slots) (GapReport, error)
}

// EnrichmentGateway fetches time-boxed, domain-relevant supplementary facts.
type EnrichmentGateway interface {
	Enrich(ctx context.Context, domain string, doc slots.Slots, profile UserProfile) (*EnrichedData, error)
}

// PlanSynthesizer turns slots plus enrichment into a human-readable plan and
// a structured activity/task payload.
type PlanSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*GeneratedPlan, error)
}
