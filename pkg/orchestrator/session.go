package orchestrator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"planpilot/pkg/collaborators"
	"planpilot/pkg/database"
	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

// Phase is the conversation state machine position.
type Phase string

const (
	// PhaseContextRecognition means the request is still ambiguous or
	// unrecognized and no domain has been committed to.
	PhaseContextRecognition Phase = "context_recognition"
	// PhaseGathering means clarifying questions are being asked.
	PhaseGathering Phase = "gathering"
	// PhaseConfirming means a plan has been shown and a yes/no is awaited.
	PhaseConfirming Phase = "confirming"
	// PhaseRefining means a change request is being collected.
	PhaseRefining Phase = "refining"
	// PhaseConfirmed is the terminal success state: the activity is persisted.
	PhaseConfirmed Phase = "confirmed"
)

// Session is the unit of conversation state, owned by the caller between
// turns. Every HandleTurn call mutates it; the orchestrator never deletes
// one.
type Session struct {
	ID       string                    `json:"id"`
	UserID   string                    `json:"user_id"`
	Profile  collaborators.UserProfile `json:"profile"`
	Domain   string                    `json:"domain,omitempty"`
	PlanMode registry.PlanMode         `json:"plan_mode"`
	Phase    Phase                     `json:"phase"`

	Slots            slots.Slots                  `json:"slots"`
	History          []collaborators.HistoryEntry `json:"history"`
	Questions        []registry.Question          `json:"questions,omitempty"`
	AskedQuestionIDs map[string]bool              `json:"asked_question_ids"`
	Refinements      []string                     `json:"refinements,omitempty"`
	PastedSteps      []string                     `json:"pasted_steps,omitempty"`
	CachedEnrichment *collaborators.EnrichedData  `json:"cached_enrichment,omitempty"`
	CachedPlan       *collaborators.GeneratedPlan `json:"cached_plan,omitempty"`

	// EnrichmentKey records which answered-slot state the cached enrichment
	// was fetched for, so the cache survives refinements but not new answers.
	EnrichmentKey string `json:"enrichment_key,omitempty"`

	// ActivityID is set once the plan is persisted.
	ActivityID string    `json:"activity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSession creates a fresh session for a user in the given plan mode.
func NewSession(userID string, mode registry.PlanMode) *Session {
	return &Session{
		ID:               uuid.New().String(),
		UserID:           userID,
		Profile:          collaborators.UserProfile{ID: userID},
		PlanMode:         mode,
		Phase:            PhaseContextRecognition,
		Slots:            slots.New(),
		AskedQuestionIDs: make(map[string]bool),
		CreatedAt:        time.Now().UTC(),
	}
}

// appendTurn records one user/assistant exchange in the history.
func (s *Session) appendTurn(userMessage, assistantMessage string) {
	now := time.Now().UTC()
	s.History = append(s.History,
		collaborators.HistoryEntry{Role: "user", Content: userMessage, Timestamp: now},
		collaborators.HistoryEntry{Role: "assistant", Content: assistantMessage, Timestamp: now},
	)
}

// ToRecord serializes the session for storage.
func (s *Session) ToRecord() (*database.SessionRecord, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize session: %w", err)
	}
	return &database.SessionRecord{
		ID:      s.ID,
		UserID:  s.UserID,
		Payload: string(payload),
	}, nil
}

// SessionFromRecord restores a session from its stored snapshot.
func SessionFromRecord(rec *database.SessionRecord) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(rec.Payload), &s); err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", rec.ID, err)
	}
	if s.AskedQuestionIDs == nil {
		s.AskedQuestionIDs = make(map[string]bool)
	}
	if s.Slots == nil {
		s.Slots = slots.New()
	}
	return &s, nil
}
