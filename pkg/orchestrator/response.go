package orchestrator

import (
	"planpilot/pkg/collaborators"
	"planpilot/pkg/gap"
	"planpilot/pkg/slots"
)

// Progress summarizes question completion for one turn.
type Progress struct {
	Answered   int `json:"answered"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// TurnResponse is what the orchestrator hands back to the caller each turn.
type TurnResponse struct {
	Message         string                       `json:"message"`
	Phase           Phase                        `json:"phase"`
	Progress        *Progress                    `json:"progress,omitempty"`
	ContextChips    []gap.Chip                   `json:"context_chips,omitempty"`
	ReadyToGenerate bool                         `json:"ready_to_generate"`
	PlanReady       bool                         `json:"plan_ready"`
	EnrichedPlan    *collaborators.GeneratedPlan `json:"enriched_plan,omitempty"`
	UpdatedSlots    slots.Slots                  `json:"updated_slots"`
	Domain          string                       `json:"domain,omitempty"`
}

func progressOf(a gap.Analysis) *Progress {
	return &Progress{
		Answered:   len(a.Answered),
		Total:      a.Total(),
		Percentage: a.Percentage,
	}
}
