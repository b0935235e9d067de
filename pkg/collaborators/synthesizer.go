package collaborators

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"planpilot/internal/utils"
)

// LLMPlanSynthesizer turns slots plus enrichment into a human-readable plan
// and a structured activity/task payload, in a single JSON-mode call against
// the reflected plan schema.
type LLMPlanSynthesizer struct {
	caller jsonCaller
	logger utils.ExtendedLogger
}

// NewLLMPlanSynthesizer builds the synthesizer over the given model.
func NewLLMPlanSynthesizer(llm llms.Model, logger utils.ExtendedLogger) *LLMPlanSynthesizer {
	return &LLMPlanSynthesizer{caller: newJSONCaller(llm, logger), logger: logger}
}

// Synthesize generates (or regenerates) the plan. A transport failure is an
// error for the orchestrator's failure path; an unparsable response degrades
// to a minimal fallback plan with an explicit warning rather than failing
// the turn.
func (s *LLMPlanSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (*GeneratedPlan, error) {
	prompt := s.buildPrompt(req)

	content, err := s.caller.generateJSON(ctx,
		"You write actionable plans for users. Respond with valid JSON only.",
		prompt, planSchemaJSON())
	if err != nil {
		return nil, fmt.Errorf("plan synthesis failed: %w", err)
	}

	var payload planPayload
	if !decodeInto(content, &payload) {
		s.logger.Warnf("Plan synthesizer returned unparsable output for domain %s, using fallback plan", req.Domain)
		return s.fallbackPlan(req), nil
	}

	plan := payload.toGeneratedPlan()
	if plan.RichContent == "" && !plan.HasStructuredPayload() {
		s.logger.Warnf("Plan synthesizer returned an empty plan for domain %s, using fallback plan", req.Domain)
		return s.fallbackPlan(req), nil
	}
	if plan.Activity.Category == "" {
		plan.Activity.Category = req.Domain
	}
	return plan, nil
}

func (s *LLMPlanSynthesizer) buildPrompt(req SynthesisRequest) string {
	var sb strings.Builder

	if len(req.PastedSteps) > 0 {
		sb.WriteString("The user pasted a plan they already wrote. Summarize it faithfully and structure it; do not invent new steps.\n\nTheir steps, in order:\n")
		for i, step := range req.PastedSteps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	} else {
		fmt.Fprintf(&sb, "Create a concrete plan in the %q domain from the collected details.\n\n", req.Domain)
		slotsJSON, _ := req.Slots.ToJSON()
		fmt.Fprintf(&sb, "Collected details: %s\n", string(slotsJSON))

		if req.Enrichment != nil && len(req.Enrichment.Facts) > 0 {
			sb.WriteString("\nSupplementary facts to use where relevant:\n")
			for _, f := range req.Enrichment.Facts {
				fmt.Fprintf(&sb, "- %s: %s\n", f.Topic, f.Content)
			}
		}
	}

	if len(req.Refinements) > 0 {
		sb.WriteString("\nThe user asked for these changes, apply all of them in order:\n")
		for i, r := range req.Refinements {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
		}
	}

	sb.WriteString("\nProduce a markdown summary (rich_content), one activity (title, description, category) and an ordered task list. Tasks must be concrete and checkable.")
	return sb.String()
}

// fallbackPlan is the documented minimal plan for the parse-failure path:
// a summary built directly from the request with an explicit warning and no
// structured payload, which keeps the session in its confirmation loop
// instead of failing the turn.
func (s *LLMPlanSynthesizer) fallbackPlan(req SynthesisRequest) *GeneratedPlan {
	var sb strings.Builder
	sb.WriteString("Here's what I have so far:\n")

	// Pasted steps are already a plan; carry them straight into the
	// structured payload so confirmation can still persist them.
	if len(req.PastedSteps) > 0 {
		plan := &GeneratedPlan{
			Activity: ActivityDraft{
				Title:       "Your plan",
				Description: "Plan captured from your message",
				Category:    req.Domain,
			},
			Warning: "plan generation degraded, showing your steps as written",
		}
		for i, step := range req.PastedSteps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
			plan.Tasks = append(plan.Tasks, TaskDraft{Title: step})
		}
		plan.RichContent = sb.String()
		return plan
	}

	for key, value := range req.Slots {
		fmt.Fprintf(&sb, "- %s: %s\n", key, value.Text())
	}
	return &GeneratedPlan{
		RichContent: sb.String(),
		Warning:     "plan generation degraded, structured tasks unavailable",
	}
}
