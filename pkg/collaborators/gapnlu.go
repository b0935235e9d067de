package collaborators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"planpilot/internal/utils"
	"planpilot/pkg/gap"
	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

// LLMGapNLU uses an LLM to map the user's latest free-text answer onto the
// open questions' slot paths, on top of the deterministic gap analysis that
// pkg/gap computes. When the LLM output is unusable the deterministic
// analysis alone is the documented fallback — nothing is extracted, nothing
// breaks.
type LLMGapNLU struct {
	caller jsonCaller
	logger utils.ExtendedLogger
}

// NewLLMGapNLU builds the NLU gap analyzer over the given model.
func NewLLMGapNLU(llm llms.Model, logger utils.ExtendedLogger) *LLMGapNLU {
	return &LLMGapNLU{caller: newJSONCaller(llm, logger), logger: logger}
}

type gapPayload struct {
	ExtractedSlots map[string]interface{} `json:"extracted_slots"`
}

// AnalyzeGaps extracts slot values from the message and recomputes the
// completion picture with the extraction applied.
func (a *LLMGapNLU) AnalyzeGaps(ctx context.Context, message string, historyTail []HistoryEntry, questions []registry.Question, doc slots.Slots) (GapReport, error) {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return GapReport{}, fmt.Errorf("failed to encode questions: %w", err)
	}
	slotsJSON, _ := doc.ToJSON()

	prompt := fmt.Sprintf(`A planning assistant asked the user questions and is tracking answers in nested slots.

Open questions (with the slot_path each answer belongs at):
%s

Already collected: %s
Conversation tail:
%s
Latest user message: %q

Extract every answer the latest message provides. Use each question's slot_path as the location: for a path like "timing.dates" produce {"timing": {"dates": "<value>"}}. Only include what the message actually answers.

Respond with JSON: {"extracted_slots": {...}}`,
		string(questionsJSON), string(slotsJSON), renderHistory(historyTail), message)

	content, err := a.caller.generateJSON(ctx, "You extract structured answers from planning conversations. Respond with valid JSON only.", prompt, "")
	if err != nil {
		return GapReport{}, fmt.Errorf("gap analysis failed: %w", err)
	}

	extracted := slots.New()
	var payload gapPayload
	if decodeInto(content, &payload) && payload.ExtractedSlots != nil {
		if v, convErr := slots.FromInterface(payload.ExtractedSlots); convErr == nil {
			if m, ok := v.AsMap(); ok {
				extracted = slots.Slots(m)
			}
		}
	} else {
		a.logger.Warnf("Gap NLU returned unparsable output, keeping deterministic analysis only")
	}

	return buildGapReport(questions, slots.Merge(doc, extracted), extracted), nil
}

// buildGapReport derives the report fields from a deterministic analysis.
func buildGapReport(questions []registry.Question, merged slots.Slots, extracted slots.Slots) GapReport {
	analysis := gap.Analyze(questions, merged)

	report := GapReport{
		ExtractedSlots:       extracted,
		CompletionPercentage: analysis.Percentage,
		ReadyToGenerate:      analysis.Complete() || analysis.RequiredComplete() && analysis.Percentage >= 85,
	}
	for _, q := range analysis.Answered {
		report.Answered = append(report.Answered, q.ID)
	}
	for _, q := range analysis.Remaining {
		report.Unanswered = append(report.Unanswered, q.ID)
	}
	if next, ok := gap.Next(analysis.Remaining, nil); ok {
		report.NextQuestionToAsk = next.ID
	}
	return report
}
