package collaborators

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tmc/langchaingo/llms"

	"planpilot/internal/utils"
	"planpilot/pkg/registry"
)

// LLMQuestionGenerator tailors a domain's question set to the specific
// request with an LLM. The registry's static set is both the starting point
// shown to the model and the documented fallback when the response cannot
// be used.
type LLMQuestionGenerator struct {
	caller jsonCaller
	reg    *registry.Registry
	logger utils.ExtendedLogger
}

// NewLLMQuestionGenerator builds a generator over the given model and
// catalog.
func NewLLMQuestionGenerator(llm llms.Model, reg *registry.Registry, logger utils.ExtendedLogger) *LLMQuestionGenerator {
	return &LLMQuestionGenerator{caller: newJSONCaller(llm, logger), reg: reg, logger: logger}
}

type questionSetPayload struct {
	Questions []registry.Question `json:"questions"`
}

// Generate returns a question set for the request, sorted by descending
// priority. Unknown domains and unusable LLM output fall back to the static
// registry set.
func (g *LLMQuestionGenerator) Generate(ctx context.Context, req QuestionRequest) ([]registry.Question, error) {
	domain, ok := g.reg.Lookup(req.Domain)
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", req.Domain)
	}
	static := domain.Questions(req.Mode)

	baseJSON, err := questionsJSON(static)
	if err != nil {
		return sortByPriority(static), nil
	}

	prompt := fmt.Sprintf(`A user wants help planning something in the %q domain (%s mode).
Their request: %q

Here is the standard question set for this domain:
%s

Adapt it to this specific request: reword questions to fit, drop ones the request already answers implicitly, and add at most two new ones if something important is missing. Keep the same JSON shape per question (id, text, rationale, priority 1-10, required, slot_path, input_type free-text|single-choice|date-range|number, choices). Every id and slot_path must be unique.

Respond with JSON: {"questions": [...]}`,
		domain.Name, req.Mode, req.Message, baseJSON)

	content, err := g.caller.generateJSON(ctx, "You prepare clarifying questions for a planning assistant. Respond with valid JSON only.", prompt, "")
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	var payload questionSetPayload
	if !decodeInto(content, &payload) || len(payload.Questions) == 0 {
		g.logger.Warnf("Question generator returned unusable output for domain %s, using registry set", domain.Name)
		return sortByPriority(static), nil
	}

	questions := sanitizeQuestions(payload.Questions)
	if len(questions) == 0 {
		g.logger.Warnf("Question generator output failed validation for domain %s, using registry set", domain.Name)
		return sortByPriority(static), nil
	}
	return sortByPriority(questions), nil
}

// sanitizeQuestions drops invalid or duplicate questions rather than
// rejecting the whole set.
func sanitizeQuestions(questions []registry.Question) []registry.Question {
	seenIDs := map[string]bool{}
	seenPaths := map[string]bool{}
	var out []registry.Question
	for _, q := range questions {
		if q.Priority < 1 {
			q.Priority = 1
		}
		if q.Priority > 10 {
			q.Priority = 10
		}
		if q.InputType == "" {
			q.InputType = registry.InputFreeText
		}
		if q.Validate() != nil {
			continue
		}
		if seenIDs[q.ID] || seenPaths[q.SlotPath] {
			continue
		}
		seenIDs[q.ID] = true
		seenPaths[q.SlotPath] = true
		out = append(out, q)
	}
	return out
}

func sortByPriority(questions []registry.Question) []registry.Question {
	out := make([]registry.Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

func questionsJSON(questions []registry.Question) (string, error) {
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
