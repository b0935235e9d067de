package collaborators

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"planpilot/internal/utils"
)

// jsonCaller wraps an llms.Model for JSON-mode structured calls. All the
// LLM-backed collaborators share it.
type jsonCaller struct {
	llm       llms.Model
	logger    utils.ExtendedLogger
	maxTokens int
}

func newJSONCaller(llm llms.Model, logger utils.ExtendedLogger) jsonCaller {
	return jsonCaller{llm: llm, logger: logger, maxTokens: 4000}
}

// generateJSON sends a system/user prompt pair with JSON mode enabled and
// returns the raw response text. Schema, when non-empty, is appended to the
// prompt the way the structured output pipeline expects.
func (c jsonCaller) generateJSON(ctx context.Context, system, prompt, schema string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, buildStructuredPrompt(prompt, schema)),
	}

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithJSONMode(),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("no content in llm response")
	}
	return resp.Choices[0].Content, nil
}

// buildStructuredPrompt appends the schema contract to a base prompt.
func buildStructuredPrompt(basePrompt, schema string) string {
	var parts []string
	parts = append(parts, basePrompt)
	if schema != "" {
		parts = append(parts, "\n\nIMPORTANT: You must respond with valid JSON that exactly matches this schema:")
		parts = append(parts, "\nSchema:")
		parts = append(parts, schema)
	}
	parts = append(parts, "\n\nCRITICAL: Return ONLY the JSON object. No text, no explanations, no markdown. Just the JSON.")
	return strings.Join(parts, "")
}
