package collaborators

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"planpilot/internal/utils"
	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

// LLMDomainClassifier detects the planning domain of a message with an LLM,
// falling back to keyword matching against the registry's detection metadata
// when the LLM response cannot be parsed.
type LLMDomainClassifier struct {
	caller jsonCaller
	reg    *registry.Registry
	logger utils.ExtendedLogger
}

// NewLLMDomainClassifier builds a classifier over the given model and
// domain catalog.
func NewLLMDomainClassifier(llm llms.Model, reg *registry.Registry, logger utils.ExtendedLogger) *LLMDomainClassifier {
	return &LLMDomainClassifier{caller: newJSONCaller(llm, logger), reg: reg, logger: logger}
}

type domainDetectionPayload struct {
	Domain         string                 `json:"domain"`
	Confidence     float64                `json:"confidence"`
	ExtractedSlots map[string]interface{} `json:"extracted_slots"`
}

// Detect classifies one message. A transport failure is returned as an
// error; an unparsable response degrades to the keyword fallback with its
// own (lower) confidence.
func (c *LLMDomainClassifier) Detect(ctx context.Context, message string) (DomainDetection, error) {
	prompt := fmt.Sprintf(`Classify this planning request into exactly one of these domains: %s.
Also extract any concrete details the message already contains (dates, places, counts, budgets) as nested slot values.

Message: %q

Respond with JSON: {"domain": "<name or empty if none fits>", "confidence": <0.0-1.0>, "extracted_slots": {<nested object keyed by slot names>}}`,
		strings.Join(c.reg.Names(), ", "), message)

	content, err := c.caller.generateJSON(ctx, "You classify planning requests. Respond with valid JSON only.", prompt, "")
	if err != nil {
		return DomainDetection{}, fmt.Errorf("domain detection failed: %w", err)
	}

	var payload domainDetectionPayload
	if !decodeInto(content, &payload) {
		c.logger.Warnf("Domain classifier returned unparsable output, using keyword fallback")
		return c.keywordFallback(message), nil
	}

	detection := DomainDetection{
		Domain:     strings.ToLower(strings.TrimSpace(payload.Domain)),
		Confidence: clampConfidence(payload.Confidence),
	}
	if detection.Domain != "" {
		if d, ok := c.reg.Lookup(detection.Domain); ok {
			detection.Domain = d.Name
		} else {
			// The model invented a domain the catalog doesn't have.
			detection.Domain = ""
			detection.Confidence = 0
		}
	}
	if payload.ExtractedSlots != nil {
		if v, err := slots.FromInterface(payload.ExtractedSlots); err == nil {
			if m, ok := v.AsMap(); ok {
				detection.ExtractedSlots = slots.Slots(m)
			}
		}
	}
	return detection, nil
}

// keywordFallback scores domains by keyword hits. Documented fallback for
// the parse-failure path: confidence tops out below the orchestrator's
// clarification threshold unless several keywords match.
func (c *LLMDomainClassifier) keywordFallback(message string) DomainDetection {
	lower := strings.ToLower(message)
	best := DomainDetection{}
	for _, d := range c.reg.Domains() {
		hits := 0
		for _, kw := range d.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				hits++
			}
		}
		confidence := 0.25 * float64(hits)
		if confidence > 0.9 {
			confidence = 0.9
		}
		if hits > 0 && confidence > best.Confidence {
			best = DomainDetection{Domain: d.Name, Confidence: confidence}
		}
	}
	return best
}

// LLMIntentInferencer classifies a message against the running conversation.
type LLMIntentInferencer struct {
	caller jsonCaller
	reg    *registry.Registry
	logger utils.ExtendedLogger
}

// NewLLMIntentInferencer builds an inferencer over the given model.
func NewLLMIntentInferencer(llm llms.Model, reg *registry.Registry, logger utils.ExtendedLogger) *LLMIntentInferencer {
	return &LLMIntentInferencer{caller: newJSONCaller(llm, logger), reg: reg, logger: logger}
}

type intentPayload struct {
	IsPlanningRequest bool                   `json:"is_planning_request"`
	IsNoneResponse    bool                   `json:"is_none_response"`
	InferredDomain    string                 `json:"inferred_domain"`
	ExtractedInfo     map[string]interface{} `json:"extracted_info"`
	Confidence        float64                `json:"confidence"`
}

// Infer runs the intent and context classification. On an unparsable
// response it returns the documented fallback: not a planning request,
// zero confidence — which the orchestrator answers with a clarification
// prompt rather than a phase change.
func (c *LLMIntentInferencer) Infer(ctx context.Context, message string, historyTail []HistoryEntry, doc slots.Slots, currentDomain string) (IntentInference, error) {
	slotsJSON, _ := doc.ToJSON()

	prompt := fmt.Sprintf(`You are following a planning conversation.
Known domains: %s
Current domain: %s
Collected information so far: %s
Conversation so far:
%s
Latest user message: %q

Decide:
- is_planning_request: is the user asking to plan something (or continuing to)?
- is_none_response: is the message just declining to add anything (like "none" or "nothing else")?
- inferred_domain: best-fitting domain for the conversation, or empty.
- extracted_info: any concrete details in the latest message as nested slot values.
- confidence: 0.0-1.0 for the overall classification.

Respond with JSON: {"is_planning_request": bool, "is_none_response": bool, "inferred_domain": "...", "extracted_info": {...}, "confidence": 0.0}`,
		strings.Join(c.reg.Names(), ", "), orEmpty(currentDomain), string(slotsJSON), renderHistory(historyTail), message)

	content, err := c.caller.generateJSON(ctx, "You classify messages in a planning conversation. Respond with valid JSON only.", prompt, "")
	if err != nil {
		return IntentInference{}, fmt.Errorf("intent inference failed: %w", err)
	}

	var payload intentPayload
	if !decodeInto(content, &payload) {
		c.logger.Warnf("Intent inferencer returned unparsable output, using zero-confidence fallback")
		return IntentInference{}, nil
	}

	inference := IntentInference{
		IsPlanningRequest: payload.IsPlanningRequest,
		IsNoneResponse:    payload.IsNoneResponse,
		InferredDomain:    strings.ToLower(strings.TrimSpace(payload.InferredDomain)),
		Confidence:        clampConfidence(payload.Confidence),
	}
	if inference.InferredDomain != "" {
		if d, ok := c.reg.Lookup(inference.InferredDomain); ok {
			inference.InferredDomain = d.Name
		} else {
			inference.InferredDomain = ""
		}
	}
	if payload.ExtractedInfo != nil {
		if v, err := slots.FromInterface(payload.ExtractedInfo); err == nil {
			if m, ok := v.AsMap(); ok {
				inference.ExtractedInfo = slots.Slots(m)
			}
		}
	}
	return inference, nil
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func orEmpty(s string) string {
	if s == "" {
		return "(none yet)"
	}
	return s
}
