package collaborators

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"planpilot/internal/utils"
	"planpilot/pkg/slots"
)

// enrichmentTTL bounds how long fetched facts are considered fresh.
const enrichmentTTL = 30 * time.Minute

// LLMEnrichmentGateway fetches domain-relevant supplementary facts with an
// LLM. A transport failure or unusable response degrades to a minimal
// EnrichedData carrying an explicit warning, so synthesis can proceed on
// slots alone.
type LLMEnrichmentGateway struct {
	caller jsonCaller
	logger utils.ExtendedLogger
	now    func() time.Time
}

// NewLLMEnrichmentGateway builds the gateway over the given model.
func NewLLMEnrichmentGateway(llm llms.Model, logger utils.ExtendedLogger) *LLMEnrichmentGateway {
	return &LLMEnrichmentGateway{caller: newJSONCaller(llm, logger), logger: logger, now: time.Now}
}

type enrichmentPayload struct {
	Facts []EnrichedFact `json:"facts"`
}

// Enrich returns supplementary facts for the domain and collected slots.
// The result always carries FetchedAt/ExpiresAt; callers cache it per
// session and the refinement loop must never re-fetch.
func (g *LLMEnrichmentGateway) Enrich(ctx context.Context, domain string, doc slots.Slots, profile UserProfile) (*EnrichedData, error) {
	slotsJSON, _ := doc.ToJSON()
	fetchedAt := g.now()

	prompt := fmt.Sprintf(`A user is planning something in the %q domain. Collected details: %s
User locale: %s, timezone: %s.

Provide 3-6 concrete, useful supplementary facts that would make the plan more actionable (typical prices, timing advice, seasonal considerations, common pitfalls). Be specific to the collected details where possible.

Respond with JSON: {"facts": [{"topic": "...", "content": "...", "source": "general knowledge"}]}`,
		domain, string(slotsJSON), orEmpty(profile.Locale), orEmpty(profile.Timezone))

	content, err := g.caller.generateJSON(ctx, "You provide factual planning context. Respond with valid JSON only.", prompt, "")
	if err != nil {
		g.logger.Warnf("Enrichment call failed for domain %s: %v", domain, err)
		return g.fallback(domain, fetchedAt, "enrichment unavailable, plan generated from collected answers only"), nil
	}

	var payload enrichmentPayload
	if !decodeInto(content, &payload) || len(payload.Facts) == 0 {
		g.logger.Warnf("Enrichment returned unusable output for domain %s", domain)
		return g.fallback(domain, fetchedAt, "enrichment response unusable, plan generated from collected answers only"), nil
	}

	return &EnrichedData{
		Domain:    domain,
		Facts:     payload.Facts,
		FetchedAt: fetchedAt,
		ExpiresAt: fetchedAt.Add(enrichmentTTL),
	}, nil
}

func (g *LLMEnrichmentGateway) fallback(domain string, fetchedAt time.Time, warning string) *EnrichedData {
	return &EnrichedData{
		Domain:    domain,
		Warning:   warning,
		FetchedAt: fetchedAt,
		ExpiresAt: fetchedAt.Add(enrichmentTTL),
	}
}
