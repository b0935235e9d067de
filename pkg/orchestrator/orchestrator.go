// Package orchestrator implements the conversational planning state machine:
// it sequences domain classification, question gathering, gap analysis,
// enrichment, plan synthesis and the confirmation/refinement loop across the
// turns of a session, and commits the confirmed plan to storage exactly once.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"planpilot/internal/utils"
	"planpilot/pkg/collaborators"
	"planpilot/pkg/database"
	"planpilot/pkg/detect"
	"planpilot/pkg/gap"
	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

const (
	// defaultConfidenceThreshold gates intent classification: below it the
	// orchestrator re-prompts instead of advancing.
	defaultConfidenceThreshold = 0.5
	// defaultCompletionThreshold is the completion percentage at which the
	// orchestrator stops asking and synthesizes early.
	defaultCompletionThreshold = 85

	rephraseMessage = "I didn't quite catch that. Could you rephrase what you'd like to plan?"
)

// timeNow is swapped out in tests that exercise enrichment expiry.
var timeNow = time.Now

// Config carries the tunable thresholds of the state machine. Thresholds are
// process-wide constants by default, overridable at construction, never per
// domain.
type Config struct {
	ConfidenceThreshold float64
	CompletionThreshold int
	HistoryTokenBudget  int
}

func (c Config) withDefaults() Config {
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.CompletionThreshold <= 0 {
		c.CompletionThreshold = defaultCompletionThreshold
	}
	if c.HistoryTokenBudget <= 0 {
		c.HistoryTokenBudget = 1200
	}
	return c
}

// Collaborators bundles the external services the orchestrator sequences.
// All are injected at construction; the orchestrator never builds one itself.
type Collaborators struct {
	Classifier  collaborators.DomainClassifier
	Inferencer  collaborators.IntentInferencer
	Questions   collaborators.QuestionGenerator
	GapNLU      collaborators.GapNLU
	Enricher    collaborators.EnrichmentGateway
	Synthesizer collaborators.PlanSynthesizer
}

// Orchestrator is the per-turn conversation engine. It is stateless between
// calls; all conversation state lives in the Session the caller passes in.
type Orchestrator struct {
	registry *registry.Registry
	storage  database.Storage
	collab   Collaborators
	logger   utils.ExtendedLogger
	cfg      Config
}

// New constructs an orchestrator with injected collaborators and storage.
func New(reg *registry.Registry, storage database.Storage, collab Collaborators, cfg Config, logger utils.ExtendedLogger) *Orchestrator {
	return &Orchestrator{
		registry: reg,
		storage:  storage,
		collab:   collab,
		logger:   logger,
		cfg:      cfg.withDefaults(),
	}
}

// snapshot captures the mutable session fields so a failed turn can be
// rolled back, keeping the no-partial-state-corruption guarantee.
type snapshot struct {
	domain        string
	phase         Phase
	doc           slots.Slots
	questions     []registry.Question
	asked         map[string]bool
	refinements   []string
	enrichment    *collaborators.EnrichedData
	enrichmentKey string
	plan          *collaborators.GeneratedPlan
}

func takeSnapshot(s *Session) snapshot {
	asked := make(map[string]bool, len(s.AskedQuestionIDs))
	for id, v := range s.AskedQuestionIDs {
		asked[id] = v
	}
	return snapshot{
		domain:        s.Domain,
		phase:         s.Phase,
		doc:           s.Slots.Clone(),
		questions:     append([]registry.Question(nil), s.Questions...),
		asked:         asked,
		refinements:   append([]string(nil), s.Refinements...),
		enrichment:    s.CachedEnrichment,
		enrichmentKey: s.EnrichmentKey,
		plan:          s.CachedPlan,
	}
}

func (snap snapshot) restore(s *Session) {
	s.Domain = snap.domain
	s.Phase = snap.phase
	s.Slots = snap.doc
	s.Questions = snap.questions
	s.AskedQuestionIDs = snap.asked
	s.Refinements = snap.refinements
	s.CachedEnrichment = snap.enrichment
	s.EnrichmentKey = snap.enrichmentKey
	s.CachedPlan = snap.plan
}

// HandleTurn runs one user message through the state machine, mutating the
// session and returning the response payload. Collaborator failures are
// absorbed into a generic re-prompt with the session rolled back; the only
// returned errors are programmer errors (nil session, empty message).
func (o *Orchestrator) HandleTurn(ctx context.Context, s *Session, message string) (*TurnResponse, error) {
	if s == nil {
		return nil, fmt.Errorf("session is required")
	}
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, fmt.Errorf("message is empty")
	}

	snap := takeSnapshot(s)
	resp, err := o.route(ctx, s, trimmed)
	if err != nil {
		o.logger.WithError(err).Warnf("turn failed for session %s, rolling back", s.ID)
		snap.restore(s)
		resp = o.respond(s, rephraseMessage)
	}

	s.appendTurn(trimmed, resp.Message)
	return resp, nil
}

func (o *Orchestrator) route(ctx context.Context, s *Session, message string) (*TurnResponse, error) {
	// Step 1: pasted-conversation short-circuit, first turn only.
	if len(s.History) == 0 {
		if pasted, ok := detect.DetectPasted(message); ok {
			return o.handlePasted(ctx, s, message, pasted)
		}
	}

	// Step 2: confirmation fast path.
	if s.Phase == PhaseConfirming {
		return o.handleConfirming(ctx, s, message)
	}

	// Steps 3 and 8: refinement loop.
	if s.Phase == PhaseRefining {
		return o.handleRefining(ctx, s, message)
	}

	return o.handleGathering(ctx, s, message)
}

// handlePasted routes a fully specified first message straight to synthesis.
func (o *Orchestrator) handlePasted(ctx context.Context, s *Session, message string, pasted detect.PastedPlan) (*TurnResponse, error) {
	o.logger.Infof("Pasted plan detected with %d steps in session %s", len(pasted.Steps), s.ID)
	s.PastedSteps = pasted.Steps

	// Best-effort domain guess so the saved activity gets a category; a
	// classifier failure must not sink the pasted path.
	if det, err := o.collab.Classifier.Detect(ctx, message); err == nil && det.Domain != "" {
		if _, ok := o.registry.Lookup(det.Domain); ok {
			s.Domain = det.Domain
			s.Slots = slots.Merge(s.Slots, det.ExtractedSlots)
		}
	}

	plan, err := o.collab.Synthesizer.Synthesize(ctx, collaborators.SynthesisRequest{
		Domain:      s.Domain,
		Slots:       s.Slots,
		Profile:     s.Profile,
		PastedSteps: pasted.Steps,
	})
	if err != nil {
		return nil, fmt.Errorf("pasted-plan synthesis failed: %w", err)
	}

	s.CachedPlan = plan
	s.Phase = PhaseConfirming

	n := len(pasted.Steps)
	resp := o.respond(s, plan.RichContent+"\n\n"+confirmPrompt)
	resp.Progress = &Progress{Answered: n, Total: n, Percentage: 100}
	resp.ReadyToGenerate = true
	resp.PlanReady = true
	resp.EnrichedPlan = plan
	return resp, nil
}

const confirmPrompt = `Does this plan look good? Reply "yes" to save it or "no" to change something.`

// handleConfirming services the yes/no gate after a plan has been shown.
func (o *Orchestrator) handleConfirming(ctx context.Context, s *Session, message string) (*TurnResponse, error) {
	switch detect.ClassifyConfirmation(message) {
	case detect.AnswerYes:
		return o.commitPlan(ctx, s)
	case detect.AnswerNo:
		s.Phase = PhaseRefining
		resp := o.respond(s, `What would you like to change? Reply "none" to keep the plan as it is.`)
		resp.PlanReady = s.CachedPlan != nil
		return resp, nil
	default:
		// Outside the yes/no protocol: re-prompt, no transition.
		resp := o.respond(s, `Sorry, I need a yes or no here. `+confirmPrompt)
		resp.PlanReady = s.CachedPlan != nil
		resp.EnrichedPlan = s.CachedPlan
		return resp, nil
	}
}

// commitPlan persists the cached plan: one activity, each task, each link in
// original order. A persistence failure keeps the session in confirming so
// the user can retry.
func (o *Orchestrator) commitPlan(ctx context.Context, s *Session) (*TurnResponse, error) {
	plan := s.CachedPlan
	if !plan.HasStructuredPayload() {
		resp := o.respond(s, "I don't have a structured version of this plan to save automatically. You can save it manually, or ask me to regenerate it.")
		resp.PlanReady = false
		return resp, nil
	}

	activity, err := o.storage.CreateActivity(ctx, &database.CreateActivityRequest{
		UserID:      s.UserID,
		Title:       plan.Activity.Title,
		Description: plan.Activity.Description,
		Category:    plan.Activity.Category,
	})
	if err != nil {
		o.logger.WithError(err).Errorf("failed to persist activity for session %s", s.ID)
		resp := o.respond(s, "I couldn't save your plan just now. Reply \"yes\" to try again.")
		resp.PlanReady = true
		resp.EnrichedPlan = plan
		return resp, nil
	}

	for i, draft := range plan.Tasks {
		task, err := o.storage.CreateTask(ctx, &database.CreateTaskRequest{
			UserID:      s.UserID,
			Title:       draft.Title,
			Description: draft.Description,
		})
		if err == nil {
			err = o.storage.LinkTaskToActivity(ctx, activity.ID, task.ID, i)
		}
		if err != nil {
			o.logger.WithError(err).Errorf("failed to persist task %d for activity %s", i, activity.ID)
			resp := o.respond(s, "I couldn't save all of your plan's tasks. Reply \"yes\" to try again.")
			resp.PlanReady = true
			resp.EnrichedPlan = plan
			return resp, nil
		}
	}

	s.Phase = PhaseConfirmed
	s.ActivityID = activity.ID
	o.logger.Infof("✅ Plan confirmed: activity %s with %d tasks (session %s)", activity.ID, len(plan.Tasks), s.ID)

	resp := o.respond(s, fmt.Sprintf("Saved! \"%s\" is now an activity with %d tasks. Good luck!", activity.Title, len(plan.Tasks)))
	resp.PlanReady = true
	resp.EnrichedPlan = plan
	return resp, nil
}

// handleRefining services the change-request loop entered after a "no".
func (o *Orchestrator) handleRefining(ctx context.Context, s *Session, message string) (*TurnResponse, error) {
	if detect.IsNone(message) {
		// Keep the plan exactly as it was; no resynthesis.
		s.Phase = PhaseConfirming
		body := confirmPrompt
		if s.CachedPlan != nil {
			body = s.CachedPlan.RichContent + "\n\n" + confirmPrompt
		}
		resp := o.respond(s, body)
		resp.PlanReady = s.CachedPlan != nil
		resp.EnrichedPlan = s.CachedPlan
		return resp, nil
	}

	refinements := append(append([]string(nil), s.Refinements...), message)

	// Refinement reuses the cached enrichment, never re-fetches.
	plan, err := o.collab.Synthesizer.Synthesize(ctx, collaborators.SynthesisRequest{
		Domain:      s.Domain,
		Slots:       s.Slots,
		Enrichment:  s.CachedEnrichment,
		Profile:     s.Profile,
		Refinements: refinements,
		PastedSteps: s.PastedSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("refinement synthesis failed: %w", err)
	}

	s.Refinements = refinements
	s.CachedPlan = plan
	s.Phase = PhaseConfirming

	body := plan.RichContent + "\n\n"
	if len(refinements) > 1 {
		body += fmt.Sprintf("Changes applied so far: %s.\n\n", strings.Join(refinements, "; "))
	}
	body += confirmPrompt

	resp := o.respond(s, body)
	resp.ReadyToGenerate = true
	resp.PlanReady = true
	resp.EnrichedPlan = plan
	return resp, nil
}

// handleGathering is the main path: intent classification, slot merging,
// domain adoption, gap analysis, and the advance-or-ask decision.
func (o *Orchestrator) handleGathering(ctx context.Context, s *Session, message string) (*TurnResponse, error) {
	firstTurn := len(s.History) == 0
	tail := collaborators.HistoryTail(s.History, o.cfg.HistoryTokenBudget)

	// Step 4: context recognition.
	inference, err := o.collab.Inferencer.Infer(ctx, message, tail, s.Slots, s.Domain)
	if err != nil {
		return nil, fmt.Errorf("intent inference failed: %w", err)
	}
	if inference.Confidence < o.cfg.ConfidenceThreshold {
		// No phase or domain mutation in this branch.
		if firstTurn {
			s.Phase = PhaseContextRecognition
			return o.respond(s, o.scopeMessage()), nil
		}
		return o.respond(s, "I'm not sure I followed that. Could you say it another way?"), nil
	}

	// Step 5: merge what the classifier extracted.
	s.Slots = slots.Merge(s.Slots, inference.ExtractedInfo)

	// Step 6: domain adoption / switch overlay.
	if err := o.resolveDomain(ctx, s, message, inference); err != nil {
		return nil, err
	}
	if s.Domain == "" {
		s.Phase = PhaseContextRecognition
		return o.respond(s, o.scopeMessage()), nil
	}

	if err := o.ensureQuestions(ctx, s, message); err != nil {
		return nil, err
	}

	// Map the free-text answer onto open slot paths.
	report, err := o.collab.GapNLU.AnalyzeGaps(ctx, message, tail, s.Questions, s.Slots)
	if err != nil {
		return nil, fmt.Errorf("gap analysis failed: %w", err)
	}
	s.Slots = slots.Merge(s.Slots, report.ExtractedSlots)

	analysis := gap.Analyze(s.Questions, s.Slots)
	o.invalidateStaleEnrichment(s, analysis)

	// Step 7: advance or ask.
	if o.readyToSynthesize(s, analysis) {
		return o.generatePlan(ctx, s, analysis)
	}

	next, ok := gap.Next(analysis.Remaining, s.AskedQuestionIDs)
	if !ok {
		// Everything remaining was already asked once; synthesize with what
		// we have instead of repeating a question.
		return o.generatePlan(ctx, s, analysis)
	}

	s.AskedQuestionIDs[next.ID] = true
	s.Phase = PhaseGathering

	resp := o.respond(s, next.Text)
	resp.Progress = progressOf(analysis)
	resp.ContextChips = gap.Chips(s.Questions, s.Slots)
	return resp, nil
}

// resolveDomain adopts a domain for new sessions and handles mid-session
// domain switches. Slot values are never discarded on a switch; shared paths
// carry over because the document itself is untouched.
func (o *Orchestrator) resolveDomain(ctx context.Context, s *Session, message string, inference collaborators.IntentInference) error {
	proposed := ""
	if inference.InferredDomain != "" {
		if _, ok := o.registry.Lookup(inference.InferredDomain); ok {
			proposed = o.canonicalDomain(inference.InferredDomain)
		}
	}

	if s.Domain == "" && proposed == "" {
		det, err := o.collab.Classifier.Detect(ctx, message)
		if err != nil {
			return fmt.Errorf("domain detection failed: %w", err)
		}
		if det.Domain != "" && det.Confidence >= o.cfg.ConfidenceThreshold {
			if _, ok := o.registry.Lookup(det.Domain); ok {
				proposed = o.canonicalDomain(det.Domain)
				s.Slots = slots.Merge(s.Slots, det.ExtractedSlots)
			}
		}
	}

	if proposed == "" || proposed == s.Domain {
		return nil
	}

	if s.Domain != "" {
		o.logger.Infof("🔄 Domain switch %s → %s in session %s", s.Domain, proposed, s.ID)
	}
	s.Domain = proposed
	s.Questions = nil
	s.CachedEnrichment = nil
	s.EnrichmentKey = ""
	return nil
}

func (o *Orchestrator) canonicalDomain(name string) string {
	if d, ok := o.registry.Lookup(name); ok {
		return d.Name
	}
	return name
}

// ensureQuestions populates the session's active question set, preferring
// dynamically generated questions and falling back to the registry's static
// set.
func (o *Orchestrator) ensureQuestions(ctx context.Context, s *Session, message string) error {
	if len(s.Questions) > 0 {
		return nil
	}

	dom, ok := o.registry.Lookup(s.Domain)
	if !ok {
		return fmt.Errorf("unknown domain %q", s.Domain)
	}

	questions, err := o.collab.Questions.Generate(ctx, collaborators.QuestionRequest{
		Domain:  s.Domain,
		Mode:    s.PlanMode,
		Profile: s.Profile,
		Message: message,
	})
	if err != nil || len(questions) == 0 {
		if err != nil {
			o.logger.WithError(err).Warnf("question generation failed for %s, using registry set", s.Domain)
		}
		questions = append([]registry.Question(nil), dom.Questions(s.PlanMode)...)
		sort.SliceStable(questions, func(i, j int) bool {
			return questions[i].Priority > questions[j].Priority
		})
	}
	s.Questions = questions
	return nil
}

// readyToSynthesize implements the advance decision: everything answered, or
// every required question answered, or completion past the early-synthesis
// threshold. A zero-question domain is immediately ready.
func (o *Orchestrator) readyToSynthesize(s *Session, analysis gap.Analysis) bool {
	if analysis.Complete() {
		return true
	}
	if analysis.RequiredComplete() {
		return true
	}
	return analysis.Percentage >= o.cfg.CompletionThreshold
}

// invalidateStaleEnrichment drops the cached enrichment when the answered
// slot set changed since it was fetched. Refinements alone never change the
// key, so the refining loop keeps hitting the cache.
func (o *Orchestrator) invalidateStaleEnrichment(s *Session, analysis gap.Analysis) {
	key := enrichmentKey(s.Domain, analysis)
	if s.CachedEnrichment != nil && s.EnrichmentKey != key {
		s.CachedEnrichment = nil
	}
	s.EnrichmentKey = key
}

func enrichmentKey(domain string, analysis gap.Analysis) string {
	parts := make([]string, 0, len(analysis.Answered)+1)
	parts = append(parts, domain)
	for _, q := range analysis.Answered {
		parts = append(parts, q.SlotPath)
	}
	sort.Strings(parts[1:])
	return strings.Join(parts, "|")
}

// generatePlan runs enrichment (cached per session) and synthesis, caches
// the plan, and moves to confirming.
func (o *Orchestrator) generatePlan(ctx context.Context, s *Session, analysis gap.Analysis) (*TurnResponse, error) {
	if s.CachedEnrichment == nil || s.CachedEnrichment.Expired(timeNow()) {
		enriched, err := o.collab.Enricher.Enrich(ctx, s.Domain, s.Slots, s.Profile)
		if err != nil {
			return nil, fmt.Errorf("enrichment failed: %w", err)
		}
		s.CachedEnrichment = enriched
		s.EnrichmentKey = enrichmentKey(s.Domain, analysis)
	}

	plan, err := o.collab.Synthesizer.Synthesize(ctx, collaborators.SynthesisRequest{
		Domain:      s.Domain,
		Slots:       s.Slots,
		Enrichment:  s.CachedEnrichment,
		Profile:     s.Profile,
		Refinements: s.Refinements,
	})
	if err != nil {
		return nil, fmt.Errorf("plan synthesis failed: %w", err)
	}

	s.CachedPlan = plan
	s.Phase = PhaseConfirming

	resp := o.respond(s, plan.RichContent+"\n\n"+confirmPrompt)
	resp.Progress = progressOf(analysis)
	resp.ContextChips = gap.Chips(s.Questions, s.Slots)
	resp.ReadyToGenerate = true
	resp.PlanReady = true
	resp.EnrichedPlan = plan
	return resp, nil
}

// respond builds the base response envelope from current session state.
func (o *Orchestrator) respond(s *Session, message string) *TurnResponse {
	return &TurnResponse{
		Message:      message,
		Phase:        s.Phase,
		UpdatedSlots: s.Slots,
		Domain:       s.Domain,
	}
}

func (o *Orchestrator) scopeMessage() string {
	names := o.registry.Names()
	if len(names) == 0 {
		return "Tell me what you'd like to plan and I'll walk you through it."
	}
	return fmt.Sprintf("I can help you plan things like %s. What would you like to plan?", strings.Join(names, ", "))
}
