package collaborators

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

// planSchemaJSON is the reflected JSON schema for the synthesizer's
// structured plan payload, computed once and embedded in every synthesis
// prompt.
var planSchemaJSON = sync.OnceValue(func() string {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&planPayload{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// Reflection over our own struct cannot fail at runtime; keep the
		// prompt usable regardless.
		return ""
	}
	return string(data)
})

// planPayload is the wire shape the synthesizer LLM is asked to produce.
type planPayload struct {
	RichContent string `json:"rich_content" jsonschema:"description=Markdown summary of the plan for the user"`
	Activity    struct {
		Title       string `json:"title" jsonschema:"description=Short activity title"`
		Description string `json:"description" jsonschema:"description=One paragraph activity description"`
		Category    string `json:"category" jsonschema:"description=Planning domain/category name"`
	} `json:"activity"`
	Tasks []struct {
		Title       string `json:"title" jsonschema:"description=Short actionable task title"`
		Description string `json:"description,omitempty" jsonschema:"description=Optional task detail"`
	} `json:"tasks" jsonschema:"description=Ordered actionable tasks"`
}

// toGeneratedPlan converts the wire payload into the public plan type.
func (p *planPayload) toGeneratedPlan() *GeneratedPlan {
	plan := &GeneratedPlan{
		RichContent: p.RichContent,
		Activity: ActivityDraft{
			Title:       p.Activity.Title,
			Description: p.Activity.Description,
			Category:    p.Activity.Category,
		},
	}
	for _, t := range p.Tasks {
		plan.Tasks = append(plan.Tasks, TaskDraft{Title: t.Title, Description: t.Description})
	}
	return plan
}
