package registry

import (
	"planpilot/internal/utils"
)

// Builtin returns the registry shipped with the binary, used when no catalog
// file is configured. The catalog file format supports the same shape.
func Builtin(logger utils.ExtendedLogger) *Registry {
	r, err := NewFromDomains(logger, builtinDomains())
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a bug.
		panic(err)
	}
	return r
}

func builtinDomains() []*Domain {
	return []*Domain{
		{
			Name:        "travel",
			Aliases:     []string{"trip", "vacation", "getaway", "weekend"},
			Description: "Trips, vacations and weekend getaways",
			Keywords:    []string{"travel", "trip", "flight", "hotel", "visit", "weekend", "vacation"},
			QuestionSets: QuestionSets{
				Quick: []Question{
					{ID: "destination", Text: "Where would you like to go?", Rationale: "Everything else depends on the destination", Priority: 10, Required: true, SlotPath: "destination", InputType: InputFreeText},
					{ID: "dates", Text: "When are you planning to travel?", Rationale: "Dates drive availability and pricing", Priority: 9, Required: true, SlotPath: "timing.dates", InputType: InputDateRange},
					{ID: "travelers", Text: "How many people are traveling?", Rationale: "Group size changes lodging and activities", Priority: 7, Required: false, SlotPath: "travelers.count", InputType: InputNumber},
					{ID: "budget", Text: "What's your rough budget?", Rationale: "Budget constrains the whole plan", Priority: 6, Required: false, SlotPath: "budget.total", InputType: InputFreeText},
					{ID: "style", Text: "What kind of trip is this?", Rationale: "Pace and vibe shape the itinerary", Priority: 4, Required: false, SlotPath: "preferences.style", InputType: InputSingleChoice, Choices: []string{"relaxing", "adventurous", "cultural", "mixed"}},
				},
				Detailed: []Question{
					{ID: "destination", Text: "Where would you like to go?", Rationale: "Everything else depends on the destination", Priority: 10, Required: true, SlotPath: "destination", InputType: InputFreeText},
					{ID: "dates", Text: "When are you planning to travel?", Rationale: "Dates drive availability and pricing", Priority: 9, Required: true, SlotPath: "timing.dates", InputType: InputDateRange},
					{ID: "travelers", Text: "How many people are traveling?", Rationale: "Group size changes lodging and activities", Priority: 8, Required: true, SlotPath: "travelers.count", InputType: InputNumber},
					{ID: "budget", Text: "What's your rough budget?", Rationale: "Budget constrains the whole plan", Priority: 7, Required: false, SlotPath: "budget.total", InputType: InputFreeText},
					{ID: "lodging", Text: "Any lodging preference?", Rationale: "Lodging is the largest fixed cost", Priority: 6, Required: false, SlotPath: "preferences.lodging", InputType: InputSingleChoice, Choices: []string{"hotel", "rental", "hostel", "staying with friends"}},
					{ID: "transport", Text: "How do you want to get there?", Rationale: "Transport mode anchors the schedule", Priority: 5, Required: false, SlotPath: "preferences.transport", InputType: InputSingleChoice, Choices: []string{"fly", "drive", "train", "undecided"}},
					{ID: "interests", Text: "What do you want to spend your time on?", Rationale: "Interests fill the itinerary", Priority: 4, Required: false, SlotPath: "preferences.interests", InputType: InputFreeText},
					{ID: "constraints", Text: "Any constraints I should know about?", Rationale: "Dietary, mobility or timing constraints shape choices", Priority: 3, Required: false, SlotPath: "constraints", InputType: InputFreeText},
				},
			},
		},
		{
			Name:        "fitness",
			Aliases:     []string{"workout", "training", "exercise"},
			Description: "Workout routines and training programs",
			Keywords:    []string{"fitness", "workout", "gym", "run", "train", "exercise", "muscle"},
			QuestionSets: QuestionSets{
				Quick: []Question{
					{ID: "goal", Text: "What's your main fitness goal?", Rationale: "The goal decides the program type", Priority: 10, Required: true, SlotPath: "goal", InputType: InputFreeText},
					{ID: "level", Text: "How would you describe your current level?", Rationale: "Volume and intensity scale with experience", Priority: 8, Required: true, SlotPath: "profile.level", InputType: InputSingleChoice, Choices: []string{"beginner", "intermediate", "advanced"}},
					{ID: "days", Text: "How many days a week can you train?", Rationale: "Frequency fixes the split", Priority: 7, Required: false, SlotPath: "schedule.days_per_week", InputType: InputNumber},
					{ID: "equipment", Text: "What equipment do you have access to?", Rationale: "Exercises depend on available equipment", Priority: 5, Required: false, SlotPath: "equipment", InputType: InputFreeText},
				},
				Detailed: []Question{
					{ID: "goal", Text: "What's your main fitness goal?", Rationale: "The goal decides the program type", Priority: 10, Required: true, SlotPath: "goal", InputType: InputFreeText},
					{ID: "level", Text: "How would you describe your current level?", Rationale: "Volume and intensity scale with experience", Priority: 9, Required: true, SlotPath: "profile.level", InputType: InputSingleChoice, Choices: []string{"beginner", "intermediate", "advanced"}},
					{ID: "days", Text: "How many days a week can you train?", Rationale: "Frequency fixes the split", Priority: 8, Required: true, SlotPath: "schedule.days_per_week", InputType: InputNumber},
					{ID: "session", Text: "How long can each session be?", Rationale: "Session length caps per-day volume", Priority: 6, Required: false, SlotPath: "schedule.session_minutes", InputType: InputNumber},
					{ID: "equipment", Text: "What equipment do you have access to?", Rationale: "Exercises depend on available equipment", Priority: 5, Required: false, SlotPath: "equipment", InputType: InputFreeText},
					{ID: "injuries", Text: "Any injuries or movements to avoid?", Rationale: "Safety first when programming", Priority: 4, Required: false, SlotPath: "constraints.injuries", InputType: InputFreeText},
				},
			},
		},
		{
			Name:        "event",
			Aliases:     []string{"party", "gathering", "celebration"},
			Description: "Parties, gatherings and celebrations",
			Keywords:    []string{"event", "party", "birthday", "wedding", "dinner", "celebrate", "guests"},
			QuestionSets: QuestionSets{
				Quick: []Question{
					{ID: "occasion", Text: "What's the occasion?", Rationale: "The occasion sets the tone", Priority: 10, Required: true, SlotPath: "occasion", InputType: InputFreeText},
					{ID: "date", Text: "When is it happening?", Rationale: "Lead time drives what's feasible", Priority: 9, Required: true, SlotPath: "timing.date", InputType: InputDateRange},
					{ID: "guests", Text: "Roughly how many guests?", Rationale: "Headcount drives venue and catering", Priority: 8, Required: true, SlotPath: "guests.count", InputType: InputNumber},
					{ID: "venue", Text: "Do you have a venue in mind?", Rationale: "Venue is the first thing to lock in", Priority: 6, Required: false, SlotPath: "venue", InputType: InputFreeText},
					{ID: "budget", Text: "What's the budget?", Rationale: "Budget constrains every choice", Priority: 5, Required: false, SlotPath: "budget.total", InputType: InputFreeText},
				},
				Detailed: []Question{
					{ID: "occasion", Text: "What's the occasion?", Rationale: "The occasion sets the tone", Priority: 10, Required: true, SlotPath: "occasion", InputType: InputFreeText},
					{ID: "date", Text: "When is it happening?", Rationale: "Lead time drives what's feasible", Priority: 9, Required: true, SlotPath: "timing.date", InputType: InputDateRange},
					{ID: "guests", Text: "Roughly how many guests?", Rationale: "Headcount drives venue and catering", Priority: 8, Required: true, SlotPath: "guests.count", InputType: InputNumber},
					{ID: "venue", Text: "Do you have a venue in mind?", Rationale: "Venue is the first thing to lock in", Priority: 7, Required: false, SlotPath: "venue", InputType: InputFreeText},
					{ID: "budget", Text: "What's the budget?", Rationale: "Budget constrains every choice", Priority: 6, Required: false, SlotPath: "budget.total", InputType: InputFreeText},
					{ID: "food", Text: "Any food and drink plans?", Rationale: "Catering needs the longest lead time", Priority: 5, Required: false, SlotPath: "catering", InputType: InputFreeText},
					{ID: "theme", Text: "Is there a theme?", Rationale: "Theme ties decorations and invitations together", Priority: 3, Required: false, SlotPath: "theme", InputType: InputFreeText},
				},
			},
		},
	}
}
