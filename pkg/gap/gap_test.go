package gap

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpilot/pkg/registry"
	"planpilot/pkg/slots"
)

func q(id, slotPath string, priority int, required bool) registry.Question {
	return registry.Question{
		ID:        id,
		Text:      id + "?",
		Priority:  priority,
		Required:  required,
		SlotPath:  slotPath,
		InputType: registry.InputFreeText,
	}
}

func TestAnalyze(t *testing.T) {
	questions := []registry.Question{
		q("destination", "destination", 10, true),
		q("dates", "timing.dates", 9, true),
		q("budget", "budget.total", 6, false),
		q("style", "preferences.style", 4, false),
	}

	tests := []struct {
		name           string
		doc            slots.Slots
		wantAnswered   int
		wantPercentage int
	}{
		{
			name:           "nothing answered",
			doc:            slots.New(),
			wantAnswered:   0,
			wantPercentage: 0,
		},
		{
			name: "half answered",
			doc: slots.New().
				Set("destination", slots.String("Lisbon")).
				Set("timing.dates", slots.String("June 5-8")),
			wantAnswered:   2,
			wantPercentage: 50,
		},
		{
			name: "empty string is not an answer",
			doc: slots.New().
				Set("destination", slots.String("Lisbon")).
				Set("budget.total", slots.String("")),
			wantAnswered:   1,
			wantPercentage: 25,
		},
		{
			name: "all answered",
			doc: slots.New().
				Set("destination", slots.String("Lisbon")).
				Set("timing.dates", slots.String("June 5-8")).
				Set("budget.total", slots.Number(800)).
				Set("preferences.style", slots.String("relaxing")),
			wantAnswered:   4,
			wantPercentage: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(questions, tt.doc)
			assert.Len(t, analysis.Answered, tt.wantAnswered)
			assert.Equal(t, len(questions), analysis.Total())
			assert.Equal(t, tt.wantPercentage, analysis.Percentage)
		})
	}
}

func TestAnalyzeEmptyQuestionSet(t *testing.T) {
	analysis := Analyze(nil, slots.New())
	assert.Equal(t, 0, analysis.Percentage)
	assert.Equal(t, 0, analysis.Total())
	assert.True(t, analysis.Complete())
	assert.True(t, analysis.RequiredComplete())
}

func TestAnalyzeInvariantHolds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	paths := []string{"a", "b.c", "d.e.f", "g", "h.i"}

	for i := 0; i < 100; i++ {
		var questions []registry.Question
		for j, p := range paths {
			if r.Intn(2) == 0 {
				questions = append(questions, q(fmt.Sprintf("q%d", j), p, 1+r.Intn(10), r.Intn(2) == 0))
			}
		}
		doc := slots.New()
		for _, p := range paths {
			if r.Intn(2) == 0 {
				doc = doc.Set(p, slots.String("answered"))
			}
		}
		analysis := Analyze(questions, doc)
		assert.Equal(t, len(questions), len(analysis.Answered)+len(analysis.Remaining),
			"answered + remaining must equal total")
	}
}

func TestRequiredComplete(t *testing.T) {
	questions := []registry.Question{
		q("a", "a", 10, true),
		q("b", "b", 5, false),
	}

	doc := slots.New().Set("a", slots.String("yes"))
	analysis := Analyze(questions, doc)
	assert.False(t, analysis.Complete())
	assert.True(t, analysis.RequiredComplete())
}

func TestNext(t *testing.T) {
	remaining := []registry.Question{
		q("low", "low", 3, false),
		q("high", "high", 9, true),
		q("mid", "mid", 6, false),
	}

	next, ok := Next(remaining, map[string]bool{})
	require.True(t, ok)
	assert.Equal(t, "high", next.ID)

	next, ok = Next(remaining, map[string]bool{"high": true})
	require.True(t, ok)
	assert.Equal(t, "mid", next.ID)

	_, ok = Next(remaining, map[string]bool{"high": true, "mid": true, "low": true})
	assert.False(t, ok, "exhausted set must report no next question")
}

func TestNextNeverRepeats(t *testing.T) {
	remaining := []registry.Question{
		q("a", "a", 5, false),
		q("b", "b", 5, false),
		q("c", "c", 5, false),
	}

	asked := map[string]bool{}
	for {
		next, ok := Next(remaining, asked)
		if !ok {
			break
		}
		assert.False(t, asked[next.ID], "selector returned an already-asked question")
		asked[next.ID] = true
	}
	assert.Len(t, asked, 3)
}

func TestNextTieBreaksOnOriginalOrder(t *testing.T) {
	remaining := []registry.Question{
		q("first", "first", 7, false),
		q("second", "second", 7, false),
	}
	next, ok := Next(remaining, nil)
	require.True(t, ok)
	assert.Equal(t, "first", next.ID)
}

func TestChips(t *testing.T) {
	questions := []registry.Question{
		q("destination", "destination", 10, true),
		q("dates", "timing.dates", 9, true),
	}
	doc := slots.New().Set("destination", slots.String("Lisbon"))

	chips := Chips(questions, doc)
	require.Len(t, chips, 2)
	assert.True(t, chips[0].Filled)
	assert.Equal(t, "Lisbon", chips[0].Value)
	assert.False(t, chips[1].Filled)
	assert.Empty(t, chips[1].Value)
}
