package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyConfirmation(t *testing.T) {
	tests := []struct {
		message string
		want    Answer
	}{
		{"yes", AnswerYes},
		{"Yes!", AnswerYes},
		{"yeah", AnswerYes},
		{"sounds good", AnswerYes},
		{"let's do it", AnswerYes},
		{"  OKAY  ", AnswerYes},
		{"no", AnswerNo},
		{"not yet", AnswerNo},
		{"wait", AnswerNo},
		{"I want to change", AnswerNo},
		{"maybe later", AnswerUnknown},
		{"what's the weather", AnswerUnknown},
		{"", AnswerUnknown},
		{"yes but also no", AnswerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyConfirmation(tt.message))
		})
	}
}

func TestIsNone(t *testing.T) {
	assert.True(t, IsNone("none"))
	assert.True(t, IsNone(" None "))
	assert.True(t, IsNone("NONE"))
	assert.False(t, IsNone("none of that"))
	assert.False(t, IsNone("nothing"))
}

func TestDetectPastedNumberedLines(t *testing.T) {
	message := `Here's the plan we discussed:
1. Book flights to Lisbon for the first weekend of June
2. Reserve a hotel near Alfama for two nights
3. Get tickets for the Belem tower tour
4. Make a dinner reservation at a fado house
5. Pack light, carry-on only
6. Print the walking route for day two
Note: prices were checked last week.`

	plan, ok := DetectPasted(message)
	require.True(t, ok)
	assert.Len(t, plan.Steps, 6)
	assert.Equal(t, "Book flights to Lisbon for the first weekend of June", plan.Steps[0])
	for _, step := range plan.Steps {
		assert.NotContains(t, strings.ToLower(step), "note:", "boilerplate must be discarded")
	}
}

func TestDetectPastedRequiresThreeSteps(t *testing.T) {
	message := `My plan:
1. Book flights
2. Reserve hotel`
	_, ok := DetectPasted(message)
	assert.False(t, ok)
}

func TestDetectPastedShortMessageNeedsKeyword(t *testing.T) {
	// Three steps, short message, no planning keyword anywhere.
	noKeyword := "1. buy milk\n2. buy eggs\n3. buy bread"
	_, ok := DetectPasted(noKeyword)
	assert.False(t, ok)

	withKeyword := "My plan:\n1. buy milk\n2. buy eggs\n3. buy bread"
	_, ok = DetectPasted(withKeyword)
	assert.True(t, ok)
}

func TestDetectPastedLongMessageWaivesKeyword(t *testing.T) {
	long := "1. visit the aquarium with the kids and look at the otters for a while\n" +
		"2. have lunch at the market hall across the bridge near the fountain\n" +
		"3. take the tram up the hill and walk back down through the old town\n" +
		"4. afternoon coffee and pastries at the corner bakery before heading home"
	require.Greater(t, len(long), 200)
	plan, ok := DetectPasted(long)
	require.True(t, ok)
	assert.Len(t, plan.Steps, 4)
}

func TestDetectPastedCapsAtFifteenSteps(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("The full process:\n")
	for i := 1; i <= 20; i++ {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat(" ", i%2))
		sb.WriteString(itoa(i))
		sb.WriteString(". do task number ")
		sb.WriteString(alpha(i))
		sb.WriteString("\n")
	}
	plan, ok := DetectPasted(sb.String())
	require.True(t, ok)
	assert.Len(t, plan.Steps, 15)
}

func TestDetectPastedDiscardsBoilerplate(t *testing.T) {
	message := `My travel plan:
1. Here's what I found online
2. Book the flights early
3. Reserve the hotel
4. Important reminders about passports
5. Buy travel insurance`

	plan, ok := DetectPasted(message)
	require.True(t, ok)
	assert.Len(t, plan.Steps, 3)
	assert.Equal(t, []string{"Book the flights early", "Reserve the hotel", "Buy travel insurance"}, plan.Steps)
}

func TestDetectPastedInlineSteps(t *testing.T) {
	message := "Follow this process please: 1. warm up for ten minutes 2. lift weights for forty minutes 3. stretch and cool down"
	plan, ok := DetectPasted(message)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(plan.Steps), 3)
}

func TestDetectPastedIgnoresPlainText(t *testing.T) {
	_, ok := DetectPasted("plan my weekend")
	assert.False(t, ok)

	_, ok = DetectPasted("I'd like to plan a trip to Lisbon sometime in June with my partner")
	assert.False(t, ok)
}

// small helpers so the cap test doesn't pull in strconv formatting noise

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func alpha(n int) string {
	letters := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
		"iota", "kappa", "lambda", "mu", "nu", "xi", "omicron", "pi", "rho", "sigma", "tau", "upsilon"}
	return letters[(n-1)%len(letters)]
}
