package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpilot/pkg/logger"
)

const testCatalog = `
domains:
  - name: travel
    aliases: [trip, vacation]
    description: Trips and vacations
    keywords: [flight, hotel]
    questions:
      quick:
        - id: destination
          text: Where to?
          priority: 10
          required: true
          slot_path: destination
          input_type: free-text
        - id: dates
          text: When?
          priority: 8
          required: true
          slot_path: timing.dates
          input_type: date-range
      detailed:
        - id: destination
          text: Where to?
          priority: 10
          required: true
          slot_path: destination
          input_type: free-text
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "domains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	log := logger.CreateTestLogger(filepath.Join(t.TempDir(), "test.log"), "debug")
	path := writeCatalog(t, testCatalog)

	r, err := LoadFile(log, path)
	require.NoError(t, err)

	d, ok := r.Lookup("travel")
	require.True(t, ok)
	assert.Equal(t, "travel", d.Name)
	assert.Len(t, d.Questions(PlanModeQuick), 2)
	assert.Len(t, d.Questions(PlanModeDetailed), 1)

	// alias and case-insensitive resolution
	d, ok = r.Lookup("TRIP")
	require.True(t, ok)
	assert.Equal(t, "travel", d.Name)

	_, ok = r.Lookup("no-such-domain")
	assert.False(t, ok)

	assert.Equal(t, []string{"travel"}, r.Names())
}

func TestDetailedFallsBackToQuick(t *testing.T) {
	d := &Domain{
		Name: "minimal",
		QuestionSets: QuestionSets{
			Quick: []Question{{ID: "q1", Text: "?", Priority: 5, SlotPath: "a", InputType: InputFreeText}},
		},
	}
	assert.Len(t, d.Questions(PlanModeDetailed), 1)
}

func TestValidateRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name   string
		domain Domain
		errMsg string
	}{
		{
			name: "duplicate id",
			domain: Domain{
				Name: "d",
				QuestionSets: QuestionSets{Quick: []Question{
					{ID: "q", Text: "?", Priority: 5, SlotPath: "a", InputType: InputFreeText},
					{ID: "q", Text: "?", Priority: 5, SlotPath: "b", InputType: InputFreeText},
				}},
			},
			errMsg: "duplicate question id",
		},
		{
			name: "duplicate slot path",
			domain: Domain{
				Name: "d",
				QuestionSets: QuestionSets{Quick: []Question{
					{ID: "q1", Text: "?", Priority: 5, SlotPath: "a", InputType: InputFreeText},
					{ID: "q2", Text: "?", Priority: 5, SlotPath: "a", InputType: InputFreeText},
				}},
			},
			errMsg: "duplicate slot_path",
		},
		{
			name: "priority out of range",
			domain: Domain{
				Name: "d",
				QuestionSets: QuestionSets{Quick: []Question{
					{ID: "q1", Text: "?", Priority: 11, SlotPath: "a", InputType: InputFreeText},
				}},
			},
			errMsg: "outside 1-10",
		},
		{
			name: "single choice without choices",
			domain: Domain{
				Name: "d",
				QuestionSets: QuestionSets{Quick: []Question{
					{ID: "q1", Text: "?", Priority: 5, SlotPath: "a", InputType: InputSingleChoice},
				}},
			},
			errMsg: "no choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.domain.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestReloadSwapsTableAtomically(t *testing.T) {
	log := logger.CreateTestLogger(filepath.Join(t.TempDir(), "test.log"), "debug")
	path := writeCatalog(t, testCatalog)

	r, err := LoadFile(log, path)
	require.NoError(t, err)

	before, ok := r.Lookup("travel")
	require.True(t, ok)

	updated := testCatalog + `
  - name: fitness
    description: Workouts
    questions:
      quick:
        - id: goal
          text: Goal?
          priority: 10
          required: true
          slot_path: goal
          input_type: free-text
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, r.Reload())

	_, ok = r.Lookup("fitness")
	assert.True(t, ok)

	// The pre-reload domain pointer is still a fully usable snapshot.
	assert.Len(t, before.Questions(PlanModeQuick), 2)
}

func TestReloadFailureKeepsCurrentTable(t *testing.T) {
	log := logger.CreateTestLogger(filepath.Join(t.TempDir(), "test.log"), "debug")
	path := writeCatalog(t, testCatalog)

	r, err := LoadFile(log, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("domains: [this is not valid"), 0o644))
	require.Error(t, r.Reload())

	_, ok := r.Lookup("travel")
	assert.True(t, ok, "failed reload must leave the previous table in place")
}

func TestBuiltinCatalogIsValid(t *testing.T) {
	log := logger.CreateTestLogger(filepath.Join(t.TempDir(), "test.log"), "debug")
	r := Builtin(log)

	for _, d := range r.Domains() {
		assert.NoError(t, d.Validate(), "builtin domain %s", d.Name)
		assert.NotEmpty(t, d.Questions(PlanModeQuick), "builtin domain %s has no quick questions", d.Name)
	}

	d, ok := r.Lookup("weekend")
	require.True(t, ok, "weekend alias should resolve")
	assert.Equal(t, "travel", d.Name)
	assert.Len(t, d.Questions(PlanModeQuick), 5)
}
