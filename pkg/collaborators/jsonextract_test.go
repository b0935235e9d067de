package collaborators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanLLMContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain json untouched",
			content: `{"a": 1}`,
			want:    `{"a": 1}`,
		},
		{
			name:    "fenced json",
			content: "```json\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "fence without language",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "surrounding whitespace",
			content: "  \n {\"a\": 1} \n ",
			want:    `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLLMContent(tt.content))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{
			name:    "bare object",
			content: `{"domain": "travel", "confidence": 0.9}`,
			want:    `{"domain": "travel", "confidence": 0.9}`,
			wantOK:  true,
		},
		{
			name:    "object wrapped in prose",
			content: `Sure! Here is the classification: {"domain": "travel", "confidence": 0.9} — let me know if you need more.`,
			want:    `{"domain": "travel", "confidence": 0.9}`,
			wantOK:  true,
		},
		{
			name:    "nested object",
			content: `result: {"extracted_slots": {"timing": {"date": "2025-06-01"}}}`,
			want:    `{"extracted_slots": {"timing": {"date": "2025-06-01"}}}`,
			wantOK:  true,
		},
		{
			name:    "braces inside strings",
			content: `{"note": "use {curly} braces", "ok": true}`,
			want:    `{"note": "use {curly} braces", "ok": true}`,
			wantOK:  true,
		},
		{
			name:    "no object at all",
			content: `I could not classify that message.`,
			wantOK:  false,
		},
		{
			name:    "unbalanced braces",
			content: `{"domain": "travel"`,
			wantOK:  false,
		},
		{
			name:    "invalid first candidate, valid second",
			content: `{not json} but then {"domain": "fitness"}`,
			want:    `{"domain": "fitness"}`,
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeInto(t *testing.T) {
	var payload struct {
		Domain string `json:"domain"`
	}

	require.True(t, decodeInto("```json\n{\"domain\": \"travel\"}\n```", &payload))
	assert.Equal(t, "travel", payload.Domain)

	payload.Domain = ""
	require.True(t, decodeInto(`The answer: {"domain": "event"}`, &payload))
	assert.Equal(t, "event", payload.Domain)

	assert.False(t, decodeInto("not json at all", &payload))
}

func TestHistoryTail(t *testing.T) {
	entry := func(content string) HistoryEntry {
		return HistoryEntry{Role: "user", Content: content, Timestamp: time.Now()}
	}

	history := []HistoryEntry{
		entry("first message"),
		entry("second message"),
		entry("third message"),
	}

	// A generous budget keeps everything.
	tail := HistoryTail(history, 100000)
	assert.Len(t, tail, 3)

	// A tiny budget still includes the most recent entry.
	tail = HistoryTail(history, 1)
	require.Len(t, tail, 1)
	assert.Equal(t, "third message", tail[0].Content)

	// Order is preserved, oldest first.
	tail = HistoryTail(history, 100000)
	assert.Equal(t, "first message", tail[0].Content)
	assert.Equal(t, "third message", tail[2].Content)

	// Empty history stays empty.
	assert.Empty(t, HistoryTail(nil, 100))
}
