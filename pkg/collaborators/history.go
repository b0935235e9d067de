package collaborators

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// defaultHistoryTokens bounds the conversation tail included in classifier
// and inferencer prompts.
const defaultHistoryTokens = 1200

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func tokenCount(text string) int {
	encodingOnce.Do(func() {
		// cl100k_base is a reasonable cross-provider approximation.
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		// Rough chars-per-token heuristic when the encoding is unavailable.
		return (len(text) + 3) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}

// HistoryTail returns the most recent entries whose combined token count
// fits the budget, oldest first. A budget of zero or less uses the default.
func HistoryTail(history []HistoryEntry, maxTokens int) []HistoryEntry {
	if maxTokens <= 0 {
		maxTokens = defaultHistoryTokens
	}
	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := tokenCount(history[i].Content) + 4 // small per-message overhead
		if total+cost > maxTokens && start != len(history) {
			break
		}
		total += cost
		start = i
	}
	return history[start:]
}

// renderHistory formats a history tail for inclusion in a prompt.
func renderHistory(history []HistoryEntry) string {
	if len(history) == 0 {
		return "(no prior turns)"
	}
	var sb strings.Builder
	for _, h := range history {
		sb.WriteString(h.Role)
		sb.WriteString(": ")
		sb.WriteString(h.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
