package collaborators

import (
	"encoding/json"
	"strings"
)

// CleanLLMContent strips the markdown wrapping LLMs like to put around JSON:
// code fences with an optional language tag and surrounding whitespace.
func CleanLLMContent(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.Contains(cleaned, "```") {
		startIdx := strings.Index(cleaned, "```")
		contentStart := startIdx + 3
		// Skip a language identifier like "json" on the fence line.
		if newlineIdx := strings.Index(cleaned[contentStart:], "\n"); newlineIdx != -1 {
			contentStart += newlineIdx + 1
		}
		endIdx := strings.LastIndex(cleaned, "```")
		if endIdx > contentStart {
			cleaned = cleaned[contentStart:endIdx]
		}
	}

	return strings.TrimSpace(cleaned)
}

// ExtractJSONObject finds the first balanced JSON object embedded in
// free-form text and reports whether it actually parses. This is the
// regex-free fallback extractor used when an LLM ignores the JSON-only
// instruction and wraps its answer in prose.
func ExtractJSONObject(content string) (string, bool) {
	cleaned := CleanLLMContent(content)

	start := strings.IndexByte(cleaned, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := cleaned[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				// Keep scanning: there may be a later valid object.
				next := strings.IndexByte(cleaned[i+1:], '{')
				if next == -1 {
					return "", false
				}
				start = i + 1 + next
				i = start - 1
				depth = 0
			}
		}
	}
	return "", false
}

// decodeInto extracts and unmarshals an LLM response into target. Returns
// false when no parsable JSON object can be recovered; target is untouched
// in that case.
func decodeInto(content string, target interface{}) bool {
	candidate := CleanLLMContent(content)
	if json.Valid([]byte(candidate)) {
		return json.Unmarshal([]byte(candidate), target) == nil
	}
	extracted, ok := ExtractJSONObject(content)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(extracted), target) == nil
}
