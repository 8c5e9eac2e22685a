package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks a generation response that could not be parsed even
// after the recovery stage. Not retryable.
var ErrMalformed = errors.New("malformed generation response")

// stripFences removes markdown code-fence markers the generation service
// commonly wraps its output in.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractObject returns the first balanced brace-delimited region of s.
// It tracks JSON string literals and escapes so braces inside story text
// do not break the balance count. Returns false when no balanced object
// exists.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

type weeklyEntry struct {
	Story string `json:"story"`
}

// parseWeekly parses a weekly-batch response into date → story text.
// Strict parse first; on failure a recovery pass extracts the first
// balanced object literal before giving up with ErrMalformed.
func parseWeekly(raw string) (map[string]string, error) {
	cleaned := stripFences(raw)

	var entries map[string]weeklyEntry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		recovered, ok := extractObject(cleaned)
		if !ok {
			return nil, fmt.Errorf("%w: no object literal found", ErrMalformed)
		}
		if err := json.Unmarshal([]byte(recovered), &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	stories := make(map[string]string, len(entries))
	for date, e := range entries {
		stories[date] = e.Story
	}
	return stories, nil
}
