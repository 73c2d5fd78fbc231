package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes markdown code-fence wrapping from an LLM response so
// the remainder can be JSON-parsed. Handles ```json and bare ``` fences;
// responses without fences pass through trimmed.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(cleaned, "```json"); ok {
		cleaned = strings.TrimLeft(rest, " \t\r\n")
	}
	if rest, ok := strings.CutPrefix(cleaned, "```"); ok {
		cleaned = strings.TrimLeft(rest, " \t\r\n")
	}
	if rest, ok := strings.CutSuffix(cleaned, "```"); ok {
		cleaned = strings.TrimRight(rest, " \t\r\n")
	}
	return cleaned
}

// ParseJSONResponse strips fence markers from a response and unmarshals the
// result into T.
func ParseJSONResponse[T any](raw string) (T, error) {
	var result T
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON response: %w", err)
	}
	return result, nil
}
