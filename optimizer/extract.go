package optimizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Extraction failures. Parse errors from a located candidate are wrapped
// and propagated instead, so callers can log the offending text.
var (
	ErrNoJSON         = errors.New("no JSON detected in model response")
	ErrIncompleteJSON = errors.New("incomplete JSON block in model response")
)

// ExtractJSON returns the first balanced JSON object found inside a model
// completion, tolerating surrounding prose and markdown code fences.
//
// The scan tracks string-literal state so braces inside JSON string values
// do not corrupt the depth count.
func ExtractJSON(text string) (map[string]any, error) {
	text = stripFences(strings.TrimSpace(text))

	start := strings.Index(text, "{")
	if start < 0 {
		return nil, ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				candidate := text[start : i+1]
				var obj map[string]any
				if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
					return nil, fmt.Errorf("parse extracted JSON: %w", err)
				}
				return obj, nil
			}
		}
	}
	return nil, ErrIncompleteJSON
}

// stripFences removes a leading ``` or ```json marker and a trailing ```
// marker. Only markers at the very edges are touched; fences that appear
// mid-text are noise the brace scan skips naturally.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```") {
		rest := s[3:]
		if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
			rest = rest[4:]
		}
		s = strings.TrimSpace(rest)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	return s
}
