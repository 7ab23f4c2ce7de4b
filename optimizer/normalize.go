package optimizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const titleLimit = 40

// NormalizeSuggestions coerces whatever the model put under "suggestions"
// into structured entries. No element is dropped and order is preserved;
// the output always has the same length as the input.
func NormalizeSuggestions(raw []any) []Suggestion {
	out := make([]Suggestion, 0, len(raw))
	for i, item := range raw {
		fallbackID := fmt.Sprintf("S%d", i+1)
		switch v := item.(type) {
		case string:
			out = append(out, Suggestion{
				ID:     fallbackID,
				Title:  truncateRunes(v, titleLimit),
				Detail: v,
			})
		case map[string]any:
			out = append(out, Suggestion{
				ID:     stringField(v, fallbackID, "id"),
				Title:  stringField(v, "Suggestion", "title", "description"),
				Detail: stringField(v, "", "detail", "description"),
			})
		default:
			out = append(out, Suggestion{
				ID:     fallbackID,
				Title:  "Suggestion",
				Detail: renderValue(v),
			})
		}
	}
	return out
}

// NormalizeMetrics maps the loosely named keys models tend to emit onto the
// canonical metrics block. Anything missing or mistyped falls back to a
// default derived from the submitted code; this never fails.
func NormalizeMetrics(raw map[string]any, language, code string) Metrics {
	loc := strings.Count(code, "\n") + 1
	return Metrics{
		Language:         language,
		LOCBefore:        intField(raw, loc, "loc_before", "Lines of Code Before"),
		LOCAfter:         intField(raw, loc, "loc_after", "Lines of Code After"),
		Reduction:        intField(raw, 0, "reduction", "Lines of Code Reduced"),
		RedundantRemoved: optionalIntField(raw, "redundant_removed", "Redundant Variables Removed"),
		SecurityImproved: boolField(raw, false, "security_improved", "String Input Security Improved"),
	}
}

// truncateRunes limits by runes, not bytes, so multi-byte titles never get
// cut mid-character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func stringField(m map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			return s
		}
	}
	return fallback
}

func intField(m map[string]any, fallback int, keys ...string) int {
	for _, key := range keys {
		if n, ok := asInt(m[key]); ok {
			return n
		}
	}
	return fallback
}

func optionalIntField(m map[string]any, keys ...string) *int {
	for _, key := range keys {
		if n, ok := asInt(m[key]); ok {
			return &n
		}
	}
	return nil
}

func boolField(m map[string]any, fallback bool, keys ...string) bool {
	for _, key := range keys {
		if b, ok := m[key].(bool); ok {
			return b
		}
	}
	return fallback
}

// asInt accepts the numeric shapes encoding/json produces plus numeric
// strings, which smaller models emit for counters surprisingly often.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// renderValue gives a stable textual form for values that are neither
// strings nor objects (numbers, bools, null, nested lists).
func renderValue(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
