package optimizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONCleanInput(t *testing.T) {
	obj := map[string]any{"a": float64(1), "nested": map[string]any{"b": "x"}}
	encoded, err := json.Marshal(obj)
	require.NoError(t, err)

	got, err := ExtractJSON(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, obj, got)
}

func TestExtractJSONStripsCodeFences(t *testing.T) {
	got, err := ExtractJSON("```json\n{\"a\":1}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestExtractJSONStripsBareFences(t *testing.T) {
	got, err := ExtractJSON("```\n{\"a\":1}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestExtractJSONFenceTagCaseInsensitive(t *testing.T) {
	got, err := ExtractJSON("```JSON\n{\"a\":1}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestExtractJSONToleratesSurroundingProse(t *testing.T) {
	got, err := ExtractJSON("Sure! Here is the result:\n{\"a\":1}\nHope that helps.")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestExtractJSONNestedObjects(t *testing.T) {
	got, err := ExtractJSON("{\"a\":{\"b\":1}}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": float64(1)}}, got)
}

func TestExtractJSONFirstObjectWins(t *testing.T) {
	got, err := ExtractJSON("{\"first\":true} and later {\"second\":true}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"first": true}, got)
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	got, err := ExtractJSON("{\"code\":\"if (x) { y(); }\"}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"code": "if (x) { y(); }"}, got)
}

func TestExtractJSONEscapedQuotesInsideStrings(t *testing.T) {
	got, err := ExtractJSON(`{"a":"he said \"{\" once"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": `he said "{" once`}, got)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("no json here")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSONIncompleteObject(t *testing.T) {
	_, err := ExtractJSON("{\"a\":1")
	assert.ErrorIs(t, err, ErrIncompleteJSON)
}

func TestExtractJSONParseFailurePropagates(t *testing.T) {
	// Balanced braces but not valid JSON.
	_, err := ExtractJSON("{not json}")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
	assert.NotErrorIs(t, err, ErrIncompleteJSON)
	assert.Contains(t, err.Error(), "parse extracted JSON")
}
