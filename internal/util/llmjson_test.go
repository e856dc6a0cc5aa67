package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObjectFromFence(t *testing.T) {
	text := "Here is your plan:\n```json\n{\"plan_name\": \"Guitar\"}\n```\nGood luck!"

	raw, err := ExtractJSONObject(text)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Guitar", doc["plan_name"])
}

func TestExtractJSONObjectNested(t *testing.T) {
	text := `prefix {"a": {"b": {"c": 1}}, "d": [1, 2]} suffix`

	raw, err := ExtractJSONObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": {"c": 1}}, "d": [1, 2]}`, string(raw))
}

func TestExtractJSONObjectBracesInsideStrings(t *testing.T) {
	text := `{"note": "use {curly} braces", "quote": "she said \"hi\" {"}`

	raw, err := ExtractJSONObject(text)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "use {curly} braces", doc["note"])
}

func TestExtractJSONObjectSkipsInvalidCandidate(t *testing.T) {
	text := `{not json} but then {"valid": true}`

	raw, err := ExtractJSONObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid": true}`, string(raw))
}

func TestExtractJSONObjectAfterStrayOpenBrace(t *testing.T) {
	text := "Sure { here is the plan:\n{\"daily_schedule\": [{\"date\": \"2024-01-02\"}]}"

	raw, err := ExtractJSONObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"daily_schedule": [{"date": "2024-01-02"}]}`, string(raw))
}

func TestExtractJSONObjectNoObject(t *testing.T) {
	for _, text := range []string{"", "plain prose", "unbalanced { forever", "[1, 2, 3]"} {
		_, err := ExtractJSONObject(text)
		assert.ErrorIs(t, err, ErrNoJSONObject, "input %q", text)
	}
}
