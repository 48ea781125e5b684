package jsonx_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronfux/LeadGenius/jsonx"
)

func TestExtractBareDocument(t *testing.T) {
	doc, err := jsonx.Extract(`  {"businesses": []}  `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"businesses": []}`, string(doc))
}

func TestExtractBareArray(t *testing.T) {
	doc, err := jsonx.Extract(`[{"company_name": "Acme"}]`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"company_name": "Acme"}]`, string(doc))
}

func TestExtractFromProse(t *testing.T) {
	text := `Here are the results of my search.

{"city": "Houston", "businesses": [{"company_name": "Acme EMS"}]}

Let me know if you need more detail.`

	doc, err := jsonx.Extract(text)
	require.NoError(t, err)

	var parsed struct {
		City string `json:"city"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.Equal(t, "Houston", parsed.City)
}

func TestExtractFromCodeFence(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "json tag",
			text: "Sure!\n```json\n{\"city\": \"Austin\"}\n```\nDone.",
		},
		{
			name: "no tag",
			text: "```\n{\"city\": \"Austin\"}\n```",
		},
		{
			name: "uppercase tag",
			text: "```JSON\n{\"city\": \"Austin\"}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := jsonx.Extract(tt.text)
			require.NoError(t, err)
			assert.JSONEq(t, `{"city": "Austin"}`, string(doc))
		})
	}
}

func TestExtractBracesInsideStrings(t *testing.T) {
	text := `note: {"name": "Curly {Brace} Co", "tag": "a}b"} trailing`
	doc, err := jsonx.Extract(text)
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.Equal(t, "Curly {Brace} Co", parsed["name"])
}

func TestExtractSkipsInvalidCandidates(t *testing.T) {
	text := `broken {not json} but then {"ok": true}`
	doc, err := jsonx.Extract(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(doc))
}

func TestExtractFirstDocumentWins(t *testing.T) {
	text := `{"first": 1} and also {"second": 2}`
	doc, err := jsonx.Extract(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"first": 1}`, string(doc))
}

func TestExtractNoDocument(t *testing.T) {
	for _, text := range []string{
		"",
		"   \n\t  ",
		"no structured data here",
		"unbalanced { forever",
		`"just a string"`,
		"42",
	} {
		_, err := jsonx.Extract(text)
		assert.ErrorIs(t, err, jsonx.ErrNoDocument, "input %q", text)
	}
}
