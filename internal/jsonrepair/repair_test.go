package jsonrepair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestExtractWellFormed(t *testing.T) {
	got, err := Extract(`{"name": "Ada", "skills": ["go", "sql"]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada", "skills": []any{"go", "sql"}}, mustParse(t, got))
}

func TestExtractFencedBlock(t *testing.T) {
	raw := "Here is the extraction:\n```json\n{\"company\": \"Acme\"}\n```\nDone."
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"company": "Acme"}, mustParse(t, got))
}

func TestExtractLeadingProse(t *testing.T) {
	got, err := Extract(`Sure! {"role": "Engineer"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"role": "Engineer"}, mustParse(t, got))
}

// A fenced response missing one closing brace and containing a literal
// newline inside a string value must decode to the same object as its
// well-formed equivalent.
func TestExtractMissingBraceAndRawNewline(t *testing.T) {
	broken := "```json\n{\"summary\": \"First line\nSecond line\", \"experiences\": [{\"company\": \"Acme\"}]\n```"
	wellFormed := `{"summary": "First line\nSecond line", "experiences": [{"company": "Acme"}]}`

	got, err := Extract(broken)
	require.NoError(t, err)
	assert.Equal(t, mustParse(t, wellFormed), mustParse(t, got))
}

func TestExtractTrailingCommas(t *testing.T) {
	got, err := Extract(`{"skills": ["go", "sql",], "name": "Ada",}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"skills": []any{"go", "sql"}, "name": "Ada"}, mustParse(t, got))
}

func TestExtractResponseWrapper(t *testing.T) {
	raw := `{"response": {"name": "Ada"}, "model": "gpt-4o"}`
	got, err := Extract(raw)
	require.NoError(t, err)
	// The outer object is already valid; the wrapper fallback only fires
	// when outer-level parsing fails.
	m := mustParse(t, got)
	assert.Contains(t, m, "response")
}

func TestExtractIdempotent(t *testing.T) {
	raw := "```json\n{\"a\": \"x\ny\", \"b\": [1, 2,]\n```"
	once, err := Extract(raw)
	require.NoError(t, err)
	twice, err := Extract(once)
	require.NoError(t, err)
	assert.Equal(t, mustParse(t, once), mustParse(t, twice))
}

func TestExtractNoObject(t *testing.T) {
	_, err := Extract("no json here at all")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestExtractEmptyInput(t *testing.T) {
	_, err := Extract("")
	assert.ErrorIs(t, err, ErrMalformed)
}
