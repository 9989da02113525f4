package llms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemaFixture struct {
	Name  string   `json:"name" jsonschema:"required"`
	Score float64  `json:"score" jsonschema:"required,minimum=0,maximum=1"`
	Tags  []string `json:"tags"`
}

func TestSchemaFor(t *testing.T) {
	schema, err := SchemaFor[schemaFixture]()
	require.NoError(t, err)

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "score")

	required, ok := schema["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "name")
	assert.Contains(t, required, "score")
}

func TestDecodeStructured(t *testing.T) {
	var out schemaFixture
	require.NoError(t, DecodeStructured(`{"name": "a", "score": 0.5}`, &out))
	assert.Equal(t, "a", out.Name)
}

func TestDecodeStructuredRepairs(t *testing.T) {
	cases := []string{
		`{"name": "a", "score": 0.5,}`,
		`{name: "a", score: 0.5}`,
		"```json\n{\"name\": \"a\", \"score\": 0.5}\n```",
	}

	for _, raw := range cases {
		var out schemaFixture
		require.NoError(t, DecodeStructured(raw, &out), raw)
		assert.Equal(t, "a", out.Name, raw)
	}
}
