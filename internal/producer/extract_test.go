package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"direct", `  {"a": 1}  `, `{"a": 1}`},
		{"fenced", "Sure!\n```json\n{\"a\": 2}\n```\nGood luck.", `{"a": 2}`},
		{"bare fence", "```\n{\"a\": 3}\n```", `{"a": 3}`},
		{"embedded", `My picks are {"a": {"b": 4}} and that's it`, `{"a": {"b": 4}}`},
		{"brace in string", `text {"a": "}{"} tail`, `{"a": "}{"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON([]byte(tt.in))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	for _, in := range []string{"", "no json here", "[1,2,3]", `{"broken": `} {
		_, err := ExtractJSON([]byte(in))
		assert.ErrorIs(t, err, ErrNoJSON, in)
	}
}

func TestStampMetadata(t *testing.T) {
	raw := []byte(`{"model":"imposter","date":"1999-01-01","predictions":[{"confidence":0.75}]}`)

	out, err := StampMetadata(raw, "claude", "Claude", "2025-03-14")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"model": "claude",
		"model_display_name": "Claude",
		"date": "2025-03-14",
		"predictions": [{"confidence": 0.75}]
	}`, string(out))

	_, err = StampMetadata([]byte(`null`), "claude", "Claude", "2025-03-14")
	assert.Error(t, err)
}
