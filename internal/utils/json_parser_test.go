package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "pure JSON",
			input: `{"budget": 600, "os": "Android"}`,
			want:  map[string]any{"budget": float64(600), "os": "Android"},
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"prefer_small\": true}\n```",
			want:  map[string]any{"prefer_small": true},
		},
		{
			name:  "surrounding prose",
			input: `Sure! Here is the intent: {"brands": ["Samsung"]} Let me know.`,
			want:  map[string]any{"brands": []any{"Samsung"}},
		},
		{
			name:  "trailing comma and unquoted keys",
			input: `{budget: 500, must_have: ["ip68",],}`,
			want:  map[string]any{"budget": float64(500), "must_have": []any{"ip68"}},
		},
		{
			name:  "braces inside strings",
			input: `note {"model": "Pixel {8a}"} end`,
			want:  map[string]any{"model": "Pixel {8a}"},
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "no JSON",
			input:   "I could not understand that",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			err := ParseAIJSON(tt.input, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONObject(t *testing.T) {
	got, err := ParseJSONObject(`{"os": "ios"}`)
	require.NoError(t, err)
	assert.Equal(t, "ios", got["os"])

	_, err = ParseJSONObject(`null`)
	assert.Error(t, err)
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", `{"a": 1}`, `{"a": 1}`},
		{"nested", `x {"a": {"b": 2}} y`, `{"a": {"b": 2}}`},
		{"escaped quote", `{"a": "say \"}\""}`, `{"a": "say \"}\""}`},
		{"unbalanced", `{"a": 1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBalancedBraces(tt.input, '{', '}'))
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	assert.Equal(t, `{"test": true}`, extractFromMarkdown("```\n{\"test\": true}\n```"))
	assert.Empty(t, extractFromMarkdown("```\nplain text\n```"))
	assert.Empty(t, extractFromMarkdown(`{"test": true}`))
}
