package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msetiadi/leadintel/internal/domain/analysis"
)

const validCompletion = `{
	"tier1": {"status": "Urgent/High-Priority", "items": ["CFO departed in June"], "hasSignals": true},
	"tier2": {"status": "No relevant signals identified", "items": [], "hasSignals": false},
	"insight": {"content": "Pitch an interim CFO search.", "hasSignals": true}
}`

func TestParseResult_Valid(t *testing.T) {
	result, err := analysis.ParseResult(validCompletion)
	require.NoError(t, err)

	assert.Equal(t, analysis.StatusUrgent, result.Tier1.Status)
	assert.Equal(t, []string{"CFO departed in June"}, result.Tier1.Items)
	assert.True(t, result.Tier1.HasSignals)
	assert.Equal(t, analysis.StatusNoSignals, result.Tier2.Status)
	assert.Empty(t, result.Tier2.Items)
	assert.False(t, result.Tier2.HasSignals)
	assert.True(t, result.Insight.HasSignals)
}

func TestParseResult_SignalFlagMatchesItems(t *testing.T) {
	result, err := analysis.ParseResult(validCompletion)
	require.NoError(t, err)

	assert.Equal(t, len(result.Tier1.Items) > 0, result.Tier1.HasSignals)
	assert.Equal(t, len(result.Tier2.Items) > 0, result.Tier2.HasSignals)
}

func TestParseResult_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "json fence", input: "```json\n" + validCompletion + "\n```"},
		{name: "bare fence", input: "```\n" + validCompletion + "\n```"},
		{name: "fence with surrounding whitespace", input: "\n\n```json\n" + validCompletion + "\n```\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := analysis.ParseResult(tt.input)
			require.NoError(t, err)
			assert.True(t, result.Tier1.HasSignals)
		})
	}
}

func TestParseResult_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t", "```json\n```"} {
		_, err := analysis.ParseResult(input)
		assert.ErrorIs(t, err, analysis.ErrEmptyResponse, "input %q", input)
	}
}

func TestParseResult_Malformed(t *testing.T) {
	for _, input := range []string{"not json at all", `{"tier1":`, "```json\n{broken\n```"} {
		_, err := analysis.ParseResult(input)
		assert.ErrorIs(t, err, analysis.ErrMalformedResponse, "input %q", input)
	}
}

func TestParseResult_SchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "missing insight",
			input: `{"tier1": {"status": "x", "items": [], "hasSignals": false}, "tier2": {"status": "x", "items": [], "hasSignals": false}}`,
		},
		{
			name:  "missing tier1",
			input: `{"tier2": {"status": "x", "items": [], "hasSignals": false}, "insight": {"content": "x", "hasSignals": false}}`,
		},
		{
			name:  "tier missing items",
			input: `{"tier1": {"status": "x", "hasSignals": false}, "tier2": {"status": "x", "items": [], "hasSignals": false}, "insight": {"content": "x", "hasSignals": false}}`,
		},
		{
			name:  "items wrong type",
			input: `{"tier1": {"status": "x", "items": "not-a-list", "hasSignals": false}, "tier2": {"status": "x", "items": [], "hasSignals": false}, "insight": {"content": "x", "hasSignals": false}}`,
		},
		{
			name:  "insight missing content",
			input: `{"tier1": {"status": "x", "items": [], "hasSignals": false}, "tier2": {"status": "x", "items": [], "hasSignals": false}, "insight": {"hasSignals": false}}`,
		},
		{
			name:  "hasSignals false with items present",
			input: `{"tier1": {"status": "x", "items": ["signal"], "hasSignals": false}, "tier2": {"status": "x", "items": [], "hasSignals": false}, "insight": {"content": "x", "hasSignals": false}}`,
		},
		{
			name:  "hasSignals true with empty items",
			input: `{"tier1": {"status": "x", "items": [], "hasSignals": true}, "tier2": {"status": "x", "items": [], "hasSignals": false}, "insight": {"content": "x", "hasSignals": false}}`,
		},
		{
			name:  "top level is an array",
			input: `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analysis.ParseResult(tt.input)
			assert.ErrorIs(t, err, analysis.ErrSchemaViolation)
		})
	}
}
