package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	params, err := parseKeyValues(nil)
	require.NoError(t, err)
	assert.Nil(t, params)

	params, err = parseKeyValues([]string{"branch=testing", "state=alive", "state=dead", "filter[kind]=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"branch":       "testing",
		"state":        []string{"alive", "dead"},
		"filter[kind]": "a=b",
	}, params)

	_, err = parseKeyValues([]string{"novalue"})
	require.ErrorIs(t, err, ErrInvalidKeyValue)

	_, err = parseKeyValues([]string{"=value"})
	require.ErrorIs(t, err, ErrInvalidKeyValue)
}

func TestParseHeaders(t *testing.T) {
	t.Parallel()

	headers, err := parseHeaders([]string{"accept=application/xml"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"accept": "application/xml"}, headers)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, headers)
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	payload, err := parsePayload(`{"command": "sleep 60", "nodes": 2}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"command": "sleep 60", "nodes": 2}, payload)

	payload, err = parsePayload("command: date\nresources:\n  - nodes=1\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"command": "date", "resources": []any{"nodes=1"}}, payload)

	_, err = parsePayload("  ")
	require.ErrorIs(t, err, ErrPayloadRequired)

	_, err = parsePayload("{unterminated")
	require.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, NotAvailable},
		{"string", "rennes", "rennes"},
		{"number", json.Number("42"), "42"},
		{"bool", true, "true"},
		{"list", []any{"a", json.Number("1")}, `["a",1]`},
		{"object", map[string]any{"k": json.Number("1.5")}, `{"k":1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, formatValue(tt.value))
		})
	}
}

func TestPlain(t *testing.T) {
	t.Parallel()

	value := plain(map[string]any{
		"total": json.Number("9"),
		"ratio": json.Number("0.5"),
		"items": []any{json.Number("1"), "a"},
	})

	assert.Equal(t, map[string]any{
		"total": int64(9),
		"ratio": 0.5,
		"items": []any{int64(1), "a"},
	}, value)
}
