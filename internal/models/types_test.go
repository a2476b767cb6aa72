package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScanValue(t *testing.T) {
	list := StringList{"reports:read", "fixes:write"}

	value, err := list.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)
}

func TestStringListScanNil(t *testing.T) {
	var scanned StringList
	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)
}

func TestStringListContains(t *testing.T) {
	list := StringList{"a", "b"}

	assert.True(t, list.Contains("a"))
	assert.False(t, list.Contains("c"))
	assert.False(t, StringList(nil).Contains("a"))
}

func TestJSONTextRoundTrip(t *testing.T) {
	text := JSONText(`{"key":"value"}`)

	value, err := text.Value()
	require.NoError(t, err)

	var scanned JSONText
	require.NoError(t, scanned.Scan(value))
	assert.JSONEq(t, `{"key":"value"}`, string(scanned))
}

func TestJSONTextMarshalsInline(t *testing.T) {
	payload := struct {
		Details JSONText `json:"details"`
	}{Details: JSONText(`{"url":"https://example.com"}`)}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"details":{"url":"https://example.com"}}`, string(raw))
}
