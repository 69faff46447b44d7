package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeysAndDropsWhitespace(t *testing.T) {
	out, err := CanonicalJSON(map[string]any{"b": 1, "a": []any{true, "x"}, "c": nil})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,"x"],"b":1,"c":null}`, string(out))
}

func TestCanonicalJSON_Numbers(t *testing.T) {
	out, err := CanonicalJSON(map[string]any{"hours": 5.5, "weight": 30.0, "loss": -27})
	require.NoError(t, err)
	assert.Equal(t, `{"hours":5.5,"loss":-27,"weight":30}`, string(out))
}

func TestCanonicalJSON_NoHTMLEscapingAndNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	out, err := CanonicalJSON(map[string]any{"note": "cafe\u0301 <b>&"})
	require.NoError(t, err)
	assert.Equal(t, "{\"note\":\"caf\u00e9 <b>&\"}", string(out))
}

func TestCanonicalJSON_LineSeparatorsLiteral(t *testing.T) {
	out, err := CanonicalJSON("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(out))

	out, err = CanonicalJSON(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(out))
}

func TestCanonicalJSON_Deterministic(t *testing.T) {
	d := NewDayLog()
	d.Meals[SlotLunch] = MealRecord{Status: StatusFollowed}
	d.Meals[SlotJuice] = MealRecord{Status: StatusSkipped}

	first, err := CanonicalJSON(d)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := CanonicalJSON(d)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSnapshotHash_SeparatesDates(t *testing.T) {
	payload := []byte(`{"records":{}}`)
	h1, err := SnapshotHash("2024-01-01", "daily", payload)
	require.NoError(t, err)
	h2, err := SnapshotHash("2024-01-02", "daily", payload)
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2)
}
