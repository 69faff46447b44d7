package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
	assert.False(t, ValidDate("01/02/2024"))
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got)

	got, err = AddDays("2024-01-01", 29)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-30", got)
}

func TestDaysBetween_IgnoresTimeOfDayAndOffset(t *testing.T) {
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// DST starts 2024-03-10 in New York.
	late := time.Date(2024, 3, 11, 23, 59, 0, 0, ny)

	assert.Equal(t, 2, DaysBetween(start, late))
	assert.Equal(t, -2, DaysBetween(late, start))
	assert.Equal(t, 0, DaysBetween(start, start.Add(23*time.Hour)))
}

func TestSequence(t *testing.T) {
	s := NewSequence()
	assert.Equal(t, int64(0), s.Current())
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())

	r := NewSequenceAt(41)
	assert.Equal(t, int64(42), r.Next())
}
