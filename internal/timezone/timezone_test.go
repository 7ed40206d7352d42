package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_FallsBack(t *testing.T) {
	assert.Equal(t, time.UTC, Location("UTC"))

	loc := Location("Not/AZone")
	if IsValid(DefaultTimezone) {
		assert.Equal(t, DefaultTimezone, loc.String())
	} else {
		assert.Equal(t, time.UTC, loc)
	}
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("UTC", "2026-03-02", "10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), got)

	_, err = ParseDateTime("UTC", "2026-02-30", "10:30")
	assert.Error(t, err)
}

func TestDayBounds_DST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	start, end := DayBounds(time.Date(2026, 11, 1, 15, 0, 0, 0, loc))

	assert.Equal(t, 25*time.Hour, end.Sub(start))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2026, time.December, time.UTC)

	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
