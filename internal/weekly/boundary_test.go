package weekly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStartAt_SameWeekSameResult(t *testing.T) {
	// 2024-01-01 was a Monday
	instants := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, Zone),
		time.Date(2024, 1, 3, 15, 30, 0, 0, Zone),
		time.Date(2024, 1, 7, 23, 59, 59, 0, Zone),
		// expressed in UTC but still inside the same civil week
		time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
	for _, now := range instants {
		assert.Equal(t, "2024-01-01", WeekStartAt(now, 0).Key(), "instant %s", now)
	}
}

func TestWeekStartAt_AdvancesByWholeWeeks(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 23, 59, 59, 0, Zone)
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, Zone)

	assert.Equal(t, "2024-01-01", WeekStartAt(sunday, 0).Key())
	assert.Equal(t, "2024-01-08", WeekStartAt(monday, 0).Key())
}

func TestWeekStartAt_IgnoresHostTimezone(t *testing.T) {
	// 2023-12-31 19:00 UTC is already Monday 00:30 in the board's zone
	now := time.Date(2023, 12, 31, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01", WeekStartAt(now, 0).Key())
}

func TestWeekStartAt_AcrossYearBoundary(t *testing.T) {
	// 2023-12-27 was a Wednesday; its week opened on 2023-12-25 and the
	// following week opens in the next year
	now := time.Date(2023, 12, 27, 9, 0, 0, 0, Zone)
	assert.Equal(t, "2023-12-25", WeekStartAt(now, 0).Key())
	assert.Equal(t, "2024-01-01", WeekStartAt(now, 1).Key())
}

func TestWeekStartAt_OffsetMatchesShiftedBase(t *testing.T) {
	now := time.Date(2024, 3, 14, 18, 45, 12, 0, Zone)
	base := WeekStartAt(now, 0)
	for _, offset := range []int{-3, -1, 0, 1, 5} {
		assert.True(t, WeekStartAt(now, offset).Equal(base.AddWeeks(offset)), "offset %d", offset)
	}
}

func TestWeekStartUnix_IsMidnightInZone(t *testing.T) {
	w := WeekStartAt(time.Date(2024, 1, 3, 12, 0, 0, 0, Zone), 0)
	midnight := time.Date(2024, 1, 1, 0, 0, 0, 0, Zone)
	assert.Equal(t, midnight.Unix(), w.Unix())
}

func TestParseWeekStart(t *testing.T) {
	w, err := ParseWeekStart("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", w.Key())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, Zone).Unix(), w.Unix())

	_, err = ParseWeekStart("01/01/2024")
	assert.Error(t, err)
}
