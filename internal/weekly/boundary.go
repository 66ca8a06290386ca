package weekly

import (
	"fmt"
	"time"
)

// Zone the board's civil calendar. The offset carries no daylight saving
// variation, so all boundary arithmetic is plain day math regardless of
// the host timezone
var Zone = time.FixedZone("UTC+05:30", 5*3600+30*60)

const keyLayout = "2006-01-02"

// WeekStart the Monday 00:00 instant that opens a week, as a date-only
// value in Zone. The zero value is not a valid week start
type WeekStart struct {
	t time.Time
}

// WeekStartAt compute the week start for the week containing now, shifted
// by offsetWeeks (0 = the week of now, -1 = the week before). Pure: the
// result depends only on the arguments
func WeekStartAt(now time.Time, offsetWeeks int) WeekStart {
	local := now.In(Zone)
	// Monday->0 ... Sunday->6
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Zone).
		AddDate(0, 0, -daysSinceMonday+offsetWeeks*7)
	return WeekStart{monday}
}

// ParseWeekStart parse a storage key produced by Key. The date is pinned
// to midnight in Zone, it is not required to be a Monday so historic
// keys stay readable
func ParseWeekStart(s string) (WeekStart, error) {
	t, err := time.ParseInLocation(keyLayout, s, Zone)
	if err != nil {
		return WeekStart{}, fmt.Errorf("invalid week start %q: %w", s, err)
	}
	return WeekStart{t}, nil
}

// Key the date-only storage key, eg. "2024-01-01"
func (w WeekStart) Key() string {
	return w.t.Format(keyLayout)
}

// Unix the absolute instant of the week's midnight in Zone, as epoch seconds
func (w WeekStart) Unix() int64 {
	return w.t.Unix()
}

// AddWeeks shift by whole weeks
func (w WeekStart) AddWeeks(n int) WeekStart {
	return WeekStart{w.t.AddDate(0, 0, n*7)}
}

// Equal report whether both values denote the same week
func (w WeekStart) Equal(other WeekStart) bool {
	return w.t.Equal(other.t)
}

// IsZero report whether w is the zero value
func (w WeekStart) IsZero() bool {
	return w.t.IsZero()
}

func (w WeekStart) String() string {
	return w.Key()
}
