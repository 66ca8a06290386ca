package weekly

import "strconv"

// Calendar raw per-user activity as delivered by the upstream provider:
// epoch-second keys (still strings on the wire) mapped to solve counts
type Calendar map[string]int

// SumSince total the counts recorded at or after the week boundary.
// Keys that do not parse as epoch seconds contribute nothing; upstream
// data is sparse and occasionally dirty and a single bad key must not
// void the whole sum
func SumSince(cal Calendar, boundary WeekStart) int {
	threshold := boundary.Unix()
	total := 0
	for key, count := range cal {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		if ts >= threshold {
			total += count
		}
	}
	return total
}
