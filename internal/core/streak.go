package core

import (
	"math"
	"time"
)

// ComputeStreak counts consecutive practice days ending at the most recent
// entry of dates, which must be sorted newest first. The streak is zero
// unless the most recent day is today or yesterday. Only the calendar date
// of each value is used.
func ComputeStreak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	newest := day(dates[0])
	now := day(today)
	if !newest.Equal(now) && !newest.Equal(now.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	expected := newest.AddDate(0, 0, -1)
	for _, d := range dates[1:] {
		if !day(d).Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// Accuracy returns correct/attempted as a percentage rounded to one decimal.
func Accuracy(correct, attempted int64) float64 {
	if attempted <= 0 {
		return 0
	}
	pct := float64(correct) / float64(attempted) * 100
	return math.Round(pct*10) / 10
}
