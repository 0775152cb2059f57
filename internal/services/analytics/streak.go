package analytics

import (
	"sort"
	"time"

	"github.com/j-veylop/mise/internal/models"
)

const (
	day = 24 * time.Hour
	// streakTolerance absorbs clock skew between adjacent dates.
	streakTolerance = day + time.Second
)

// Streaks returns the current and longest runs of consecutive cooking days.
//
// The current streak is non-zero only when the most recent cooking day is
// today or yesterday. The longest streak is never less than the current one.
func Streaks(log []*models.CookedRecipe, now time.Time) (current, longest int) {
	dates := distinctDates(log, now.Location())
	if len(dates) == 0 {
		return 0, 0
	}

	today := civilDate(now, now.Location())
	yesterday := today.Add(-day)
	if dates[0].Equal(today) || dates[0].Equal(yesterday) {
		current = 1
		for i := 1; i < len(dates); i++ {
			if !dates[i].Equal(dates[i-1].Add(-day)) {
				break
			}
			current++
		}
	}

	run := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) <= streakTolerance {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	return current, max(longest, current)
}

// distinctDates returns the calendar dates in log, most recent first.
func distinctDates(log []*models.CookedRecipe, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(log))
	dates := make([]time.Time, 0, len(log))
	for _, e := range log {
		d := civilDate(e.CookedAt, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}
