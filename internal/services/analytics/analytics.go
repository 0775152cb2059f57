// Package analytics derives cooking statistics from the cooked-recipe log.
// Every function here is pure: the log and the current time are inputs, and
// nothing is cached or persisted.
package analytics

import (
	"time"

	"github.com/j-veylop/mise/internal/models"
)

// TopCuisineCount is how many cuisines a snapshot ranks.
const TopCuisineCount = 5

// Filter returns the entries inside the time range ending at now. The input
// order is preserved.
func Filter(log []*models.CookedRecipe, rng models.TimeRange, now time.Time) []*models.CookedRecipe {
	cutoff := rng.Cutoff(now)
	if cutoff.IsZero() {
		return log
	}
	out := make([]*models.CookedRecipe, 0, len(log))
	for _, e := range log {
		if !e.CookedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Compute builds a snapshot. Totals, cooking time, cuisines and nutrition use
// the range-filtered entries. Streaks, skill and the weekly series always use
// the full log.
func Compute(log []*models.CookedRecipe, rng models.TimeRange, now time.Time) *models.Snapshot {
	filtered := Filter(log, rng, now)
	cuisines := CuisineDistribution(filtered)
	current, longest := Streaks(log, now)

	return &models.Snapshot{
		GeneratedAt:         now,
		Range:               rng,
		TotalDishes:         len(filtered),
		AllTimeDishes:       len(log),
		TotalCookingMinutes: TotalMinutes(filtered),
		Cuisines:            cuisines,
		TopCuisines:         TopCuisines(cuisines, TopCuisineCount),
		CurrentStreak:       current,
		LongestStreak:       longest,
		Skill:               SkillFor(len(log)),
		WeeklyActivity:      WeeklyActivity(log, now),
		Nutrition:           Nutrition(filtered),
	}
}

// Nutrition sums macros over entries that carry nutrition data.
func Nutrition(entries []*models.CookedRecipe) models.NutritionTotals {
	var n models.NutritionTotals
	for _, e := range entries {
		nut := e.Recipe.Nutrition
		if nut == nil {
			continue
		}
		n.Calories += nut.Calories
		n.ProteinG += nut.ProteinG
		n.CarbsG += nut.CarbsG
		n.FatG += nut.FatG
		n.Dishes++
	}
	return n
}

// WeeklyActivity counts entries for each of the last seven calendar days,
// oldest first and ending today, in now's location.
func WeeklyActivity(log []*models.CookedRecipe, now time.Time) []models.DailyActivity {
	loc := now.Location()
	counts := make(map[time.Time]int, len(log))
	for _, e := range log {
		counts[civilDate(e.CookedAt, loc)]++
	}

	today := civilDate(now, loc)
	days := make([]models.DailyActivity, 7)
	for i := range days {
		d := today.AddDate(0, 0, i-6)
		days[i] = models.DailyActivity{
			Date:  time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc),
			Label: d.Weekday().String()[:3],
			Count: counts[d],
		}
	}
	return days
}

// civilDate returns t's calendar date in loc as a UTC midnight, so dates can
// be compared and subtracted without DST effects.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
