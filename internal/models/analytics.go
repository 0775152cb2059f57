// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected analytics time range.
type TimeRange int

const (
	// TimeRangeWeek covers the last 7×24 hours.
	TimeRangeWeek TimeRange = iota
	// TimeRangeMonth covers the last 30×24 hours.
	TimeRangeMonth
	// TimeRangeAll applies no filter.
	TimeRangeAll
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRangeWeek:
		return "This Week"
	case TimeRangeMonth:
		return "This Month"
	case TimeRangeAll:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRangeWeek:
		return 7
	case TimeRangeMonth:
		return 30
	default:
		return 0
	}
}

// Cutoff returns the earliest included instant relative to now, or the zero
// time when the range is unbounded.
func (t TimeRange) Cutoff(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 3
}

// ParseTimeRange maps "week", "month" or "all" to a TimeRange.
func ParseTimeRange(s string) (TimeRange, bool) {
	switch s {
	case "week", "w", "7d":
		return TimeRangeWeek, true
	case "month", "m", "30d":
		return TimeRangeMonth, true
	case "all", "a":
		return TimeRangeAll, true
	default:
		return TimeRangeAll, false
	}
}

// SkillLevel is one rung of the skill ladder.
type SkillLevel struct {
	Name      string
	MinDishes int
}

// SkillStatus is the current rung plus progress toward the next one.
type SkillStatus struct {
	Next     *SkillLevel // nil at the top rung
	Current  SkillLevel
	Progress float64 // 0-100
}

// DailyActivity is one point of the 7-day activity series.
type DailyActivity struct {
	Date  time.Time
	Label string
	Count int
}

// CuisineCount is one bucket of the cuisine histogram.
type CuisineCount struct {
	Cuisine string
	Count   int
}

// NutritionTotals sums macros over entries that carried nutrition data.
type NutritionTotals struct {
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
	Dishes   int
}

// AvgCalories returns calories per dish with nutrition data.
func (n NutritionTotals) AvgCalories() float64 {
	if n.Dishes == 0 {
		return 0
	}
	return n.Calories / float64(n.Dishes)
}

// Snapshot is the derived analytics view. It is recomputed on every request
// and never persisted.
type Snapshot struct {
	GeneratedAt         time.Time
	Cuisines            map[string]int
	TopCuisines         []CuisineCount
	WeeklyActivity      []DailyActivity
	Skill               SkillStatus
	Nutrition           NutritionTotals
	Range               TimeRange
	TotalDishes         int // in range
	AllTimeDishes       int
	TotalCookingMinutes int // in range
	CurrentStreak       int
	LongestStreak       int
}

// AvgMinutesPerDish returns average cooking time across dishes in range.
func (s *Snapshot) AvgMinutesPerDish() float64 {
	if s.TotalDishes == 0 {
		return 0
	}
	return float64(s.TotalCookingMinutes) / float64(s.TotalDishes)
}
