package analytics

import (
	"testing"
	"time"

	"github.com/j-veylop/mise/internal/models"
)

var testNow = time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC) // a Wednesday

func entry(title string, cookedAt time.Time) *models.CookedRecipe {
	return &models.CookedRecipe{CookedAt: cookedAt, Recipe: models.Recipe{Title: title}}
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1 hr 15 min", 75},
		{"45 min", 45},
		{"2 hr", 120},
		{"", 0},
		{"about a while", 0},
		{"1HR 5MIN", 65},
		{"2 hrs 30 mins", 150},
		{"90 minutes", 90},
		{"10min", 10},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDurationMinutes(tt.in); got != tt.want {
				t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEntryMinutes(t *testing.T) {
	e := &models.CookedRecipe{Recipe: models.Recipe{TotalTime: "1 hr", CookTime: "20 min"}}
	if got := EntryMinutes(e); got != 60 {
		t.Errorf("EntryMinutes(total) = %d, want 60", got)
	}
	e.Recipe.TotalTime = "  "
	if got := EntryMinutes(e); got != 20 {
		t.Errorf("EntryMinutes(cook) = %d, want 20", got)
	}
	e.Recipe.CookTime = "soon"
	if got := EntryMinutes(e); got != 0 {
		t.Errorf("EntryMinutes(unparseable) = %d, want 0", got)
	}
}

func TestClassifyCuisine(t *testing.T) {
	tests := []struct {
		title       string
		description string
		want        string
	}{
		{"Chicken Curry Pasta", "", "Indian"},
		{"Spaghetti Bolognese", "", "Italian"},
		{"Vegetable Stir Fry", "", "Chinese"},
		{"Fish Tacos", "", "Mexican"},
		{"Smash Burger", "", "American"},
		{"Tonkotsu Ramen", "", "Japanese"},
		{"Pad Thai", "", "Thai"},
		{"Weeknight Bowl", "with creamy pesto", "Italian"},
		{"Shakshuka", "eggs in tomato", CuisineOther},
		{"", "", CuisineOther},
		// "noodle" (Chinese) is listed before "ramen" (Japanese).
		{"Ramen Noodle Soup", "", "Chinese"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			r := &models.Recipe{Title: tt.title, Description: tt.description}
			if got := ClassifyCuisine(r); got != tt.want {
				t.Errorf("ClassifyCuisine(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestTopCuisines(t *testing.T) {
	dist := map[string]int{"Thai": 2, "Indian": 5, "Italian": 2, "Other": 1, "Mexican": 3, "American": 1}
	got := TopCuisines(dist, 5)
	want := []string{"Indian", "Mexican", "Italian", "Thai", "American"}
	if len(got) != len(want) {
		t.Fatalf("TopCuisines() len = %d, want %d", len(got), len(want))
	}
	for i, c := range want {
		if got[i].Cuisine != c {
			t.Errorf("TopCuisines()[%d] = %q, want %q", i, got[i].Cuisine, c)
		}
	}
	if all := TopCuisines(dist, 0); len(all) != len(dist) {
		t.Errorf("TopCuisines(n=0) len = %d, want %d", len(all), len(dist))
	}
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name        string
		dates       []time.Time
		wantCurrent int
		wantLongest int
	}{
		{"Empty", nil, 0, 0},
		{"TodayOnly", []time.Time{daysAgo(0)}, 1, 1},
		{"ThreeConsecutive", []time.Time{daysAgo(0), daysAgo(1), daysAgo(2)}, 3, 3},
		{"GapBreaksChain", []time.Time{daysAgo(0), daysAgo(2)}, 1, 1},
		{"StartsYesterday", []time.Time{daysAgo(1), daysAgo(2)}, 2, 2},
		{"StaleStreak", []time.Time{daysAgo(3), daysAgo(4), daysAgo(5)}, 0, 3},
		{"DuplicatesOnOneDay", []time.Time{daysAgo(0), daysAgo(0).Add(-time.Hour), daysAgo(1)}, 2, 2},
		{"LongerPastRun", []time.Time{daysAgo(0), daysAgo(5), daysAgo(6), daysAgo(7), daysAgo(8)}, 1, 4},
		{"UnsortedInput", []time.Time{daysAgo(2), daysAgo(0), daysAgo(1)}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []*models.CookedRecipe
			for _, d := range tt.dates {
				log = append(log, entry("x", d))
			}
			current, longest := Streaks(log, testNow)
			if current != tt.wantCurrent || longest != tt.wantLongest {
				t.Errorf("Streaks() = (%d, %d), want (%d, %d)", current, longest, tt.wantCurrent, tt.wantLongest)
			}
		})
	}
}

func TestStreaksUseLocalDates(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 3, 18, 9, 0, 0, 0, loc)
	// 01:00 UTC on the 18th is still the 17th locally.
	log := []*models.CookedRecipe{
		entry("a", time.Date(2026, 3, 18, 1, 0, 0, 0, time.UTC)),
		entry("b", time.Date(2026, 3, 16, 20, 0, 0, 0, loc)),
	}
	current, longest := Streaks(log, now)
	if current != 2 || longest != 2 {
		t.Errorf("Streaks() = (%d, %d), want (2, 2)", current, longest)
	}
}

func TestStreaksAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// DST began 2026-03-08 in New York; that day has 23 hours.
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, loc)
	log := []*models.CookedRecipe{
		entry("a", time.Date(2026, 3, 9, 8, 0, 0, 0, loc)),
		entry("b", time.Date(2026, 3, 8, 8, 0, 0, 0, loc)),
		entry("c", time.Date(2026, 3, 7, 8, 0, 0, 0, loc)),
	}
	if current, longest := Streaks(log, now); current != 3 || longest != 3 {
		t.Errorf("Streaks() = (%d, %d), want (3, 3)", current, longest)
	}
}

func TestSkillFor(t *testing.T) {
	tests := []struct {
		total        int
		wantName     string
		wantProgress float64
		wantNext     string
	}{
		{0, "Kitchen Newbie", 0, "Home Cook"},
		{4, "Kitchen Newbie", 80, "Home Cook"},
		{5, "Home Cook", 0, "Aspiring Chef"},
		{10, "Home Cook", 50, "Aspiring Chef"},
		{15, "Aspiring Chef", 0, "Skilled Cook"},
		{40, "Skilled Cook", 50, "Master Chef"},
		{50, "Master Chef", 0, "Culinary Legend"},
		{99, "Master Chef", 98, "Culinary Legend"},
		{100, "Culinary Legend", 100, ""},
		{250, "Culinary Legend", 100, ""},
	}
	for _, tt := range tests {
		got := SkillFor(tt.total)
		if got.Current.Name != tt.wantName {
			t.Errorf("SkillFor(%d).Current = %q, want %q", tt.total, got.Current.Name, tt.wantName)
		}
		if got.Progress != tt.wantProgress {
			t.Errorf("SkillFor(%d).Progress = %v, want %v", tt.total, got.Progress, tt.wantProgress)
		}
		next := ""
		if got.Next != nil {
			next = got.Next.Name
		}
		if next != tt.wantNext {
			t.Errorf("SkillFor(%d).Next = %q, want %q", tt.total, next, tt.wantNext)
		}
	}
}

func TestLadderAscending(t *testing.T) {
	if Ladder[0].MinDishes != 0 {
		t.Fatalf("Ladder starts at %d, want 0", Ladder[0].MinDishes)
	}
	for i := 1; i < len(Ladder); i++ {
		if Ladder[i].MinDishes <= Ladder[i-1].MinDishes {
			t.Errorf("Ladder[%d] = %d not above %d", i, Ladder[i].MinDishes, Ladder[i-1].MinDishes)
		}
	}
}

func TestWeeklyActivity(t *testing.T) {
	log := []*models.CookedRecipe{
		entry("a", daysAgo(0)),
		entry("b", daysAgo(0).Add(-2*time.Hour)),
		entry("c", daysAgo(3)),
		entry("d", daysAgo(6)),
		entry("old", daysAgo(7)),
	}
	got := WeeklyActivity(log, testNow)
	if len(got) != 7 {
		t.Fatalf("WeeklyActivity() len = %d, want 7", len(got))
	}
	wantCounts := []int{1, 0, 0, 1, 0, 0, 2}
	wantLabels := []string{"Thu", "Fri", "Sat", "Sun", "Mon", "Tue", "Wed"}
	for i := range got {
		if got[i].Count != wantCounts[i] {
			t.Errorf("day %d count = %d, want %d", i, got[i].Count, wantCounts[i])
		}
		if got[i].Label != wantLabels[i] {
			t.Errorf("day %d label = %q, want %q", i, got[i].Label, wantLabels[i])
		}
	}
	if !got[6].Date.Equal(time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last day = %v, want today", got[6].Date)
	}
}

func TestFilter(t *testing.T) {
	log := []*models.CookedRecipe{
		entry("now", testNow),
		entry("6d", daysAgo(6)),
		entry("7d-exact", testNow.Add(-7*24*time.Hour)),
		entry("8d", daysAgo(8)),
		entry("40d", daysAgo(40)),
	}
	tests := []struct {
		rng  models.TimeRange
		want int
	}{
		{models.TimeRangeWeek, 3},
		{models.TimeRangeMonth, 4},
		{models.TimeRangeAll, 5},
	}
	for _, tt := range tests {
		if got := Filter(log, tt.rng, testNow); len(got) != tt.want {
			t.Errorf("Filter(%v) len = %d, want %d", tt.rng, len(got), tt.want)
		}
	}
}

func TestComputeEmptyLog(t *testing.T) {
	s := Compute(nil, models.TimeRangeAll, testNow)
	if s.TotalDishes != 0 || s.CurrentStreak != 0 || s.LongestStreak != 0 {
		t.Errorf("Compute(empty) = %+v", s)
	}
	if s.Skill.Current.Name != "Kitchen Newbie" || s.Skill.Progress != 0 {
		t.Errorf("Skill = %+v, want Kitchen Newbie at 0%%", s.Skill)
	}
	if len(s.Cuisines) != 0 {
		t.Errorf("Cuisines = %v, want empty", s.Cuisines)
	}
	if len(s.WeeklyActivity) != 7 {
		t.Errorf("WeeklyActivity len = %d, want 7", len(s.WeeklyActivity))
	}
	if s.AvgMinutesPerDish() != 0 {
		t.Errorf("AvgMinutesPerDish() = %v, want 0", s.AvgMinutesPerDish())
	}
}

func TestComputeRangeAffectsOnlyAggregates(t *testing.T) {
	log := []*models.CookedRecipe{
		{CookedAt: daysAgo(0), Recipe: models.Recipe{Title: "Paneer Tikka", TotalTime: "45 min", Nutrition: &models.Nutrition{Calories: 500}}},
		{CookedAt: daysAgo(1), Recipe: models.Recipe{Title: "Margherita Pizza", CookTime: "1 hr"}},
		{CookedAt: daysAgo(20), Recipe: models.Recipe{Title: "Beef Tacos", TotalTime: "30 min", Nutrition: &models.Nutrition{Calories: 700}}},
	}

	week := Compute(log, models.TimeRangeWeek, testNow)
	if week.TotalDishes != 2 || week.AllTimeDishes != 3 {
		t.Errorf("week totals = %d/%d, want 2/3", week.TotalDishes, week.AllTimeDishes)
	}
	if week.TotalCookingMinutes != 105 {
		t.Errorf("week minutes = %d, want 105", week.TotalCookingMinutes)
	}
	if week.Cuisines["Mexican"] != 0 || week.Cuisines["Indian"] != 1 || week.Cuisines["Italian"] != 1 {
		t.Errorf("week cuisines = %v", week.Cuisines)
	}
	if week.Nutrition.Dishes != 1 || week.Nutrition.Calories != 500 {
		t.Errorf("week nutrition = %+v", week.Nutrition)
	}

	all := Compute(log, models.TimeRangeAll, testNow)
	if all.CurrentStreak != week.CurrentStreak || all.Skill.Current != week.Skill.Current || all.Skill.Progress != week.Skill.Progress {
		t.Error("streak or skill changed with the range selector")
	}
	if all.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", all.CurrentStreak)
	}
	if all.TotalCookingMinutes != 135 || all.Nutrition.AvgCalories() != 600 {
		t.Errorf("all = %d min, %v avg kcal", all.TotalCookingMinutes, all.Nutrition.AvgCalories())
	}
}
