package analytics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/j-veylop/mise/internal/models"
)

var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+)\s*hr`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*min`)
)

// ParseDurationMinutes reads strings such as "1 hr 15 min", "45 min" or
// "2 hr". Missing components count as zero, so unparseable input yields 0.
func ParseDurationMinutes(s string) int {
	return firstInt(hoursPattern, s)*60 + firstInt(minutesPattern, s)
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// EntryMinutes returns an entry's cooking time, preferring the total time
// and falling back to the cook time.
func EntryMinutes(e *models.CookedRecipe) int {
	if s := strings.TrimSpace(e.Recipe.TotalTime); s != "" {
		return ParseDurationMinutes(s)
	}
	return ParseDurationMinutes(e.Recipe.CookTime)
}

// TotalMinutes sums EntryMinutes over entries.
func TotalMinutes(entries []*models.CookedRecipe) int {
	total := 0
	for _, e := range entries {
		total += EntryMinutes(e)
	}
	return total
}
