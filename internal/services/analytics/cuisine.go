package analytics

import (
	"sort"
	"strings"

	"github.com/j-veylop/mise/internal/models"
)

// CuisineOther buckets entries that match no keyword.
const CuisineOther = "Other"

type cuisineRule struct {
	name     string
	keywords []string
}

// cuisineRules is ordered; the first cuisine with any keyword match wins.
var cuisineRules = []cuisineRule{
	{"Indian", []string{"curry", "masala", "tikka", "biryani", "dal", "paneer", "tandoori", "naan", "samosa", "korma", "vindaloo"}},
	{"Italian", []string{"pasta", "pizza", "risotto", "lasagna", "spaghetti", "carbonara", "pesto", "gnocchi", "bruschetta", "tiramisu"}},
	{"Chinese", []string{"stir fry", "noodle", "dumpling", "wonton", "kung pao", "chow mein", "fried rice", "szechuan", "dim sum"}},
	{"Mexican", []string{"taco", "burrito", "enchilada", "quesadilla", "salsa", "guacamole", "nacho", "fajita", "tortilla"}},
	{"American", []string{"burger", "sandwich", "bbq", "hot dog", "mac and cheese", "pancake", "fried chicken", "meatloaf"}},
	{"Japanese", []string{"sushi", "ramen", "teriyaki", "tempura", "miso", "udon", "sashimi", "katsu"}},
	{"Thai", []string{"pad thai", "thai", "tom yum", "satay", "lemongrass"}},
}

// ClassifyCuisine buckets a recipe by keywords in its title and description.
func ClassifyCuisine(r *models.Recipe) string {
	text := strings.ToLower(r.Title + " " + r.Description)
	for _, rule := range cuisineRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.name
			}
		}
	}
	return CuisineOther
}

// CuisineDistribution counts entries per cuisine.
func CuisineDistribution(entries []*models.CookedRecipe) map[string]int {
	dist := make(map[string]int)
	for _, e := range entries {
		dist[ClassifyCuisine(&e.Recipe)]++
	}
	return dist
}

// TopCuisines returns up to n cuisines by count descending, ties by name.
// n <= 0 returns all of them.
func TopCuisines(dist map[string]int, n int) []models.CuisineCount {
	out := make([]models.CuisineCount, 0, len(dist))
	for c, count := range dist {
		out = append(out, models.CuisineCount{Cuisine: c, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Cuisine < out[j].Cuisine
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
