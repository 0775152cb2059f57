// Package pantry tracks ingredients on hand and infers when they expire.
package pantry

import (
	"strings"
	"time"
	"unicode"

	"github.com/j-veylop/mise/internal/models"
)

// Category groups ingredients by how long they keep.
type Category string

const (
	CategoryFrozen  Category = "frozen"
	CategorySeafood Category = "seafood"
	CategoryMeat    Category = "meat"
	CategoryEggs    Category = "eggs"
	CategoryDairy   Category = "dairy"
	CategoryBakery  Category = "bakery"
	CategoryHerbs   Category = "herbs"
	CategoryProduce Category = "produce"
	CategoryStaples Category = "pantry"
	CategoryOther   Category = "other"
)

// ExpiringWithin is how close to expiry an item is flagged.
const ExpiringWithin = 2 * 24 * time.Hour

var shelfLife = map[Category]time.Duration{
	CategoryFrozen:  90 * 24 * time.Hour,
	CategorySeafood: 2 * 24 * time.Hour,
	CategoryMeat:    3 * 24 * time.Hour,
	CategoryEggs:    21 * 24 * time.Hour,
	CategoryDairy:   7 * 24 * time.Hour,
	CategoryBakery:  4 * 24 * time.Hour,
	CategoryHerbs:   5 * 24 * time.Hour,
	CategoryProduce: 5 * 24 * time.Hour,
	CategoryStaples: 180 * 24 * time.Hour,
	CategoryOther:   7 * 24 * time.Hour,
}

type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules is ordered; "frozen peas" is frozen, not produce.
var categoryRules = []categoryRule{
	{CategoryFrozen, []string{"frozen", "ice"}},
	{CategorySeafood, []string{"fish", "salmon", "tuna", "cod", "shrimp", "prawn", "crab", "lobster", "mussel", "clam", "scallop", "squid", "anchovy", "sardine"}},
	{CategoryMeat, []string{"chicken", "beef", "pork", "lamb", "turkey", "bacon", "sausage", "ham", "mince", "steak", "duck", "veal", "chorizo"}},
	{CategoryEggs, []string{"egg"}},
	{CategoryDairy, []string{"milk", "cheese", "butter", "yogurt", "yoghurt", "cream", "paneer", "ghee", "mozzarella", "parmesan", "feta", "ricotta"}},
	{CategoryBakery, []string{"bread", "bun", "roll", "bagel", "tortilla", "naan", "pita", "croissant", "baguette"}},
	{CategoryHerbs, []string{"basil", "cilantro", "coriander", "parsley", "mint", "dill", "thyme", "rosemary", "sage", "chive", "lemongrass"}},
	{CategoryProduce, []string{"tomato", "onion", "garlic", "potato", "carrot", "pepper", "lettuce", "spinach", "cucumber", "eggplant", "zucchini", "broccoli", "cabbage", "mushroom", "apple", "banana", "lemon", "lime", "avocado", "ginger", "chili", "berry", "celery", "kale"}},
	{CategoryStaples, []string{"rice", "pasta", "flour", "sugar", "salt", "oil", "vinegar", "lentil", "bean", "noodle", "oat", "spice", "sauce", "stock", "honey", "cumin", "paprika", "turmeric", "chickpea"}},
}

// InferCategory picks a category from the words in name. The first rule with
// a matching word wins; plurals ending in "s" or "es" match.
func InferCategory(name string) Category {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			for _, w := range words {
				if w == kw || w == kw+"s" || w == kw+"es" || (strings.HasSuffix(kw, "y") && w == kw[:len(kw)-1]+"ies") {
					return rule.category
				}
			}
		}
	}
	return CategoryOther
}

// ShelfLife returns how long items in category keep.
func ShelfLife(c Category) time.Duration {
	if d, ok := shelfLife[c]; ok {
		return d
	}
	return shelfLife[CategoryOther]
}

// NewItem builds a pantry item with an inferred category and expiry.
func NewItem(name string, addedAt time.Time) *models.PantryItem {
	name = strings.TrimSpace(name)
	c := InferCategory(name)
	return &models.PantryItem{
		Name:      name,
		Category:  string(c),
		AddedAt:   addedAt,
		ExpiresAt: addedAt.Add(ShelfLife(c)),
	}
}

// FreshnessOf classifies an item relative to now.
func FreshnessOf(item *models.PantryItem, now time.Time) models.Freshness {
	left := item.ExpiresAt.Sub(now)
	switch {
	case left < 0:
		return models.FreshnessExpired
	case left <= ExpiringWithin:
		return models.FreshnessExpiring
	default:
		return models.FreshnessFresh
	}
}
