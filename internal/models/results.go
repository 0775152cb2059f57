// Package models defines data structures and domain types.
package models

// RecipeContext narrows recipe generation. Every field is optional.
type RecipeContext struct {
	MaxTimeMinutes   *int     `json:"maxTimeMinutes,omitempty"`
	MealTime         string   `json:"mealTime,omitempty"`
	Dietary          string   `json:"dietary,omitempty"`
	Cuisine          string   `json:"cuisine,omitempty"`
	AgeGroup         string   `json:"ageGroup,omitempty"`
	DishName         string   `json:"dishName,omitempty"`
	HealthConditions []string `json:"healthConditions,omitempty"`
	Allergies        []string `json:"allergies,omitempty"`
}

// StepCheck is the input to step verification.
type StepCheck struct {
	Instruction string
	RecipeTitle string
	MIMEType    string
	Image       []byte
}

// Step verification outcomes.
const (
	StepPass = "pass"
	StepFail = "fail"
)

// StepVerification is the AI's verdict on a photographed cooking step.
type StepVerification struct {
	TimeRemaining *int   `json:"timeRemaining,omitempty" validate:"omitempty,gte=0"`
	Status        string `json:"status" validate:"required,oneof=pass fail"`
	Feedback      string `json:"feedback"`
	SpokenTip     string `json:"spokenTip"`
}

// Passed reports whether the step was accepted.
func (s *StepVerification) Passed() bool {
	return s.Status == StepPass
}

// DishIdentification describes a dish recognized from a photo or text.
type DishIdentification struct {
	DishName    string  `json:"dishName" validate:"required"`
	Cuisine     string  `json:"cuisine"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// DishPreview pairs a dish identification with an optional generated image.
type DishPreview struct {
	Image          *GeneratedImage
	Identification *DishIdentification
}

// Substitution is one replacement suggestion for an ingredient.
type Substitution struct {
	Name   string `json:"name" validate:"required"`
	Ratio  string `json:"ratio,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Impact string `json:"impact,omitempty"`
}

// MealRequest is the input to meal suggestion.
type MealRequest struct {
	MealTime     string
	Mood         string
	Dietary      string
	Pantry       []string
	RecentDishes []string
}

// MealSuggestion is a single suggested meal.
type MealSuggestion struct {
	DishName    string   `json:"dishName" validate:"required"`
	Reason      string   `json:"reason"`
	Cuisine     string   `json:"cuisine,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	TimeMinutes int      `json:"timeMinutes,omitempty" validate:"gte=0"`
}

// GroceryItem is one line of a shopping list.
type GroceryItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity,omitempty"`
	Aisle    string `json:"aisle,omitempty"`
}

// GroceryList is a shopping list built from recipes minus the pantry.
type GroceryList struct {
	Items []GroceryItem `json:"items" validate:"dive"`
}

// GourmetRecipe is a recipe elevated by the AI, with the changes it made.
type GourmetRecipe struct {
	Recipe
	Upgrades []string `json:"upgrades,omitempty"`
}

// GeneratedImage is an image returned by the image generation endpoint.
type GeneratedImage struct {
	MIMEType string
	Base64   string
}
