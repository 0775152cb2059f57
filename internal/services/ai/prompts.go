package ai

import (
	"fmt"
	"strings"

	"github.com/j-veylop/mise/internal/models"
)

const systemPrompt = "You are a professional chef and nutritionist. Always answer with a single valid JSON value and nothing else."

const recipeShape = `{"title": string, "description": string, "cuisine": string, "prepTime": "10 min", "cookTime": "1 hr 5 min", "totalTime": "1 hr 15 min", "servings": number, "difficulty": "Easy"|"Medium"|"Hard", "ingredients": [{"name": string, "quantity": string}], "instructions": [string], "tips": [string], "nutrition": {"calories": number, "protein": number, "carbs": number, "fat": number}}`

func recognizePrompt() string {
	return systemPrompt + `
List every food ingredient visible in the photo.
Respond as {"ingredients": [string]}. Use an empty array if none are visible.`
}

func recipesPrompt(ingredients []string, rc models.RecipeContext) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\nSuggest 3 recipes")
	if rc.DishName != "" {
		fmt.Fprintf(&b, " for the dish %q", rc.DishName)
	}
	if len(ingredients) > 0 {
		fmt.Fprintf(&b, " using mainly: %s", strings.Join(ingredients, ", "))
	}
	b.WriteString(".\n")
	writeConstraint(&b, "Meal", rc.MealTime)
	writeConstraint(&b, "Dietary preference", rc.Dietary)
	writeConstraint(&b, "Cuisine", rc.Cuisine)
	writeConstraint(&b, "Cooking for", rc.AgeGroup)
	writeConstraint(&b, "Health conditions", strings.Join(rc.HealthConditions, ", "))
	writeConstraint(&b, "Must avoid (allergies)", strings.Join(rc.Allergies, ", "))
	if rc.MaxTimeMinutes != nil && *rc.MaxTimeMinutes > 0 {
		fmt.Fprintf(&b, "Total time must not exceed %d minutes.\n", *rc.MaxTimeMinutes)
	}
	b.WriteString(`Respond as {"recipes": [` + recipeShape + `]}.`)
	return b.String()
}

func writeConstraint(b *strings.Builder, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s.\n", name, value)
	}
}

func verifyStepPrompt(check models.StepCheck) string {
	return fmt.Sprintf(`%s
The cook is making %q and is on this step: %q.
Judge from the photo whether the step has been done correctly.
Respond as {"status": "pass"|"fail", "feedback": string, "spokenTip": string, "timeRemaining": number of minutes or null}.`,
		systemPrompt, check.RecipeTitle, check.Instruction)
}

const dishShape = `{"dishName": string, "cuisine": string, "description": string, "confidence": number between 0 and 1}`

func identifyImagePrompt() string {
	return systemPrompt + "\nIdentify the dish in the photo.\nRespond as " + dishShape + "."
}

func identifyTextPrompt(text string) string {
	return fmt.Sprintf("%s\nIdentify the dish described as: %q.\nRespond as %s.", systemPrompt, text, dishShape)
}

func substitutesPrompt(ingredient, recipeTitle string) string {
	context := ""
	if recipeTitle != "" {
		context = fmt.Sprintf(" in %q", recipeTitle)
	}
	return fmt.Sprintf(`%s
Suggest up to 4 substitutes for %q%s.
Respond as {"substitutes": [{"name": string, "ratio": string, "notes": string, "impact": string}]}.`,
		systemPrompt, ingredient, context)
}

func mealPrompt(req models.MealRequest) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\nSuggest one meal to cook now.\n")
	writeConstraint(&b, "Meal", req.MealTime)
	writeConstraint(&b, "Mood", req.Mood)
	writeConstraint(&b, "Dietary preference", req.Dietary)
	writeConstraint(&b, "Ingredients on hand", strings.Join(req.Pantry, ", "))
	writeConstraint(&b, "Recently cooked (avoid repeats)", strings.Join(req.RecentDishes, ", "))
	b.WriteString(`Respond as {"dishName": string, "reason": string, "cuisine": string, "ingredients": [string], "timeMinutes": number}.`)
	return b.String()
}

func groceryPrompt(recipes []models.Recipe, pantry []string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\nBuild a combined shopping list for these recipes:\n")
	for _, r := range recipes {
		names := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			names = append(names, strings.TrimSpace(ing.Quantity+" "+ing.Name))
		}
		fmt.Fprintf(&b, "- %s: %s\n", r.Title, strings.Join(names, "; "))
	}
	writeConstraint(&b, "Already in the pantry (exclude)", strings.Join(pantry, ", "))
	b.WriteString(`Merge duplicates. Respond as {"items": [{"name": string, "quantity": string, "aisle": string}]}.`)
	return b.String()
}

func parseRecipePrompt(text string) string {
	return fmt.Sprintf("%s\nConvert this recipe text into structured form:\n%s\nRespond as %s.", systemPrompt, text, recipeShape)
}

func gourmetPrompt(recipeJSON string) string {
	return fmt.Sprintf(`%s
Elevate this home recipe to restaurant quality while keeping it achievable at home:
%s
Respond as the full upgraded recipe %s with an extra "upgrades": [string] field listing what changed.`,
		systemPrompt, recipeJSON, recipeShape)
}

func dishImagePrompt(description string) string {
	return fmt.Sprintf("Appetizing overhead food photograph of %s, natural light, plated.", description)
}
