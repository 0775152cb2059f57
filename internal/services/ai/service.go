package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/models"
)

// ErrEmptyInput is returned before any attempt when required input is missing.
var ErrEmptyInput = errors.New("input is empty")

// Service exposes the typed AI operations. Each one builds a prompt, runs it
// through the orchestrator, and decodes and validates the response; decode
// and validation failures fall back to the next model.
type Service struct {
	orch   *Orchestrator
	gen    Generator
	images ImageGenerator
}

// NewService creates a Service. images may be nil, in which case dish
// previews use text identification only.
func NewService(orch *Orchestrator, gen Generator, images ImageGenerator) *Service {
	return &Service{orch: orch, gen: gen, images: images}
}

// Orchestrator returns the underlying orchestrator.
func (s *Service) Orchestrator() *Orchestrator {
	return s.orch
}

// run executes one generate-then-decode operation with fallback.
func run[T any](ctx context.Context, s *Service, label string, parts []Part, decode func(raw string) (T, error)) (T, error) {
	return Execute(ctx, s.orch, label, func(ctx context.Context, call Call) (T, error) {
		raw, err := s.gen.Generate(ctx, call, parts)
		if err != nil {
			var zero T
			return zero, err
		}
		return decode(raw)
	})
}

// RecognizeIngredients lists the ingredients visible in an image. The result
// may be empty.
func (s *Service) RecognizeIngredients(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("recognize ingredients: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(recognizePrompt()), ImagePart(image, mimeType)}
	return run(ctx, s, "ingredient recognition", parts, func(raw string) ([]string, error) {
		names, err := decodeList[string](raw, "ingredients")
		if err != nil {
			return nil, err
		}
		return cleanNames(names), nil
	})
}

// GenerateRecipes returns at least one recipe for the ingredients and
// context. An empty list is a validation failure.
func (s *Service) GenerateRecipes(ctx context.Context, ingredients []string, rc models.RecipeContext) ([]models.Recipe, error) {
	ingredients = cleanNames(ingredients)
	if len(ingredients) == 0 && rc.DishName == "" {
		return nil, fmt.Errorf("generate recipes: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(recipesPrompt(ingredients, rc))}
	return run(ctx, s, "recipe generation", parts, func(raw string) ([]models.Recipe, error) {
		recipes, err := decodeList[models.Recipe](raw, "recipes")
		if err != nil {
			return nil, err
		}
		if len(recipes) == 0 {
			return nil, &ValidationError{Reason: "recipe list is empty"}
		}
		return recipes, nil
	})
}

// VerifyStep judges a photo of a cooking step.
func (s *Service) VerifyStep(ctx context.Context, check models.StepCheck) (*models.StepVerification, error) {
	if len(check.Image) == 0 || strings.TrimSpace(check.Instruction) == "" {
		return nil, fmt.Errorf("verify step: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(verifyStepPrompt(check)), ImagePart(check.Image, check.MIMEType)}
	return run(ctx, s, "step verification", parts, decodeObject[models.StepVerification])
}

// IdentifyDishFromImage names the dish in a photo.
func (s *Service) IdentifyDishFromImage(ctx context.Context, image []byte, mimeType string) (*models.DishIdentification, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("identify dish: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(identifyImagePrompt()), ImagePart(image, mimeType)}
	return run(ctx, s, "dish identification (image)", parts, decodeObject[models.DishIdentification])
}

// IdentifyDishFromText names the dish described by free text.
func (s *Service) IdentifyDishFromText(ctx context.Context, text string) (*models.DishIdentification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("identify dish: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(identifyTextPrompt(text))}
	return run(ctx, s, "dish identification (text)", parts, decodeObject[models.DishIdentification])
}

// FindSubstitutes suggests replacements for an ingredient.
func (s *Service) FindSubstitutes(ctx context.Context, ingredient, recipeTitle string) ([]models.Substitution, error) {
	if strings.TrimSpace(ingredient) == "" {
		return nil, fmt.Errorf("find substitutes: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(substitutesPrompt(ingredient, recipeTitle))}
	return run(ctx, s, "ingredient substitution", parts, func(raw string) ([]models.Substitution, error) {
		return decodeList[models.Substitution](raw, "substitutes")
	})
}

// SuggestMeal proposes one meal to cook.
func (s *Service) SuggestMeal(ctx context.Context, req models.MealRequest) (*models.MealSuggestion, error) {
	parts := []Part{TextPart(mealPrompt(req))}
	return run(ctx, s, "meal suggestion", parts, decodeObject[models.MealSuggestion])
}

// BuildGroceryList merges the recipes' ingredients, excluding the pantry.
func (s *Service) BuildGroceryList(ctx context.Context, recipes []models.Recipe, pantry []string) (*models.GroceryList, error) {
	if len(recipes) == 0 {
		return nil, fmt.Errorf("build grocery list: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(groceryPrompt(recipes, pantry))}
	return run(ctx, s, "grocery list", parts, func(raw string) (*models.GroceryList, error) {
		items, err := decodeList[models.GroceryItem](raw, "items")
		if err != nil {
			return nil, err
		}
		return &models.GroceryList{Items: items}, nil
	})
}

// ParseRecipeText structures a recipe pasted as free text.
func (s *Service) ParseRecipeText(ctx context.Context, text string) (*models.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("parse recipe: %w", ErrEmptyInput)
	}
	parts := []Part{TextPart(parseRecipePrompt(text))}
	return run(ctx, s, "recipe parsing", parts, decodeObject[models.Recipe])
}

// TransformGourmet upgrades a recipe to restaurant quality.
func (s *Service) TransformGourmet(ctx context.Context, recipe models.Recipe) (*models.GourmetRecipe, error) {
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe: %w", err)
	}
	parts := []Part{TextPart(gourmetPrompt(string(recipeJSON)))}
	return run(ctx, s, "gourmet transformation", parts, decodeObject[models.GourmetRecipe])
}

// PreviewDish renders an image of the described dish and identifies it from
// that image. When image generation or image identification fails, it falls
// back to identifying the dish from the description alone.
func (s *Service) PreviewDish(ctx context.Context, description string) (*models.DishPreview, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("preview dish: %w", ErrEmptyInput)
	}

	preview := &models.DishPreview{}
	if s.images != nil {
		img, err := s.images.GenerateImage(ctx, dishImagePrompt(description))
		if err == nil {
			preview.Image = img
			id, err := s.identifyGenerated(ctx, img)
			if err == nil {
				preview.Identification = id
				return preview, nil
			}
			logger.Warn("image identification failed, using text", "error", err)
		} else if !errors.Is(err, ErrImageNotConfigured) {
			logger.Warn("image generation failed, using text identification", "error", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	id, err := s.IdentifyDishFromText(ctx, description)
	if err != nil {
		return nil, err
	}
	preview.Identification = id
	return preview, nil
}

func (s *Service) identifyGenerated(ctx context.Context, img *models.GeneratedImage) (*models.DishIdentification, error) {
	data, err := DecodeImage(img)
	if err != nil {
		return nil, err
	}
	return s.IdentifyDishFromImage(ctx, data, img.MIMEType)
}

// cleanNames trims names and drops blanks and case-insensitive duplicates.
func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
