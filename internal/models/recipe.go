// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Recipe is a structured recipe as produced by the AI backend or parsed from
// free text. Cooked log entries keep a snapshot of it.
type Recipe struct {
	Nutrition    *Nutrition   `json:"nutrition,omitempty"`
	Title        string       `json:"title" validate:"required"`
	Description  string       `json:"description,omitempty"`
	Cuisine      string       `json:"cuisine,omitempty"`
	PrepTime     string       `json:"prepTime,omitempty"`
	CookTime     string       `json:"cookTime,omitempty"`
	TotalTime    string       `json:"totalTime,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	Ingredients  []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions []string     `json:"instructions" validate:"required,min=1,dive,required"`
	Tips         []string     `json:"tips,omitempty"`
	Servings     int          `json:"servings,omitempty" validate:"gte=0"`
}

// Ingredient is one recipe line item.
type Ingredient struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string ("2 eggs").
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Ingredient{Name: s}
		return nil
	}
	type plain Ingredient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = Ingredient(p)
	return nil
}

// Nutrition holds per-serving macro estimates.
type Nutrition struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	ProteinG float64 `json:"protein" validate:"gte=0"`
	CarbsG   float64 `json:"carbs" validate:"gte=0"`
	FatG     float64 `json:"fat" validate:"gte=0"`
}

// CookedRecipe is one immutable entry in the cooked-recipe log.
type CookedRecipe struct {
	CookedAt time.Time `json:"cookedAt"`
	ID       string    `json:"id,omitempty"`
	Recipe   Recipe    `json:"recipe"`
}

type rawCookedRecipe struct {
	CookedAt json.RawMessage `json:"cookedAt"`
	ID       string          `json:"id,omitempty"`
	Recipe   Recipe          `json:"recipe"`
}

// UnmarshalJSON parses cookedAt as an ISO string or a Unix timestamp, so logs
// exported from other clients can be imported.
func (c *CookedRecipe) UnmarshalJSON(data []byte) error {
	var raw rawCookedRecipe
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.Recipe = raw.Recipe
	c.CookedAt = time.Time{}
	if len(raw.CookedAt) > 0 && string(raw.CookedAt) != "null" {
		c.CookedAt = parseTimeField(raw.CookedAt)
		if c.CookedAt.IsZero() {
			return fmt.Errorf("invalid cookedAt value %s", raw.CookedAt)
		}
	}
	return nil
}

// parseTimeField attempts to parse a JSON time value as either ISO string or Unix timestamp.
func parseTimeField(data json.RawMessage) time.Time {
	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, strVal); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02T15:04:05.000Z", strVal); err == nil {
			return t
		}
		return time.Time{}
	}

	// Try as number (Unix timestamp in milliseconds or seconds)
	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		if numVal > 1e12 {
			return time.UnixMilli(int64(numVal))
		}
		return time.Unix(int64(numVal), 0)
	}

	return time.Time{}
}
