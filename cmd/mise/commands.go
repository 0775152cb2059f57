package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/j-veylop/mise/internal/app"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services"
	"github.com/j-veylop/mise/internal/services/ai"
	"github.com/j-veylop/mise/internal/services/pantry"
)

// env is what a subcommand runs against.
type env struct {
	mgr *services.Manager
	out io.Writer
	now func() time.Time
}

func (e *env) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	run     func(ctx context.Context, e *env, args []string) error
}

var subcommands = []command{
	{name: "stats", usage: "stats [week|month|all]", summary: "Show cooking stats (default: week)", run: runStats},
	{name: "cooked", usage: "cooked <recipe.json>", summary: "Log a cooked recipe", minArgs: 1, run: runCooked},
	{name: "recipes", usage: "recipes [ingredient,...]", summary: "Generate recipes (no args uses the pantry)", run: runRecipes},
	{name: "identify", usage: "identify [-o image] <description>", summary: "Identify a dish and preview it", minArgs: 1, run: runIdentify},
	{name: "suggest", usage: "suggest [mood]", summary: "Suggest one meal from the pantry", run: runSuggest},
	{name: "scan", usage: "scan <image>", summary: "Recognize ingredients and add them to the pantry", minArgs: 1, run: runScan},
	{name: "pantry", usage: "pantry [list|expiring|add <name...>|rm <id>]", summary: "Manage the pantry", run: runPantry},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range subcommands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func runStats(ctx context.Context, e *env, args []string) error {
	rng := models.TimeRangeWeek
	if len(args) > 0 {
		var ok bool
		if rng, ok = models.ParseTimeRange(args[0]); !ok {
			return usageError{fmt.Sprintf("unknown range %q (want week, month or all)", args[0])}
		}
	}
	snap, err := e.mgr.Analytics(ctx, rng)
	if err != nil {
		return err
	}
	printSnapshot(e.out, snap)

	count, last, err := e.mgr.LogSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "\n%s stored (keeps %d)", plural(count, "entry", "entries"), e.mgr.Config().HistoryLimit)
	if !last.IsZero() {
		fmt.Fprintf(e.out, ", last cooked %s", humanize.RelTime(last, e.clock(), "ago", "from now"))
	}
	fmt.Fprintln(e.out)
	return nil
}

func runCooked(ctx context.Context, e *env, args []string) error {
	recipe, err := readRecipeFile(args[0])
	if err != nil {
		return err
	}
	event, err := e.mgr.LogCooked(ctx, recipe)
	if err != nil {
		return err
	}
	snap := event.Snapshot
	fmt.Fprintf(e.out, "Logged %s. %s total, %s streak.\n",
		recipe.Title, plural(snap.AllTimeDishes, "dish", "dishes"), plural(snap.CurrentStreak, "day", "days"))
	if event.LevelUp {
		fmt.Fprintf(e.out, "Level up! You are now a %s.\n", snap.Skill.Current.Name)
	}
	return nil
}

// readRecipeFile reads a recipe, or a cooked log entry wrapping one, from a
// JSON file. "-" reads stdin.
func readRecipeFile(path string) (models.Recipe, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("read recipe: %w", err)
	}
	return parseRecipeJSON(data)
}

func parseRecipeJSON(data []byte) (models.Recipe, error) {
	var wrapped struct {
		Recipe *models.Recipe `json:"recipe"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Recipe != nil {
		return *wrapped.Recipe, nil
	}
	var recipe models.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return models.Recipe{}, fmt.Errorf("parse recipe: %w", err)
	}
	return recipe, nil
}

func runRecipes(ctx context.Context, e *env, args []string) error {
	ingredients := app.ParseIngredients(strings.Join(args, ","))
	recipes, err := e.mgr.GenerateRecipes(ctx, ingredients, models.RecipeContext{})
	if err != nil {
		return err
	}
	printRecipes(e.out, recipes)
	return nil
}

func runIdentify(ctx context.Context, e *env, args []string) error {
	var imagePath string
	if args[0] == "-o" {
		if len(args) < 3 {
			return usageError{"usage: mise identify [-o image] <description>"}
		}
		imagePath, args = args[1], args[2:]
	}

	preview, err := e.mgr.PreviewDish(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printPreview(e.out, preview)

	if imagePath == "" || preview.Image == nil {
		return nil
	}
	data, err := ai.DecodeImage(preview.Image)
	if err != nil {
		return err
	}
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	fmt.Fprintf(e.out, "Saved image to %s\n", imagePath)
	return nil
}

func runSuggest(ctx context.Context, e *env, args []string) error {
	req := models.MealRequest{
		MealTime: mealTime(e.clock()),
		Mood:     strings.Join(args, " "),
	}
	s, err := e.mgr.SuggestMeal(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s", s.DishName)
	if s.Cuisine != "" {
		fmt.Fprintf(e.out, " (%s)", s.Cuisine)
	}
	if s.TimeMinutes > 0 {
		fmt.Fprintf(e.out, ", about %d min", s.TimeMinutes)
	}
	fmt.Fprintln(e.out)
	if s.Reason != "" {
		fmt.Fprintln(e.out, s.Reason)
	}
	if len(s.Ingredients) > 0 {
		fmt.Fprintf(e.out, "Uses: %s\n", strings.Join(s.Ingredients, ", "))
	}
	return nil
}

// mealTime names the meal for the hour of day.
func mealTime(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return "breakfast"
	case h >= 11 && h < 16:
		return "lunch"
	case h >= 16 && h < 22:
		return "dinner"
	default:
		return "late-night snack"
	}
}

func runScan(ctx context.Context, e *env, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	items, err := e.mgr.ScanPantry(ctx, data, imageMIME(args[0], data))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(e.out, "No ingredients recognized.")
		return nil
	}
	fmt.Fprintf(e.out, "Added %s to the pantry:\n", plural(len(items), "item", "items"))
	printPantry(e.out, derefItems(items), e.clock())
	return nil
}

// imageMIME sniffs the content type, falling back to the file extension.
func imageMIME(path string, data []byte) string {
	if mime := http.DetectContentType(data); strings.HasPrefix(mime, "image/") {
		return mime
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

func runPantry(ctx context.Context, e *env, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list", "ls":
		items, err := e.mgr.Pantry().List(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(e.out, "The pantry is empty.")
			return nil
		}
		printPantry(e.out, items, e.clock())
		return nil

	case "expiring":
		items, err := e.mgr.ExpiringPantry(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(e.out, "Nothing is about to expire.")
			return nil
		}
		printPantry(e.out, items, e.clock())
		return nil

	case "add":
		if len(args) == 0 {
			return usageError{"usage: mise pantry add <name...>"}
		}
		items, err := e.mgr.AddPantry(ctx, app.ParseIngredients(strings.Join(args, ","))...)
		if err != nil {
			return err
		}
		printPantry(e.out, derefItems(items), e.clock())
		return nil

	case "rm", "remove":
		if len(args) != 1 {
			return usageError{"usage: mise pantry rm <id|name>"}
		}
		if err := e.mgr.RemovePantry(ctx, args[0]); err != nil {
			if errors.Is(err, pantry.ErrNotFound) {
				return fmt.Errorf("no pantry item %q", args[0])
			}
			return err
		}
		fmt.Fprintf(e.out, "Removed %s\n", args[0])
		return nil
	}
	return usageError{fmt.Sprintf("unknown pantry command %q", sub)}
}

func derefItems(items []*models.PantryItem) []models.PantryItem {
	out := make([]models.PantryItem, len(items))
	for i, it := range items {
		out[i] = *it
	}
	return out
}

func printSnapshot(w io.Writer, snap *models.Snapshot) {
	fmt.Fprintf(w, "%s\n\n", snap.Range)
	fmt.Fprintf(w, "  %-16s %s (%s all time)\n", "Dishes", humanize.Comma(int64(snap.TotalDishes)), humanize.Comma(int64(snap.AllTimeDishes)))
	fmt.Fprintf(w, "  %-16s %d min (%.0f per dish)\n", "Cooking time", snap.TotalCookingMinutes, snap.AvgMinutesPerDish())
	fmt.Fprintf(w, "  %-16s %s (longest %s)\n", "Streak", plural(snap.CurrentStreak, "day", "days"), plural(snap.LongestStreak, "day", "days"))

	skill := snap.Skill.Current.Name
	if next := snap.Skill.Next; next != nil {
		skill += fmt.Sprintf(", %.0f%% to %s", snap.Skill.Progress, next.Name)
	}
	fmt.Fprintf(w, "  %-16s %s\n", "Skill", skill)

	if n := snap.Nutrition; n.Dishes > 0 {
		fmt.Fprintf(w, "  %-16s %.0f kcal avg, %.0fg protein total\n", "Nutrition", n.AvgCalories(), n.ProteinG)
	}

	if len(snap.TopCuisines) > 0 {
		fmt.Fprintln(w, "\nCuisines")
		for _, c := range snap.TopCuisines {
			fmt.Fprintf(w, "  %-16s %d\n", c.Cuisine, c.Count)
		}
	}

	fmt.Fprintln(w, "\nLast 7 days")
	for _, d := range snap.WeeklyActivity {
		fmt.Fprintf(w, "  %s %s %d\n", d.Label, strings.Repeat("█", d.Count), d.Count)
	}
}

func printRecipes(w io.Writer, recipes []models.Recipe) {
	for i, r := range recipes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%d. %s", i+1, r.Title)
		if r.TotalTime != "" {
			fmt.Fprintf(w, " (%s)", r.TotalTime)
		}
		fmt.Fprintln(w)
		if r.Description != "" {
			fmt.Fprintf(w, "   %s\n", r.Description)
		}
		names := make([]string, len(r.Ingredients))
		for j, ing := range r.Ingredients {
			names[j] = ing.Name
		}
		fmt.Fprintf(w, "   Ingredients: %s\n", strings.Join(names, ", "))
		for j, step := range r.Instructions {
			fmt.Fprintf(w, "   %d) %s\n", j+1, step)
		}
	}
}

func printPreview(w io.Writer, p *models.DishPreview) {
	if id := p.Identification; id != nil {
		fmt.Fprintf(w, "%s", id.DishName)
		if id.Cuisine != "" {
			fmt.Fprintf(w, " (%s)", id.Cuisine)
		}
		fmt.Fprintf(w, ", %.0f%% confident\n", id.Confidence*100)
		if id.Description != "" {
			fmt.Fprintln(w, id.Description)
		}
	}
	if img := p.Image; img != nil {
		fmt.Fprintf(w, "Image: %s, %s\n", img.MIMEType, humanize.Bytes(uint64(len(img.Base64)*3/4)))
	}
}

func printPantry(w io.Writer, items []models.PantryItem, now time.Time) {
	for i := range items {
		item := &items[i]
		status := strings.ToLower(string(pantry.FreshnessOf(item, now)))
		fmt.Fprintf(w, "  %-22s %-8s %-9s expires %-16s %s\n",
			item.Name, item.Category, status,
			humanize.RelTime(item.ExpiresAt, now, "ago", "from now"), item.ID)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
