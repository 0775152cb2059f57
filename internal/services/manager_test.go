package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/mise/internal/config"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services/ai"
)

// stubGenerator answers every call with the same text.
type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) Generate(_ context.Context, _ ai.Call, parts []ai.Part) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range parts {
		if !p.IsInline() {
			g.prompts = append(g.prompts, p.Text)
		}
	}
	return g.response, g.err
}

type sentNotification struct {
	title string
	body  string
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Provider:      config.ProviderGemini,
		APIKeys:       []string{"k1", "k2"},
		Models:        []string{"m1", "m2"},
		DatabasePath:  filepath.Join(t.TempDir(), "test.db"),
		HistoryLimit:  50,
		Notifications: true,
	}
}

func newTestManager(t *testing.T, gen ai.Generator) (*Manager, *[]sentNotification) {
	t.Helper()
	mgr, err := newManager(testConfig(t), gen, nil)
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	var sent []sentNotification
	mgr.notify = func(title, body string) error {
		sent = append(sent, sentNotification{title, body})
		return nil
	}
	return mgr, &sent
}

func dish(title string) models.Recipe {
	return models.Recipe{
		Title:        title,
		Ingredients:  []models.Ingredient{{Name: "salt"}},
		Instructions: []string{"Cook"},
		TotalTime:    "30 min",
	}
}

func TestNewManager(t *testing.T) {
	mgr, err := NewManager(testConfig(t))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer func() { _ = mgr.Close() }()

	if mgr.AI() == nil {
		t.Error("AI service should be initialized")
	}
	if mgr.Pantry() == nil {
		t.Error("Pantry service should be initialized")
	}
	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
}

func TestNewManager_NoCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIKeys = nil
	if _, err := NewManager(cfg); !errors.Is(err, ai.ErrNoCredentials) {
		t.Errorf("NewManager() error = %v, want ErrNoCredentials", err)
	}
}

func TestManager_Close_Idempotent(t *testing.T) {
	mgr, _ := newTestManager(t, &stubGenerator{})
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestManager_LogCookedAndAnalytics(t *testing.T) {
	mgr, sent := newTestManager(t, &stubGenerator{})
	ctx := context.Background()

	ch, _ := mgr.Subscribe()
	today := time.Date(2026, 4, 10, 18, 0, 0, 0, time.Local)

	// Three consecutive days reaches the first streak milestone.
	for i, title := range []string{"Dal", "Paneer Tikka", "Veg Biryani"} {
		day := today.AddDate(0, 0, i-2)
		mgr.now = func() time.Time { return day }
		if _, err := mgr.LogCooked(ctx, dish(title)); err != nil {
			t.Fatalf("LogCooked(%s) error = %v", title, err)
		}
	}

	snap, err := mgr.Analytics(ctx, models.TimeRangeAll)
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if snap.TotalDishes != 3 || snap.CurrentStreak != 3 || snap.TotalCookingMinutes != 90 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Cuisines["Indian"] != 3 {
		t.Errorf("Cuisines = %v", snap.Cuisines)
	}

	if len(*sent) != 1 || (*sent)[0].title != "3-day cooking streak" {
		t.Errorf("notifications = %+v, want one streak notification", *sent)
	}

	select {
	case ev := <-ch:
		if _, ok := ev.(CookedLoggedEvent); !ok {
			t.Errorf("event = %T, want CookedLoggedEvent", ev)
		}
	case <-time.After(time.Second):
		t.Error("no CookedLoggedEvent received")
	}
}

func TestManager_LogCookedLevelUp(t *testing.T) {
	mgr, sent := newTestManager(t, &stubGenerator{})
	mgr.cfg.Notifications = true
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	var last *CookedLoggedEvent
	for i := 0; i < 5; i++ {
		// Two-day gaps keep streak notifications out of the way.
		at := base.AddDate(0, 0, i*2)
		mgr.now = func() time.Time { return at }
		ev, err := mgr.LogCooked(ctx, dish("Soup"))
		if err != nil {
			t.Fatalf("LogCooked() error = %v", err)
		}
		last = ev
	}

	if !last.LevelUp || last.Snapshot.Skill.Current.Name != "Home Cook" {
		t.Errorf("last event = %+v, want level up to Home Cook", last)
	}
	if len(*sent) != 1 || (*sent)[0].title != "Level up: Home Cook" {
		t.Errorf("notifications = %+v", *sent)
	}
}

func TestManager_LogCookedRejectsInvalidRecipe(t *testing.T) {
	mgr, _ := newTestManager(t, &stubGenerator{})
	if _, err := mgr.LogCooked(context.Background(), models.Recipe{Title: "No steps"}); err == nil {
		t.Error("LogCooked() with invalid recipe succeeded")
	}
}

func TestManager_NotificationsDisabled(t *testing.T) {
	mgr, sent := newTestManager(t, &stubGenerator{})
	mgr.cfg.Notifications = false
	for i := 0; i < 5; i++ {
		if _, err := mgr.LogCooked(context.Background(), dish("Soup")); err != nil {
			t.Fatalf("LogCooked() error = %v", err)
		}
	}
	if len(*sent) != 0 {
		t.Errorf("notifications = %+v, want none", *sent)
	}
}

func TestManager_RecordsAttempts(t *testing.T) {
	gen := &stubGenerator{err: errors.New("429 quota exceeded")}
	mgr, _ := newTestManager(t, gen)
	ctx := context.Background()

	_, err := mgr.AI().IdentifyDishFromText(ctx, "noodle soup")
	var ex *ai.ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("IdentifyDishFromText() error = %v, want *ExhaustedError", err)
	}

	calls, err := mgr.RecentAICalls(ctx, 10)
	if err != nil {
		t.Fatalf("RecentAICalls() error = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("RecentAICalls() = %d, want 2 (one per credential)", len(calls))
	}
	for _, c := range calls {
		if c.Outcome != models.AttemptRetryable || c.Model != "m1" {
			t.Errorf("call = %+v, want retryable on m1", c)
		}
	}

	stats, err := mgr.ModelStats(ctx)
	if err != nil {
		t.Fatalf("ModelStats() error = %v", err)
	}
	if len(stats) != 1 || stats[0].Attempts != 2 {
		t.Errorf("ModelStats() = %+v", stats)
	}

	status := mgr.RotationStatus()
	if status.KeyCount != 2 || status.LastModel != "m1" || len(status.Models) != 2 {
		t.Errorf("RotationStatus() = %+v", status)
	}
}

func TestManager_PantryFlow(t *testing.T) {
	gen := &stubGenerator{response: `{"recipes":[{"title":"Tomato Rice","ingredients":["rice","tomato"],"instructions":["Cook"]}],"dishName":"Tomato Rice","items":[{"name":"onion"}]}`}
	mgr, _ := newTestManager(t, gen)
	ctx := context.Background()

	if _, err := mgr.AddPantry(ctx, "rice", "tomatoes"); err != nil {
		t.Fatalf("AddPantry() error = %v", err)
	}

	recipes, err := mgr.GenerateRecipes(ctx, nil, models.RecipeContext{})
	if err != nil {
		t.Fatalf("GenerateRecipes() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Errorf("GenerateRecipes() = %+v", recipes)
	}
	if len(gen.prompts) == 0 || !containsAll(gen.prompts[0], "rice", "tomatoes") {
		t.Errorf("recipe prompt did not use the pantry: %v", gen.prompts)
	}

	if _, err := mgr.LogCooked(ctx, recipes[0]); err != nil {
		t.Fatalf("LogCooked() error = %v", err)
	}
	if _, err := mgr.SuggestMeal(ctx, models.MealRequest{}); err != nil {
		t.Fatalf("SuggestMeal() error = %v", err)
	}
	if last := gen.prompts[len(gen.prompts)-1]; !containsAll(last, "Tomato Rice", "rice") {
		t.Errorf("meal prompt missing recent dish or pantry: %q", last)
	}

	list, err := mgr.BuildGroceryList(ctx, recipes)
	if err != nil || len(list.Items) != 1 {
		t.Fatalf("BuildGroceryList() = %+v, %v", list, err)
	}

	if err := mgr.RemovePantry(ctx, "rice"); err != nil {
		t.Fatalf("RemovePantry() error = %v", err)
	}
}

func TestManager_LogSummaryAndExpiring(t *testing.T) {
	mgr, _ := newTestManager(t, &stubGenerator{})
	ctx := context.Background()

	count, last, err := mgr.LogSummary(ctx)
	if err != nil {
		t.Fatalf("LogSummary() error = %v", err)
	}
	if count != 0 || !last.IsZero() {
		t.Errorf("empty LogSummary() = %d, %v", count, last)
	}

	cooked := time.Date(2026, 4, 10, 19, 30, 0, 0, time.UTC)
	mgr.now = func() time.Time { return cooked }
	if _, err := mgr.LogCooked(ctx, dish("Pad Thai")); err != nil {
		t.Fatal(err)
	}
	count, last, err = mgr.LogSummary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 || !last.Equal(cooked) {
		t.Errorf("LogSummary() = %d, %v; want 1, %v", count, last, cooked)
	}

	if _, err := mgr.AddPantry(ctx, "salmon", "rice"); err != nil {
		t.Fatal(err)
	}
	items, err := mgr.ExpiringPantry(ctx)
	if err != nil {
		t.Fatalf("ExpiringPantry() error = %v", err)
	}
	if len(items) != 1 || items[0].Name != "salmon" {
		t.Errorf("ExpiringPantry() = %+v, want only salmon", items)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
