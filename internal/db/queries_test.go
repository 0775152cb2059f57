package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/j-veylop/mise/internal/models"
)

func sampleRecipe(title string) models.Recipe {
	return models.Recipe{
		Title:        title,
		Description:  "a test dish",
		TotalTime:    "30 min",
		Ingredients:  []models.Ingredient{{Name: "salt", Quantity: "1 tsp"}},
		Instructions: []string{"Cook it"},
	}
}

func TestAppendCooked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := &models.CookedRecipe{Recipe: sampleRecipe("Paneer Tikka")}
	before := time.Now()
	if err := db.AppendCooked(ctx, entry, 50); err != nil {
		t.Fatalf("AppendCooked() failed: %v", err)
	}

	if entry.ID == "" {
		t.Error("AppendCooked() should assign an ID")
	}
	if entry.CookedAt.Before(before) {
		t.Error("AppendCooked() should default CookedAt to now")
	}

	all, err := db.ReadAllCooked(ctx)
	if err != nil {
		t.Fatalf("ReadAllCooked() failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ReadAllCooked() returned %d entries, want 1", len(all))
	}
	got := all[0]
	if got.ID != entry.ID || got.Recipe.Title != "Paneer Tikka" || got.Recipe.TotalTime != "30 min" {
		t.Errorf("entry = %+v", got)
	}
	if !got.CookedAt.Equal(entry.CookedAt) {
		t.Errorf("CookedAt = %v, want %v", got.CookedAt, entry.CookedAt)
	}
}

func TestAppendCooked_NewestFirstAndCapped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		entry := &models.CookedRecipe{
			Recipe:   sampleRecipe(fmt.Sprintf("dish-%d", i)),
			CookedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.AppendCooked(ctx, entry, 5); err != nil {
			t.Fatalf("AppendCooked(%d) failed: %v", i, err)
		}
	}

	all, err := db.ReadAllCooked(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	for i, e := range all {
		want := fmt.Sprintf("dish-%d", 7-i)
		if e.Recipe.Title != want {
			t.Errorf("all[%d] = %q, want %q", i, e.Recipe.Title, want)
		}
	}

	n, err := db.CountCooked(ctx)
	if err != nil || n != 5 {
		t.Errorf("CountCooked() = %d, %v", n, err)
	}
}

func TestAppendCooked_SameTimestampKeepsInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	at := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	for _, title := range []string{"first", "second", "third"} {
		if err := db.AppendCooked(ctx, &models.CookedRecipe{Recipe: sampleRecipe(title), CookedAt: at}, 2); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.ReadAllCooked(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Recipe.Title != "third" || all[1].Recipe.Title != "second" {
		t.Errorf("unexpected log order: %+v", all)
	}
}

func TestAppendCookedBatch_DefaultLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var batch []*models.CookedRecipe
	now := time.Now()
	for i := 0; i < DefaultHistoryLimit+10; i++ {
		batch = append(batch, &models.CookedRecipe{
			Recipe:   sampleRecipe(fmt.Sprintf("dish-%d", i)),
			CookedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	if err := db.AppendCookedBatch(ctx, batch, 0); err != nil {
		t.Fatal(err)
	}

	n, err := db.CountCooked(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != DefaultHistoryLimit {
		t.Errorf("CountCooked() = %d, want %d", n, DefaultHistoryLimit)
	}
}

func TestAppendCooked_LocalTimezoneRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	at := time.Date(2025, 3, 1, 0, 15, 0, 0, loc)
	if err := db.AppendCooked(ctx, &models.CookedRecipe{Recipe: sampleRecipe("x"), CookedAt: at}, 10); err != nil {
		t.Fatal(err)
	}
	all, err := db.ReadAllCooked(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !all[0].CookedAt.Equal(at) {
		t.Errorf("CookedAt = %v, want %v", all[0].CookedAt, at)
	}
}

func TestLastCookedAt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := db.LastCookedAt(ctx)
	if err != nil || !got.IsZero() {
		t.Fatalf("LastCookedAt() on empty log = %v, %v", got, err)
	}

	at := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	_ = db.AppendCooked(ctx, &models.CookedRecipe{Recipe: sampleRecipe("a"), CookedAt: at.Add(-time.Hour)}, 10)
	_ = db.AppendCooked(ctx, &models.CookedRecipe{Recipe: sampleRecipe("b"), CookedAt: at}, 10)

	got, err = db.LastCookedAt(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(at) {
		t.Errorf("LastCookedAt() = %v, want %v", got, at)
	}
}

func TestLastCookedAt_SkipsBadTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	at := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	if err := db.AppendCooked(ctx, &models.CookedRecipe{Recipe: sampleRecipe("good"), CookedAt: at}, 10); err != nil {
		t.Fatal(err)
	}
	// "garbage" sorts after every digit, so it is the text maximum.
	if _, err := db.ExecContext(ctx,
		`INSERT INTO cooked_recipes (id, title, recipe_json, cooked_at) VALUES ('bad', 'bad', '{}', 'garbage')`); err != nil {
		t.Fatal(err)
	}

	got, err := db.LastCookedAt(ctx)
	if err != nil {
		t.Fatalf("LastCookedAt() error = %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("LastCookedAt() = %v, want %v", got, at)
	}
}

func TestReadAllCooked_SkipsDamagedRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.AppendCooked(ctx, &models.CookedRecipe{Recipe: sampleRecipe("good")}, 10); err != nil {
		t.Fatal(err)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO cooked_recipes (id, title, recipe_json, cooked_at) VALUES ('bad', 'bad', '{not json', ?)`,
		formatTime(time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	all, err := db.ReadAllCooked(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Recipe.Title != "good" {
		t.Errorf("ReadAllCooked() = %+v", all)
	}
}

func TestInsertAICall(t *testing.T) {
	db := newTestDB(t)

	call := &models.AICall{
		Label:      "recipe generation",
		Model:      "gemini-2.5-flash",
		KeyIndex:   1,
		Outcome:    models.AttemptSuccess,
		DurationMs: 1200,
		RequestID:  "req-123",
	}
	if err := db.InsertAICall(context.Background(), call); err != nil {
		t.Fatalf("InsertAICall() failed: %v", err)
	}
	if call.ID == 0 {
		t.Error("InsertAICall() should set ID")
	}
}

func TestGetRecentAICalls(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now()
	calls := []*models.AICall{
		{Label: "a", Model: "m1", Outcome: models.AttemptRetryable, Error: "429 quota", Timestamp: now.Add(-3 * time.Hour)},
		{Label: "b", Model: "m2", Outcome: models.AttemptTerminal, Error: "invalid JSON", Timestamp: now.Add(-2 * time.Hour)},
		{Label: "c", Model: "m1", Outcome: models.AttemptSuccess, Timestamp: now.Add(-1 * time.Hour)},
	}
	for _, call := range calls {
		if err := db.InsertAICall(ctx, call); err != nil {
			t.Fatalf("InsertAICall() failed: %v", err)
		}
	}

	recent, err := db.GetRecentAICalls(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentAICalls() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("GetRecentAICalls(2) returned %d calls, want 2", len(recent))
	}
	if recent[0].Label != "c" || recent[1].Label != "b" {
		t.Errorf("order = %q, %q; want c, b", recent[0].Label, recent[1].Label)
	}
	if recent[1].Error != "invalid JSON" {
		t.Errorf("Error = %q", recent[1].Error)
	}
	if recent[0].Timestamp.IsZero() {
		t.Error("Timestamp should be parsed")
	}
}

func TestGetModelStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, c := range []models.AICall{
		{Model: "m1", Outcome: models.AttemptRetryable, DurationMs: 100},
		{Model: "m1", Outcome: models.AttemptSuccess, DurationMs: 300},
		{Model: "m1", Outcome: models.AttemptTerminal, DurationMs: 200},
		{Model: "m2", Outcome: models.AttemptSuccess, DurationMs: 50},
	} {
		c.Label = "test"
		if err := db.InsertAICall(ctx, &c); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.GetModelStats(ctx)
	if err != nil {
		t.Fatalf("GetModelStats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len = %d, want 2", len(stats))
	}
	m1 := stats[0]
	if m1.Model != "m1" || m1.Attempts != 3 || m1.Successes != 1 || m1.Retryable != 1 || m1.Terminal != 1 {
		t.Errorf("m1 stats = %+v", m1)
	}
	if m1.AvgDurationMs != 200 {
		t.Errorf("AvgDurationMs = %v, want 200", m1.AvgDurationMs)
	}
}

func TestPruneAICalls(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = db.InsertAICall(ctx, &models.AICall{Label: "old", Model: "m", Outcome: models.AttemptSuccess, Timestamp: time.Now().Add(-48 * time.Hour)})
	_ = db.InsertAICall(ctx, &models.AICall{Label: "new", Model: "m", Outcome: models.AttemptSuccess})

	n, err := db.PruneAICalls(ctx, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("PruneAICalls() removed %d, want 1", n)
	}
}

func TestPantryItems(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	milk := &models.PantryItem{Name: "Milk", Category: "dairy", AddedAt: now, ExpiresAt: now.Add(7 * 24 * time.Hour)}
	fish := &models.PantryItem{Name: "Salmon", Category: "seafood", AddedAt: now, ExpiresAt: now.Add(2 * 24 * time.Hour)}
	for _, item := range []*models.PantryItem{milk, fish} {
		if err := db.UpsertPantryItem(ctx, item); err != nil {
			t.Fatalf("UpsertPantryItem() failed: %v", err)
		}
	}

	// Same name, different case: refreshes the row and keeps its ID.
	again := &models.PantryItem{Name: "milk", Category: "dairy", AddedAt: now.Add(time.Hour), ExpiresAt: now.Add(8 * 24 * time.Hour)}
	if err := db.UpsertPantryItem(ctx, again); err != nil {
		t.Fatal(err)
	}
	if again.ID != milk.ID {
		t.Errorf("upsert ID = %q, want existing %q", again.ID, milk.ID)
	}

	items, err := db.ListPantryItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Name != "Salmon" {
		t.Errorf("soonest expiry first, got %q", items[0].Name)
	}
	if !items[1].ExpiresAt.Equal(again.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", items[1].ExpiresAt, again.ExpiresAt)
	}

	removed, err := db.DeletePantryItem(ctx, "salmon")
	if err != nil || !removed {
		t.Errorf("DeletePantryItem(name) = %v, %v", removed, err)
	}
	removed, err = db.DeletePantryItem(ctx, milk.ID)
	if err != nil || !removed {
		t.Errorf("DeletePantryItem(id) = %v, %v", removed, err)
	}
	removed, _ = db.DeletePantryItem(ctx, "nothing")
	if removed {
		t.Error("DeletePantryItem() should report false for unknown item")
	}
}
