package pantry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/mise/internal/db"
	"github.com/j-veylop/mise/internal/models"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"Salmon fillet", CategorySeafood},
		{"chicken thighs", CategoryMeat},
		{"Frozen peas", CategoryFrozen},
		{"eggs", CategoryEggs},
		{"eggplant", CategoryProduce},
		{"Greek yogurt", CategoryDairy},
		{"sourdough bread", CategoryBakery},
		{"fresh basil", CategoryHerbs},
		{"cherry tomatoes", CategoryProduce},
		{"mixed berries", CategoryProduce},
		{"basmati rice", CategoryStaples},
		{"Rice noodles", CategoryStaples},
		{"mystery jar", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.name); got != tt.want {
				t.Errorf("InferCategory(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestShelfLife(t *testing.T) {
	if got := ShelfLife(CategorySeafood); got != 48*time.Hour {
		t.Errorf("ShelfLife(seafood) = %v", got)
	}
	if got := ShelfLife(Category("unknown")); got != 7*24*time.Hour {
		t.Errorf("ShelfLife(unknown) = %v, want default", got)
	}
}

func TestNewItemAndFreshness(t *testing.T) {
	added := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	item := NewItem("  milk ", added)
	if item.Name != "milk" || item.Category != string(CategoryDairy) {
		t.Fatalf("NewItem() = %+v", item)
	}
	if !item.ExpiresAt.Equal(added.Add(7 * 24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v", item.ExpiresAt)
	}

	tests := []struct {
		now  time.Time
		want models.Freshness
	}{
		{added, models.FreshnessFresh},
		{added.Add(5 * 24 * time.Hour), models.FreshnessExpiring},
		{added.Add(7 * 24 * time.Hour), models.FreshnessExpiring},
		{added.Add(8 * 24 * time.Hour), models.FreshnessExpired},
	}
	for _, tt := range tests {
		if got := FreshnessOf(item, tt.now); got != tt.want {
			t.Errorf("FreshnessOf(now=%v) = %s, want %s", tt.now, got, tt.want)
		}
	}
}

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	s := New(database)
	s.now = func() time.Time { return now }
	return s
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, now)

	added, err := s.Add(ctx, "shrimp", " ", "rice", "Shrimp")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(added) != 3 {
		t.Errorf("Add() stored %d items, want 3", len(added))
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() = %d items, want 2 (duplicate name merged)", len(items))
	}
	if items[0].Category != string(CategorySeafood) {
		t.Errorf("first item = %+v, want shrimp (soonest expiry)", items[0])
	}

	s.now = func() time.Time { return now.Add(3 * 24 * time.Hour) }
	expiring, err := s.Expiring(ctx)
	if err != nil {
		t.Fatalf("Expiring() error = %v", err)
	}
	if len(expiring) != 1 {
		t.Errorf("Expiring() = %+v, want shrimp only", expiring)
	}
	names, err := s.Names(ctx)
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 1 || names[0] != "rice" {
		t.Errorf("Names() = %v, want [rice]", names)
	}

	if err := s.Remove(ctx, "SHRIMP"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "shrimp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(again) error = %v, want ErrNotFound", err)
	}
}
