package pantry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/j-veylop/mise/internal/db"
	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/models"
)

// ErrNotFound is returned by Remove when nothing matched.
var ErrNotFound = errors.New("pantry item not found")

// Service manages pantry items in the database.
type Service struct {
	db  *db.DB
	now func() time.Time
}

// New creates a pantry service.
func New(database *db.DB) *Service {
	return &Service{db: database, now: time.Now}
}

// Add stores each non-blank name, refreshing its expiry if already present.
func (s *Service) Add(ctx context.Context, names ...string) ([]*models.PantryItem, error) {
	now := s.now()
	var added []*models.PantryItem
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		item := NewItem(name, now)
		if err := s.db.UpsertPantryItem(ctx, item); err != nil {
			return added, err
		}
		logger.Debug("pantry item added", "name", item.Name, "category", item.Category)
		added = append(added, item)
	}
	return added, nil
}

// List returns all items, soonest expiry first.
func (s *Service) List(ctx context.Context) ([]models.PantryItem, error) {
	return s.db.ListPantryItems(ctx)
}

// Names returns the names of all items that have not expired.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	names := make([]string, 0, len(items))
	for i := range items {
		if FreshnessOf(&items[i], now) != models.FreshnessExpired {
			names = append(names, items[i].Name)
		}
	}
	return names, nil
}

// Remove deletes the item with the given ID or name.
func (s *Service) Remove(ctx context.Context, idOrName string) error {
	ok, err := s.db.DeletePantryItem(ctx, strings.TrimSpace(idOrName))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", idOrName, ErrNotFound)
	}
	return nil
}

// Expiring returns items that are expiring or already expired.
func (s *Service) Expiring(ctx context.Context) ([]models.PantryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []models.PantryItem
	for i := range items {
		if FreshnessOf(&items[i], now) != models.FreshnessFresh {
			out = append(out, items[i])
		}
	}
	return out, nil
}
