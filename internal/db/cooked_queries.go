package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/models"
)

// DefaultHistoryLimit is the retention cap of the cooked-recipe log.
const DefaultHistoryLimit = 50

// AppendCooked adds entry to the cooked-recipe log and drops the oldest
// entries beyond limit. A zero CookedAt is set to now and an empty ID is
// assigned. Entries are never updated after insertion.
func (db *DB) AppendCooked(ctx context.Context, entry *models.CookedRecipe, limit int) error {
	return db.AppendCookedBatch(ctx, []*models.CookedRecipe{entry}, limit)
}

// AppendCookedBatch appends several entries in one transaction, then applies
// the retention cap once.
func (db *DB) AppendCookedBatch(ctx context.Context, entries []*models.CookedRecipe, limit int) error {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CookedAt.IsZero() {
			entry.CookedAt = time.Now()
		}

		recipeJSON, err := json.Marshal(entry.Recipe)
		if err != nil {
			return fmt.Errorf("failed to encode recipe: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO cooked_recipes (id, title, recipe_json, cooked_at) VALUES (?, ?, ?, ?)`,
			entry.ID, entry.Recipe.Title, string(recipeJSON), formatTime(entry.CookedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert cooked recipe: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM cooked_recipes
		WHERE seq NOT IN (
			SELECT seq FROM cooked_recipes
			ORDER BY cooked_at DESC, seq DESC
			LIMIT ?
		)`, limit)
	if err != nil {
		return fmt.Errorf("failed to trim cooked recipes: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		logger.Debug("trimmed cooked recipe log", "dropped", n, "limit", limit)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

// ReadAllCooked returns the whole cooked-recipe log, newest first.
func (db *DB) ReadAllCooked(ctx context.Context) ([]models.CookedRecipe, error) {
	query := `
		SELECT id, recipe_json, cooked_at
		FROM cooked_recipes
		ORDER BY cooked_at DESC, seq DESC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cooked recipes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var entries []models.CookedRecipe
	for rows.Next() {
		var entry models.CookedRecipe
		var recipeJSON, cookedAt string
		if err := rows.Scan(&entry.ID, &recipeJSON, &cookedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cooked recipe: %w", err)
		}
		if err := json.Unmarshal([]byte(recipeJSON), &entry.Recipe); err != nil {
			// A damaged row must not hide the rest of the log
			logger.Warn("skipping undecodable cooked recipe", "id", entry.ID, "error", err)
			continue
		}
		t, ok := parseTimeString(cookedAt)
		if !ok {
			logger.Warn("skipping cooked recipe with bad timestamp", "id", entry.ID, "cooked_at", cookedAt)
			continue
		}
		entry.CookedAt = t
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CountCooked returns the number of entries in the cooked-recipe log.
func (db *DB) CountCooked(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cooked_recipes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cooked recipes: %w", err)
	}
	return n, nil
}

// LastCookedAt returns when the newest entry was cooked, or the zero time
// for an empty log. Rows with unparseable timestamps are skipped like in
// ReadAllCooked.
func (db *DB) LastCookedAt(ctx context.Context) (time.Time, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, cooked_at FROM cooked_recipes ORDER BY cooked_at DESC, seq DESC")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last cooked time: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	for rows.Next() {
		var id, cookedAt string
		if err := rows.Scan(&id, &cookedAt); err != nil {
			return time.Time{}, fmt.Errorf("failed to scan cooked time: %w", err)
		}
		if t, ok := parseTimeString(cookedAt); ok {
			return t, nil
		}
		logger.Warn("skipping cooked recipe with bad timestamp", "id", id, "cooked_at", cookedAt)
	}
	return time.Time{}, rows.Err()
}
