package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/j-veylop/mise/internal/models"
)

// UpsertPantryItem inserts item, or refreshes the existing item with the
// same name (case-insensitive) keeping its ID.
func (db *DB) UpsertPantryItem(ctx context.Context, item *models.PantryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := `
		INSERT INTO pantry_items (id, name, category, added_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			added_at = excluded.added_at,
			expires_at = excluded.expires_at
		RETURNING id
	`

	err := db.QueryRowContext(ctx, query,
		item.ID,
		item.Name,
		item.Category,
		formatTime(item.AddedAt),
		formatTime(item.ExpiresAt),
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert pantry item: %w", err)
	}
	return nil
}

// ListPantryItems returns all pantry items, soonest expiry first.
func (db *DB) ListPantryItems(ctx context.Context) ([]models.PantryItem, error) {
	query := `
		SELECT id, name, category, added_at, expires_at
		FROM pantry_items
		ORDER BY expires_at ASC, name ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pantry items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.PantryItem
	for rows.Next() {
		var item models.PantryItem
		var addedAt, expiresAt string
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &addedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		item.AddedAt, _ = parseTimeString(addedAt)
		item.ExpiresAt, _ = parseTimeString(expiresAt)
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeletePantryItem removes the item with the given ID or name. It reports
// whether a row was removed.
func (db *DB) DeletePantryItem(ctx context.Context, idOrName string) (bool, error) {
	result, err := db.ExecContext(ctx,
		"DELETE FROM pantry_items WHERE id = ? OR name = ?", idOrName, idOrName)
	if err != nil {
		return false, fmt.Errorf("failed to delete pantry item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
