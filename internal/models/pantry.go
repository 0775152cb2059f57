// Package models defines data structures and domain types.
package models

import "time"

// Freshness indicates how close a pantry item is to expiry.
type Freshness string

const (
	FreshnessFresh    Freshness = "FRESH"
	FreshnessExpiring Freshness = "EXPIRING"
	FreshnessExpired  Freshness = "EXPIRED"
)

// PantryItem is an ingredient on hand, with an inferred expiry date.
type PantryItem struct {
	AddedAt   time.Time
	ExpiresAt time.Time
	ID        string
	Name      string
	Category  string
}

// DaysLeft returns whole days until expiry (negative once expired).
func (p *PantryItem) DaysLeft(now time.Time) int {
	return int(p.ExpiresAt.Sub(now).Hours() / 24)
}
