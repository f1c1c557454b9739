// Package games holds the game-record persistence capability with its two
// interchangeable backends.
package games

import (
	"context"

	"gameshelf/internal/domain"
)

// Repository is the persistence contract for one user's game collection.
type Repository interface {
	// LoadAll returns the user's collection; an empty collection is an
	// empty slice, never an error.
	LoadAll(ctx context.Context, userID string) ([]domain.Game, error)

	// Save upserts by game ID and is idempotent.
	Save(ctx context.Context, game domain.Game, userID string) error

	// Delete removes the given records. Absent IDs and an empty list are
	// no-ops, not errors.
	Delete(ctx context.Context, ids []string, userID string) error

	// Wipe removes every record for the user. Used only during account
	// deletion.
	Wipe(ctx context.Context, userID string) error
}
