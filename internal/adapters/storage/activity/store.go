package activity

import (
	"context"

	domain "curriculum/internal/domain/activity"
)

// Store defines the interface for activity feed persistence.
type Store interface {
	// Save persists an activity event.
	// PRE: event is valid
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns the most recent events.
	// PRE: limit > 0
	// POST: Returns events ordered by timestamp desc
	List(ctx context.Context, limit int) ([]domain.Event, error)

	// Clear removes every event.
	Clear(ctx context.Context) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
