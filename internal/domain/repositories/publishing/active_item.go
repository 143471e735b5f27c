package publishing

import (
	"context"
	"time"

	"newsdesk/internal/domain/models/publishing"
)

// ActiveItemRepository stores active-flagged items for one collection kind.
// Activate/Deactivate/Toggle honour the collection's ActivePolicy.
type ActiveItemRepository interface {
	// Kind returns the collection this repository serves
	Kind() publishing.ActiveKind

	// Create inserts an item with is_active = false
	Create(ctx context.Context, item *publishing.ActiveItem) error

	// GetByID retrieves an item by ID
	GetByID(ctx context.Context, id int64) (*publishing.ActiveItem, error)

	// List returns all items, highest priority first
	List(ctx context.Context) ([]publishing.ActiveItem, error)

	// Update writes title, body, priority and expires_at (never is_active)
	Update(ctx context.Context, item *publishing.ActiveItem) error

	// Delete removes an item
	Delete(ctx context.Context, id int64) error

	// Activate sets is_active for id; exclusive collections clear every other row
	// in the same statement
	Activate(ctx context.Context, id int64) error

	// Deactivate clears is_active for id only
	Deactivate(ctx context.Context, id int64) error

	// Toggle activates an inactive item or deactivates an active one and
	// returns the resulting flag
	Toggle(ctx context.Context, id int64) (bool, error)

	// Current returns live items (active and unexpired at now) ordered by
	// priority DESC, created_at DESC, at most limit rows
	Current(ctx context.Context, now time.Time, limit int) ([]publishing.ActiveItem, error)
}
