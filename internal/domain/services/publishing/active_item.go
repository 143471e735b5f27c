package publishing

import (
	"context"
	"time"

	"newsdesk/internal/domain/models/publishing"
)

// ActiveItemService manages breaking-news style collections and enforces
// their active-set policy.
type ActiveItemService interface {
	CreateItem(ctx context.Context, kind publishing.ActiveKind, req *ActiveItemRequest) (*publishing.ActiveItem, error)
	GetItem(ctx context.Context, kind publishing.ActiveKind, id int64) (*publishing.ActiveItem, error)
	ListItems(ctx context.Context, kind publishing.ActiveKind) ([]publishing.ActiveItem, error)
	UpdateItem(ctx context.Context, kind publishing.ActiveKind, id int64, req *UpdateActiveItemRequest) (*publishing.ActiveItem, error)
	DeleteItem(ctx context.Context, kind publishing.ActiveKind, id int64) error

	Activate(ctx context.Context, kind publishing.ActiveKind, id int64) (*publishing.ActiveItem, error)
	Deactivate(ctx context.Context, kind publishing.ActiveKind, id int64) (*publishing.ActiveItem, error)
	Toggle(ctx context.Context, kind publishing.ActiveKind, id int64) (*publishing.ActiveItem, error)

	// Current returns the live items for reads: one row for exclusive
	// collections, up to MaxActiveListSize for list collections
	Current(ctx context.Context, kind publishing.ActiveKind) ([]publishing.ActiveItem, error)
}

// ActiveItemRequest represents an item creation request
type ActiveItemRequest struct {
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Priority  int        `json:"priority"`
	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UpdateActiveItemRequest represents a partial item update
type UpdateActiveItemRequest struct {
	Title        *string    `json:"title,omitempty"`
	Body         *string    `json:"body,omitempty"`
	Priority     *int       `json:"priority,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ClearExpires bool       `json:"clear_expires,omitempty"`
}
