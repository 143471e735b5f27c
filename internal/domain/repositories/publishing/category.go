package publishing

import (
	"context"

	"newsdesk/internal/domain/models/publishing"
)

// CategoryRepository defines data access operations for categories
type CategoryRepository interface {
	// Create inserts a category; slug collisions return a *domain.ConflictError
	Create(ctx context.Context, cat *publishing.Category) error

	// GetByID retrieves a category by ID
	GetByID(ctx context.Context, id int64) (*publishing.Category, error)

	// List returns all categories ordered by name
	List(ctx context.Context) ([]publishing.Category, error)

	// Update writes name, slug and description
	Update(ctx context.Context, cat *publishing.Category) error

	// Delete removes a category.
	// Returns a *domain.ConflictError if records still reference it.
	Delete(ctx context.Context, id int64) error

	// Exists reports whether a category id is present
	Exists(ctx context.Context, id int64) (bool, error)
}
