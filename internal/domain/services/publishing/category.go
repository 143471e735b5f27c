package publishing

import (
	"context"

	"newsdesk/internal/domain/models/publishing"
)

// CategoryService handles category business logic
type CategoryService interface {
	CreateCategory(ctx context.Context, req *CategoryRequest) (*publishing.Category, error)
	GetCategory(ctx context.Context, id int64) (*publishing.Category, error)
	ListCategories(ctx context.Context) ([]publishing.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *CategoryRequest) (*publishing.Category, error)

	// DeleteCategory fails with a conflict while records still reference the category
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryRequest is used for both create and update
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
