package publishing

import (
	"context"

	"newsdesk/internal/domain/models/publishing"
)

// ContentService handles content record business logic
type ContentService interface {
	// CreateContent derives slug and reading time, inserts the row and syncs the mirror
	CreateContent(ctx context.Context, req *CreateContentRequest) (*publishing.ContentRecord, error)

	// GetContent retrieves a record by ID
	GetContent(ctx context.Context, id int64) (*publishing.ContentRecord, error)

	// GetContentBySlug retrieves a record by slug
	GetContentBySlug(ctx context.Context, slug string) (*publishing.ContentRecord, error)

	// ListContent returns a page of records
	ListContent(ctx context.Context, filter *publishing.ContentFilter) (*ContentPage, error)

	// UpdateContent applies a partial update; title changes re-slug, body changes
	// recompute reading time
	UpdateContent(ctx context.Context, id int64, req *UpdateContentRequest) (*publishing.ContentRecord, error)

	// DeleteContent hard-deletes a record and removes its mirror
	DeleteContent(ctx context.Context, id int64) error

	// RecordView atomically increments the view counter
	RecordView(ctx context.Context, id int64) (int64, error)
}

// CreateContentRequest represents a content creation request
type CreateContentRequest struct {
	Principal     publishing.Principal `json:"-"` // Set by handler from auth context
	Title         string               `json:"title"`
	Body          string               `json:"body"`
	BodyFormat    string               `json:"body_format,omitempty"` // markdown (default) or html
	Excerpt       string               `json:"excerpt"`
	CategoryID    int64                `json:"category_id"`
	Tags          []string             `json:"tags"`
	FeaturedImage string               `json:"featured_image"`
	IsPublished   bool                 `json:"is_published"`
	IsFeatured    bool                 `json:"is_featured"`
}

// UpdateContentRequest represents a partial content update. Nil fields are left unchanged.
type UpdateContentRequest struct {
	Principal     publishing.Principal `json:"-"`
	Title         *string              `json:"title,omitempty"`
	Body          *string              `json:"body,omitempty"`
	BodyFormat    string               `json:"body_format,omitempty"`
	Excerpt       *string              `json:"excerpt,omitempty"`
	CategoryID    *int64               `json:"category_id,omitempty"`
	Tags          *[]string            `json:"tags,omitempty"`
	FeaturedImage *string              `json:"featured_image,omitempty"`
	IsPublished   *bool                `json:"is_published,omitempty"`
	IsFeatured    *bool                `json:"is_featured,omitempty"`
}

// ContentPage is one page of ListContent results
type ContentPage struct {
	Items      []publishing.ContentRecord `json:"items"`
	TotalCount int                        `json:"total_count"`
	Limit      int                        `json:"limit"`
	Offset     int                        `json:"offset"`
	HasMore    bool                       `json:"has_more"`
}
