package publishing

import (
	"context"
	"time"

	"newsdesk/internal/domain/models/publishing"
)

// ContentRepository defines data access operations for content records
type ContentRepository interface {
	// Create inserts a record and fills in its ID and timestamps.
	// A slug collision returns a *domain.ConflictError with ResourceType "slug".
	Create(ctx context.Context, rec *publishing.ContentRecord) error

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id int64) (*publishing.ContentRecord, error)

	// GetBySlug retrieves a record by slug
	GetBySlug(ctx context.Context, slug string) (*publishing.ContentRecord, error)

	// GetByIDs retrieves every existing record among ids (missing ids are skipped)
	GetByIDs(ctx context.Context, ids []int64) ([]publishing.ContentRecord, error)

	// List returns records matching the filter, newest first, plus the total match count
	List(ctx context.Context, filter *publishing.ContentFilter) ([]publishing.ContentRecord, int, error)

	// Update writes every mutable column of rec.
	// A slug collision returns a *domain.ConflictError with ResourceType "slug".
	Update(ctx context.Context, rec *publishing.ContentRecord) error

	// Delete hard-deletes a record
	Delete(ctx context.Context, id int64) error

	// SetPublished flips is_published for all ids in one statement and
	// returns the number of affected rows
	SetPublished(ctx context.Context, ids []int64, published bool) (int64, error)

	// DeleteMany deletes all ids in one statement and returns the affected row count
	DeleteMany(ctx context.Context, ids []int64) (int64, error)

	// IncrementViews atomically adds one view and returns the new count
	IncrementViews(ctx context.Context, id int64) (int64, error)

	// MarkMirrorSynced stamps mirror_synced_at for a record
	MarkMirrorSynced(ctx context.Context, id int64, at time.Time) error

	// ListStaleMirrors returns published records whose mirror is missing or older than the row
	ListStaleMirrors(ctx context.Context, limit int) ([]publishing.ContentRecord, error)

	// ListPublishedIDs returns the ids of every published record
	ListPublishedIDs(ctx context.Context) ([]int64, error)
}
