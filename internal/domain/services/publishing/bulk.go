package publishing

import (
	"context"

	"newsdesk/internal/domain/models/publishing"
)

// MaxBulkItems caps the number of ids accepted by one bulk request
const MaxBulkItems = 500

// BulkService applies one relational statement to many records, then runs
// independent best-effort mirror work per record.
type BulkService interface {
	// BulkSetStatus publishes or drafts every id
	BulkSetStatus(ctx context.Context, req *BulkStatusRequest) (*BulkResult, error)

	// BulkDelete hard-deletes every id
	BulkDelete(ctx context.Context, req *BulkDeleteRequest) (*BulkResult, error)
}

// BulkStatusRequest represents a bulk status change
type BulkStatusRequest struct {
	Principal publishing.Principal     `json:"-"`
	IDs       []int64                  `json:"ids"`
	Status    publishing.PublishStatus `json:"status"`
}

// BulkDeleteRequest represents a bulk delete
type BulkDeleteRequest struct {
	Principal publishing.Principal `json:"-"`
	IDs       []int64              `json:"ids"`
}

// BulkResult reports the relational outcome of a bulk operation.
// Affected is never changed by mirror failures.
type BulkResult struct {
	Affected       int64 `json:"affected"`
	MirrorFailures int   `json:"mirror_failures"`
}
