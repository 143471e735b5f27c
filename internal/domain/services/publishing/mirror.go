package publishing

import (
	"context"

	"newsdesk/internal/domain/models/publishing"
)

// AfterWrite runs after a successful mirror write, while the mirror of the
// record is still locked
type AfterWrite func(ctx context.Context) error

// KeepCheck decides, under the mirror lock, whether a mirror must survive
type KeepCheck func(ctx context.Context) (bool, error)

// MirrorSynchronizer maintains the on-disk projection of content records.
type MirrorSynchronizer interface {
	// Sync writes the mirror of a published record, or removes it when the
	// record is not published
	Sync(ctx context.Context, rec *publishing.ContentRecord) error

	// SyncWith is Sync followed by after under the same per-record lock
	SyncWith(ctx context.Context, rec *publishing.ContentRecord, after AfterWrite) error

	// Remove deletes the mirror of id; an absent mirror is not an error
	Remove(ctx context.Context, id int64) error

	// RemoveUnless deletes the mirror of id unless keep reports true, and
	// reports whether it removed anything
	RemoveUnless(ctx context.Context, id int64, keep KeepCheck) (bool, error)

	// MirroredIDs lists the ids that currently have a mirror directory
	MirroredIDs(ctx context.Context) ([]int64, error)
}

// MirrorReconciler repairs drift between the relational rows and the mirror.
type MirrorReconciler interface {
	// Reconcile re-syncs stale published records and removes orphaned mirrors
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

// ReconcileReport summarizes one reconcile pass
type ReconcileReport struct {
	Resynced int `json:"resynced"`
	Removed  int `json:"removed"`
	Failures int `json:"failures"`
}
