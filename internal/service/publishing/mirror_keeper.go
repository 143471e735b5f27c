package publishing

import (
	"context"
	"errors"
	"log/slog"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
)

// mirrorKeeper runs best-effort mirror operations after a row is written.
// Failures are logged and returned for counting; they never undo the row.
type mirrorKeeper struct {
	mirror      pubSvc.MirrorSynchronizer
	contentRepo pubRepo.ContentRepository
	logger      *slog.Logger
}

// sync projects rec onto the mirror and stamps mirror_synced_at with the
// row version that was written. The stamp runs under the mirror lock, so the
// last write of an id is also its last stamp: an older version landing late
// leaves the row stale for the reconciler instead of looking fresh.
func (k *mirrorKeeper) sync(ctx context.Context, rec *models.ContentRecord) error {
	ctx = context.WithoutCancel(ctx)

	version := rec.UpdatedAt
	stamped := false
	err := k.mirror.SyncWith(ctx, rec, func(ctx context.Context) error {
		if err := k.contentRepo.MarkMirrorSynced(ctx, rec.ID, version); err != nil {
			// The mirror is correct; the reconciler re-syncs it once more
			k.logger.Warn("mark mirror synced failed", "id", rec.ID, "error", err)
			return nil
		}
		stamped = true
		return nil
	})
	if err != nil {
		k.logger.Warn("mirror sync failed",
			"id", rec.ID,
			"published", rec.IsPublished,
			"error", err,
		)
		return err
	}
	if stamped {
		rec.MirrorSyncedAt = &version
	}

	return nil
}

// remove deletes the mirror of a record whose row is gone
func (k *mirrorKeeper) remove(ctx context.Context, id int64) error {
	if err := k.mirror.Remove(context.WithoutCancel(ctx), id); err != nil {
		k.logger.Warn("mirror remove failed", "id", id, "error", err)
		return err
	}
	return nil
}

// removeOrphan deletes the mirror of id unless its row is published by the
// time the mirror lock is held. A publish that committed after the orphan
// scan keeps its mirror.
func (k *mirrorKeeper) removeOrphan(ctx context.Context, id int64) (bool, error) {
	removed, err := k.mirror.RemoveUnless(context.WithoutCancel(ctx), id, func(ctx context.Context) (bool, error) {
		rec, err := k.contentRepo.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return rec.IsPublished, nil
	})
	if err != nil {
		k.logger.Warn("orphan mirror remove failed", "id", id, "error", err)
		return false, err
	}
	return removed, nil
}
