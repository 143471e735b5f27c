package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"

	"golang.org/x/sync/errgroup"
)

// bulkService implements the BulkService interface
type bulkService struct {
	contentRepo pubRepo.ContentRepository
	mirror      *mirrorKeeper
	concurrency int
	logger      *slog.Logger
}

// NewBulkService creates a new bulk service. concurrency bounds the number
// of mirror operations in flight for one request.
func NewBulkService(
	contentRepo pubRepo.ContentRepository,
	mirror pubSvc.MirrorSynchronizer,
	concurrency int,
	logger *slog.Logger,
) pubSvc.BulkService {
	return &bulkService{
		contentRepo: contentRepo,
		mirror:      &mirrorKeeper{mirror: mirror, contentRepo: contentRepo, logger: logger},
		concurrency: max(1, concurrency),
		logger:      logger,
	}
}

// BulkSetStatus runs one UPDATE over every id, then syncs (published) or
// removes (draft) each mirror independently. The UPDATE result is final: a
// failed mirror operation is counted, never rolled back.
func (s *bulkService) BulkSetStatus(ctx context.Context, req *pubSvc.BulkStatusRequest) (*pubSvc.BulkResult, error) {
	ids, err := normalizeIDs(req.IDs)
	if err != nil {
		return nil, err
	}

	var publish bool
	switch req.Status {
	case models.StatusPublished:
		publish = true
	case models.StatusDraft:
		publish = false
	default:
		return nil, domain.NewValidation("status must be %q or %q", models.StatusPublished, models.StatusDraft)
	}

	if publish && !req.Principal.Role.CanPublish() {
		return nil, fmt.Errorf("role %q may not publish: %w", req.Principal.Role, domain.ErrForbidden)
	}

	affected, err := s.contentRepo.SetPublished(ctx, ids, publish)
	if err != nil {
		return nil, err
	}

	var failures int
	if publish {
		failures = s.syncAll(ctx, ids)
	} else {
		failures = s.removeAll(ctx, ids)
	}

	s.logger.Info("bulk status applied",
		"status", req.Status,
		"requested", len(ids),
		"affected", affected,
		"mirror_failures", failures,
		"user_id", req.Principal.UserID,
	)

	return &pubSvc.BulkResult{Affected: affected, MirrorFailures: failures}, nil
}

// BulkDelete runs one DELETE over every id, then removes each mirror independently
func (s *bulkService) BulkDelete(ctx context.Context, req *pubSvc.BulkDeleteRequest) (*pubSvc.BulkResult, error) {
	ids, err := normalizeIDs(req.IDs)
	if err != nil {
		return nil, err
	}

	affected, err := s.contentRepo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	failures := s.removeAll(ctx, ids)

	s.logger.Info("bulk delete applied",
		"requested", len(ids),
		"affected", affected,
		"mirror_failures", failures,
		"user_id", req.Principal.UserID,
	)

	return &pubSvc.BulkResult{Affected: affected, MirrorFailures: failures}, nil
}

// syncAll re-reads the published rows and syncs each one. Ids that no longer
// exist have no row and nothing to mirror.
func (s *bulkService) syncAll(ctx context.Context, ids []int64) int {
	ctx = context.WithoutCancel(ctx)

	records, err := s.contentRepo.GetByIDs(ctx, ids)
	if err != nil {
		// Rows are committed; the reconciler picks up the mirrors later
		s.logger.Error("bulk re-fetch failed, mirrors left stale", "count", len(ids), "error", err)
		return len(ids)
	}

	var failures atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range records {
		rec := &records[i]
		g.Go(func() error {
			if err := s.mirror.sync(ctx, rec); err != nil {
				failures.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(failures.Load())
}

func (s *bulkService) removeAll(ctx context.Context, ids []int64) int {
	ctx = context.WithoutCancel(ctx)

	var failures atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := s.mirror.remove(ctx, id); err != nil {
				failures.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(failures.Load())
}

// normalizeIDs validates a bulk id list and drops repeats, keeping order
func normalizeIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidation("ids must not be empty")
	}

	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, domain.NewValidation("invalid id %d", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if len(out) > pubSvc.MaxBulkItems {
		return nil, domain.NewValidation("at most %d ids per request, got %d", pubSvc.MaxBulkItems, len(out))
	}

	return out, nil
}
