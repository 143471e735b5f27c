package publishing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"newsdesk/internal/config"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"

	"golang.org/x/sync/errgroup"
)

// Reconciler repairs mirror drift left by failed best-effort writes: it
// re-syncs published records whose mirror is older than the row and removes
// mirror directories that no published record owns.
type Reconciler struct {
	contentRepo pubRepo.ContentRepository
	mirror      pubSvc.MirrorSynchronizer
	keeper      *mirrorKeeper
	batchSize   int
	concurrency int
	logger      *slog.Logger

	mu sync.Mutex // one pass at a time
}

// NewReconciler creates a new mirror reconciler
func NewReconciler(
	contentRepo pubRepo.ContentRepository,
	mirror pubSvc.MirrorSynchronizer,
	concurrency int,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		contentRepo: contentRepo,
		mirror:      mirror,
		keeper:      &mirrorKeeper{mirror: mirror, contentRepo: contentRepo, logger: logger},
		batchSize:   config.StaleMirrorBatchSize,
		concurrency: max(1, concurrency),
		logger:      logger,
	}
}

var _ pubSvc.MirrorReconciler = (*Reconciler)(nil)

// Reconcile runs one pass. Individual mirror failures are counted in the
// report; only failures to read the row or mirror listings are returned.
func (r *Reconciler) Reconcile(ctx context.Context) (*pubSvc.ReconcileReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &pubSvc.ReconcileReport{}

	stale, err := r.contentRepo.ListStaleMirrors(ctx, r.batchSize)
	if err != nil {
		return nil, err
	}

	var resynced, removed, failures atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i := range stale {
		rec := &stale[i]
		g.Go(func() error {
			if err := r.keeper.sync(ctx, rec); err != nil {
				failures.Add(1)
				return nil
			}
			resynced.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	// Mirrors are listed before rows so a record published in between is
	// never mistaken for an orphan
	mirrored, err := r.mirror.MirroredIDs(ctx)
	if err != nil {
		return nil, err
	}
	published, err := r.contentRepo.ListPublishedIDs(ctx)
	if err != nil {
		return nil, err
	}

	owned := make(map[int64]struct{}, len(published))
	for _, id := range published {
		owned[id] = struct{}{}
	}

	g = new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for _, id := range mirrored {
		if _, ok := owned[id]; ok {
			continue
		}
		g.Go(func() error {
			ok, err := r.keeper.removeOrphan(ctx, id)
			switch {
			case err != nil:
				failures.Add(1)
			case ok:
				removed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Resynced = int(resynced.Load())
	report.Removed = int(removed.Load())
	report.Failures = int(failures.Load())

	if report.Resynced > 0 || report.Removed > 0 || report.Failures > 0 {
		r.logger.Info("mirror reconciled",
			"resynced", report.Resynced,
			"removed", report.Removed,
			"failures", report.Failures,
		)
	}

	return report, nil
}

// StartScheduler runs Reconcile every interval until the returned stop
// function is called. The first pass runs immediately.
func (r *Reconciler) StartScheduler(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	run := func() {
		if _, err := r.Reconcile(context.Background()); err != nil {
			r.logger.Error("mirror reconcile failed", "error", err)
		}
	}

	go func() {
		run()
		for {
			select {
			case <-ticker.C:
				run()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
