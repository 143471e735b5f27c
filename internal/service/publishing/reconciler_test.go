package publishing

import (
	"context"
	"testing"
	"time"

	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_ResyncsStaleAndRemovesOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	synced := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "a", Title: "a", CategoryID: 1, IsPublished: true,
		CreatedAt: synced, UpdatedAt: synced, MirrorSyncedAt: &synced})
	f.mirror.Put(*fresh)

	// Published but the mirror write failed earlier
	f.store.SeedPost(models.ContentRecord{ID: 2, Slug: "b", Title: "b", CategoryID: 1, IsPublished: true})

	// Unpublished, but a mirror was left behind
	draft := f.store.SeedPost(models.ContentRecord{ID: 3, Slug: "c", Title: "c", CategoryID: 1})
	f.mirror.Put(*draft)

	// Deleted row, mirror left behind
	f.mirror.Put(models.ContentRecord{ID: 4, IsPublished: true})

	report, err := f.reconciler.Reconcile(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Resynced)
	assert.Equal(t, 2, report.Removed)
	assert.Zero(t, report.Failures)

	ids, err := f.mirror.MirroredIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.False(t, f.store.Post(2).MirrorStale())

	// A second pass has nothing left to do
	report, err = f.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, *report)
}

func TestReconcile_CountsFailures(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 2, Slug: "b", Title: "b", CategoryID: 1, IsPublished: true})
	f.mirror.Put(models.ContentRecord{ID: 8})
	f.mirror.FailFor(2, 8)

	report, err := f.reconciler.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Resynced)
	assert.Equal(t, 0, report.Removed)
	assert.Equal(t, 2, report.Failures)
	assert.True(t, f.store.Post(2).MirrorStale())
}

func TestStartScheduler_RunsImmediatelyAndStops(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "a", Title: "a", CategoryID: 1, IsPublished: true})

	stop := f.reconciler.StartScheduler(time.Hour)
	defer stop()

	assert.Eventually(t, func() bool { return f.mirror.Has(1) }, 2*time.Second, 10*time.Millisecond)

	stop()
	stop()
}

func TestMirrorKeeper_LateOlderWriteLeavesRowStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v2 := v1.Add(time.Minute)
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "a", Title: "new", CategoryID: 1, IsPublished: true,
		CreatedAt: v1, UpdatedAt: v2})
	keeper := &mirrorKeeper{mirror: f.mirror, contentRepo: f.store.Contents(), logger: testutil.NewTestLogger()}

	newer := *f.store.Post(1)
	older := newer
	older.Title = "old"
	older.UpdatedAt = v1

	require.NoError(t, keeper.sync(ctx, &newer))
	assert.False(t, f.store.Post(1).MirrorStale())

	// The write of the older version lands last
	require.NoError(t, keeper.sync(ctx, &older))
	assert.True(t, f.store.Post(1).MirrorStale())

	report, err := f.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resynced)

	got, ok := f.mirror.Get(1)
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
	assert.False(t, f.store.Post(1).MirrorStale())
}

func TestReconcile_KeepsMirrorPublishedDuringOrphanRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.store.SeedPost(models.ContentRecord{ID: 5, Slug: "e", Title: "e", CategoryID: 1})
	f.mirror.Put(*draft)

	// The row is published after the orphan scan, before the mirror is removed
	f.mirror.BeforeRemoveCheck(func(id int64) {
		_, err := f.store.Contents().SetPublished(ctx, []int64{id}, true)
		assert.NoError(t, err)
	})

	report, err := f.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Removed)
	assert.Zero(t, report.Failures)
	assert.True(t, f.mirror.Has(5))
}
