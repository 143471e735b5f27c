package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/testutil"
	"newsdesk/internal/utils"

	"github.com/klauspost/compress/zip"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncedAt = time.Date(2025, 1, 2, 5, 0, 0, 0, time.UTC)

func newTestSynchronizer(t *testing.T) *FileSynchronizer {
	t.Helper()
	return NewFileSynchronizer(t.TempDir(), testutil.NewTestLogger(),
		WithClock(func() time.Time { return syncedAt }))
}

func fixtureRecord() *models.ContentRecord {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	published := time.Date(2025, 1, 2, 4, 0, 0, 0, time.UTC)
	return &models.ContentRecord{
		ID:            42,
		Slug:          "alakhbar-alaajlh-alyoom",
		Title:         "الأخبار العاجلة اليوم",
		Body:          "# عنوان\n\nنص الخبر.\n",
		Excerpt:       "ملخص الخبر",
		CategoryID:    3,
		AuthorID:      "user-1",
		Tags:          []string{"عاجل", "سياسة"},
		FeaturedImage: "https://cdn.example.com/42.jpg",
		IsPublished:   true,
		Views:         7,
		ReadingTime:   1,
		PublishedAt:   &published,
		CreatedAt:     created,
		UpdatedAt:     published,
	}
}

func goldenFor(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestSync_PublishedWritesMirror(t *testing.T) {
	s := newTestSynchronizer(t)
	rec := fixtureRecord()

	require.NoError(t, s.Sync(context.Background(), rec))

	dir := s.Dir(42)
	meta, err := os.ReadFile(filepath.Join(dir, MetaFile))
	require.NoError(t, err)
	goldenFor(t).Assert(t, "sync_published_meta", meta)

	text, err := os.ReadFile(filepath.Join(dir, TextFile))
	require.NoError(t, err)
	assert.Equal(t, rec.Body, string(text))

	markdown, err := os.ReadFile(filepath.Join(dir, MarkdownFile))
	require.NoError(t, err)
	front, body, err := utils.ParseFrontmatter(markdown)
	require.NoError(t, err)
	assert.Equal(t, rec.Body, body)
	assert.Equal(t, 42, front["id"])
	assert.Equal(t, rec.Slug, front["slug"])
	assert.Equal(t, rec.Title, front["title"])
	assert.Equal(t, []interface{}{"عاجل", "سياسة"}, front["tags"])
}

func TestSync_PreservesForeignMetaKeys(t *testing.T) {
	s := newTestSynchronizer(t)
	rec := fixtureRecord()

	dir := s.Dir(42)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	previous := `{"editor_note": "keep me", "title": "old title"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetaFile), []byte(previous), 0o644))

	require.NoError(t, s.Sync(context.Background(), rec))

	meta, err := os.ReadFile(filepath.Join(dir, MetaFile))
	require.NoError(t, err)
	goldenFor(t).Assert(t, "sync_merged_meta", meta)
}

func TestSync_UnreadableMetaIsReplaced(t *testing.T) {
	s := newTestSynchronizer(t)
	rec := fixtureRecord()

	dir := s.Dir(42)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetaFile), []byte("{not json"), 0o644))

	require.NoError(t, s.Sync(context.Background(), rec))

	meta, err := os.ReadFile(filepath.Join(dir, MetaFile))
	require.NoError(t, err)
	goldenFor(t).Assert(t, "sync_published_meta", meta)
}

func TestSync_PublishThenUnpublish(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()
	rec := fixtureRecord()

	require.NoError(t, s.Sync(ctx, rec))
	assert.DirExists(t, s.Dir(42))

	rec.IsPublished = false
	require.NoError(t, s.Sync(ctx, rec))
	assert.NoDirExists(t, s.Dir(42))

	// Unpublishing an unmirrored record is a no-op
	require.NoError(t, s.Sync(ctx, rec))
	assert.NoDirExists(t, s.Dir(42))
}

func TestRemove(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()

	require.NoError(t, s.Sync(ctx, fixtureRecord()))
	require.NoError(t, s.Remove(ctx, 42))
	assert.NoDirExists(t, s.Dir(42))

	require.NoError(t, s.Remove(ctx, 42), "removing a missing mirror succeeds")
	require.NoError(t, s.Remove(ctx, 999))
}

func TestSync_FailureIsolatedToOneID(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()

	// A regular file where the directory of 42 should be blocks its sync
	parent := filepath.Dir(s.Dir(42))
	require.NoError(t, os.MkdirAll(parent, 0o755))
	require.NoError(t, os.WriteFile(s.Dir(42), []byte("blocker"), 0o644))

	err := s.Sync(ctx, fixtureRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync mirror 42")

	other := fixtureRecord()
	other.ID = 43
	require.NoError(t, s.Sync(ctx, other))
	assert.FileExists(t, filepath.Join(s.Dir(43), MetaFile))
}

func TestSync_CanceledContext(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Sync(ctx, fixtureRecord()), context.Canceled)
	assert.NoDirExists(t, s.Dir(42))
}

func TestSync_ConcurrentSameID(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := fixtureRecord()
			rec.Title = fmt.Sprintf("title %d", i)
			rec.IsPublished = i%3 != 0
			assert.NoError(t, s.Sync(ctx, rec))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, s.locks.size())

	entries, err := os.ReadDir(filepath.Dir(s.Dir(42)))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"))
	}

	// Whatever the final state, a present mirror is complete and parseable
	if _, err := os.Stat(s.Dir(42)); err == nil {
		data, err := os.ReadFile(filepath.Join(s.Dir(42), MetaFile))
		require.NoError(t, err)
		var meta map[string]any
		require.NoError(t, json.Unmarshal(data, &meta))
		assert.True(t, strings.HasPrefix(meta["title"].(string), "title "))

		dirEntries, err := os.ReadDir(s.Dir(42))
		require.NoError(t, err)
		for _, entry := range dirEntries {
			assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), entry.Name())
		}
	}
}

func TestMirroredIDs(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()

	ids, err := s.MirroredIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "missing root lists nothing")

	for _, id := range []int64{10, 3} {
		rec := fixtureRecord()
		rec.ID = id
		require.NoError(t, s.Sync(ctx, rec))
	}
	parent := filepath.Dir(s.Dir(3))
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "scratch"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "7"), nil, 0o644))

	ids, err = s.MirroredIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 10}, ids)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", ContentHash(""))
	assert.Equal(t, "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85", ContentHash("abc"))
}

func TestExport(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()

	for _, id := range []int64{42, 43} {
		rec := fixtureRecord()
		rec.ID = id
		require.NoError(t, s.Sync(ctx, rec))
	}

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"posts/42/content.md", "posts/42/content.txt", "posts/42/meta.json",
		"posts/43/content.md", "posts/43/content.txt", "posts/43/meta.json",
	}, names)

	for _, f := range zr.File {
		if f.Name != "posts/42/content.txt" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, fixtureRecord().Body, string(data))
	}
}

func TestExport_EmptyRoot(t *testing.T) {
	s := NewFileSynchronizer(filepath.Join(t.TempDir(), "missing"), testutil.NewTestLogger())

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestSyncWith_CallbacksFollowWriteOrder(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()

	older := fixtureRecord()
	older.Title = "older"
	newer := fixtureRecord()
	newer.Title = "newer"
	newer.UpdatedAt = older.UpdatedAt.Add(time.Minute)

	var mu sync.Mutex
	var stamps []string
	stamp := func(rec *models.ContentRecord) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			stamps = append(stamps, rec.Title)
			return nil
		}
	}

	done := make(chan struct{})
	err := s.SyncWith(ctx, older, func(ctx context.Context) error {
		// A second sync of the same id must wait for this callback
		go func() {
			defer close(done)
			assert.NoError(t, s.SyncWith(ctx, newer, stamp(newer)))
		}()
		select {
		case <-done:
			t.Error("concurrent sync finished while the first callback held the lock")
		case <-time.After(50 * time.Millisecond):
		}
		return stamp(older)(ctx)
	})
	require.NoError(t, err)
	<-done

	assert.Equal(t, []string{"older", "newer"}, stamps)

	data, err := os.ReadFile(filepath.Join(s.Dir(42), MetaFile))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "newer", meta["title"])
	assert.Equal(t, "2025-01-02T04:01:00Z", meta["mirror_synced_at"])
}

func TestSyncWith_CallbackSkippedOnFailure(t *testing.T) {
	s := newTestSynchronizer(t)
	parent := filepath.Dir(s.Dir(42))
	require.NoError(t, os.MkdirAll(parent, 0o755))
	require.NoError(t, os.WriteFile(s.Dir(42), []byte("blocker"), 0o644))

	called := false
	err := s.SyncWith(context.Background(), fixtureRecord(), func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestRemoveUnless(t *testing.T) {
	s := newTestSynchronizer(t)
	ctx := context.Background()
	require.NoError(t, s.Sync(ctx, fixtureRecord()))

	removed, err := s.RemoveUnless(ctx, 42, func(context.Context) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.False(t, removed)
	assert.DirExists(t, s.Dir(42))

	_, err = s.RemoveUnless(ctx, 42, func(context.Context) (bool, error) { return false, fmt.Errorf("row lookup failed") })
	require.Error(t, err)
	assert.DirExists(t, s.Dir(42))

	removed, err = s.RemoveUnless(ctx, 42, func(context.Context) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoDirExists(t, s.Dir(42))
}

func TestSync_MetaCarriesBody(t *testing.T) {
	s := newTestSynchronizer(t)
	rec := fixtureRecord()
	require.NoError(t, s.Sync(context.Background(), rec))

	data, err := os.ReadFile(filepath.Join(s.Dir(42), MetaFile))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, rec.Body, meta["body"])
	assert.Equal(t, ContentHash(rec.Body), meta["content_hash"])
}
