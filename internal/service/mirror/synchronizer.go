package mirror

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/utils"

	"github.com/zeebo/blake3"
)

// File names inside a record's mirror directory
const (
	MetaFile     = "meta.json"
	MarkdownFile = "content.md"
	TextFile     = "content.txt"
)

// FileSynchronizer mirrors published content records to
// <root>/<entity>/<id>/. The directory is a disposable projection of the
// row: it exists exactly when the record is published.
type FileSynchronizer struct {
	root   string
	entity string
	locks  *keyedMutex
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a FileSynchronizer
type Option func(*FileSynchronizer)

// WithClock overrides the clock used for synced_at
func WithClock(now func() time.Time) Option {
	return func(s *FileSynchronizer) { s.now = now }
}

// NewFileSynchronizer creates a synchronizer rooted at root for posts
func NewFileSynchronizer(root string, logger *slog.Logger, opts ...Option) *FileSynchronizer {
	s := &FileSynchronizer{
		root:   root,
		entity: models.EntityPosts,
		locks:  newKeyedMutex(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ pubSvc.MirrorSynchronizer = (*FileSynchronizer)(nil)

// Root returns the mirror root directory
func (s *FileSynchronizer) Root() string {
	return s.root
}

// Dir returns the mirror directory of id
func (s *FileSynchronizer) Dir(id int64) string {
	return filepath.Join(s.root, s.entity, strconv.FormatInt(id, 10))
}

// Sync writes the mirror of a published record and removes the mirror of an
// unpublished one. Body files are written before meta.json, each through a
// temp file and rename, so readers never see a partial file.
func (s *FileSynchronizer) Sync(ctx context.Context, rec *models.ContentRecord) error {
	return s.SyncWith(ctx, rec, nil)
}

// SyncWith is Sync followed by after, which runs only when the write
// succeeded and while the mirror of rec.ID is still locked. Callbacks of
// concurrent syncs of one id therefore run in the same order as the writes.
func (s *FileSynchronizer) SyncWith(ctx context.Context, rec *models.ContentRecord, after pubSvc.AfterWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID <= 0 {
		return fmt.Errorf("sync mirror: invalid id %d", rec.ID)
	}

	unlock := s.locks.Lock(rec.ID)
	defer unlock()

	if err := s.write(rec); err != nil {
		return err
	}
	if after != nil {
		return after(ctx)
	}
	return nil
}

func (s *FileSynchronizer) write(rec *models.ContentRecord) error {
	if !rec.IsPublished {
		return s.remove(rec.ID)
	}

	dir := s.Dir(rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sync mirror %d: %w", rec.ID, err)
	}

	markdown, err := utils.RenderFrontmatter(frontMatterOf(rec), rec.Body)
	if err != nil {
		return fmt.Errorf("sync mirror %d: %w", rec.ID, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, MarkdownFile), markdown); err != nil {
		return fmt.Errorf("sync mirror %d: %w", rec.ID, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, TextFile), []byte(utils.StripHTML(rec.Body))); err != nil {
		return fmt.Errorf("sync mirror %d: %w", rec.ID, err)
	}

	meta := s.readMeta(dir)
	for k, v := range s.snapshot(rec) {
		meta[k] = v
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("sync mirror %d: encode meta: %w", rec.ID, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, MetaFile), append(data, '\n')); err != nil {
		return fmt.Errorf("sync mirror %d: %w", rec.ID, err)
	}

	s.logger.Debug("mirror synced", "id", rec.ID, "dir", dir)
	return nil
}

// Remove deletes the mirror of id. A missing directory is not an error.
func (s *FileSynchronizer) Remove(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	return s.remove(id)
}

// RemoveUnless deletes the mirror of id unless keep reports true. keep runs
// under the mirror lock of id, so no Sync of id can land between the check
// and the removal.
func (s *FileSynchronizer) RemoveUnless(ctx context.Context, id int64, keep pubSvc.KeepCheck) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	kept, err := keep(ctx)
	if err != nil {
		return false, fmt.Errorf("remove mirror %d: %w", id, err)
	}
	if kept {
		return false, nil
	}
	if err := s.remove(id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileSynchronizer) remove(id int64) error {
	if err := os.RemoveAll(s.Dir(id)); err != nil {
		return fmt.Errorf("remove mirror %d: %w", id, err)
	}
	s.logger.Debug("mirror removed", "id", id)
	return nil
}

// MirroredIDs lists the ids that have a mirror directory, ascending.
// Entries that are not numeric directories are ignored.
func (s *FileSynchronizer) MirroredIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, s.entity))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []int64{}, nil
		}
		return nil, fmt.Errorf("list mirrors: %w", err)
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// readMeta loads the previous meta.json so keys written by other tools
// survive a sync. An unreadable file starts a fresh snapshot.
func (s *FileSynchronizer) readMeta(dir string) map[string]any {
	meta := map[string]any{}

	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return meta
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&meta); err != nil {
		s.logger.Warn("discarding unreadable mirror meta", "dir", dir, "error", err)
		return map[string]any{}
	}

	return meta
}

// snapshot returns the meta.json keys owned by the synchronizer
func (s *FileSynchronizer) snapshot(rec *models.ContentRecord) map[string]any {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	var publishedAt any
	if rec.PublishedAt != nil {
		publishedAt = formatTime(*rec.PublishedAt)
	}

	return map[string]any{
		"id":               rec.ID,
		"slug":             rec.Slug,
		"title":            rec.Title,
		"excerpt":          rec.Excerpt,
		"category_id":      rec.CategoryID,
		"author_id":        rec.AuthorID,
		"body":             rec.Body,
		"tags":             tags,
		"featured_image":   rec.FeaturedImage,
		"is_published":     rec.IsPublished,
		"is_featured":      rec.IsFeatured,
		"views":            rec.Views,
		"reading_time":     rec.ReadingTime,
		"published_at":     publishedAt,
		"created_at":       formatTime(rec.CreatedAt),
		"updated_at":       formatTime(rec.UpdatedAt),
		"url":              models.RecordURL(s.entity, rec.ID, rec.Slug),
		"mirror_synced_at": formatTime(rec.UpdatedAt), // the row version this snapshot reflects
		"content_hash":     ContentHash(rec.Body),
		"synced_at":        formatTime(s.now()),
	}
}

type frontMatter struct {
	ID          int64    `yaml:"id"`
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Tags        []string `yaml:"tags"`
	PublishedAt string   `yaml:"published_at,omitempty"`
}

func frontMatterOf(rec *models.ContentRecord) frontMatter {
	fm := frontMatter{
		ID:    rec.ID,
		Slug:  rec.Slug,
		Title: rec.Title,
		Tags:  rec.Tags,
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if rec.PublishedAt != nil {
		fm.PublishedAt = formatTime(*rec.PublishedAt)
	}
	return fm
}

// ContentHash is the hex BLAKE3-256 digest of a body
func ContentHash(body string) string {
	sum := blake3.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// writeFileAtomic writes data next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", base, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", base, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", base, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", base, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", base, err)
	}

	return nil
}
