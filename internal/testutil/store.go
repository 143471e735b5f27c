package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/domain/repositories"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
)

// MemoryStore holds posts, categories and active items in memory and
// exposes them through the repository interfaces.
type MemoryStore struct {
	mu          sync.Mutex
	posts       map[int64]*models.ContentRecord
	categories  map[int64]*models.Category
	active      map[models.ActiveKind]map[int64]*models.ActiveItem
	nextPost    int64
	nextCat     int64
	nextActive  int64
	beforeWrite func(rec *models.ContentRecord)
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:      map[int64]*models.ContentRecord{},
		categories: map[int64]*models.Category{},
		active: map[models.ActiveKind]map[int64]*models.ActiveItem{
			models.ActiveKindBreakingNews: {},
			models.ActiveKindLastNews:     {},
		},
	}
}

// Contents returns the store as a ContentRepository
func (s *MemoryStore) Contents() pubRepo.ContentRepository { return &memContent{s} }

// Categories returns the store as a CategoryRepository
func (s *MemoryStore) Categories() pubRepo.CategoryRepository { return &memCategories{s} }

// Slugs returns the store as a SlugStore
func (s *MemoryStore) Slugs() pubRepo.SlugStore { return &memSlugs{s} }

// ActiveItems returns the store's collection of kind as an ActiveItemRepository
func (s *MemoryStore) ActiveItems(kind models.ActiveKind) pubRepo.ActiveItemRepository {
	policy, _ := models.PolicyFor(kind)
	return &memActive{s: s, kind: kind, policy: policy}
}

// TxManager returns a TransactionManager that runs fn directly
func (s *MemoryStore) TxManager() repositories.TransactionManager { return memTx{} }

// BeforeContentWrite installs a hook that runs inside Create and Update,
// before the slug uniqueness check. Tests use it to simulate a concurrent
// writer taking a slug between resolution and insert.
func (s *MemoryStore) BeforeContentWrite(fn func(rec *models.ContentRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeWrite = fn
}

// SeedCategory inserts a category with the given id and name
func (s *MemoryStore) SeedCategory(id int64, name string) *models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	cat := &models.Category{ID: id, Name: name, Slug: "category-" + strconv.FormatInt(id, 10), CreatedAt: now, UpdatedAt: now}
	s.categories[id] = cat
	s.nextCat = max(s.nextCat, id)
	c := *cat
	return &c
}

// SeedPost inserts rec as is, keeping its ID when set
func (s *MemoryStore) SeedPost(rec models.ContentRecord) *models.ContentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		s.nextPost++
		rec.ID = s.nextPost
	}
	s.nextPost = max(s.nextPost, rec.ID)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.URL = models.RecordURL(models.EntityPosts, rec.ID, rec.Slug)
	stored := copyRecord(&rec)
	s.posts[rec.ID] = stored
	return copyRecord(stored)
}

// SeedActiveItem inserts item into its collection, keeping IsActive as given
func (s *MemoryStore) SeedActiveItem(item models.ActiveItem) *models.ActiveItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		s.nextActive++
		item.ID = s.nextActive
	}
	s.nextActive = max(s.nextActive, item.ID)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
		item.UpdatedAt = item.CreatedAt
	}
	stored := item
	s.active[item.Kind][item.ID] = &stored
	out := stored
	return &out
}

// Post returns a copy of the stored record, or nil
func (s *MemoryStore) Post(id int64) *models.ContentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.posts[id]; ok {
		return copyRecord(rec)
	}
	return nil
}

// ActiveIDs returns the ids whose is_active flag is set in a collection, ascending
func (s *MemoryStore) ActiveIDs(kind models.ActiveKind) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, item := range s.active[kind] {
		if item.IsActive {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func copyRecord(rec *models.ContentRecord) *models.ContentRecord {
	c := *rec
	c.Tags = slices.Clone(rec.Tags)
	if rec.PublishedAt != nil {
		t := *rec.PublishedAt
		c.PublishedAt = &t
	}
	if rec.MirrorSyncedAt != nil {
		t := *rec.MirrorSyncedAt
		c.MirrorSyncedAt = &t
	}
	return &c
}

type memTx struct{}

func (memTx) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

// ---- content ----

type memContent struct{ s *MemoryStore }

func (r *memContent) slugTakenLocked(slug string, except int64) bool {
	for id, rec := range r.s.posts {
		if id != except && rec.Slug == slug {
			return true
		}
	}
	return false
}

func (r *memContent) checkWriteLocked(rec *models.ContentRecord) error {
	if r.s.beforeWrite != nil {
		hook := r.s.beforeWrite
		r.s.mu.Unlock()
		hook(rec)
		r.s.mu.Lock()
	}
	if r.slugTakenLocked(rec.Slug, rec.ID) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("slug '%s' already exists", rec.Slug),
			ResourceType: "slug",
			ResourceID:   rec.Slug,
		}
	}
	if _, ok := r.s.categories[rec.CategoryID]; !ok {
		return domain.NewValidation("category %d does not exist", rec.CategoryID)
	}
	return nil
}

func (r *memContent) Create(ctx context.Context, rec *models.ContentRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkWriteLocked(rec); err != nil {
		return err
	}
	r.s.nextPost++
	rec.ID = r.s.nextPost
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	rec.URL = models.RecordURL(models.EntityPosts, rec.ID, rec.Slug)
	r.s.posts[rec.ID] = copyRecord(rec)
	return nil
}

func (r *memContent) GetByID(ctx context.Context, id int64) (*models.ContentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.posts[id]
	if !ok {
		return nil, domain.NewNotFound("post", id)
	}
	return copyRecord(rec), nil
}

func (r *memContent) GetBySlug(ctx context.Context, slug string) (*models.ContentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.posts {
		if rec.Slug == slug {
			return copyRecord(rec), nil
		}
	}
	return nil, domain.NewNotFound("post", slug)
}

func (r *memContent) GetByIDs(ctx context.Context, ids []int64) ([]models.ContentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ContentRecord{}
	for _, id := range ids {
		if rec, ok := r.s.posts[id]; ok {
			out = append(out, *copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memContent) List(ctx context.Context, filter *models.ContentFilter) ([]models.ContentRecord, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	filter.ApplyDefaults()

	var matched []models.ContentRecord
	for _, rec := range r.s.posts {
		switch {
		case filter.CategoryID != nil && rec.CategoryID != *filter.CategoryID,
			filter.IsPublished != nil && rec.IsPublished != *filter.IsPublished,
			filter.IsFeatured != nil && rec.IsFeatured != *filter.IsFeatured,
			filter.Tag != "" && !slices.Contains(rec.Tags, filter.Tag),
			filter.Query != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(filter.Query)):
			continue
		}
		matched = append(matched, *copyRecord(rec))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return append([]models.ContentRecord{}, matched[start:end]...), total, nil
}

func (r *memContent) Update(ctx context.Context, rec *models.ContentRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[rec.ID]
	if !ok {
		return domain.NewNotFound("post", rec.ID)
	}
	if err := r.checkWriteLocked(rec); err != nil {
		return err
	}
	rec.Views = existing.Views
	rec.MirrorSyncedAt = existing.MirrorSyncedAt
	rec.CreatedAt = existing.CreatedAt
	rec.URL = models.RecordURL(models.EntityPosts, rec.ID, rec.Slug)
	r.s.posts[rec.ID] = copyRecord(rec)
	return nil
}

func (r *memContent) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return domain.NewNotFound("post", id)
	}
	delete(r.s.posts, id)
	return nil
}

func (r *memContent) SetPublished(ctx context.Context, ids []int64, published bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var affected int64
	for _, id := range ids {
		rec, ok := r.s.posts[id]
		if !ok {
			continue
		}
		rec.IsPublished = published
		if published && rec.PublishedAt == nil {
			t := now
			rec.PublishedAt = &t
		}
		rec.UpdatedAt = now
		affected++
	}
	return affected, nil
}

func (r *memContent) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var affected int64
	for _, id := range ids {
		if _, ok := r.s.posts[id]; ok {
			delete(r.s.posts, id)
			affected++
		}
	}
	return affected, nil
}

func (r *memContent) IncrementViews(ctx context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.posts[id]
	if !ok {
		return 0, domain.NewNotFound("post", id)
	}
	rec.Views++
	return rec.Views, nil
}

func (r *memContent) MarkMirrorSynced(ctx context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.posts[id]; ok {
		t := at
		rec.MirrorSyncedAt = &t
	}
	return nil
}

func (r *memContent) ListStaleMirrors(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ContentRecord{}
	for _, rec := range r.s.posts {
		if rec.IsPublished && rec.MirrorStale() {
			out = append(out, *copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memContent) ListPublishedIDs(ctx context.Context) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []int64{}
	for id, rec := range r.s.posts {
		if rec.IsPublished {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// ---- categories ----

type memCategories struct{ s *MemoryStore }

func (r *memCategories) slugConflictLocked(cat *models.Category) error {
	for id, c := range r.s.categories {
		if id != cat.ID && c.Slug == cat.Slug {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("slug '%s' already exists", cat.Slug),
				ResourceType: "slug",
				ResourceID:   cat.Slug,
			}
		}
	}
	return nil
}

func (r *memCategories) Create(ctx context.Context, cat *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.slugConflictLocked(cat); err != nil {
		return err
	}
	r.s.nextCat++
	cat.ID = r.s.nextCat
	c := *cat
	r.s.categories[cat.ID] = &c
	return nil
}

func (r *memCategories) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cat, ok := r.s.categories[id]
	if !ok {
		return nil, domain.NewNotFound("category", id)
	}
	c := *cat
	return &c, nil
}

func (r *memCategories) List(ctx context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Category{}
	for _, cat := range r.s.categories {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memCategories) Update(ctx context.Context, cat *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.categories[cat.ID]
	if !ok {
		return domain.NewNotFound("category", cat.ID)
	}
	if err := r.slugConflictLocked(cat); err != nil {
		return err
	}
	cat.CreatedAt = existing.CreatedAt
	c := *cat
	r.s.categories[cat.ID] = &c
	return nil
}

func (r *memCategories) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.NewNotFound("category", id)
	}
	for _, rec := range r.s.posts {
		if rec.CategoryID == id {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category %d still has posts", id),
				ResourceType: "category",
				ResourceID:   strconv.FormatInt(id, 10),
			}
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *memCategories) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.categories[id]
	return ok, nil
}

// ---- slugs ----

type memSlugs struct{ s *MemoryStore }

func (r *memSlugs) TakenSlugs(ctx context.Context, table, prefix string, excludeID *int64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var slugs []string
	add := func(id int64, slug string) {
		if excludeID != nil && id == *excludeID {
			return
		}
		if strings.HasPrefix(slug, prefix) {
			slugs = append(slugs, slug)
		}
	}

	switch table {
	case models.EntityPosts:
		for id, rec := range r.s.posts {
			add(id, rec.Slug)
		}
	case models.EntityCategories:
		for id, cat := range r.s.categories {
			add(id, cat.Slug)
		}
	default:
		return nil, fmt.Errorf("taken slugs: unknown table %q", table)
	}
	return slugs, nil
}

// ---- active items ----

type memActive struct {
	s      *MemoryStore
	kind   models.ActiveKind
	policy models.ActivePolicy
}

func (r *memActive) items() map[int64]*models.ActiveItem { return r.s.active[r.kind] }

func (r *memActive) Kind() models.ActiveKind { return r.kind }

func (r *memActive) Create(ctx context.Context, item *models.ActiveItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextActive++
	item.ID = r.s.nextActive
	item.Kind = r.kind
	item.IsActive = false
	c := *item
	r.items()[item.ID] = &c
	return nil
}

func (r *memActive) GetByID(ctx context.Context, id int64) (*models.ActiveItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.items()[id]
	if !ok {
		return nil, domain.NewNotFound(string(r.kind), id)
	}
	c := *item
	return &c, nil
}

func (r *memActive) List(ctx context.Context) ([]models.ActiveItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ActiveItem{}
	for _, item := range r.items() {
		out = append(out, *item)
	}
	sortByPriority(out)
	return out, nil
}

func (r *memActive) Update(ctx context.Context, item *models.ActiveItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.items()[item.ID]
	if !ok {
		return domain.NewNotFound(string(r.kind), item.ID)
	}
	existing.Title = item.Title
	existing.Body = item.Body
	existing.Priority = item.Priority
	existing.ExpiresAt = item.ExpiresAt
	existing.UpdatedAt = item.UpdatedAt
	item.IsActive = existing.IsActive
	item.CreatedAt = existing.CreatedAt
	item.Kind = r.kind
	return nil
}

func (r *memActive) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.items()[id]; !ok {
		return domain.NewNotFound(string(r.kind), id)
	}
	delete(r.items(), id)
	return nil
}

func (r *memActive) activateLocked(id int64) error {
	target, ok := r.items()[id]
	if !ok {
		return domain.NewNotFound(string(r.kind), id)
	}
	if r.policy.Exclusive {
		for _, item := range r.items() {
			item.IsActive = false
		}
	}
	target.IsActive = true
	return nil
}

func (r *memActive) Activate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.activateLocked(id)
}

func (r *memActive) Deactivate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.items()[id]
	if !ok {
		return domain.NewNotFound(string(r.kind), id)
	}
	item.IsActive = false
	return nil
}

func (r *memActive) Toggle(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.items()[id]
	if !ok {
		return false, domain.NewNotFound(string(r.kind), id)
	}
	if item.IsActive {
		item.IsActive = false
		return false, nil
	}
	return true, r.activateLocked(id)
}

func (r *memActive) Current(ctx context.Context, now time.Time, limit int) ([]models.ActiveItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 || limit > r.policy.ReadLimit {
		limit = r.policy.ReadLimit
	}
	out := []models.ActiveItem{}
	for _, item := range r.items() {
		if item.LiveAt(now) {
			out = append(out, *item)
		}
	}
	sortByPriority(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByPriority(items []models.ActiveItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
