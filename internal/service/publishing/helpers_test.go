package publishing

import (
	"testing"

	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/testutil"
)

var (
	editor = models.Principal{UserID: "editor-1", Role: models.RoleEditor}
	author = models.Principal{UserID: "author-1", Role: models.RoleAuthor}
	admin  = models.Principal{UserID: "admin-1", Role: models.RoleAdmin}
)

type fixture struct {
	store      *testutil.MemoryStore
	mirror     *testutil.FakeMirror
	slugs      *SlugResolver
	content    pubSvc.ContentService
	categories pubSvc.CategoryService
	bulk       pubSvc.BulkService
	active     pubSvc.ActiveItemService
	reconciler *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := testutil.NewTestLogger()
	store := testutil.NewMemoryStore()
	store.SeedCategory(1, "أخبار")
	mirror := testutil.NewFakeMirror()
	slugs := NewSlugResolver(store.Slugs(), 5, logger)

	return &fixture{
		store:      store,
		mirror:     mirror,
		slugs:      slugs,
		content:    NewContentService(store.Contents(), store.Categories(), slugs, mirror, logger),
		categories: NewCategoryService(store.Categories(), slugs, logger),
		bulk:       NewBulkService(store.Contents(), mirror, 4, logger),
		active: NewActiveItemService(store.TxManager(), logger,
			store.ActiveItems(models.ActiveKindBreakingNews),
			store.ActiveItems(models.ActiveKindLastNews),
		),
		reconciler: NewReconciler(store.Contents(), mirror, 4, logger),
	}
}

func ptr[T any](v T) *T { return &v }
