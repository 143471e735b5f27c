package publishing

import (
	"context"
	"strings"
	"testing"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContent_PublishedIsMirrored(t *testing.T) {
	f := newFixture(t)

	rec, err := f.content.CreateContent(context.Background(), &pubSvc.CreateContentRequest{
		Principal:   editor,
		Title:       "  عام 2024  ",
		Body:        "نص قصير",
		CategoryID:  1,
		Tags:        []string{" سياسة ", "سياسة", ""},
		IsPublished: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "عام 2024", rec.Title)
	assert.Equal(t, "aam-2024", rec.Slug)
	assert.Equal(t, []string{"سياسة"}, rec.Tags)
	assert.Equal(t, 1, rec.ReadingTime)
	assert.Equal(t, editor.UserID, rec.AuthorID)
	assert.Equal(t, "/posts/1/aam-2024", rec.URL)
	require.NotNil(t, rec.PublishedAt)

	assert.True(t, f.mirror.Has(rec.ID))
	stored := f.store.Post(rec.ID)
	require.NotNil(t, stored.MirrorSyncedAt)
	assert.True(t, stored.MirrorSyncedAt.Equal(stored.UpdatedAt))
	assert.False(t, stored.MirrorStale())
}

func TestCreateContent_HTMLBodyStoredAsMarkdown(t *testing.T) {
	f := newFixture(t)

	rec, err := f.content.CreateContent(context.Background(), &pubSvc.CreateContentRequest{
		Principal:  editor,
		Title:      "خبر",
		Body:       `<p>نص <strong>مهم</strong></p><script>alert(1)</script>`,
		BodyFormat: "html",
		CategoryID: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "نص **مهم**", rec.Body)
	assert.Equal(t, rec.Body, f.store.Post(rec.ID).Body)
}

func TestCreateContent_DraftIsNotMirrored(t *testing.T) {
	f := newFixture(t)

	rec, err := f.content.CreateContent(context.Background(), &pubSvc.CreateContentRequest{
		Principal:  editor,
		Title:      "مسودة",
		CategoryID: 1,
	})
	require.NoError(t, err)

	assert.False(t, rec.IsPublished)
	assert.Nil(t, rec.PublishedAt)
	assert.Equal(t, 0, rec.ReadingTime)
	assert.False(t, f.mirror.Has(rec.ID))
	syncs, _ := f.mirror.Calls()
	assert.Zero(t, syncs)
}

func TestCreateContent_AuthorPublishDowngradedToDraft(t *testing.T) {
	f := newFixture(t)

	rec, err := f.content.CreateContent(context.Background(), &pubSvc.CreateContentRequest{
		Principal:   author,
		Title:       "خبر",
		CategoryID:  1,
		IsPublished: true,
	})
	require.NoError(t, err)

	assert.False(t, rec.IsPublished)
	assert.False(t, f.mirror.Has(rec.ID))
	assert.False(t, f.store.Post(rec.ID).IsPublished)
}

func TestCreateContent_MirrorFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	f.mirror.FailFor(1)

	rec, err := f.content.CreateContent(context.Background(), &pubSvc.CreateContentRequest{
		Principal:   editor,
		Title:       "خبر",
		CategoryID:  1,
		IsPublished: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.ID)

	stored := f.store.Post(1)
	require.NotNil(t, stored)
	assert.True(t, stored.IsPublished)
	assert.True(t, stored.MirrorStale())
	assert.False(t, f.mirror.Has(1))
}

func TestCreateContent_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  pubSvc.CreateContentRequest
	}{
		{"blank title", pubSvc.CreateContentRequest{Principal: editor, Title: "   ", CategoryID: 1}},
		{"title too long", pubSvc.CreateContentRequest{Principal: editor, Title: strings.Repeat("a", 256), CategoryID: 1}},
		{"missing category", pubSvc.CreateContentRequest{Principal: editor, Title: "x"}},
		{"unknown category", pubSvc.CreateContentRequest{Principal: editor, Title: "x", CategoryID: 99}},
		{"too many tags", pubSvc.CreateContentRequest{Principal: editor, Title: "x", CategoryID: 1, Tags: make([]string, 21)}},
		{"no principal", pubSvc.CreateContentRequest{Title: "x", CategoryID: 1}},
		{"unknown role", pubSvc.CreateContentRequest{Principal: models.Principal{UserID: "u", Role: "root"}, Title: "x", CategoryID: 1}},
		{"unknown body format", pubSvc.CreateContentRequest{Principal: editor, Title: "x", CategoryID: 1, BodyFormat: "docx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.req
			_, err := f.content.CreateContent(context.Background(), &req)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Nil(t, f.store.Post(1))
		})
	}
}

func TestUpdateContent_PublishThenUnpublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SeedPost(models.ContentRecord{ID: 42, Slug: "khbr", Title: "خبر", CategoryID: 1, AuthorID: "author-1"})

	rec, err := f.content.UpdateContent(ctx, 42, &pubSvc.UpdateContentRequest{Principal: editor, IsPublished: ptr(true)})
	require.NoError(t, err)
	assert.True(t, rec.IsPublished)
	require.NotNil(t, rec.PublishedAt)
	assert.True(t, f.mirror.Has(42))

	publishedAt := *rec.PublishedAt

	rec, err = f.content.UpdateContent(ctx, 42, &pubSvc.UpdateContentRequest{Principal: editor, IsPublished: ptr(false)})
	require.NoError(t, err)
	assert.False(t, rec.IsPublished)
	assert.False(t, f.mirror.Has(42))

	// Republishing keeps the first publication time
	rec, err = f.content.UpdateContent(ctx, 42, &pubSvc.UpdateContentRequest{Principal: editor, IsPublished: ptr(true)})
	require.NoError(t, err)
	assert.True(t, rec.PublishedAt.Equal(publishedAt))
	assert.True(t, f.mirror.Has(42))
}

func TestUpdateContent_AuthorCannotPublish(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 7, Slug: "draft", Title: "draft", CategoryID: 1})

	rec, err := f.content.UpdateContent(context.Background(), 7, &pubSvc.UpdateContentRequest{Principal: author, IsPublished: ptr(true)})
	require.NoError(t, err)
	assert.False(t, rec.IsPublished)
	assert.False(t, f.mirror.Has(7))
}

func TestUpdateContent_TitleChangeReslugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "tjrbh", Title: "تجربة", CategoryID: 1})
	f.store.SeedPost(models.ContentRecord{ID: 2, Slug: "aam-2024", Title: "عام 2024", CategoryID: 1})

	rec, err := f.content.UpdateContent(ctx, 2, &pubSvc.UpdateContentRequest{Principal: editor, Title: ptr("تجربة")})
	require.NoError(t, err)
	assert.Equal(t, "tjrbh-2", rec.Slug)
	assert.Equal(t, "/posts/2/tjrbh-2", rec.URL)

	// A new title that yields the record's own slug keeps it
	rec, err = f.content.UpdateContent(ctx, 1, &pubSvc.UpdateContentRequest{Principal: editor, Title: ptr("تجربة!")})
	require.NoError(t, err)
	assert.Equal(t, "tjrbh", rec.Slug)
	assert.Equal(t, "تجربة!", rec.Title)
}

func TestUpdateContent_UnchangedTitleKeepsSlug(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "custom-slug", Title: "تجربة", CategoryID: 1})

	rec, err := f.content.UpdateContent(context.Background(), 1, &pubSvc.UpdateContentRequest{Principal: editor, Title: ptr(" تجربة ")})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", rec.Slug)
}

func TestUpdateContent_BodyRecomputesReadingTime(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "x", Title: "x", Body: "one", ReadingTime: 1, CategoryID: 1})

	body := strings.TrimSpace(strings.Repeat("word ", 181))
	rec, err := f.content.UpdateContent(context.Background(), 1, &pubSvc.UpdateContentRequest{Principal: editor, Body: &body})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.ReadingTime)
	assert.Equal(t, 2, f.store.Post(1).ReadingTime)
}

func TestUpdateContent_HTMLBody(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "x", Title: "x", Body: "old", ReadingTime: 1, CategoryID: 1})

	body := "<h2>تحديث</h2>"
	rec, err := f.content.UpdateContent(context.Background(), 1, &pubSvc.UpdateContentRequest{
		Principal:  editor,
		Body:       &body,
		BodyFormat: "html",
	})
	require.NoError(t, err)
	assert.Equal(t, "## تحديث", rec.Body)
}

func TestUpdateContent_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SeedPost(models.ContentRecord{ID: 1, Slug: "x", Title: "x", CategoryID: 1})

	_, err := f.content.UpdateContent(ctx, 404, &pubSvc.UpdateContentRequest{Principal: editor, Title: ptr("y")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.content.UpdateContent(ctx, 1, &pubSvc.UpdateContentRequest{Principal: editor, CategoryID: ptr(int64(99))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.content.UpdateContent(ctx, 1, &pubSvc.UpdateContentRequest{Principal: editor, Title: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteContent_RemovesMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.store.SeedPost(models.ContentRecord{ID: 5, Slug: "x", Title: "x", CategoryID: 1, IsPublished: true})
	f.mirror.Put(*rec)

	require.NoError(t, f.content.DeleteContent(ctx, 5))
	assert.Nil(t, f.store.Post(5))
	assert.False(t, f.mirror.Has(5))

	assert.ErrorIs(t, f.content.DeleteContent(ctx, 5), domain.ErrNotFound)
}

func TestDeleteContent_MirrorFailureStillDeletes(t *testing.T) {
	f := newFixture(t)
	rec := f.store.SeedPost(models.ContentRecord{ID: 5, Slug: "x", Title: "x", CategoryID: 1, IsPublished: true})
	f.mirror.Put(*rec)
	f.mirror.FailFor(5)

	require.NoError(t, f.content.DeleteContent(context.Background(), 5))
	assert.Nil(t, f.store.Post(5))
	assert.True(t, f.mirror.Has(5))
}

func TestRecordView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SeedPost(models.ContentRecord{ID: 3, Slug: "x", Title: "x", CategoryID: 1, Views: 10})

	views, err := f.content.RecordView(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(11), views)

	_, err = f.content.RecordView(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.content.RecordView(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListContent_Pagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		_, err := f.content.CreateContent(context.Background(), &pubSvc.CreateContentRequest{
			Principal:  editor,
			Title:      "خبر",
			CategoryID: 1,
		})
		require.NoError(t, err)
	}

	page, err := f.content.ListContent(context.Background(), &models.ContentFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	page, err = f.content.ListContent(context.Background(), &models.ContentFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
}

func TestGetContentBySlug(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{ID: 9, Slug: "tjrbh", Title: "تجربة", CategoryID: 1})

	rec, err := f.content.GetContentBySlug(context.Background(), "tjrbh")
	require.NoError(t, err)
	assert.Equal(t, int64(9), rec.ID)

	_, err = f.content.GetContentBySlug(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
