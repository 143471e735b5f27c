package publishing

import (
	"context"
	"testing"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_CreateRenameDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categories.CreateCategory(ctx, &pubSvc.CategoryRequest{Name: " رياضة ", Description: "ملاعب"})
	require.NoError(t, err)
	assert.Equal(t, "رياضة", cat.Name)
	assert.Equal(t, "ryadh", cat.Slug)

	dup, err := f.categories.CreateCategory(ctx, &pubSvc.CategoryRequest{Name: "رياضة"})
	require.NoError(t, err)
	assert.Equal(t, "ryadh-2", dup.Slug)

	renamed, err := f.categories.UpdateCategory(ctx, dup.ID, &pubSvc.CategoryRequest{Name: "Sports & Games"})
	require.NoError(t, err)
	assert.Equal(t, "sports-games", renamed.Slug)

	require.NoError(t, f.categories.DeleteCategory(ctx, renamed.ID))
	_, err = f.categories.GetCategory(ctx, renamed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategory_DeleteInUseConflicts(t *testing.T) {
	f := newFixture(t)
	f.store.SeedPost(models.ContentRecord{Slug: "x", Title: "x", CategoryID: 1})

	err := f.categories.DeleteCategory(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrConflict)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "category", conflict.ResourceType)
}

func TestCategory_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.categories.CreateCategory(context.Background(), &pubSvc.CategoryRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
