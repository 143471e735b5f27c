package publishing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"newsdesk/internal/domain"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	"newsdesk/internal/utils"
)

// SlugResolver turns titles into slugs that are unique within a table.
// The UNIQUE constraint on the slug column is the final arbiter; the
// resolver only picks a candidate that is free at read time and retries
// when a concurrent writer takes it first.
type SlugResolver struct {
	store       pubRepo.SlugStore
	maxAttempts int
	logger      *slog.Logger
}

// NewSlugResolver creates a new slug resolver
func NewSlugResolver(store pubRepo.SlugStore, maxAttempts int, logger *slog.Logger) *SlugResolver {
	return &SlugResolver{
		store:       store,
		maxAttempts: max(1, maxAttempts),
		logger:      logger,
	}
}

// EnsureUnique returns candidate, or candidate-N with the smallest N >= 2
// not taken in table. excludeID skips the row being re-slugged.
func (r *SlugResolver) EnsureUnique(ctx context.Context, candidate, table string, excludeID *int64) (string, error) {
	taken, err := r.store.TakenSlugs(ctx, table, candidate, excludeID)
	if err != nil {
		return "", fmt.Errorf("resolve slug: %w", err)
	}
	return utils.NextAvailableSlug(candidate, taken), nil
}

// WithUniqueSlug resolves a slug for title and hands it to write. When write
// fails because the slug was taken in the meantime, resolution runs again,
// up to maxAttempts times.
func (r *SlugResolver) WithUniqueSlug(
	ctx context.Context,
	title, table string,
	excludeID *int64,
	write func(slug string) error,
) (string, error) {
	candidate := utils.GenerateSlug(title)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		slug, err := r.EnsureUnique(ctx, candidate, table, excludeID)
		if err != nil {
			return "", err
		}

		err = write(slug)
		if err == nil {
			return slug, nil
		}
		if !IsSlugConflict(err) {
			return "", err
		}

		r.logger.Warn("slug taken concurrently, retrying",
			"table", table,
			"slug", slug,
			"attempt", attempt,
		)
	}

	return "", &domain.ConflictError{
		Message:      fmt.Sprintf("could not allocate a unique slug for '%s' after %d attempts", candidate, r.maxAttempts),
		ResourceType: "slug",
		ResourceID:   candidate,
	}
}

// IsSlugConflict reports whether err is a unique violation on a slug column
func IsSlugConflict(err error) bool {
	var conflict *domain.ConflictError
	return errors.As(err, &conflict) && conflict.ResourceType == "slug"
}
