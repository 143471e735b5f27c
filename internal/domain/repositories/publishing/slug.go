package publishing

import "context"

// SlugStore looks up slugs already taken in a table.
type SlugStore interface {
	// TakenSlugs returns every slug in table that starts with prefix,
	// ignoring the row excludeID when it is non-nil
	TakenSlugs(ctx context.Context, table, prefix string, excludeID *int64) ([]string, error)
}
