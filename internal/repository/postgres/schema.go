package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SlugConstraint names the UNIQUE constraint on a table's slug column.
func SlugConstraint(table string) string {
	return table + "_slug_key"
}

// ActiveConstraint names the exclusion constraint that keeps at most one
// active row in an exclusive collection. It is DEFERRABLE so the single
// activation statement, which sets the new row and clears the old one, is
// checked once at statement end instead of row by row.
func ActiveConstraint(table string) string {
	return table + "_one_active"
}

// EnsureSchema creates tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Categories + ` (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + SlugConstraint(tables.Categories) + ` UNIQUE (slug)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Posts + ` (
			id BIGSERIAL PRIMARY KEY,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			category_id BIGINT NOT NULL REFERENCES ` + tables.Categories + `(id) ON DELETE RESTRICT,
			author_id TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			featured_image TEXT NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			views BIGINT NOT NULL DEFAULT 0,
			reading_time INTEGER NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ,
			mirror_synced_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + SlugConstraint(tables.Posts) + ` UNIQUE (slug)
		)`,

		activeItemTable(tables.BreakingNews, true),
		activeItemTable(tables.LastNews, false),

		`CREATE INDEX IF NOT EXISTS idx_` + tables.Posts + `_category ON ` + tables.Posts + `(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Posts + `_published ON ` + tables.Posts + `(is_published, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Posts + `_tags ON ` + tables.Posts + ` USING GIN (tags)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.LastNews + `_current ON ` + tables.LastNews + `(priority DESC, created_at DESC) WHERE is_active`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

func activeItemTable(table string, exclusive bool) string {
	constraint := ""
	if exclusive {
		constraint = `,
		CONSTRAINT ` + ActiveConstraint(table) + ` EXCLUDE USING btree (is_active WITH =)
			WHERE (is_active) DEFERRABLE INITIALLY IMMEDIATE`
	}

	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		priority INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()` + constraint + `
	)`
}

// DropSchema drops all tables in reverse order (to respect foreign keys)
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}
