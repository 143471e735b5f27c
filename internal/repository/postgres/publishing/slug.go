package publishing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	"newsdesk/internal/repository/postgres"
)

// PostgresSlugStore implements the SlugStore interface over every slugged table
type PostgresSlugStore struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewSlugStore creates a new slug store
func NewSlugStore(config *postgres.RepositoryConfig) pubRepo.SlugStore {
	return &PostgresSlugStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// TakenSlugs returns slugs in the entity's table that start with prefix.
// table is a logical entity name (posts, categories), never raw SQL.
func (s *PostgresSlugStore) TakenSlugs(ctx context.Context, table, prefix string, excludeID *int64) ([]string, error) {
	physical, err := s.resolve(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT slug FROM %s
		WHERE slug LIKE $1 || '%%' AND ($2::BIGINT IS NULL OR id <> $2)
	`, physical)

	executor := postgres.GetExecutor(ctx, s.pool)
	rows, err := executor.Query(ctx, query, escapeLike(prefix), excludeID)
	if err != nil {
		return nil, fmt.Errorf("taken slugs: %w", err)
	}

	slugs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("taken slugs: %w", err)
	}

	return slugs, nil
}

func (s *PostgresSlugStore) resolve(table string) (string, error) {
	switch table {
	case models.EntityPosts:
		return s.tables.Posts, nil
	case models.EntityCategories:
		return s.tables.Categories, nil
	default:
		return "", fmt.Errorf("taken slugs: unknown table %q", table)
	}
}
