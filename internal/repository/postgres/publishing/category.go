package publishing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	"newsdesk/internal/repository/postgres"
)

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *postgres.RepositoryConfig) pubRepo.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new category
func (r *PostgresCategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Categories)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		cat.Name,
		cat.Slug,
		cat.Description,
		cat.CreatedAt,
		cat.UpdatedAt,
	).Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateOn(err, postgres.SlugConstraint(r.tables.Categories)) {
			return slugConflict(cat.Slug)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, description, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Categories)

	var cat models.Category
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.Name,
		&cat.Slug,
		&cat.Description,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &cat, nil
}

// List retrieves all categories ordered by name
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, description, created_at, updated_at
		FROM %s
		ORDER BY name ASC, id ASC
	`, r.tables.Categories)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		err := rows.Scan(
			&cat.ID,
			&cat.Name,
			&cat.Slug,
			&cat.Description,
			&cat.CreatedAt,
			&cat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// Update writes name, slug and description
func (r *PostgresCategoryRepository) Update(ctx context.Context, cat *models.Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, description = $3, updated_at = $4
		WHERE id = $5
		RETURNING created_at
	`, r.tables.Categories)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		cat.Name,
		cat.Slug,
		cat.Description,
		cat.UpdatedAt,
		cat.ID,
	).Scan(&cat.CreatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return domain.NewNotFound("category", cat.ID)
		}
		if postgres.IsPgDuplicateOn(err, postgres.SlugConstraint(r.tables.Categories)) {
			return slugConflict(cat.Slug)
		}
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

// Delete removes a category. Posts reference categories with ON DELETE
// RESTRICT, so a category that still owns posts is a conflict.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Categories)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category %d still has posts", id),
				ResourceType: "category",
				ResourceID:   strconv.FormatInt(id, 10),
			}
		}
		return fmt.Errorf("delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("category", id)
	}

	return nil
}

// Exists reports whether a category id is present
func (r *PostgresCategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, r.tables.Categories)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}

	return exists, nil
}

func slugConflict(slug string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug '%s' already exists", slug),
		ResourceType: "slug",
		ResourceID:   slug,
	}
}
