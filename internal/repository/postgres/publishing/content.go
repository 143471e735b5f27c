package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	"newsdesk/internal/repository/postgres"
)

const contentColumns = `id, slug, title, body, excerpt, category_id, author_id, tags, featured_image,
	is_published, is_featured, views, reading_time, published_at, mirror_synced_at, created_at, updated_at`

// PostgresContentRepository implements the ContentRepository interface
type PostgresContentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewContentRepository creates a new content repository
func NewContentRepository(config *postgres.RepositoryConfig) pubRepo.ContentRepository {
	return &PostgresContentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new content record
func (r *PostgresContentRepository) Create(ctx context.Context, rec *models.ContentRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, title, body, excerpt, category_id, author_id, tags, featured_image,
			is_published, is_featured, reading_time, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, views, created_at, updated_at
	`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		rec.Slug,
		rec.Title,
		rec.Body,
		rec.Excerpt,
		rec.CategoryID,
		rec.AuthorID,
		nonNilTags(rec.Tags),
		rec.FeaturedImage,
		rec.IsPublished,
		rec.IsFeatured,
		rec.ReadingTime,
		rec.PublishedAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&rec.ID, &rec.Views, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return r.translateWriteError(err, rec, "create content")
	}

	rec.URL = models.RecordURL(models.EntityPosts, rec.ID, rec.Slug)
	return nil
}

// GetByID retrieves a content record by ID
func (r *PostgresContentRepository) GetByID(ctx context.Context, id int64) (*models.ContentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, contentColumns, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rec, err := scanContent(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("post", id)
		}
		return nil, fmt.Errorf("get content: %w", err)
	}

	return rec, nil
}

// GetBySlug retrieves a content record by slug
func (r *PostgresContentRepository) GetBySlug(ctx context.Context, slug string) (*models.ContentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, contentColumns, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rec, err := scanContent(executor.QueryRow(ctx, query, slug))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("post", slug)
		}
		return nil, fmt.Errorf("get content by slug: %w", err)
	}

	return rec, nil
}

// GetByIDs retrieves every existing record among ids
func (r *PostgresContentRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.ContentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1) ORDER BY id`, contentColumns, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get content by ids: %w", err)
	}
	return collectContent(rows, "get content by ids")
}

// List retrieves records matching the filter, newest first, with the total match count
func (r *PostgresContentRepository) List(ctx context.Context, filter *models.ContentFilter) ([]models.ContentRecord, int, error) {
	filter.ApplyDefaults()

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.IsPublished != nil {
		add("is_published = $%d", *filter.IsPublished)
	}
	if filter.IsFeatured != nil {
		add("is_featured = $%d", *filter.IsFeatured)
	}
	if filter.Tag != "" {
		add("$%d = ANY(tags)", filter.Tag)
	}
	if filter.Query != "" {
		add("title ILIKE '%%' || $%d || '%%'", escapeLike(filter.Query))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Posts, where)
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count content: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, contentColumns, r.tables.Posts, where, len(args)+1, len(args)+2)

	rows, err := executor.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list content: %w", err)
	}
	records, err := collectContent(rows, "list content")
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Update writes every mutable column of rec
func (r *PostgresContentRepository) Update(ctx context.Context, rec *models.ContentRecord) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET slug = $1, title = $2, body = $3, excerpt = $4, category_id = $5, tags = $6,
			featured_image = $7, is_published = $8, is_featured = $9, reading_time = $10,
			published_at = $11, updated_at = $12
		WHERE id = $13
		RETURNING views, mirror_synced_at, created_at
	`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		rec.Slug,
		rec.Title,
		rec.Body,
		rec.Excerpt,
		rec.CategoryID,
		nonNilTags(rec.Tags),
		rec.FeaturedImage,
		rec.IsPublished,
		rec.IsFeatured,
		rec.ReadingTime,
		rec.PublishedAt,
		rec.UpdatedAt,
		rec.ID,
	).Scan(&rec.Views, &rec.MirrorSyncedAt, &rec.CreatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return domain.NewNotFound("post", rec.ID)
		}
		return r.translateWriteError(err, rec, "update content")
	}

	rec.URL = models.RecordURL(models.EntityPosts, rec.ID, rec.Slug)
	return nil
}

// Delete hard-deletes a content record
func (r *PostgresContentRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("post", id)
	}

	return nil
}

// SetPublished flips is_published for every id in one statement. published_at
// is stamped the first time a record is published and kept afterwards.
func (r *PostgresContentRepository) SetPublished(ctx context.Context, ids []int64, published bool) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_published = $2,
			published_at = CASE WHEN $2 AND published_at IS NULL THEN NOW() ELSE published_at END,
			updated_at = NOW()
		WHERE id = ANY($1)
	`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids, published)
	if err != nil {
		return 0, fmt.Errorf("set published: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteMany deletes every id in one statement
func (r *PostgresContentRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete content batch: %w", err)
	}

	return result.RowsAffected(), nil
}

// IncrementViews atomically adds one view and returns the new count
func (r *PostgresContentRepository) IncrementViews(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = $1 RETURNING views`, r.tables.Posts)

	var views int64
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&views); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return 0, domain.NewNotFound("post", id)
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

// MarkMirrorSynced stamps mirror_synced_at without touching updated_at
func (r *PostgresContentRepository) MarkMirrorSynced(ctx context.Context, id int64, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET mirror_synced_at = $2 WHERE id = $1`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("mark mirror synced: %w", err)
	}

	return nil
}

// ListStaleMirrors returns published records whose mirror lags behind the row, oldest first
func (r *PostgresContentRepository) ListStaleMirrors(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_published AND (mirror_synced_at IS NULL OR mirror_synced_at < updated_at)
		ORDER BY updated_at ASC
		LIMIT $1
	`, contentColumns, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale mirrors: %w", err)
	}
	return collectContent(rows, "list stale mirrors")
}

// ListPublishedIDs returns the ids of every published record
func (r *PostgresContentRepository) ListPublishedIDs(ctx context.Context) ([]int64, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE is_published ORDER BY id`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list published ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list published ids: %w", err)
	}

	return ids, nil
}

func (r *PostgresContentRepository) translateWriteError(err error, rec *models.ContentRecord, op string) error {
	switch {
	case postgres.IsPgDuplicateOn(err, postgres.SlugConstraint(r.tables.Posts)):
		return &domain.ConflictError{
			Message:      fmt.Sprintf("slug '%s' already exists", rec.Slug),
			ResourceType: "slug",
			ResourceID:   rec.Slug,
		}
	case postgres.IsPgForeignKeyError(err):
		return domain.NewValidation("category %d does not exist", rec.CategoryID)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func scanContent(row pgx.Row) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	err := row.Scan(
		&rec.ID,
		&rec.Slug,
		&rec.Title,
		&rec.Body,
		&rec.Excerpt,
		&rec.CategoryID,
		&rec.AuthorID,
		&rec.Tags,
		&rec.FeaturedImage,
		&rec.IsPublished,
		&rec.IsFeatured,
		&rec.Views,
		&rec.ReadingTime,
		&rec.PublishedAt,
		&rec.MirrorSyncedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.URL = models.RecordURL(models.EntityPosts, rec.ID, rec.Slug)
	return &rec, nil
}

func collectContent(rows pgx.Rows, op string) ([]models.ContentRecord, error) {
	defer rows.Close()

	records := []models.ContentRecord{}
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
