package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/domain/repositories"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	"newsdesk/internal/repository/postgres"
)

const activeItemColumns = `id, title, body, priority, is_active, expires_at, created_at, updated_at`

// PostgresActiveItemRepository implements ActiveItemRepository for one
// table. Breaking news and last news share this code and differ only in
// their ActivePolicy.
type PostgresActiveItemRepository struct {
	pool      *pgxpool.Pool
	table     string
	kind      models.ActiveKind
	policy    models.ActivePolicy
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewActiveItemRepository creates a repository for the collection of kind
func NewActiveItemRepository(config *postgres.RepositoryConfig, kind models.ActiveKind) (pubRepo.ActiveItemRepository, error) {
	policy, ok := models.PolicyFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown active item kind %q", kind)
	}
	table, ok := config.Tables.ActiveTable(kind)
	if !ok {
		return nil, fmt.Errorf("no table for active item kind %q", kind)
	}

	return &PostgresActiveItemRepository{
		pool:      config.Pool,
		table:     table,
		kind:      kind,
		policy:    policy,
		txManager: postgres.NewTransactionManager(config.Pool, config.Logger),
		logger:    config.Logger,
	}, nil
}

// Kind returns the collection this repository serves
func (r *PostgresActiveItemRepository) Kind() models.ActiveKind {
	return r.kind
}

// Create inserts an inactive item; activation is a separate step
func (r *PostgresActiveItemRepository) Create(ctx context.Context, item *models.ActiveItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, body, priority, is_active, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.Title,
		item.Body,
		item.Priority,
		item.ExpiresAt,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create %s: %w", r.kind, err)
	}

	item.Kind = r.kind
	item.IsActive = false
	return nil
}

// GetByID retrieves an item by ID
func (r *PostgresActiveItemRepository) GetByID(ctx context.Context, id int64) (*models.ActiveItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, activeItemColumns, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	item, err := r.scan(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound(string(r.kind), id)
		}
		return nil, fmt.Errorf("get %s: %w", r.kind, err)
	}

	return item, nil
}

// List returns all items, highest priority first
func (r *PostgresActiveItemRepository) List(ctx context.Context) ([]models.ActiveItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY priority DESC, created_at DESC, id DESC
	`, activeItemColumns, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	return r.collect(rows)
}

// Update writes title, body, priority and expires_at. is_active only changes
// through Activate, Deactivate and Toggle.
func (r *PostgresActiveItemRepository) Update(ctx context.Context, item *models.ActiveItem) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, body = $2, priority = $3, expires_at = $4, updated_at = $5
		WHERE id = $6
		RETURNING is_active, created_at
	`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.Title,
		item.Body,
		item.Priority,
		item.ExpiresAt,
		item.UpdatedAt,
		item.ID,
	).Scan(&item.IsActive, &item.CreatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return domain.NewNotFound(string(r.kind), item.ID)
		}
		return fmt.Errorf("update %s: %w", r.kind, err)
	}

	item.Kind = r.kind
	return nil
}

// Delete removes an item
func (r *PostgresActiveItemRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound(string(r.kind), id)
	}

	return nil
}

// Activate sets is_active for id. In an exclusive collection the same
// statement clears every other active row, so no reader ever sees two.
func (r *PostgresActiveItemRepository) Activate(ctx context.Context, id int64) error {
	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.lock(txCtx); err != nil {
			return err
		}
		return r.activate(txCtx, id)
	})
}

// Deactivate clears is_active for id only
func (r *PostgresActiveItemRepository) Deactivate(ctx context.Context, id int64) error {
	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.lock(txCtx); err != nil {
			return err
		}
		return r.deactivate(txCtx, id)
	})
}

// Toggle reads the current flag and flips it under the table lock
func (r *PostgresActiveItemRepository) Toggle(ctx context.Context, id int64) (bool, error) {
	var active bool
	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.lock(txCtx); err != nil {
			return err
		}

		query := fmt.Sprintf(`SELECT is_active FROM %s WHERE id = $1 FOR UPDATE`, r.table)
		executor := postgres.GetExecutor(txCtx, r.pool)
		if err := executor.QueryRow(txCtx, query, id).Scan(&active); err != nil {
			if postgres.IsPgNoRowsError(err) {
				return domain.NewNotFound(string(r.kind), id)
			}
			return fmt.Errorf("toggle %s: %w", r.kind, err)
		}

		if active {
			active = false
			return r.deactivate(txCtx, id)
		}
		active = true
		return r.activate(txCtx, id)
	})
	if err != nil {
		return false, err
	}

	return active, nil
}

// Current returns live items at now: active and not expired. Expiry hides an
// item from reads without clearing its flag.
func (r *PostgresActiveItemRepository) Current(ctx context.Context, now time.Time, limit int) ([]models.ActiveItem, error) {
	if limit <= 0 || limit > r.policy.ReadLimit {
		limit = r.policy.ReadLimit
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_active AND (expires_at IS NULL OR expires_at > $1)
		ORDER BY priority DESC, created_at DESC, id DESC
		LIMIT $2
	`, activeItemColumns, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("current %s: %w", r.kind, err)
	}
	return r.collect(rows)
}

// lock serializes activation changes on this table for the rest of the transaction
func (r *PostgresActiveItemRepository) lock(ctx context.Context) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.table); err != nil {
		return fmt.Errorf("lock %s: %w", r.table, err)
	}
	return nil
}

func (r *PostgresActiveItemRepository) activate(ctx context.Context, id int64) error {
	var query string
	if r.policy.Exclusive {
		query = fmt.Sprintf(`
			UPDATE %[1]s
			SET is_active = (id = $1), updated_at = NOW()
			WHERE (is_active OR id = $1)
				AND EXISTS (SELECT 1 FROM %[1]s WHERE id = $1)
		`, r.table)
	} else {
		query = fmt.Sprintf(`UPDATE %s SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, r.table)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("activate %s: %w", r.kind, err)
	}

	// The target row always matches when it exists
	if result.RowsAffected() == 0 {
		return domain.NewNotFound(string(r.kind), id)
	}

	r.logger.Debug("item activated", "kind", r.kind, "id", id, "rows", result.RowsAffected())
	return nil
}

func (r *PostgresActiveItemRepository) deactivate(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", r.kind, err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound(string(r.kind), id)
	}

	return nil
}

func (r *PostgresActiveItemRepository) scan(row pgx.Row) (*models.ActiveItem, error) {
	var item models.ActiveItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Body,
		&item.Priority,
		&item.IsActive,
		&item.ExpiresAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Kind = r.kind
	return &item, nil
}

func (r *PostgresActiveItemRepository) collect(rows pgx.Rows) ([]models.ActiveItem, error) {
	defer rows.Close()

	items := []models.ActiveItem{}
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.kind, err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.kind, err)
	}

	return items, nil
}
