package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Prefix       string
	Categories   string
	Posts        string
	BreakingNews string
	LastNews     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:       prefix,
		Categories:   fmt.Sprintf("%scategories", prefix),
		Posts:        fmt.Sprintf("%sposts", prefix),
		BreakingNews: fmt.Sprintf("%sbreaking_news", prefix),
		LastNews:     fmt.Sprintf("%slast_news", prefix),
	}
}

// ActiveTable returns the table backing an active-item collection.
func (t *TableNames) ActiveTable(kind publishing.ActiveKind) (string, bool) {
	switch kind {
	case publishing.ActiveKindBreakingNews:
		return t.BreakingNews, true
	case publishing.ActiveKindLastNews:
		return t.LastNews, true
	default:
		return "", false
	}
}

// All returns every table in dependency order (referenced tables first).
func (t *TableNames) All() []string {
	return []string{t.Categories, t.Posts, t.BreakingNews, t.LastNews}
}

// CreateConnectionPool creates a pgx pool sized for the service.
//
// Connections through a transaction-mode PgBouncer (port 6543) cannot use
// prepared statements, so the pool switches to QueryExecModeCacheDescribe
// there unless the URL sets default_query_exec_mode explicitly. Prefixed
// table names are interpolated before statements are prepared, so each
// environment caches its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = min(5, maxConns)

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	// Check if there's a transaction in the context
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	// No transaction, use the pool
	return pool
}
