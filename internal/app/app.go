// Package app wires configuration, storage, the file mirror and the
// publishing services into one object shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"newsdesk/internal/config"
	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/domain/repositories"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/repository/postgres"
	postgresPub "newsdesk/internal/repository/postgres/publishing"
	"newsdesk/internal/service/mirror"
	"newsdesk/internal/service/publishing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the wired components
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Tables *postgres.TableNames

	TxManager repositories.TransactionManager
	Mirror    *mirror.FileSynchronizer

	Content    pubSvc.ContentService
	Categories pubSvc.CategoryService
	Bulk       pubSvc.BulkService
	Active     pubSvc.ActiveItemService
	Reconciler *publishing.Reconciler
}

// Connect opens the pool and builds every repository and service.
// The caller must call Close.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}

	a, err := build(cfg, logger, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool) (*App, error) {
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	contentRepo := postgresPub.NewContentRepository(repoConfig)
	categoryRepo := postgresPub.NewCategoryRepository(repoConfig)
	slugStore := postgresPub.NewSlugStore(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	var activeRepos []pubRepo.ActiveItemRepository
	for _, kind := range []models.ActiveKind{models.ActiveKindBreakingNews, models.ActiveKindLastNews} {
		repo, err := postgresPub.NewActiveItemRepository(repoConfig, kind)
		if err != nil {
			return nil, err
		}
		activeRepos = append(activeRepos, repo)
	}

	fileMirror := mirror.NewFileSynchronizer(cfg.MirrorRoot, logger)
	slugs := publishing.NewSlugResolver(slugStore, cfg.SlugMaxAttempts, logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Pool:       pool,
		Tables:     tables,
		TxManager:  txManager,
		Mirror:     fileMirror,
		Content:    publishing.NewContentService(contentRepo, categoryRepo, slugs, fileMirror, logger),
		Categories: publishing.NewCategoryService(categoryRepo, slugs, logger),
		Bulk:       publishing.NewBulkService(contentRepo, fileMirror, cfg.BulkConcurrency, logger),
		Active:     publishing.NewActiveItemService(txManager, logger, activeRepos...),
		Reconciler: publishing.NewReconciler(contentRepo, fileMirror, cfg.BulkConcurrency, logger),
	}, nil
}

// EnsureSchema creates missing tables, constraints and indexes
func (a *App) EnsureSchema(ctx context.Context) error {
	return postgres.EnsureSchema(ctx, a.Pool, a.Tables)
}

// Close releases the pool
func (a *App) Close() {
	a.Pool.Close()
}
