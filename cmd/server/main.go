package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"newsdesk/internal/app"
	"newsdesk/internal/auth"
	"newsdesk/internal/config"
	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/handler"
	"newsdesk/internal/middleware"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Optional log file, teed with stdout
	var logOutputs []io.Writer
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutputs = append(logOutputs, logFile)
	}
	logger := config.NewLogger(cfg, logOutputs...)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"mirror_root", cfg.MirrorRoot,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer a.Close()

	if err := a.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database ready", "max_conns", cfg.DBMaxConns)

	// Background mirror repair
	if cfg.MirrorReconcileInterval > 0 {
		stopReconciler := a.Reconciler.StartScheduler(cfg.MirrorReconcileInterval)
		defer stopReconciler()
		logger.Info("mirror reconciler started", "interval", cfg.MirrorReconcileInterval)
	}

	mux := handler.NewRouter(handler.Handlers{
		Health:     handler.NewHealthHandler(a.Pool),
		Content:    handler.NewContentHandler(a.Content, logger),
		Bulk:       handler.NewBulkHandler(a.Bulk, logger),
		Categories: handler.NewCategoryHandler(a.Categories, logger),
		Active:     handler.NewActiveItemHandler(a.Active, logger),
		Mirror:     handler.NewMirrorHandler(a.Reconciler, a.Mirror, logger),
	})

	// Build middleware chain, applied in reverse order
	// Order: CORS → RequestID → Recovery → Auth → Routes
	var h http.Handler = mux
	if cfg.AuthDisabled {
		logger.Warn("AUTH DISABLED: every request runs as a static admin (NEVER use in production!)")
		h = middleware.StaticPrincipal(models.Principal{UserID: "dev-admin", Role: models.RoleAdmin})(h)
	} else {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		h = middleware.Auth(verifier, logger)(h)
	}
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestID(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	<-shutdownDone
}
