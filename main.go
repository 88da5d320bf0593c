package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Itish41/WorkflowPro/controller"
	"github.com/Itish41/WorkflowPro/initializers"
	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := initializers.LoadConfig(os.Args[1:])
	if err != nil {
		initializers.NewLogger(&initializers.Config{}).Error(ctx, "[CRITICAL] Failed to load configuration", "error", err)
		return err
	}
	logger := initializers.NewLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := initializers.ConnectDB(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "[CRITICAL] Failed to initialize database connection", "error", err)
		return err
	}
	defer func() {
		if err := initializers.CloseDB(db); err != nil {
			logger.Warn(context.Background(), "Failed to close database", "error", err)
		}
	}()

	if cfg.RunMigrations {
		if err := initializers.Migrate(ctx, db, cfg.MigrationsPath, logger); err != nil {
			logger.Error(ctx, "[CRITICAL] Failed to run database migrations", "error", err)
			return err
		}
	}

	store, err := initializers.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "[CRITICAL] Failed to initialize storage", "error", err)
		return err
	}

	esClient, err := initializers.NewSearchClient(cfg)
	if err != nil {
		logger.Error(ctx, "[CRITICAL] Failed to initialize search client", "error", err)
		return err
	}
	search := services.NewSearchService(esClient, cfg.ElasticsearchIndex, logger)
	if err := search.EnsureIndex(ctx); err != nil {
		logger.Warn(ctx, "Search index unavailable, continuing without it", "error", err)
	}

	reconciler := services.NewReconcileService(db, store, logger)
	if cfg.OrphanSweepSchedule != "" {
		sweeper, err := reconciler.Schedule(cfg.OrphanSweepSchedule)
		if err != nil {
			logger.Error(ctx, "[CRITICAL] Failed to schedule orphan sweep", "error", err)
			return err
		}
		defer func() { <-sweeper.Stop().Done() }()
	}

	router := controller.NewRouter(controller.RouterConfig{
		Logger:          logger,
		Production:      cfg.IsProduction(),
		CORSOrigins:     cfg.CORSOrigins,
		GlobalRateLimit: cfg.RateLimitGlobal,
		StrictRateLimit: cfg.RateLimitStrict,
		RateLimitWindow: cfg.RateLimitWindow,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		UploadDir:       initializers.LocalUploadDir(store),
		StartedAt:       time.Now(),
	}, controller.Services{
		WorkItems:     services.NewWorkItemService(db, logger),
		DocumentTypes: services.NewDocumentTypeService(db, logger),
		Checklists:    services.NewChecklistService(db, logger),
		Documents:     services.NewDocumentService(db, store, search, logger),
		Users:         services.NewUserService(db, logger),
		Reconciler:    reconciler,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Server listening", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error(ctx, "[CRITICAL] Server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Graceful shutdown failed", "error", err)
		return err
	}
	logger.Info(shutdownCtx, "Server stopped")
	return nil
}
