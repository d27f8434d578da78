package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bosfinder_backend/internal/adapters/storage"
	"bosfinder_backend/internal/bootstrap"
	"bosfinder_backend/internal/http/router"
	"bosfinder_backend/platform/config"
	"bosfinder_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer closeStore()

	photos, err := initPhotoStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	app, err := bootstrap.NewApp(cfg, store, photos, log)
	if err != nil {
		return fmt.Errorf("compose application: %w", err)
	}
	if bus, ok := app.EventBus.(interface{ Wait() }); ok {
		defer bus.Wait()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := serve(ctx, srv, log); err != nil {
		log.Error("server error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// initPhotoStorage connects MinIO when it is configured. Without it the API
// runs and photo uploads answer 503.
func initPhotoStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.StorageService, error) {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; profile photo uploads disabled")
		return nil, nil
	}

	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize storage service: %w", err)
	}

	bucket := cfg.GetMinioBucketProfilePhotos()
	if err := bootstrap.WithRetry(ctx, log, "ensure profile-photos bucket", 5, 2*time.Second, func() error {
		return svc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		return nil, fmt.Errorf("ensure storage bucket %s: %w", bucket, err)
	}
	log.Info("storage service initialized", "profilePhotosBucket", bucket)
	return svc, nil
}
