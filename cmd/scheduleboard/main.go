package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/club-schedule-board/internal/alert"
	"github.com/example/club-schedule-board/internal/application"
	"github.com/example/club-schedule-board/internal/cache"
	"github.com/example/club-schedule-board/internal/config"
	httptransport "github.com/example/club-schedule-board/internal/http"
	"github.com/example/club-schedule-board/internal/logging"
	"github.com/example/club-schedule-board/internal/persistence/sqlite"
	"github.com/example/club-schedule-board/internal/remote"
)

func main() {
	bootstrap := logging.New(os.Stdout, slog.LevelInfo)

	if _, err := config.LoadEnvFile(); err != nil {
		bootstrap.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("schedule board stopped with error", "error", err)
		os.Exit(1)
	}
}

// run serves the board until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	go app.reconciler.Run(syncCtx)

	go func() {
		<-ctx.Done()
		app.reconciler.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("schedule board listening", "addr", server.Addr, "remote_configured", app.remote.Configured())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

type app struct {
	storage    *sqlite.Store
	remote     *remote.Client
	store      *application.Store
	reconciler *application.Reconciler
	handler    http.Handler
	logger     *slog.Logger
}

// newApp opens the cache database and wires the board services and HTTP routes.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	storage, err := sqlite.Open(sqlite.DefaultConfig(cfg.CacheDSN), logger)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("migrate cache database: %w", err)
	}

	now := time.Now
	client := remote.New(cfg.RemoteEndpoint, remote.WithTimeout(cfg.RemoteTimeout), remote.WithLogger(logger))
	alerts := alert.NewDispatcher(cfg.AlertPermission, alert.PrompterFunc(func(ctx context.Context) alert.Permission {
		logger.InfoContext(ctx, "alert permission requested, granting")
		return alert.PermissionGranted
	}), nil, logger)

	store := application.NewStore(application.StoreOptions{
		Cache:          cache.New(storage, now, logger),
		Sink:           client,
		Alerter:        alerts,
		Detector:       application.NewNotificationDetector(cfg.Detector),
		RootEmail:      cfg.RootAdminEmail,
		HeaderDefaults: cfg.HeaderDefaults,
		IDGenerator:    uuid.NewString,
		Now:            now,
		Logger:         logger,
	})
	store.RestoreSession(ctx)

	board := application.NewBoardWithLogger(store, uuid.NewString, now, logger)

	var source application.RemoteSource
	if client.Configured() {
		source = client
	} else {
		logger.Warn("remote endpoint not configured, serving from local cache only")
	}
	reconciler := application.NewReconcilerWithLogger(store, source, cfg.SyncInterval, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Board:         httptransport.NewBoardHandler(store, reconciler, logger),
		Sessions:      httptransport.NewSessionHandler(store, logger),
		Schedule:      httptransport.NewScheduleHandler(board, logger),
		Admin:         httptransport.NewAdminHandler(board, logger),
		Notifications: httptransport.NewNotificationHandler(board, logger),
		Ratings:       httptransport.NewRatingHandler(board, logger),
		Health:        httptransport.NewHealthHandler(storage, logger),
		SyncLimit:     httptransport.RateLimit(httptransport.NewSyncLimiter(cfg.ManualSyncPerMin), logger),
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	return &app{
		storage:    storage,
		remote:     client,
		store:      store,
		reconciler: reconciler,
		handler:    handler,
		logger:     logger,
	}, nil
}

// close stops syncing, drains pending remote writes and closes the cache database.
func (a *app) close() {
	a.reconciler.Close()
	a.remote.Wait()
	if err := a.storage.Close(); err != nil {
		a.logger.Error("failed to close cache database", "error", err)
	}
}
