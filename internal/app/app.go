package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bubelovv/sprint-planner/internal/config"
	"github.com/bubelovv/sprint-planner/internal/httpserver"
	"github.com/bubelovv/sprint-planner/internal/migrations"
	"github.com/bubelovv/sprint-planner/internal/repository"
	"github.com/bubelovv/sprint-planner/internal/service"
	"github.com/bubelovv/sprint-planner/internal/storage"
	"github.com/bubelovv/sprint-planner/internal/storage/file"
	"github.com/bubelovv/sprint-planner/internal/storage/memory"
	"github.com/bubelovv/sprint-planner/internal/storage/postgres"
	"github.com/bubelovv/sprint-planner/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg         config.Config
	logger      *zap.Logger
	httpServer  *httpserver.Server
	persister   *store.Persister
	unsubscribe func()
	closeStore  func()
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	backend, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.New(backend, logger.Named("repository"))
	st := store.New(repo, logger.Named("store"))
	if err := st.Hydrate(ctx); err != nil {
		// The store falls back to an empty plan; keep serving it.
		logger.Warn("starting with an empty plan", zap.Error(err))
	}

	persister := store.NewPersister(repo, logger.Named("persister"), cfg.PersistDebounce)
	persister.Prime(st.Snapshot())
	unsubscribe := st.Subscribe(persister.Enqueue)

	svc := service.New(st, cfg.TrackerBaseURL)
	server := httpserver.New(cfg.HTTPPort, logger, svc)

	logger.Info("planner ready",
		zap.String("addr", server.Addr()),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("namespace", cfg.Storage.Namespace),
		zap.Duration("persist_debounce", cfg.PersistDebounce),
	)

	return &App{
		cfg:         cfg,
		logger:      logger,
		httpServer:  server,
		persister:   persister,
		unsubscribe: unsubscribe,
		closeStore:  closeStore,
	}, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), func() {}, nil
	case config.BackendFile:
		s, err := file.New(cfg.Storage.File, cfg.Storage.Namespace)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("file storage opened", zap.String("path", s.Path()))
		return s, func() {}, nil
	case config.BackendPostgres:
		if err := migrations.Run(ctx, cfg.Storage.DatabaseURL, logger); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.New(ctx, cfg.Storage.DatabaseURL, cfg.Storage.DatabaseConn, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewKV(pool, cfg.Storage.Namespace), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Run serves until the context is cancelled or a signal arrives, then stops
// the server and flushes pending saves.
func (a *App) Run(ctx context.Context) error {
	defer a.closeStore()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
		a.unsubscribe()
		if err := a.persister.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("flush snapshot: %w", err))
		}
		a.logger.Info("planner stopped",
			zap.Int("saves", a.persister.Saves()),
			zap.Int("failed_saves", a.persister.Failures()),
		)
		return errors.Join(errs...)
	})

	return g.Wait()
}
