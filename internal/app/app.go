package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/semmidev/custos/internal/adapter/blobstore"
	"github.com/semmidev/custos/internal/adapter/notifier"
	"github.com/semmidev/custos/internal/adapter/registry"
	"github.com/semmidev/custos/internal/adapter/toolrunner"
	"github.com/semmidev/custos/internal/api"
	"github.com/semmidev/custos/internal/config"
	"github.com/semmidev/custos/internal/domain"
	"github.com/semmidev/custos/internal/infrastructure/logger"
	"github.com/semmidev/custos/internal/infrastructure/scheduler"
	"github.com/semmidev/custos/internal/usecase"
)

// blobStore is what every storage driver provides: the streaming port
// plus startup bucket provisioning.
type blobStore interface {
	domain.BlobStore
	EnsureBucket(ctx context.Context, bucket string) error
}

type App struct {
	config    *config.Config
	logger    *logger.Logger
	registry  *registry.Postgres
	scheduler *scheduler.Scheduler
	tick      *usecase.Scheduler
	server    *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	if err := registry.Migrate(cfg.Registry.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to migrate registry: %w", err)
	}

	reg, err := registry.NewPostgres(ctx, cfg.Registry.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to registry: %w", err)
	}
	log.Infof("✓ Connected to registry")

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Driver, err)
	}
	if err := store.EnsureBucket(ctx, cfg.Storage.Bucket); err != nil {
		return nil, fmt.Errorf("failed to provision bucket %s: %w", cfg.Storage.Bucket, err)
	}
	log.Infof("✓ %s storage ready (bucket: %s)", cfg.Storage.Driver, cfg.Storage.Bucket)

	var notify usecase.Notifier
	if cfg.Telegram.Enabled {
		tg, err := notifier.NewTelegram(&cfg.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram: %v", err)
		} else {
			notify = tg
			log.Infof("✓ Telegram notifications enabled")
		}
	}

	runner := runnerAdapter{toolrunner.New(cfg.Tools.PgDumpPath, cfg.Tools.PgRestorePath)}
	guard := usecase.NewGuard()

	dump := usecase.NewDump(
		reg.Databases, reg.Backups, store, runner, guard, notify, log,
		cfg.Storage.Bucket, cfg.Tools.RunTimeout,
	)
	restore := usecase.NewRestore(
		reg.Databases, reg.Backups, store, runner, log, cfg.Tools.RunTimeout,
	)
	catalog := usecase.NewCatalog(reg.Databases, reg.Backups, store)
	tick := usecase.NewScheduler(reg.Databases, dump, log)

	cronSched := scheduler.New(ctx, func(err error) {
		log.Errorf("Scheduled run failed: %v", err)
	})
	if cfg.Scheduler.Enabled {
		if err := cronSched.AddJob(cfg.Scheduler.Spec, tick.Tick); err != nil {
			return nil, fmt.Errorf("failed to schedule backup tick: %w", err)
		}
		log.Infof("✓ Backup tick scheduled: %s", cfg.Scheduler.Spec)
	}

	srv := api.NewServer(log, reg.Databases, catalog, dump, restore)

	return &App{
		config:    cfg,
		logger:    log,
		registry:  reg,
		scheduler: cronSched,
		tick:      tick,
		server: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: srv.Handler(),
		},
	}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return blobstore.NewS3(ctx, &cfg.Storage.S3)
	case "gdrive":
		return blobstore.NewGDrive(ctx, &cfg.Storage.GDrive)
	case "local":
		return blobstore.NewLocal(cfg.Storage.Local.Path)
	}
	return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
}

func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start()
	a.logger.Infof("Scheduler started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Infof("HTTP server listening on %s", a.config.Server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown releases what Run does not: the HTTP server is drained by
// Run itself when the context ends.
func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")

	a.scheduler.Stop()
	a.registry.Close()
	a.logger.Close()
}
