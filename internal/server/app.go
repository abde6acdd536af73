// Package server wires configuration, storage, services and transports
// together and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/memoir/internal/logging"
	"github.com/dmitrijs2005/memoir/internal/server/config"
	"github.com/dmitrijs2005/memoir/internal/server/httpapi"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memoir/internal/server/services"

	gs "github.com/dmitrijs2005/memoir/internal/server/grpc"
)

var newRepositoryManager = repomanager.New

type App struct {
	config          *config.Config
	logger          logging.Logger
	repomanager     repomanager.RepositoryManager
	userService     *services.UserService
	categoryService *services.CategoryService
	memoryService   *services.MemoryService
	imageService    *services.ImageService
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := newRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config:          c,
		logger:          logger,
		repomanager:     rm,
		userService:     services.NewUserService(rm, c),
		categoryService: services.NewCategoryService(rm),
		memoryService:   services.NewMemoryService(rm),
		imageService:    services.NewImageService(c),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run migrates storage, then serves HTTP and gRPC until ctx is cancelled, a
// signal arrives or a server fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "memory_store", app.config.UsesMemoryStore())

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.repomanager.RunMigrations(ctx); err != nil {
		return errors.Join(fmt.Errorf("migrations: %w", err), app.Close())
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err)
				errOnce.Do(func() { firstErr = fmt.Errorf("%s: %w", name, err) })
				cancelFunc()
			}
		}()
	}

	hs := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger,
		app.userService, app.categoryService, app.memoryService, app.imageService)
	run("http", hs.Run)

	if app.config.HealthAddrGRPC != "" {
		gsrv := gs.NewHealthServer(app.config.HealthAddrGRPC, app.logger)
		run("grpc", gsrv.Run)
	}

	wg.Wait()
	app.logger.Info(ctx, "App stopped")

	return errors.Join(firstErr, app.Close())
}

func (app *App) Close() error {
	return app.repomanager.Close()
}
