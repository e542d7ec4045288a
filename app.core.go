package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger   *zap.Logger
	config   *Config
	server   *http.Server
	store    *BookStore
	cleanups []func() error
}

// NewApp provides an instance of App with the book list already loaded.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and setup the logging module.
	if err = os.MkdirAll(config.LogFolder, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))

	slot, err := NewBookListSlot(logger, config)
	if err != nil {
		_ = logWriter.Close()
		return nil, err
	}

	ids := NewIDsHandler()
	store := NewBookStore(logger, slot, clock, ids, NewInputValidator())
	books := store.Load(context.Background())
	logger.Info("book list loaded",
		zap.String("store.backend", config.Storage.Backend),
		zap.String("store.key", config.Storage.Key),
		zap.Int("store.count", len(books)),
	)

	bookService := NewBookService(logger, config, clock, ids, store, NewPicker(nil))
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		ids,
		bookService,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
		ConnContext:    SaveConnInContext,
		ErrorLog:       zap.NewStdLog(logger),
	}

	return &App{
		logger: logger,
		config: config,
		server: srv,
		store:  store,
		cleanups: []func() error{
			store.Close,
			flusher,
			logWriter.Close,
		},
	}, nil
}

// NewBookListSlot connects to the configured storage backend and returns
// the slot holding the saved list.
func NewBookListSlot(logger *zap.Logger, config *Config) (BookListSlot, error) {
	switch config.Storage.Backend {
	case BackendRedis:
		redisClient, err := GetRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		return NewRedisListSlot(logger, redisClient, config.Storage.Key), nil
	case BackendBolt:
		boltDBClient, err := GetBoltDBClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
		}
		return NewBoltListSlot(logger, &config.BoltDB, boltDBClient, config.Storage.Key), nil
	case BackendBadger:
		badgerClient, err := GetBadgerDBClient(logger, config)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger database: %s", err)
		}
		return NewBadgerListSlot(logger, badgerClient, config.Storage.Key), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		if err := f(); err != nil {
			fmt.Fprintln(os.Stderr, "cleanup failed:", err)
		}
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.Int("store.count", app.store.Len()),
		)
		err := app.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
			app.logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}
