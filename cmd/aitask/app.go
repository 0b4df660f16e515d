package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leofalp/aitask/core/catalog"
	"github.com/leofalp/aitask/core/dispatch"
	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/history"
	"github.com/leofalp/aitask/core/history/inmemory"
	"github.com/leofalp/aitask/core/history/pghistory"
	"github.com/leofalp/aitask/core/history/sqlitehistory"
	"github.com/leofalp/aitask/core/settings"
	"github.com/leofalp/aitask/providers/ai"
	"github.com/leofalp/aitask/providers/executors/echo"
	"github.com/leofalp/aitask/providers/executors/openai"
	"github.com/leofalp/aitask/providers/observability"
	"github.com/leofalp/aitask/providers/observability/otelobs"
	"github.com/leofalp/aitask/providers/observability/slogobs"
)

const serviceName = "aitask"

// app holds everything a command needs. close releases the history backend
// and flushes traces.
type app struct {
	settings   *settings.Settings
	dispatcher *dispatch.Dispatcher
	history    history.Store
	logger     *slog.Logger
	closers    []func(context.Context) error
}

// newApp builds the dispatcher from .env, the YAML file at configPath
// (optional) and the environment. Logs go to logOutput.
func newApp(ctx context.Context, configPath string, logOutput io.Writer) (*app, error) {
	s, err := settings.Load(configPath, func(cfg *settings.Config) {
		if cfg.DefaultProvider == "" {
			cfg.DefaultProvider = string(ai.ProviderEcho)
		}
	})
	if err != nil {
		return nil, err
	}
	cfg := s.Config()

	level, ok := slogobs.ParseLevel(cfg.LogLevel)
	logObserver := slogobs.New(
		slogobs.WithLevel(level),
		slogobs.WithFormat(slogobs.FormatFromEnv()),
		slogobs.WithOutput(logOutput),
	)
	a := &app{settings: s, logger: logObserver.Logger()}
	if !ok {
		a.logger.Warn("unknown log level, using INFO", "log_level", cfg.LogLevel)
	}

	var observer observability.Provider = logObserver
	if cfg.OTLPEndpoint != "" {
		shutdown, err := otelobs.Setup(ctx, cfg.OTLPEndpoint, serviceName)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
		observer = otelobs.New(otelobs.WithFallback(logObserver))
	}

	store, closeStore, err := openHistory(ctx, cfg.History)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.history = store
	a.closers = append(a.closers, closeStore)

	models, err := loadCatalog(configPath)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	registry := executor.NewRegistry(executor.WithLogger(a.logger))
	registry.Register(echo.New())
	if os.Getenv("OPENAI_API_KEY") != "" {
		registry.Register(openai.New())
	}

	a.dispatcher = dispatch.New(registry,
		dispatch.WithSettings(s),
		dispatch.WithModels(models),
		dispatch.WithHistory(store),
		dispatch.WithObserver(observer),
		dispatch.WithLogger(a.logger),
	)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown failed", "error", err)
		}
	}
	a.closers = nil
}

// openHistory opens the configured backend. The returned function closes it.
func openHistory(ctx context.Context, cfg settings.HistoryConfig) (history.Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Backend {
	case settings.BackendNone:
		return history.Discard, noop, nil
	case settings.BackendMemory, "":
		return inmemory.New(), noop, nil
	case settings.BackendSQLite:
		store, err := sqlitehistory.Open(cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case settings.BackendPostgres:
		var opts []pghistory.Option
		if cfg.Table != "" {
			opts = append(opts, pghistory.WithTableName(cfg.Table))
		}
		store, closePool, err := pghistory.Connect(ctx, cfg.DSN, opts...)
		if err != nil {
			return nil, noop, err
		}
		return store, func(context.Context) error { closePool(); return nil }, nil
	}
	return nil, noop, fmt.Errorf("unknown history backend %q", cfg.Backend)
}

// loadCatalog reads the models section of the config file. No file means an
// empty catalog.
func loadCatalog(configPath string) (*catalog.Catalog, error) {
	if configPath == "" {
		return catalog.New()
	}
	return catalog.Load(configPath)
}

var errUsage = errors.New("usage")
