package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/modulesync/internal/credential"
	"github.com/nhle/modulesync/internal/editsource"
	"github.com/nhle/modulesync/internal/logger"
	"github.com/nhle/modulesync/internal/metrics"
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/source/canvas"
	"github.com/nhle/modulesync/internal/store"
	appsync "github.com/nhle/modulesync/internal/sync"
)

// environment holds everything a command needs to drive one controller.
type environment struct {
	cfg     *model.AppConfig
	log     *zap.Logger
	store   *store.SQLiteStore
	gateway *canvas.Adapter
	bus     *editsource.Bus

	closers []func() error
}

// setup loads config, opens the log, the store and the gateway. Logs go
// to the configured file when logFile is set, otherwise to stderr.
func setup(ctx context.Context, ro *rootOptions, stderr io.Writer, logFile bool) (*environment, error) {
	cfg, err := ro.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Canvas.BaseURL == "" {
		return nil, errors.New("no Canvas URL configured, run `modulesync login` first")
	}

	env := &environment{cfg: cfg}

	format := logger.LogFormat(cfg.Log.Format)
	if logFile && cfg.Log.File != "" {
		log, closeLog, err := logger.NewFile(cfg.Log.Level, format, cfg.Log.File)
		if err != nil {
			return nil, err
		}
		env.log = log
		env.closers = append(env.closers, closeLog)
	} else {
		env.log = logger.New(cfg.Log.Level, format, stderr)
		env.closers = append(env.closers, func() error { _ = env.log.Sync(); return nil })
	}

	token, err := credential.CanvasToken()
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("loading access token (run `modulesync login`): %w", err)
	}

	env.store, err = store.NewSQLiteStore(cfg.Store.Path, logger.For(env.log, logger.ComponentStore))
	if err != nil {
		env.Close()
		return nil, err
	}
	env.closers = append(env.closers, env.store.Close)

	env.gateway = canvas.NewAdapter(canvas.Options{
		BaseURL:       cfg.Canvas.BaseURL,
		Token:         token,
		PerPage:       cfg.Canvas.PerPage,
		Timeout:       time.Duration(cfg.Canvas.TimeoutSec) * time.Second,
		MaxRetries:    cfg.Canvas.MaxRetries,
		CacheDir:      cfg.Cache.Dir,
		CacheMaxBytes: cfg.Cache.MaxBytes,
		Logger:        logger.For(env.log, logger.ComponentGateway),
	})

	env.bus = editsource.NewBus(
		time.Duration(cfg.Events.RetentionSec)*time.Second,
		logger.For(env.log, logger.ComponentEditSource),
	)

	metrics.Serve(ctx, cfg.Metrics.Addr, logger.For(env.log, logger.ComponentCommands))

	return env, nil
}

// controller builds a controller for initial. It is not started.
func (e *environment) controller(initial modulelist.Model) *appsync.Controller {
	runner := appsync.NewRunner(e.gateway, e.store, logger.For(e.log, logger.ComponentRunner))
	return appsync.NewController(initial, runner, e.bus, logger.For(e.log, logger.ComponentController))
}

// Close releases resources in reverse order of acquisition.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
	e.closers = nil
}
