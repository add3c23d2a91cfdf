package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jeranbbs/jeran/internal/logging"
	"github.com/jeranbbs/jeran/internal/server/admin"
	"github.com/jeranbbs/jeran/internal/server/board"
	"github.com/jeranbbs/jeran/internal/server/config"
	"github.com/jeranbbs/jeran/internal/server/texts"
	"github.com/jeranbbs/jeran/internal/server/verifier"
)

// App wires the board server together: logger, banner texts, credential
// store, listener and snapshot service, plus the optional admin shell.
type App struct {
	config      *config.Config
	logger      logging.Logger
	server      *Server
	verifier    *verifier.Verifier
	snapshotter *board.Snapshotter
	adminShell  *admin.Shell
}

func NewApp(cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t, err := texts.Load(cfg.TextsDir)
	if err != nil {
		return nil, fmt.Errorf("load texts: %w", err)
	}

	v := verifier.New(cfg.VerifierDBPath, logger)
	srv := New(cfg, v, t, logger)
	snap := board.NewSnapshotter(srv.Board(), cfg.PostSaveDir, cfg.SnapshotPeriod, logger)

	var shell *admin.Shell
	if cfg.AdminShellEnabled {
		shell = admin.New(cfg.AdminShellAddr, logger)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		server:      srv,
		verifier:    v,
		snapshotter: snap,
		adminShell:  shell,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts every service and blocks until all of them have stopped.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.verifier.Load(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.snapshotter.Run(ctx)
	}()

	if app.adminShell != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.adminShell.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
			}
		}()
	}

	wg.Wait()
	return nil
}
