// Package server wires the vault server together: configuration, logging,
// the storage backend, the vault service and the gRPC endpoint, plus
// signal-driven graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/totpvault/internal/logging"
	"github.com/dmitrijs2005/totpvault/internal/otpx"
	"github.com/dmitrijs2005/totpvault/internal/server/config"
	"github.com/dmitrijs2005/totpvault/internal/storage"
	"github.com/dmitrijs2005/totpvault/internal/vault"

	gs "github.com/dmitrijs2005/totpvault/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *storage.Backend
	vault   *vault.Service
}

// NewApp opens the configured storage backend and builds the vault service.
// Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, w)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	backend, err := storage.Open(ctx, c.Storage())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	repo := vault.NewRepository(backend.Salt, backend.Vault)
	vs := vault.NewService(repo, otpx.NewGenerator(), logger)

	return &App{config: c, logger: logger, backend: backend, vault: vs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is canceled or a termination signal arrives, then
// closes the storage backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"storage", app.config.StorageBackend,
		"vault", app.backend.Vault.Location(),
	)

	app.initSignalHandler(cancelFunc)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.vault, app.config.ShutdownTimeout)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "gRPC server error", "error", runErr)
	}

	if err := app.backend.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
