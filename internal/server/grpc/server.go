package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/totpvault/internal/api"
	"github.com/dmitrijs2005/totpvault/internal/logging"
	"github.com/dmitrijs2005/totpvault/internal/otpx"
	"github.com/dmitrijs2005/totpvault/internal/vault"
	"google.golang.org/grpc"
)

// VaultService is the subset of *vault.Service the handlers call.
type VaultService interface {
	Status(ctx context.Context) (bool, error)
	Init(ctx context.Context, password string, overwrite bool) error
	Unlock(ctx context.Context, password string) ([]vault.Account, error)
	AddAccount(ctx context.Context, password string, in vault.AccountInput) (*vault.Account, error)
	RemoveAccount(ctx context.Context, password, id string) (int, error)
	GetCode(ctx context.Context, password, id string) (*otpx.Code, error)
}

type GRPCServer struct {
	address         string
	vault           VaultService
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewGRPCServer(address string, l logging.Logger, vs VaultService, shutdownTimeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address:         address,
		vault:           vs,
		logger:          l.With("module", "grpc_server"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is canceled, then stops gracefully. Calls
// still running after the shutdown timeout are cut off. If serving fails
// first, Serve returns that error without waiting for ctx.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.recoveryInterceptor,
		s.loggingInterceptor,
	))
	api.RegisterVaultServiceServer(srv, s)

	served := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-served:
			return
		}
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.stop(srv)
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	close(served)
	<-stopped
	return err
}

func (s *GRPCServer) stop(srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		srv.Stop()
		<-done
	}
}
