package grpc

import (
	"context"

	"github.com/dmitrijs2005/totpvault/internal/api"
	"github.com/dmitrijs2005/totpvault/internal/common"
)

// fail logs err with its kind and returns it as a gRPC status. Wrong
// password and corrupt vault leave the server looking alike; only this log
// line tells them apart.
func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	kind := common.KindOf(err)
	switch kind {
	case common.KindInternal, common.KindCorruptVault:
		s.logger.Error(ctx, op+" failed", "kind", kind, "error", err)
	default:
		s.logger.Info(ctx, op+" failed", "kind", kind)
	}
	return api.StatusError(err)
}

func (s *GRPCServer) Status(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	exists, err := s.vault.Status(ctx)
	if err != nil {
		return nil, s.fail(ctx, "status", err)
	}
	return &api.StatusResponse{VaultExists: exists}, nil
}

func (s *GRPCServer) Init(ctx context.Context, req *api.InitRequest) (*api.InitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "init", err)
	}

	if err := s.vault.Init(ctx, req.Password, req.Overwrite); err != nil {
		return nil, s.fail(ctx, "init", err)
	}
	return &api.InitResponse{OK: true}, nil
}

func (s *GRPCServer) Unlock(ctx context.Context, req *api.UnlockRequest) (*api.UnlockResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "unlock", err)
	}

	accounts, err := s.vault.Unlock(ctx, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "unlock", err)
	}
	return &api.UnlockResponse{Accounts: accounts}, nil
}

func (s *GRPCServer) Add(ctx context.Context, req *api.AddRequest) (*api.AddResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "add", err)
	}

	acc, err := s.vault.AddAccount(ctx, req.Password, req.Input())
	if err != nil {
		return nil, s.fail(ctx, "add", err)
	}
	return &api.AddResponse{Account: *acc}, nil
}

func (s *GRPCServer) Remove(ctx context.Context, req *api.RemoveRequest) (*api.RemoveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "remove", err)
	}

	n, err := s.vault.RemoveAccount(ctx, req.Password, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "remove", err)
	}
	return &api.RemoveResponse{Removed: n}, nil
}

func (s *GRPCServer) Code(ctx context.Context, req *api.CodeRequest) (*api.CodeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "code", err)
	}

	code, err := s.vault.GetCode(ctx, req.Password, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "code", err)
	}
	return &api.CodeResponse{Code: code.Code, Remaining: code.SecondsRemaining}, nil
}
