package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/totpvault/internal/api"
	"github.com/dmitrijs2005/totpvault/internal/otpx"
	"github.com/dmitrijs2005/totpvault/internal/vault"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// vaultAPI is implemented by *api.VaultServiceClient.
type vaultAPI interface {
	Status(ctx context.Context, in *api.StatusRequest, opts ...grpc.CallOption) (*api.StatusResponse, error)
	Init(ctx context.Context, in *api.InitRequest, opts ...grpc.CallOption) (*api.InitResponse, error)
	Unlock(ctx context.Context, in *api.UnlockRequest, opts ...grpc.CallOption) (*api.UnlockResponse, error)
	Add(ctx context.Context, in *api.AddRequest, opts ...grpc.CallOption) (*api.AddResponse, error)
	Remove(ctx context.Context, in *api.RemoveRequest, opts ...grpc.CallOption) (*api.RemoveResponse, error)
	Code(ctx context.Context, in *api.CodeRequest, opts ...grpc.CallOption) (*api.CodeResponse, error)
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	client  vaultAPI
	timeout time.Duration
}

// NewGRPCClient prepares a connection to endpoint. No network traffic
// happens until the first call. TLS is left to the deployment.
func NewGRPCClient(endpoint string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn, client: api.NewVaultServiceClient(conn), timeout: timeout}, nil
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *GRPCClient) Status(ctx context.Context) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Status(ctx, &api.StatusRequest{})
	if err != nil {
		return false, api.FromStatus(err)
	}
	return resp.VaultExists, nil
}

func (c *GRPCClient) Init(ctx context.Context, password string, overwrite bool) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.Init(ctx, &api.InitRequest{Password: password, Overwrite: overwrite})
	return api.FromStatus(err)
}

func (c *GRPCClient) Unlock(ctx context.Context, password string) ([]vault.Account, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Unlock(ctx, &api.UnlockRequest{Password: password})
	if err != nil {
		return nil, api.FromStatus(err)
	}
	return resp.Accounts, nil
}

// Add sends req as is; req.Password must be set.
func (c *GRPCClient) Add(ctx context.Context, req *api.AddRequest) (*vault.Account, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Add(ctx, req)
	if err != nil {
		return nil, api.FromStatus(err)
	}
	return &resp.Account, nil
}

func (c *GRPCClient) Remove(ctx context.Context, password, id string) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Remove(ctx, &api.RemoveRequest{Password: password, ID: id})
	if err != nil {
		return 0, api.FromStatus(err)
	}
	return resp.Removed, nil
}

func (c *GRPCClient) Code(ctx context.Context, password, id string) (*otpx.Code, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Code(ctx, &api.CodeRequest{Password: password, ID: id})
	if err != nil {
		return nil, api.FromStatus(err)
	}
	return &otpx.Code{Code: resp.Code, SecondsRemaining: resp.Remaining}, nil
}
