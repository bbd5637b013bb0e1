// Package api defines the vault's gRPC surface without generated code:
// plain Go request/response structs carried by a JSON codec, a hand-written
// grpc.ServiceDesc and a matching client.
package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "totpvault.VaultService"

// FullMethod returns the gRPC method path for name, e.g.
// "/totpvault.VaultService/Code".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// VaultServiceServer is implemented by the gRPC server.
type VaultServiceServer interface {
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	Init(context.Context, *InitRequest) (*InitResponse, error)
	Unlock(context.Context, *UnlockRequest) (*UnlockResponse, error)
	Add(context.Context, *AddRequest) (*AddResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
	Code(context.Context, *CodeRequest) (*CodeResponse, error)
}

// RegisterVaultServiceServer registers srv on s.
func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes VaultService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Status", VaultServiceServer.Status),
		unary("Init", VaultServiceServer.Init),
		unary("Unlock", VaultServiceServer.Unlock),
		unary("Add", VaultServiceServer.Add),
		unary("Remove", VaultServiceServer.Remove),
		unary("Code", VaultServiceServer.Code),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "totpvault/vault.json",
}

// VaultServiceClient calls VaultService. Errors are returned as gRPC status
// errors; use FromStatus to recover the domain error.
type VaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) *VaultServiceClient {
	return &VaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VaultServiceClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "Status", in, opts)
}

func (c *VaultServiceClient) Init(ctx context.Context, in *InitRequest, opts ...grpc.CallOption) (*InitResponse, error) {
	return invoke[InitResponse](ctx, c.cc, "Init", in, opts)
}

func (c *VaultServiceClient) Unlock(ctx context.Context, in *UnlockRequest, opts ...grpc.CallOption) (*UnlockResponse, error) {
	return invoke[UnlockResponse](ctx, c.cc, "Unlock", in, opts)
}

func (c *VaultServiceClient) Add(ctx context.Context, in *AddRequest, opts ...grpc.CallOption) (*AddResponse, error) {
	return invoke[AddResponse](ctx, c.cc, "Add", in, opts)
}

func (c *VaultServiceClient) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	return invoke[RemoveResponse](ctx, c.cc, "Remove", in, opts)
}

func (c *VaultServiceClient) Code(ctx context.Context, in *CodeRequest, opts ...grpc.CallOption) (*CodeResponse, error) {
	return invoke[CodeResponse](ctx, c.cc, "Code", in, opts)
}
