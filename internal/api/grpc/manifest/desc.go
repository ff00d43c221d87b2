package manifest

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "releasemanifest.v1.ManifestService"

// Method names of ManifestService.
const (
	MethodGenerate        = "Generate"
	MethodListProfiles    = "ListProfiles"
	MethodGetProfile      = "GetProfile"
	MethodUpsertProfile   = "UpsertProfile"
	MethodReplaceProfiles = "ReplaceProfiles"
	MethodDeleteProfile   = "DeleteProfile"
	MethodResolveTag      = "ResolveTag"
	MethodListTags        = "ListTags"
	MethodResolveArtifact = "ResolveArtifact"
	MethodGetItem         = "GetItem"
)

// FullMethod returns the wire path of a ManifestService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ManifestServiceServer is the server API of ManifestService.
type ManifestServiceServer interface {
	Generate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListProfiles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpsertProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ReplaceProfiles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ResolveTag(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListTags(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ResolveArtifact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv ManifestServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes ManifestService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Mirrors generated service descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ManifestServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodGenerate, ManifestServiceServer.Generate),
		unary(MethodListProfiles, ManifestServiceServer.ListProfiles),
		unary(MethodGetProfile, ManifestServiceServer.GetProfile),
		unary(MethodUpsertProfile, ManifestServiceServer.UpsertProfile),
		unary(MethodReplaceProfiles, ManifestServiceServer.ReplaceProfiles),
		unary(MethodDeleteProfile, ManifestServiceServer.DeleteProfile),
		unary(MethodResolveTag, ManifestServiceServer.ResolveTag),
		unary(MethodListTags, ManifestServiceServer.ListTags),
		unary(MethodResolveArtifact, ManifestServiceServer.ResolveArtifact),
		unary(MethodGetItem, ManifestServiceServer.GetItem),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "releasemanifest/v1/manifest.proto",
}

// RegisterManifestServiceServer registers srv on s.
func RegisterManifestServiceServer(s grpc.ServiceRegistrar, srv ManifestServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			if interceptor == nil {
				return call(srv.(ManifestServiceServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ManifestServiceServer), ctx, req.(*structpb.Struct))
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

// ManifestServiceClient is the client API of ManifestService.
type ManifestServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewManifestServiceClient creates a client over cc.
func NewManifestServiceClient(cc grpc.ClientConnInterface) *ManifestServiceClient {
	return &ManifestServiceClient{cc: cc}
}

// Call invokes method with req and returns the response document.
func (c *ManifestServiceClient) Call(
	ctx context.Context,
	method string,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	if req == nil {
		req = new(structpb.Struct)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
