package nbi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/signalsfoundry/coordinate-engine/internal/nbi/types"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "coordinate.v1.CoordinateService"

const (
	CoordinateService_Convert_FullMethodName      = "/" + ServiceName + "/Convert"
	CoordinateService_ConvertBatch_FullMethodName = "/" + ServiceName + "/ConvertBatch"
	CoordinateService_DecodeMGRS_FullMethodName   = "/" + ServiceName + "/DecodeMGRS"
	CoordinateService_EncodeMGRS_FullMethodName   = "/" + ServiceName + "/EncodeMGRS"
	CoordinateService_ListSystems_FullMethodName  = "/" + ServiceName + "/ListSystems"
	CoordinateService_PutSite_FullMethodName      = "/" + ServiceName + "/PutSite"
	CoordinateService_GetSite_FullMethodName      = "/" + ServiceName + "/GetSite"
	CoordinateService_ListSites_FullMethodName    = "/" + ServiceName + "/ListSites"
	CoordinateService_DeleteSite_FullMethodName   = "/" + ServiceName + "/DeleteSite"
	CoordinateService_Track_FullMethodName        = "/" + ServiceName + "/Track"
)

// CoordinateServiceServer is the server API of the coordinate service.
type CoordinateServiceServer interface {
	Convert(context.Context, *types.ConvertRequest) (*types.ConvertResponse, error)
	ConvertBatch(context.Context, *types.ConvertBatchRequest) (*types.ConvertBatchResponse, error)
	DecodeMGRS(context.Context, *types.DecodeMGRSRequest) (*types.DecodeMGRSResponse, error)
	EncodeMGRS(context.Context, *types.EncodeMGRSRequest) (*types.EncodeMGRSResponse, error)
	ListSystems(context.Context, *emptypb.Empty) (*types.ListSystemsResponse, error)
	PutSite(context.Context, *types.PutSiteRequest) (*types.PutSiteResponse, error)
	GetSite(context.Context, *types.SiteRequest) (*types.SiteMessage, error)
	ListSites(context.Context, *emptypb.Empty) (*types.ListSitesResponse, error)
	DeleteSite(context.Context, *types.SiteRequest) (*emptypb.Empty, error)
	Track(context.Context, *types.TrackRequest) (*types.TrackResponse, error)
}

// RegisterCoordinateServiceServer registers srv on s.
func RegisterCoordinateServiceServer(s grpc.ServiceRegistrar, srv CoordinateServiceServer) {
	s.RegisterService(&CoordinateService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(CoordinateServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CoordinateServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CoordinateServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CoordinateService_ServiceDesc describes the service for grpc.Server.
var CoordinateService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CoordinateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Convert", Handler: unaryHandler(CoordinateService_Convert_FullMethodName, CoordinateServiceServer.Convert)},
		{MethodName: "ConvertBatch", Handler: unaryHandler(CoordinateService_ConvertBatch_FullMethodName, CoordinateServiceServer.ConvertBatch)},
		{MethodName: "DecodeMGRS", Handler: unaryHandler(CoordinateService_DecodeMGRS_FullMethodName, CoordinateServiceServer.DecodeMGRS)},
		{MethodName: "EncodeMGRS", Handler: unaryHandler(CoordinateService_EncodeMGRS_FullMethodName, CoordinateServiceServer.EncodeMGRS)},
		{MethodName: "ListSystems", Handler: unaryHandler(CoordinateService_ListSystems_FullMethodName, CoordinateServiceServer.ListSystems)},
		{MethodName: "PutSite", Handler: unaryHandler(CoordinateService_PutSite_FullMethodName, CoordinateServiceServer.PutSite)},
		{MethodName: "GetSite", Handler: unaryHandler(CoordinateService_GetSite_FullMethodName, CoordinateServiceServer.GetSite)},
		{MethodName: "ListSites", Handler: unaryHandler(CoordinateService_ListSites_FullMethodName, CoordinateServiceServer.ListSites)},
		{MethodName: "DeleteSite", Handler: unaryHandler(CoordinateService_DeleteSite_FullMethodName, CoordinateServiceServer.DeleteSite)},
		{MethodName: "Track", Handler: unaryHandler(CoordinateService_Track_FullMethodName, CoordinateServiceServer.Track)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coordinate/v1/coordinate.proto",
}

// CoordinateServiceClient calls the coordinate service over a connection.
// Every call uses the JSON codec.
type CoordinateServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCoordinateServiceClient wraps cc.
func NewCoordinateServiceClient(cc grpc.ClientConnInterface) *CoordinateServiceClient {
	return &CoordinateServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CoordinateServiceClient) Convert(ctx context.Context, in *types.ConvertRequest, opts ...grpc.CallOption) (*types.ConvertResponse, error) {
	return invoke[types.ConvertResponse](ctx, c.cc, CoordinateService_Convert_FullMethodName, in, opts)
}

func (c *CoordinateServiceClient) ConvertBatch(ctx context.Context, in *types.ConvertBatchRequest, opts ...grpc.CallOption) (*types.ConvertBatchResponse, error) {
	return invoke[types.ConvertBatchResponse](ctx, c.cc, CoordinateService_ConvertBatch_FullMethodName, in, opts)
}

func (c *CoordinateServiceClient) DecodeMGRS(ctx context.Context, in *types.DecodeMGRSRequest, opts ...grpc.CallOption) (*types.DecodeMGRSResponse, error) {
	return invoke[types.DecodeMGRSResponse](ctx, c.cc, CoordinateService_DecodeMGRS_FullMethodName, in, opts)
}

func (c *CoordinateServiceClient) EncodeMGRS(ctx context.Context, in *types.EncodeMGRSRequest, opts ...grpc.CallOption) (*types.EncodeMGRSResponse, error) {
	return invoke[types.EncodeMGRSResponse](ctx, c.cc, CoordinateService_EncodeMGRS_FullMethodName, in, opts)
}

func (c *CoordinateServiceClient) ListSystems(ctx context.Context, opts ...grpc.CallOption) (*types.ListSystemsResponse, error) {
	return invoke[types.ListSystemsResponse](ctx, c.cc, CoordinateService_ListSystems_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *CoordinateServiceClient) PutSite(ctx context.Context, in *types.PutSiteRequest, opts ...grpc.CallOption) (*types.PutSiteResponse, error) {
	return invoke[types.PutSiteResponse](ctx, c.cc, CoordinateService_PutSite_FullMethodName, in, opts)
}

func (c *CoordinateServiceClient) GetSite(ctx context.Context, in *types.SiteRequest, opts ...grpc.CallOption) (*types.SiteMessage, error) {
	return invoke[types.SiteMessage](ctx, c.cc, CoordinateService_GetSite_FullMethodName, in, opts)
}

func (c *CoordinateServiceClient) ListSites(ctx context.Context, opts ...grpc.CallOption) (*types.ListSitesResponse, error) {
	return invoke[types.ListSitesResponse](ctx, c.cc, CoordinateService_ListSites_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *CoordinateServiceClient) DeleteSite(ctx context.Context, in *types.SiteRequest, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, CoordinateService_DeleteSite_FullMethodName, in, opts)
	return err
}

func (c *CoordinateServiceClient) Track(ctx context.Context, in *types.TrackRequest, opts ...grpc.CallOption) (*types.TrackResponse, error) {
	return invoke[types.TrackResponse](ctx, c.cc, CoordinateService_Track_FullMethodName, in, opts)
}
