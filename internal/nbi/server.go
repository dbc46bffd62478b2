package nbi

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/observability"
)

// NewServer builds a gRPC server serving svc and the standard health
// service. Spans come from the otelgrpc stats handler; metrics are recorded
// when collector is non-nil.
func NewServer(svc CoordinateServiceServer, log logging.Logger, collector *observability.ConversionCollector, extra ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	interceptors := []grpc.UnaryServerInterceptor{
		RequestIDUnaryServerInterceptor(log),
		TracingUnaryServerInterceptor(),
	}
	if collector != nil {
		interceptors = append(interceptors, collector.UnaryServerInterceptor())
	}

	opts := append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	}, extra...)
	server := grpc.NewServer(opts...)

	RegisterCoordinateServiceServer(server, svc)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)

	return server, hs
}
