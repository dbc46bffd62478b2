package nbi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/observability"
	"github.com/signalsfoundry/coordinate-engine/model"
)

const tracerName = "github.com/signalsfoundry/coordinate-engine/internal/nbi"

// TracingUnaryServerInterceptor names the RPC span "Coordinate/<service>/<method>"
// and tags it with the RPC and request identifiers. The otelgrpc stats
// handler normally owns the span; without it the interceptor opens one.
func TracingUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	tracer := otel.Tracer(tracerName)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		svc, rpc := observability.SplitMethod(info.FullMethod)
		name := fmt.Sprintf("Coordinate/%s/%s", svc, rpc)

		span := trace.SpanFromContext(ctx)
		owned := !span.SpanContext().IsValid()
		if owned {
			ctx, span = tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
		} else {
			span.SetName(name)
		}

		span.SetAttributes(
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.service", svc),
			attribute.String("rpc.method", rpc),
		)
		if id := logging.RequestIDFromContext(ctx); id != "" {
			span.SetAttributes(attribute.String("coordinate.request_id", id))
		}

		resp, err := handler(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return resp, err
	}
}

// StartConversionSpan starts a child span around one conversion. siteID is
// optional.
func StartConversionSpan(ctx context.Context, from, to model.System, siteID string, extra ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	attrs := make([]attribute.KeyValue, 0, len(extra)+3)
	attrs = append(attrs,
		attribute.String("coordinate.from", from.String()),
		attribute.String("coordinate.to", to.String()),
	)
	if siteID != "" {
		attrs = append(attrs, attribute.String("coordinate.site_id", siteID))
	}
	attrs = append(attrs, extra...)
	return tracer.Start(ctx, fmt.Sprintf("convert %s to %s", from, to), trace.WithAttributes(attrs...))
}

// StartChildSpan starts a child span for other internal operations.
func StartChildSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
