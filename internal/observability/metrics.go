package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Result label values for conversion metrics.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ConversionCollector bundles Prometheus metrics for the coordinate service:
// RPC counts and latency, per-system-pair conversion outcomes, MGRS
// operations and the size of the site catalog.
type ConversionCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	Conversions        *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	MGRSOperations     *prometheus.CounterVec
	Sites              prometheus.Gauge
}

// NewConversionCollector registers the service metrics against reg,
// defaulting to the global Prometheus registry when nil. Registering twice
// against the same registry returns the existing collectors.
func NewConversionCollector(reg prometheus.Registerer) (*ConversionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinate_rpc_requests_total",
		Help: "Total number of handled coordinate service RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "coordinate_rpc_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coordinate_rpc_duration_seconds",
		Help:    "Coordinate service RPC latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"service", "method"}), "coordinate_rpc_duration_seconds")
	if err != nil {
		return nil, err
	}

	conversions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinate_conversions_total",
		Help: "Coordinate conversions performed, labeled by source system, target system, and result.",
	}, []string{"from", "to", "result"}), "coordinate_conversions_total")
	if err != nil {
		return nil, err
	}

	convDuration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coordinate_conversion_duration_seconds",
		Help:    "Time spent in a single coordinate conversion.",
		Buckets: []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
	}, []string{"from", "to"}), "coordinate_conversion_duration_seconds")
	if err != nil {
		return nil, err
	}

	mgrsOps, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinate_mgrs_operations_total",
		Help: "MGRS encode and decode operations, labeled by operation and result.",
	}, []string{"op", "result"}), "coordinate_mgrs_operations_total")
	if err != nil {
		return nil, err
	}

	sites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coordinate_sites",
		Help: "Current number of reference sites in the catalog.",
	}), "coordinate_sites")
	if err != nil {
		return nil, err
	}

	return &ConversionCollector{
		gatherer:           gatherer,
		RPCRequests:        requests,
		RPCDurations:       durations,
		Conversions:        conversions,
		ConversionDuration: convDuration,
		MGRSOperations:     mgrsOps,
		Sites:              sites,
	}, nil
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *ConversionCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		code := status.Code(err).String()

		if c.RPCRequests != nil {
			c.RPCRequests.WithLabelValues(service, method, code).Inc()
		}
		if c.RPCDurations != nil {
			c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		}
		return resp, err
	}
}

// ObserveConversion records one conversion between two named systems.
func (c *ConversionCollector) ObserveConversion(from, to string, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.Conversions.WithLabelValues(from, to, resultLabel(err)).Inc()
	if err == nil {
		c.ConversionDuration.WithLabelValues(from, to).Observe(d.Seconds())
	}
}

// ObserveMGRS records an MGRS "encode" or "decode".
func (c *ConversionCollector) ObserveMGRS(op string, err error) {
	if c == nil {
		return
	}
	c.MGRSOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

// SetSiteCount satisfies kb.SiteMetricsRecorder so the catalog drives the
// gauge from its mutators.
func (c *ConversionCollector) SetSiteCount(n int) {
	if c == nil || c.Sites == nil {
		return
	}
	c.Sites.Set(float64(n))
}

// Gatherer exposes the underlying gatherer for tests and handlers.
func (c *ConversionCollector) Gatherer() prometheus.Gatherer {
	if c == nil || c.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ConversionCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Gatherer(), promhttp.HandlerOpts{})
}

func resultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

// register adds col to reg, returning the already registered collector of
// the same type when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	return register(reg, vec, name)
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	return register(reg, vec, name)
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	return register(reg, gauge, name)
}
