package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryInterceptorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/coordinate.v1.CoordinateService/Convert"}

	_, err = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("interceptor handler returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("CoordinateService", "Convert", "OK")); got != 1 {
		t.Fatalf("coordinate_rpc_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "coordinate_rpc_duration_seconds", map[string]string{
		"service": "CoordinateService",
		"method":  "Convert",
	}); count != 1 {
		t.Fatalf("coordinate_rpc_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestUnaryInterceptorRecordsErrorCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/coordinate.v1.CoordinateService/DecodeMGRS"}

	_, _ = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "boom")
	})

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("CoordinateService", "DecodeMGRS", "InvalidArgument")); got != 1 {
		t.Fatalf("coordinate_rpc_requests_total error label = %v, want 1", got)
	}
}

func TestObserveConversionAndMGRS(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	collector.ObserveConversion("LLA", "ECEF", nil, 2*time.Microsecond)
	collector.ObserveConversion("LLA", "ECEF", nil, 3*time.Microsecond)
	collector.ObserveConversion("LLA", "NED", errors.New("origin"), 0)
	collector.ObserveMGRS("decode", nil)
	collector.ObserveMGRS("decode", errors.New("bad"))

	if got := testutil.ToFloat64(collector.Conversions.WithLabelValues("LLA", "ECEF", ResultOK)); got != 2 {
		t.Fatalf("conversions ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Conversions.WithLabelValues("LLA", "NED", ResultError)); got != 1 {
		t.Fatalf("conversions error = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "coordinate_conversion_duration_seconds", map[string]string{
		"from": "LLA", "to": "NED",
	}); count != 0 {
		t.Fatalf("failed conversions should not be timed, got %d samples", count)
	}
	if got := testutil.ToFloat64(collector.MGRSOperations.WithLabelValues("decode", ResultError)); got != 1 {
		t.Fatalf("mgrs decode errors = %v, want 1", got)
	}
}

func TestNewConversionCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("first NewConversionCollector: %v", err)
	}
	b, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("second NewConversionCollector: %v", err)
	}
	a.SetSiteCount(4)
	if got := testutil.ToFloat64(b.Sites); got != 4 {
		t.Fatalf("shared sites gauge = %v, want 4", got)
	}
}

func TestMetricsHandlerExposesSiteGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}
	collector.SetSiteCount(3)
	collector.RPCRequests.WithLabelValues("svc", "method", "OK").Inc()
	collector.ObserveConversion("ECEF", "ECI", nil, time.Microsecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"coordinate_rpc_requests_total",
		"coordinate_conversions_total",
		"coordinate_conversion_duration_seconds",
		"coordinate_sites 3",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestTrackCollectorObserveSample(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewTrackCollector(reg)
	if err != nil {
		t.Fatalf("NewTrackCollector: %v", err)
	}
	c.ObserveSample(10*time.Microsecond, 12.5, true, nil)
	c.ObserveSample(0, 0, false, errors.New("diverged"))

	if got := testutil.ToFloat64(c.Elevation); got != 12.5 {
		t.Fatalf("elevation = %v, want 12.5", got)
	}
	if got := testutil.ToFloat64(c.Visible); got != 1 {
		t.Fatalf("visible = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Samples.WithLabelValues(ResultError)); got != 1 {
		t.Fatalf("error samples = %v, want 1", got)
	}

	var nilCollector *TrackCollector
	nilCollector.ObserveSample(0, 0, false, nil)
}

func TestSplitMethod(t *testing.T) {
	tests := []struct {
		in, service, method string
	}{
		{"/coordinate.v1.CoordinateService/Convert", "CoordinateService", "Convert"},
		{"/grpc.health.v1.Health/Check", "Health", "Check"},
		{"", "unknown", "unknown"},
		{"noslash", "unknown", "unknown"},
	}
	for _, tt := range tests {
		s, m := SplitMethod(tt.in)
		if s != tt.service || m != tt.method {
			t.Fatalf("SplitMethod(%q) = %s, %s; want %s, %s", tt.in, s, m, tt.service, tt.method)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
