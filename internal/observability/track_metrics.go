package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TrackCollector exposes metrics for the satellite tracking loop that turns
// SGP4 samples into look angles from a site.
type TrackCollector struct {
	gatherer prometheus.Gatherer

	PropagationDuration prometheus.Histogram
	Samples             *prometheus.CounterVec
	Elevation           prometheus.Gauge
	Visible             prometheus.Gauge
}

// NewTrackCollector registers tracking metrics against the provided registerer.
func NewTrackCollector(reg prometheus.Registerer) (*TrackCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	propagation, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coordinate_track_propagation_duration_seconds",
		Help:    "Duration of one SGP4 propagation and conversion to look angles.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3},
	}), "coordinate_track_propagation_duration_seconds")
	if err != nil {
		return nil, err
	}

	samples, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinate_track_samples_total",
		Help: "Tracking samples produced, labeled by result.",
	}, []string{"result"}), "coordinate_track_samples_total")
	if err != nil {
		return nil, err
	}

	elevation, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coordinate_track_elevation_degrees",
		Help: "Elevation of the tracked object above the site's horizon at the latest sample.",
	}), "coordinate_track_elevation_degrees")
	if err != nil {
		return nil, err
	}

	visible, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coordinate_track_visible",
		Help: "1 when the tracked object is above the site's elevation mask, else 0.",
	}), "coordinate_track_visible")
	if err != nil {
		return nil, err
	}

	return &TrackCollector{
		gatherer:            gatherer,
		PropagationDuration: propagation,
		Samples:             samples,
		Elevation:           elevation,
		Visible:             visible,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *TrackCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveSample records one tracking sample. elevationDeg and visible are
// ignored when err is non-nil.
func (c *TrackCollector) ObserveSample(d time.Duration, elevationDeg float64, visible bool, err error) {
	if c == nil {
		return
	}
	c.Samples.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return
	}
	c.PropagationDuration.Observe(d.Seconds())
	c.Elevation.Set(elevationDeg)
	if visible {
		c.Visible.Set(1)
	} else {
		c.Visible.Set(0)
	}
}
