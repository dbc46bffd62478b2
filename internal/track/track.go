// Package track samples a motion model over a time window and expresses
// each sample in a chosen coordinate system, optionally with look angles
// from a reference site.
package track

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/observability"
	"github.com/signalsfoundry/coordinate-engine/model"
	"github.com/signalsfoundry/coordinate-engine/timectrl"
)

// ErrInvalidWindow is returned when the sampling window is empty, its
// step is not positive, or its span does not fit in a time.Duration.
var ErrInvalidWindow = errors.New("invalid sampling window")

// Span returns the time covered by count samples spaced by step.
func Span(step time.Duration, count int) (time.Duration, error) {
	if count <= 0 || step <= 0 {
		return 0, fmt.Errorf("%w: count %d, step %s", ErrInvalidWindow, count, step)
	}
	if count > 1 && step > time.Duration(math.MaxInt64)/time.Duration(count-1) {
		return 0, fmt.Errorf("%w: %d samples of %s overflow the window", ErrInvalidWindow, count, step)
	}
	return time.Duration(count-1) * step, nil
}

// Look holds look angles from the converter's reference origin, in radians
// and metres.
type Look struct {
	Azimuth   float64
	Elevation float64
	Range     float64
	Visible   bool
}

// Sample is one point of a track.
type Sample struct {
	Time       time.Time
	Coordinate model.Coordinate
	// Look is nil when the sampler has no reference origin.
	Look *Look
}

// Sampler turns motion model states into converted samples.
type Sampler struct {
	Model     core.MotionModel
	Converter *core.CoordinateConverter
	Output    model.System
	// ElevationMask is the minimum elevation, in radians, counted as visible.
	ElevationMask float64

	Metrics *observability.TrackCollector
	Log     logging.Logger
}

// Run samples count points starting at start and spaced by step. The first
// sample is taken at start; the rest follow the ticks of an accelerated
// time controller.
func (s *Sampler) Run(ctx context.Context, start time.Time, step time.Duration, count int) ([]Sample, error) {
	span, err := Span(step, count)
	if err != nil {
		return nil, err
	}
	if s.Model == nil {
		return nil, errors.New("sampler has no motion model")
	}
	conv := s.Converter
	if conv == nil {
		conv = core.NewCoordinateConverter()
	}
	log := s.Log
	if log == nil {
		log = logging.Noop()
	}
	withLook := conv.ReferenceOriginStatus() != core.OriginNotSet

	samples := make([]Sample, 0, count)
	first, err := s.sample(conv, start, withLook)
	if err != nil {
		return nil, err
	}
	samples = append(samples, first)
	if count == 1 {
		return samples, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runErr error
	tc := timectrl.NewTimeController(start, step, timectrl.Accelerated)
	tc.AddListener(func(now time.Time) {
		if runErr != nil {
			return
		}
		smp, err := s.sample(conv, now, withLook)
		if err != nil {
			runErr = err
			cancel()
			return
		}
		samples = append(samples, smp)
	})
	<-tc.StartContext(runCtx, span)

	if runErr != nil {
		return nil, runErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug(ctx, "track sampled",
		logging.Int("samples", len(samples)),
		logging.String("output", s.Output.String()),
		logging.Duration("step", step),
	)
	return samples, nil
}

func (s *Sampler) sample(conv *core.CoordinateConverter, at time.Time, withLook bool) (Sample, error) {
	began := time.Now()
	eci, err := s.Model.CoordinateAt(at)
	if err != nil {
		s.Metrics.ObserveSample(0, 0, false, err)
		return Sample{}, fmt.Errorf("propagate to %s: %w", at.Format(time.RFC3339), err)
	}

	out, err := conv.Convert(eci, s.Output)
	if err != nil {
		s.Metrics.ObserveSample(0, 0, false, err)
		return Sample{}, fmt.Errorf("sample at %s: %w", at.Format(time.RFC3339), err)
	}

	smp := Sample{Time: at, Coordinate: out}
	if withLook {
		xeast, err := conv.Convert(eci, model.SystemXEast)
		if err != nil {
			s.Metrics.ObserveSample(0, 0, false, err)
			return Sample{}, fmt.Errorf("look angles at %s: %w", at.Format(time.RFC3339), err)
		}
		az, el, rng := core.LookAngles(xeast.Position())
		smp.Look = &Look{Azimuth: az, Elevation: el, Range: rng, Visible: el >= s.ElevationMask}
		s.Metrics.ObserveSample(time.Since(began), core.RadToDeg(el), smp.Look.Visible, nil)
	} else {
		s.Metrics.ObserveSample(time.Since(began), 0, false, nil)
	}
	return smp, nil
}
