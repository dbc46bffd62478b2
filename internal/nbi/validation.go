package nbi

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/signalsfoundry/coordinate-engine/internal/nbi/types"
	"github.com/signalsfoundry/coordinate-engine/internal/track"
	"github.com/signalsfoundry/coordinate-engine/model"
)

// ParseOutputSystem resolves the requested output system.
func ParseOutputSystem(name string) (model.System, error) {
	if strings.TrimSpace(name) == "" {
		return model.SystemNone, fmt.Errorf("%w: output system is required", ErrInvalidRequest)
	}
	sys, err := model.ParseSystem(name)
	if err != nil {
		return model.SystemNone, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if sys == model.SystemNone {
		return model.SystemNone, fmt.Errorf("%w: output system NONE", ErrInvalidRequest)
	}
	return sys, nil
}

// ValidateFrame checks that at most one of site_id and origin is given.
func ValidateFrame(f types.Frame) error {
	if f.SiteID != "" && f.Origin != nil {
		return fmt.Errorf("%w: site_id and origin are mutually exclusive", ErrInvalidRequest)
	}
	if f.Origin != nil {
		if err := f.Origin.Site().Validate(); err != nil {
			return fmt.Errorf("%w: origin: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

// ValidateBatchSize bounds a batch to [1, limit].
func ValidateBatchSize(n, limit int) error {
	if n == 0 {
		return fmt.Errorf("%w: inputs are required", ErrInvalidRequest)
	}
	if n > limit {
		return fmt.Errorf("%w: %d inputs exceed the limit of %d", ErrInvalidRequest, n, limit)
	}
	return nil
}

// ValidateMGRSEncode checks the encode request's ranges.
func ValidateMGRSEncode(req *types.EncodeMGRSRequest) error {
	if math.IsNaN(req.LatDeg) || req.LatDeg < -90 || req.LatDeg > 90 {
		return fmt.Errorf("%w: lat_deg %v outside [-90, 90]", ErrInvalidRequest, req.LatDeg)
	}
	if math.IsNaN(req.LonDeg) || math.IsInf(req.LonDeg, 0) {
		return fmt.Errorf("%w: lon_deg %v is not finite", ErrInvalidRequest, req.LonDeg)
	}
	if req.Precision < 0 || req.Precision > 5 {
		return fmt.Errorf("%w: precision %d outside [0, 5]", ErrInvalidRequest, req.Precision)
	}
	return nil
}

// TrackWindow is a validated sampling window.
type TrackWindow struct {
	Start time.Time
	Step  time.Duration
	Count int
}

// ValidateTrackRequest parses the window of a track request. An empty start
// means now.
func ValidateTrackRequest(req *types.TrackRequest, maxSamples int, now time.Time) (TrackWindow, error) {
	if strings.TrimSpace(req.TLELine1) == "" || strings.TrimSpace(req.TLELine2) == "" {
		return TrackWindow{}, fmt.Errorf("%w: both TLE lines are required", ErrInvalidRequest)
	}
	w := TrackWindow{Start: now.UTC(), Count: req.Count}
	if req.Start != "" {
		t, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			return TrackWindow{}, fmt.Errorf("%w: start: %v", ErrInvalidRequest, err)
		}
		w.Start = t.UTC()
	}
	if math.IsNaN(req.StepSeconds) || req.StepSeconds <= 0 {
		return TrackWindow{}, fmt.Errorf("%w: step_seconds must be positive", ErrInvalidRequest)
	}
	if req.StepSeconds*float64(time.Second) >= math.MaxInt64 {
		return TrackWindow{}, fmt.Errorf("%w: step_seconds %v is too large", ErrInvalidRequest, req.StepSeconds)
	}
	w.Step = time.Duration(req.StepSeconds * float64(time.Second))
	if w.Step <= 0 {
		return TrackWindow{}, fmt.Errorf("%w: step_seconds %v is below a nanosecond", ErrInvalidRequest, req.StepSeconds)
	}
	if w.Count <= 0 || w.Count > maxSamples {
		return TrackWindow{}, fmt.Errorf("%w: count %d outside [1, %d]", ErrInvalidRequest, w.Count, maxSamples)
	}
	if _, err := track.Span(w.Step, w.Count); err != nil {
		return TrackWindow{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.ElevationMaskDeg < -90 || req.ElevationMaskDeg > 90 {
		return TrackWindow{}, fmt.Errorf("%w: elevation_mask_deg %v outside [-90, 90]", ErrInvalidRequest, req.ElevationMaskDeg)
	}
	return w, ValidateFrame(req.Frame)
}
