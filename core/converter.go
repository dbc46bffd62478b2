package core

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/model"
)

// OriginStatus describes the state of a converter's reference origin.
type OriginStatus int

const (
	OriginNotSet OriginStatus = iota
	OriginSet
	// OriginDegenerate means the origin is within poleTolerance of a pole,
	// where flat-earth scaling is undefined.
	OriginDegenerate
)

func (s OriginStatus) String() string {
	switch s {
	case OriginNotSet:
		return "NOT_SET"
	case OriginSet:
		return "SET"
	case OriginDegenerate:
		return "DEGENERATE"
	default:
		return fmt.Sprintf("OriginStatus(%d)", int(s))
	}
}

// CoordinateConverter converts Coordinates between the supported systems.
// It holds the reference origin used by the flat-earth (NED, NWU, ENU) and
// tangent-plane (XEAST, GTP) systems plus quantities derived from it.
//
// A converter is not safe for concurrent use while its origin or offsets
// are being changed; Clone gives each goroutine its own copy.
type CoordinateConverter struct {
	log logging.Logger

	origin       model.Vec3
	originStatus OriginStatus

	// Local earth radii at the origin, used by the flat-earth systems.
	latRadius    float64
	lonRadius    float64
	invLatRadius float64
	invLonRadius float64

	rotationNED Matrix3
	rotationENU Matrix3
	// ECEF position of the tangent point.
	tangentPlaneTranslation model.Vec3

	tpOffsetX   float64
	tpOffsetY   float64
	tpRotation  float64
	sinTPRotate float64
	cosTPRotate float64
}

// ConverterOption customises a CoordinateConverter.
type ConverterOption func(*CoordinateConverter)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logging.Logger) ConverterOption {
	return func(c *CoordinateConverter) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCoordinateConverter returns a converter with no reference origin.
func NewCoordinateConverter(opts ...ConverterOption) *CoordinateConverter {
	c := &CoordinateConverter{
		log:         logging.Noop(),
		cosTPRotate: 1,
		rotationNED: Identity3(),
		rotationENU: Identity3(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone returns an independent copy including every cached matrix.
func (c *CoordinateConverter) Clone() *CoordinateConverter {
	cp := *c
	return &cp
}

// SetReferenceOrigin sets the tangent point (radians, radians, metres) and
// recomputes the derived state. Setting the current origin again is a no-op.
func (c *CoordinateConverter) SetReferenceOrigin(lat, lon, alt float64) {
	origin := model.Vec3{X: lat, Y: lon, Z: alt}
	if c.originStatus != OriginNotSet && origin == c.origin {
		return
	}
	c.origin = origin

	sLat, cLat := math.Sincos(lat)
	x := 1.0 - WGSEccentricitySquared*sLat*sLat
	rn := WGSSemiMajorAxis / math.Sqrt(x)
	c.latRadius = rn * (1.0 - WGSEccentricitySquared) / x
	c.lonRadius = rn * cLat

	if math.Abs(lat) > math.Pi/2-poleTolerance {
		c.originStatus = OriginDegenerate
		c.invLatRadius = 0
		c.invLonRadius = 0
	} else {
		c.originStatus = OriginSet
		c.invLatRadius = 1.0 / c.latRadius
		c.invLonRadius = 1.0 / c.lonRadius
	}

	c.rotationNED = LocalToEarthMatrix(lat, lon, model.SystemNED)
	c.rotationENU = LocalToEarthMatrix(lat, lon, model.SystemENU)
	c.tangentPlaneTranslation = GeodeticToECEFPos(origin)
}

// SetReferenceOriginDegrees is SetReferenceOrigin with latitude and
// longitude in degrees.
func (c *CoordinateConverter) SetReferenceOriginDegrees(latDeg, lonDeg, alt float64) {
	c.SetReferenceOrigin(DegToRad(latDeg), DegToRad(lonDeg), alt)
}

// ReferenceOrigin returns the current origin in radians/metres.
func (c *CoordinateConverter) ReferenceOrigin() model.Vec3 { return c.origin }

// ReferenceOriginStatus reports whether an origin is set and usable.
func (c *CoordinateConverter) ReferenceOriginStatus() OriginStatus { return c.originStatus }

// LocalRadii returns the meridional and longitudinal scaling radii used by
// the flat-earth systems.
func (c *CoordinateConverter) LocalRadii() (latRadius, lonRadius float64) {
	return c.latRadius, c.lonRadius
}

// SetTangentPlaneOffsets sets the GTP origin (metres, in XEAST) and the
// clockwise rotation (radians) of the GTP axes relative to XEAST.
func (c *CoordinateConverter) SetTangentPlaneOffsets(x, y, rotation float64) {
	c.tpOffsetX = x
	c.tpOffsetY = y
	c.tpRotation = rotation
	c.sinTPRotate, c.cosTPRotate = math.Sincos(rotation)
}

// TangentPlaneOffsets returns the GTP offsets and rotation.
func (c *CoordinateConverter) TangentPlaneOffsets() (x, y, rotation float64) {
	return c.tpOffsetX, c.tpOffsetY, c.tpRotation
}

// Convert converts in to outSystem and returns the result.
func (c *CoordinateConverter) Convert(in model.Coordinate, outSystem model.System) (model.Coordinate, error) {
	var out model.Coordinate
	if err := c.convert(in, &out, outSystem); err != nil {
		return model.Coordinate{}, err
	}
	return out, nil
}

// ConvertInto converts *in to outSystem and stores the result in *out. Any
// content in *out is discarded, also on failure. in and out must differ.
func (c *CoordinateConverter) ConvertInto(in, out *model.Coordinate, outSystem model.System) error {
	if in == nil || out == nil {
		return fmt.Errorf("nil coordinate: %w", ErrUnsupportedConversion)
	}
	if in == out {
		return ErrAliasedCoordinate
	}
	return c.convert(*in, out, outSystem)
}

func (c *CoordinateConverter) convert(in model.Coordinate, out *model.Coordinate, outSystem model.System) error {
	out.Clear()
	if in.System() == outSystem {
		*out = in
		return nil
	}

	route, ok := routeFor(in.System(), outSystem)
	if !ok {
		return fmt.Errorf("%s to %s: %w", in.System(), outSystem, ErrUnsupportedConversion)
	}

	cur := in
	for _, next := range route {
		step := conversionSteps[edge{from: cur.System(), to: next}]
		res, err := step(c, cur)
		if err != nil {
			return fmt.Errorf("%s to %s: %w", cur.System(), next, err)
		}
		cur = res
	}
	*out = cur
	return nil
}

// requireOrigin checks the origin state for a conversion into or out of sys.
func (c *CoordinateConverter) requireOrigin(sys model.System) error {
	switch c.originStatus {
	case OriginNotSet:
		c.log.Warn(context.Background(), "conversion requires a reference origin",
			logging.String("system", sys.String()))
		return ErrReferenceOriginNotSet
	case OriginDegenerate:
		if sys.IsFlatEarth() {
			c.log.Warn(context.Background(), "reference origin too close to a pole for flat-earth conversion",
				logging.String("system", sys.String()),
				logging.Float("origin_lat_deg", RadToDeg(c.origin.Lat())))
			return ErrDegenerateOrigin
		}
	}
	return nil
}
