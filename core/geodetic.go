package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// Toms (1996) region-1 constants for the ECEF to geodetic conversion.
const (
	tomsADC = 1.0026000
	cos67p5 = 0.38268343236508977
)

// GeodeticToECEFPos converts (lat, lon, alt) on the WGS84 ellipsoid to ECEF.
func GeodeticToECEFPos(lla model.Vec3) model.Vec3 {
	sLat, cLat := math.Sincos(lla.Lat())
	sLon, cLon := math.Sincos(lla.Lon())
	rn := WGSSemiMajorAxis / math.Sqrt(1.0-WGSEccentricitySquared*sLat*sLat)

	return model.Vec3{
		X: (rn + lla.Alt()) * cLat * cLon,
		Y: (rn + lla.Alt()) * cLat * sLon,
		Z: (rn*(1.0-WGSEccentricitySquared) + lla.Alt()) * sLat,
	}
}

// ECEFToGeodeticPos converts an ECEF position to WGS84 (lat, lon, alt) using
// Toms' closed-form region-1 method. Points on the polar axis map exactly to
// a pole; the earth's centre maps to the north pole at altitude -b.
func ECEFToGeodeticPos(ecef model.Vec3) model.Vec3 {
	x, y, z := ecef.X, ecef.Y, ecef.Z
	w2 := x*x + y*y
	w := math.Sqrt(w2)

	if w == 0 {
		lat := math.Pi / 2
		if z < 0 {
			lat = -lat
		}
		return model.Vec3{X: lat, Y: 0, Z: math.Abs(z) - WGSSemiMinorAxis}
	}

	t0 := z * tomsADC
	s0 := math.Sqrt(t0*t0 + w2)
	sinB0 := t0 / s0
	cosB0 := w / s0
	t1 := z + WGSSemiMinorAxis*WGSSecondEccentricitySq*sinB0*sinB0*sinB0
	sum := w - WGSSemiMajorAxis*WGSEccentricitySquared*cosB0*cosB0*cosB0
	s1 := math.Sqrt(t1*t1 + sum*sum)
	sinP1 := t1 / s1
	cosP1 := sum / s1
	rn := WGSSemiMajorAxis / math.Sqrt(1.0-WGSEccentricitySquared*sinP1*sinP1)

	var alt float64
	switch {
	case cosP1 >= cos67p5:
		alt = w/cosP1 - rn
	case cosP1 <= -cos67p5:
		alt = w/-cosP1 - rn
	default:
		alt = z/sinP1 + rn*(WGSEccentricitySquared-1.0)
	}

	return model.Vec3{
		X: math.Atan2(sinP1, cosP1),
		Y: math.Atan2(y, x),
		Z: alt,
	}
}

// ConvertGeodeticToECEF converts an LLA coordinate to ECEF. LLA velocity and
// acceleration are NED vectors and LLA orientation is relative to local NED.
func ConvertGeodeticToECEF(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemLLA {
		return model.Coordinate{}, fmt.Errorf("geodetic to ECEF given %s: %w", in.System(), ErrSystemMismatch)
	}
	lla := in.Position()
	out := model.NewCoordinate(model.SystemECEF, GeodeticToECEFPos(lla))
	out.SetElapsedECITime(in.ElapsedECITime())

	if !in.HasOrientation() && !in.HasVelocity() && !in.HasAcceleration() {
		return out, nil
	}
	le := LocalToEarthMatrix(lla.Lat(), lla.Lon(), model.SystemNED)
	if in.HasVelocity() {
		out.SetVelocity(le.TransposeMulVec(in.Velocity()))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(le.TransposeMulVec(in.Acceleration()))
	}
	if in.HasOrientation() {
		out.SetOrientation(orientationLocalToEarth(in.Orientation(), le))
	}
	return out, nil
}

// ConvertECEFToGeodetic converts an ECEF coordinate to LLA.
func ConvertECEFToGeodetic(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemECEF {
		return model.Coordinate{}, fmt.Errorf("ECEF to geodetic given %s: %w", in.System(), ErrSystemMismatch)
	}
	lla := ECEFToGeodeticPos(in.Position())
	out := model.NewCoordinate(model.SystemLLA, lla)
	out.SetElapsedECITime(in.ElapsedECITime())

	if !in.HasOrientation() && !in.HasVelocity() && !in.HasAcceleration() {
		return out, nil
	}
	le := LocalToEarthMatrix(lla.Lat(), lla.Lon(), model.SystemNED)
	if in.HasVelocity() {
		out.SetVelocity(le.MulVec(in.Velocity()))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(le.MulVec(in.Acceleration()))
	}
	if in.HasOrientation() {
		out.SetOrientation(orientationEarthToLocal(in.Orientation(), le))
	}
	return out, nil
}
