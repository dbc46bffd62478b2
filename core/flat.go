package core

import (
	"fmt"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// SwapNEDENU swaps a vector between NED and ENU. It is its own inverse.
func SwapNEDENU(v model.Vec3) model.Vec3 {
	return model.Vec3{X: v.Y, Y: v.X, Z: -v.Z}
}

// SwapNEDNWU swaps a vector between NED and NWU. It is its own inverse.
func SwapNEDNWU(v model.Vec3) model.Vec3 {
	return model.Vec3{X: v.X, Y: -v.Y, Z: -v.Z}
}

// ConvertNWUToENU maps an NWU vector to ENU.
func ConvertNWUToENU(v model.Vec3) model.Vec3 {
	return model.Vec3{X: -v.Y, Y: v.X, Z: v.Z}
}

// ConvertENUToNWU maps an ENU vector to NWU.
func ConvertENUToNWU(v model.Vec3) model.Vec3 {
	return model.Vec3{X: v.Y, Y: -v.X, Z: v.Z}
}

// flatVector maps a vector between two flat-earth frames.
func flatVector(v model.Vec3, from, to model.System) model.Vec3 {
	switch {
	case from == to:
		return v
	case from == model.SystemNED && to == model.SystemENU, from == model.SystemENU && to == model.SystemNED:
		return SwapNEDENU(v)
	case from == model.SystemNED && to == model.SystemNWU, from == model.SystemNWU && to == model.SystemNED:
		return SwapNEDNWU(v)
	case from == model.SystemNWU && to == model.SystemENU:
		return ConvertNWUToENU(v)
	default: // ENU to NWU
		return ConvertENUToNWU(v)
	}
}

// ConvertFlatToFlat converts between NED, NWU and ENU by permuting axes.
// No reference origin is needed. Orientation is always relative to local
// NED and is copied unchanged.
func ConvertFlatToFlat(in model.Coordinate, frame model.System) (model.Coordinate, error) {
	if !in.System().IsFlatEarth() || !frame.IsFlatEarth() {
		return model.Coordinate{}, fmt.Errorf("flat to flat given %s to %s: %w", in.System(), frame, ErrSystemMismatch)
	}
	from := in.System()
	out := model.NewCoordinate(frame, flatVector(in.Position(), from, frame))
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasOrientation() {
		out.SetOrientation(in.Orientation())
	}
	if in.HasVelocity() {
		out.SetVelocity(flatVector(in.Velocity(), from, frame))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(flatVector(in.Acceleration(), from, frame))
	}
	return out, nil
}

// ConvertGeodeticToFlat projects an LLA coordinate onto the flat-earth frame
// centred on the reference origin, scaling angular offsets by the local
// earth radii. Accuracy falls off with distance from the origin.
func (c *CoordinateConverter) ConvertGeodeticToFlat(in model.Coordinate, frame model.System) (model.Coordinate, error) {
	if in.System() != model.SystemLLA || !frame.IsFlatEarth() {
		return model.Coordinate{}, fmt.Errorf("geodetic to flat given %s to %s: %w", in.System(), frame, ErrSystemMismatch)
	}
	if err := c.requireOrigin(frame); err != nil {
		return model.Coordinate{}, err
	}

	lla := in.Position()
	ned := model.Vec3{
		X: (lla.Lat() - c.origin.Lat()) * c.latRadius,
		Y: angFixPI(lla.Lon()-c.origin.Lon()) * c.lonRadius,
		Z: -(lla.Alt() - c.origin.Alt()),
	}

	out := model.NewCoordinate(frame, flatVector(ned, model.SystemNED, frame))
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasOrientation() {
		out.SetOrientation(in.Orientation())
	}
	if in.HasVelocity() {
		out.SetVelocity(flatVector(in.Velocity(), model.SystemNED, frame))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(flatVector(in.Acceleration(), model.SystemNED, frame))
	}
	return out, nil
}

// ConvertFlatToGeodetic is the inverse of ConvertGeodeticToFlat.
func (c *CoordinateConverter) ConvertFlatToGeodetic(in model.Coordinate) (model.Coordinate, error) {
	frame := in.System()
	if !frame.IsFlatEarth() {
		return model.Coordinate{}, fmt.Errorf("flat to geodetic given %s: %w", frame, ErrSystemMismatch)
	}
	if err := c.requireOrigin(frame); err != nil {
		return model.Coordinate{}, err
	}

	ned := flatVector(in.Position(), frame, model.SystemNED)
	lla := model.Vec3{
		X: c.origin.Lat() + ned.X*c.invLatRadius,
		Y: angFixPI(c.origin.Lon() + ned.Y*c.invLonRadius),
		Z: c.origin.Alt() - ned.Z,
	}

	out := model.NewCoordinate(model.SystemLLA, lla)
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasOrientation() {
		out.SetOrientation(in.Orientation())
	}
	if in.HasVelocity() {
		out.SetVelocity(flatVector(in.Velocity(), frame, model.SystemNED))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(flatVector(in.Acceleration(), frame, model.SystemNED))
	}
	return out, nil
}
