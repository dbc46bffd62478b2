package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// ConvertECEFToXEast expresses an ECEF coordinate in the tangent plane at the
// reference origin: X east, Y north, Z along the ellipsoid normal. Tangent
// plane orientation is relative to NED at the tangent point.
func (c *CoordinateConverter) ConvertECEFToXEast(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemECEF {
		return model.Coordinate{}, fmt.Errorf("ECEF to XEAST given %s: %w", in.System(), ErrSystemMismatch)
	}
	if err := c.requireOrigin(model.SystemXEast); err != nil {
		return model.Coordinate{}, err
	}

	pos := c.rotationENU.MulVec(sub(in.Position(), c.tangentPlaneTranslation))
	out := model.NewCoordinate(model.SystemXEast, pos)
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasVelocity() {
		out.SetVelocity(c.rotationENU.MulVec(in.Velocity()))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(c.rotationENU.MulVec(in.Acceleration()))
	}
	if in.HasOrientation() {
		out.SetOrientation(orientationEarthToLocal(in.Orientation(), c.rotationNED))
	}
	return out, nil
}

// ConvertXEastToECEF is the inverse of ConvertECEFToXEast.
func (c *CoordinateConverter) ConvertXEastToECEF(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemXEast {
		return model.Coordinate{}, fmt.Errorf("XEAST to ECEF given %s: %w", in.System(), ErrSystemMismatch)
	}
	if err := c.requireOrigin(model.SystemXEast); err != nil {
		return model.Coordinate{}, err
	}

	pos := add(c.rotationENU.TransposeMulVec(in.Position()), c.tangentPlaneTranslation)
	out := model.NewCoordinate(model.SystemECEF, pos)
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasVelocity() {
		out.SetVelocity(c.rotationENU.TransposeMulVec(in.Velocity()))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(c.rotationENU.TransposeMulVec(in.Acceleration()))
	}
	if in.HasOrientation() {
		out.SetOrientation(orientationLocalToEarth(in.Orientation(), c.rotationNED))
	}
	return out, nil
}

// ConvertGeodeticToXEast converts LLA to the tangent plane through ECEF.
func (c *CoordinateConverter) ConvertGeodeticToXEast(in model.Coordinate) (model.Coordinate, error) {
	ecef, err := ConvertGeodeticToECEF(in)
	if err != nil {
		return model.Coordinate{}, err
	}
	return c.ConvertECEFToXEast(ecef)
}

// ConvertXEastToGeodetic converts the tangent plane to LLA through ECEF.
func (c *CoordinateConverter) ConvertXEastToGeodetic(in model.Coordinate) (model.Coordinate, error) {
	ecef, err := c.ConvertXEastToECEF(in)
	if err != nil {
		return model.Coordinate{}, err
	}
	return ConvertECEFToGeodetic(ecef)
}

// ConvertXEastToGTP applies the GTP offset and rotation to an XEAST coordinate.
func (c *CoordinateConverter) ConvertXEastToGTP(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemXEast {
		return model.Coordinate{}, fmt.Errorf("XEAST to GTP given %s: %w", in.System(), ErrSystemMismatch)
	}
	out := c.applyTPOffsetRotate(in)
	out.SetSystem(model.SystemGTP)
	return out, nil
}

// ConvertGTPToXEast removes the GTP offset and rotation.
func (c *CoordinateConverter) ConvertGTPToXEast(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemGTP {
		return model.Coordinate{}, fmt.Errorf("GTP to XEAST given %s: %w", in.System(), ErrSystemMismatch)
	}
	out := c.reverseTPOffsetRotate(in)
	out.SetSystem(model.SystemXEast)
	return out, nil
}

// rotateCW turns the frame clockwise by the GTP rotation: a vector along the
// rotated +Y axis comes out as (0, |v|).
func (c *CoordinateConverter) rotateCW(v model.Vec3) model.Vec3 {
	return model.Vec3{
		X: v.X*c.cosTPRotate - v.Y*c.sinTPRotate,
		Y: v.X*c.sinTPRotate + v.Y*c.cosTPRotate,
		Z: v.Z,
	}
}

func (c *CoordinateConverter) rotateCCW(v model.Vec3) model.Vec3 {
	return model.Vec3{
		X: v.X*c.cosTPRotate + v.Y*c.sinTPRotate,
		Y: -v.X*c.sinTPRotate + v.Y*c.cosTPRotate,
		Z: v.Z,
	}
}

// applyTPOffsetRotate translates by the GTP offset then rotates.
func (c *CoordinateConverter) applyTPOffsetRotate(in model.Coordinate) model.Coordinate {
	shifted := in.Position()
	shifted.X -= c.tpOffsetX
	shifted.Y -= c.tpOffsetY

	out := model.NewCoordinate(in.System(), c.rotateCW(shifted))
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasVelocity() {
		out.SetVelocity(c.rotateCW(in.Velocity()))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(c.rotateCW(in.Acceleration()))
	}
	if in.HasOrientation() {
		ori := in.Orientation()
		ori.X = angFixPI(ori.X - c.tpRotation)
		out.SetOrientation(ori)
	}
	return out
}

// reverseTPOffsetRotate undoes applyTPOffsetRotate: rotate back, then
// translate back.
func (c *CoordinateConverter) reverseTPOffsetRotate(in model.Coordinate) model.Coordinate {
	pos := c.rotateCCW(in.Position())
	pos.X += c.tpOffsetX
	pos.Y += c.tpOffsetY

	out := model.NewCoordinate(in.System(), pos)
	out.SetElapsedECITime(in.ElapsedECITime())
	if in.HasVelocity() {
		out.SetVelocity(c.rotateCCW(in.Velocity()))
	}
	if in.HasAcceleration() {
		out.SetAcceleration(c.rotateCCW(in.Acceleration()))
	}
	if in.HasOrientation() {
		ori := in.Orientation()
		ori.X = angFixPI(ori.X + c.tpRotation)
		out.SetOrientation(ori)
	}
	return out
}

// LookAngles returns azimuth (clockwise from north, [0, 2π)), elevation and
// slant range of a tangent-plane position as seen from the tangent point.
func LookAngles(xeast model.Vec3) (azimuth, elevation, rng float64) {
	horiz := math.Hypot(xeast.X, xeast.Y)
	rng = Norm(xeast)
	if rng == 0 {
		return 0, math.Pi / 2, 0
	}
	return angFix2PI(math.Atan2(xeast.X, xeast.Y)), math.Atan2(xeast.Z, horiz), rng
}
