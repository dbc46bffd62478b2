package core

import (
	"fmt"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// The ECI frame coincides with ECEF at elapsed ECI time zero and ECEF turns
// about +Z at EarthRotationRate thereafter. The caller supplies the elapsed
// time on each Coordinate; the converter keeps no clock.

// omegaCross returns ω×v for ω = (0, 0, EarthRotationRate).
func omegaCross(v model.Vec3) model.Vec3 {
	return model.Vec3{X: -EarthRotationRate * v.Y, Y: EarthRotationRate * v.X, Z: 0}
}

// ConvertECIToECEF rotates an ECI coordinate into ECEF. Velocity has ω×r
// removed; acceleration has the Coriolis (2ω×v) and centripetal (ω×(ω×r))
// terms removed.
func ConvertECIToECEF(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemECI {
		return model.Coordinate{}, fmt.Errorf("ECI to ECEF given %s: %w", in.System(), ErrSystemMismatch)
	}
	rot := rotZ(EarthRotationRate * in.ElapsedECITime())

	pos := rot.MulVec(in.Position())
	out := model.NewCoordinate(model.SystemECEF, pos)
	out.SetElapsedECITime(in.ElapsedECITime())

	var vel model.Vec3
	if in.HasVelocity() {
		vel = sub(rot.MulVec(in.Velocity()), omegaCross(pos))
		out.SetVelocity(vel)
	}
	if in.HasAcceleration() {
		acc := rot.MulVec(in.Acceleration())
		acc = sub(acc, scale(omegaCross(vel), 2))
		acc = sub(acc, omegaCross(omegaCross(pos)))
		out.SetAcceleration(acc)
	}
	if in.HasOrientation() {
		out.SetOrientation(DCMToEuler(EulerToDCM(in.Orientation()).MulTranspose(rot)))
	}
	return out, nil
}

// ConvertECEFToECI is the exact inverse of ConvertECIToECEF.
func ConvertECEFToECI(in model.Coordinate) (model.Coordinate, error) {
	if in.System() != model.SystemECEF {
		return model.Coordinate{}, fmt.Errorf("ECEF to ECI given %s: %w", in.System(), ErrSystemMismatch)
	}
	rot := rotZ(EarthRotationRate * in.ElapsedECITime())

	pos := in.Position()
	out := model.NewCoordinate(model.SystemECI, rot.TransposeMulVec(pos))
	out.SetElapsedECITime(in.ElapsedECITime())

	var vel model.Vec3
	if in.HasVelocity() {
		vel = in.Velocity()
		out.SetVelocity(rot.TransposeMulVec(add(vel, omegaCross(pos))))
	}
	if in.HasAcceleration() {
		acc := add(in.Acceleration(), scale(omegaCross(vel), 2))
		acc = add(acc, omegaCross(omegaCross(pos)))
		out.SetAcceleration(rot.TransposeMulVec(acc))
	}
	if in.HasOrientation() {
		out.SetOrientation(DCMToEuler(EulerToDCM(in.Orientation()).Mul(rot)))
	}
	return out, nil
}
