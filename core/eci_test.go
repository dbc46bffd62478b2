package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/coordinate-engine/model"
)

func TestECIMatchesECEFPositionAtTimeZero(t *testing.T) {
	p := model.Vec3{X: 7000000, Y: -1200000, Z: 300000}
	in := model.NewCoordinate(model.SystemECEF, p)
	in.SetVelocity(model.Vec3{})

	out, err := ConvertECEFToECI(in)
	if err != nil {
		t.Fatalf("ConvertECEFToECI: %v", err)
	}
	requireVecClose(t, "position", out.Position(), p, 1e-9)

	// A point fixed to the earth moves in inertial space.
	wantVel := model.Vec3{X: -EarthRotationRate * p.Y, Y: EarthRotationRate * p.X}
	requireVecClose(t, "velocity", out.Velocity(), wantVel, 1e-9)
}

func TestECIRotationAfterQuarterTurn(t *testing.T) {
	elapsed := (math.Pi / 2) / EarthRotationRate
	in := model.NewCoordinate(model.SystemECI, model.Vec3{X: WGSSemiMajorAxis})
	in.SetElapsedECITime(elapsed)

	out, err := ConvertECIToECEF(in)
	if err != nil {
		t.Fatalf("ConvertECIToECEF: %v", err)
	}
	requireVecClose(t, "position", out.Position(), model.Vec3{Y: -WGSSemiMajorAxis}, 1e-6)
	if out.ElapsedECITime() != elapsed {
		t.Fatalf("elapsed time = %v, want %v", out.ElapsedECITime(), elapsed)
	}
}

func TestECEFFixedPointCentripetalAcceleration(t *testing.T) {
	in := model.NewCoordinate(model.SystemECEF, model.Vec3{X: WGSSemiMajorAxis})
	in.SetVelocity(model.Vec3{})
	in.SetAcceleration(model.Vec3{})

	out, err := ConvertECEFToECI(in)
	if err != nil {
		t.Fatalf("ConvertECEFToECI: %v", err)
	}
	w2r := EarthRotationRate * EarthRotationRate * WGSSemiMajorAxis
	requireVecClose(t, "acceleration", out.Acceleration(), model.Vec3{X: -w2r}, 1e-12)
}

func TestECIRoundTripWithAllFields(t *testing.T) {
	in := model.NewFullCoordinate(model.SystemECI,
		model.Vec3{X: 6800000, Y: 100000, Z: -2500000},
		model.Vec3{X: 0.4, Y: -0.2, Z: 1.1},
		model.Vec3{X: -1000, Y: 7400, Z: 900},
		model.Vec3{X: -7.1, Y: 0.2, Z: 2.6},
		53211.7,
	)
	ecef, err := ConvertECIToECEF(in)
	if err != nil {
		t.Fatalf("ConvertECIToECEF: %v", err)
	}
	back, err := ConvertECEFToECI(ecef)
	if err != nil {
		t.Fatalf("ConvertECEFToECI: %v", err)
	}
	requireVecClose(t, "position", back.Position(), in.Position(), 1e-6)
	requireVecClose(t, "velocity", back.Velocity(), in.Velocity(), 1e-9)
	requireVecClose(t, "acceleration", back.Acceleration(), in.Acceleration(), 1e-9)
	requireAnglesClose(t, "orientation", back.Orientation(), in.Orientation(), 1e-12)
}
