package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/coordinate-engine/model"
)

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func angleClose(a, b, tol float64) bool {
	return math.Abs(angFixPI(a-b)) <= tol
}

func requireVecClose(t *testing.T, name string, got, want model.Vec3, tol float64) {
	t.Helper()
	if !closeTo(got.X, want.X, tol) || !closeTo(got.Y, want.Y, tol) || !closeTo(got.Z, want.Z, tol) {
		t.Fatalf("%s = %+v, want %+v (tol %g)", name, got, want, tol)
	}
}

func requireAnglesClose(t *testing.T, name string, got, want model.Vec3, tol float64) {
	t.Helper()
	if !angleClose(got.X, want.X, tol) || !angleClose(got.Y, want.Y, tol) || !angleClose(got.Z, want.Z, tol) {
		t.Fatalf("%s = %+v, want %+v (tol %g)", name, got, want, tol)
	}
}

// requirePositionClose compares positions using angular tolerance for LLA
// latitude/longitude and metric tolerance elsewhere.
func requirePositionClose(t *testing.T, name string, sys model.System, got, want model.Vec3, metres float64) {
	t.Helper()
	if sys == model.SystemLLA {
		if !angleClose(got.Lat(), want.Lat(), 2e-9) || !angleClose(got.Lon(), want.Lon(), 2e-9) || !closeTo(got.Alt(), want.Alt(), metres) {
			t.Fatalf("%s = %+v, want %+v", name, got, want)
		}
		return
	}
	requireVecClose(t, name, got, want, metres)
}

func mustConvert(t *testing.T, c *CoordinateConverter, in model.Coordinate, sys model.System) model.Coordinate {
	t.Helper()
	out, err := c.Convert(in, sys)
	if err != nil {
		t.Fatalf("Convert %s -> %s: %v", in.System(), sys, err)
	}
	return out
}

func newTestConverter() *CoordinateConverter {
	c := NewCoordinateConverter()
	c.SetReferenceOriginDegrees(33.2, -117.4, 150)
	c.SetTangentPlaneOffsets(1200, -800, DegToRad(25))
	return c
}
