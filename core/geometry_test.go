package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/coordinate-engine/model"
)

func TestMatrix3TransposeMulVecInvertsRotation(t *testing.T) {
	m := LocalToEarthMatrix(0.6, -1.1, model.SystemNED)
	v := model.Vec3{X: 12, Y: -3, Z: 7}
	requireVecClose(t, "mᵀ·m·v", m.TransposeMulVec(m.MulVec(v)), v, 1e-12)
}

func TestMatrix3MulTransposeMatchesExplicitTranspose(t *testing.T) {
	a := EulerToDCM(model.Vec3{X: 0.3, Y: 0.2, Z: -0.4})
	b := LocalToEarthMatrix(0.1, 0.2, model.SystemENU)
	got := a.MulTranspose(b)
	want := a.Mul(b.Transpose())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !closeTo(got[i][j], want[i][j], 1e-15) {
				t.Fatalf("MulTranspose[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestRotZQuarterTurn(t *testing.T) {
	got := rotZ(math.Pi / 2).MulVec(model.Vec3{X: 1})
	requireVecClose(t, "rotZ(π/2)·x", got, model.Vec3{Y: -1}, 1e-15)
}

func TestAngleWrapping(t *testing.T) {
	tests := []struct {
		in, pi, twoPi float64
	}{
		{0, 0, 0},
		{math.Pi, -math.Pi, math.Pi},
		{-math.Pi, -math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2, 3 * math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2, 3 * math.Pi / 2},
	}
	for _, tt := range tests {
		if got := angFixPI(tt.in); !closeTo(got, tt.pi, 1e-12) {
			t.Fatalf("angFixPI(%v) = %v, want %v", tt.in, got, tt.pi)
		}
		if got := angFix2PI(tt.in); !closeTo(got, tt.twoPi, 1e-12) {
			t.Fatalf("angFix2PI(%v) = %v, want %v", tt.in, got, tt.twoPi)
		}
	}
}

func TestDistanceBetween(t *testing.T) {
	a := model.Vec3{X: 8000, Y: 0, Z: 0}
	b := model.Vec3{X: 8000, Y: 1000, Z: 0}
	if d := DistanceBetween(a, b); d != 1000 {
		t.Fatalf("DistanceBetween = %v, want 1000", d)
	}
}
