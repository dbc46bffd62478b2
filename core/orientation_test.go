package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/coordinate-engine/model"
)

func TestEulerDCMRoundTrip(t *testing.T) {
	for _, ori := range []model.Vec3{
		{},
		{X: 0.5, Y: 0.2, Z: -0.1},
		{X: -3, Y: -1.2, Z: 2.9},
		{X: 1.7, Y: 1.5, Z: 0.4},
	} {
		got := DCMToEuler(EulerToDCM(ori))
		requireAnglesClose(t, "euler", got, ori, 1e-12)
	}
}

func TestDCMToEulerGimbalLock(t *testing.T) {
	ori := model.Vec3{X: 0.7, Y: math.Pi / 2, Z: 0.2}
	got := DCMToEuler(EulerToDCM(ori))
	if got.Roll() != 0 || !closeTo(got.Pitch(), math.Pi/2, 1e-9) {
		t.Fatalf("gimbal lock decomposition = %+v", got)
	}
	// Yaw absorbs the combined rotation so the matrix is preserved.
	want := EulerToDCM(ori)
	have := EulerToDCM(got)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !closeTo(have[i][j], want[i][j], 1e-9) {
				t.Fatalf("DCM[%d][%d] = %v, want %v", i, j, have[i][j], want[i][j])
			}
		}
	}
}

func TestLocalToEarthMatrixIsOrthonormal(t *testing.T) {
	for _, frame := range []model.System{model.SystemNED, model.SystemNWU, model.SystemENU} {
		m := LocalToEarthMatrix(0.8, -2.1, frame)
		p := m.MulTranspose(m)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.0
				if i == j {
					want = 1
				}
				if !closeTo(p[i][j], want, 1e-15) {
					t.Fatalf("%s m·mᵀ[%d][%d] = %v", frame, i, j, p[i][j])
				}
			}
		}
	}
}

func TestLocalToEarthMatrixAxesAtOrigin(t *testing.T) {
	ned := LocalToEarthMatrix(0, 0, model.SystemNED)
	want := Matrix3{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !closeTo(ned[i][j], want[i][j], 1e-15) {
				t.Fatalf("NED[%d][%d] = %v, want %v", i, j, ned[i][j], want[i][j])
			}
		}
	}
	if LocalToEarthMatrix(0, 0, model.SystemLLA) != ned {
		t.Fatalf("non-flat frame should default to NED")
	}
}
