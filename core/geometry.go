package core

import (
	"math"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// Matrix3 is a row-major 3x3 matrix. For local-to-earth matrices row i is
// local axis i expressed in the earth frame, so M·v maps earth to local and
// Mᵀ·v maps local to earth.
type Matrix3 [3][3]float64

// Identity3 returns the identity matrix.
func Identity3() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// MulVec returns m·v.
func (m Matrix3) MulVec(v model.Vec3) model.Vec3 {
	return model.Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// TransposeMulVec returns mᵀ·v.
func (m Matrix3) TransposeMulVec(v model.Vec3) model.Vec3 {
	return model.Vec3{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z,
	}
}

// Mul returns m·o.
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

// MulTranspose returns m·oᵀ.
func (m Matrix3) MulTranspose(o Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[j][0] + m[i][1]*o[j][1] + m[i][2]*o[j][2]
		}
	}
	return r
}

// Transpose returns mᵀ.
func (m Matrix3) Transpose() Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// rotZ is the frame rotation about +Z by angle: it maps a vector expressed in
// the unrotated frame into a frame turned by angle.
func rotZ(angle float64) Matrix3 {
	s, c := math.Sincos(angle)
	return Matrix3{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}

func add(a, b model.Vec3) model.Vec3 {
	return model.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func sub(a, b model.Vec3) model.Vec3 {
	return model.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func scale(v model.Vec3, k float64) model.Vec3 {
	return model.Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Norm returns the Euclidean norm of v.
func Norm(v model.Vec3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceBetween returns the straight-line distance between two points.
func DistanceBetween(a, b model.Vec3) float64 {
	return Norm(sub(a, b))
}

// angFixPI wraps an angle into [-π, π).
func angFixPI(a float64) float64 {
	if a >= -math.Pi && a < math.Pi {
		return a
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// angFix2PI wraps an angle into [0, 2π).
func angFix2PI(a float64) float64 {
	if a >= 0 && a < 2*math.Pi {
		return a
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
