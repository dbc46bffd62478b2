package core

import (
	"math"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// gimbalLockTolerance is how close |sin(pitch)| may come to 1 before yaw and
// roll are treated as coupled.
const gimbalLockTolerance = 1.0e-12

// EulerToDCM builds the 3-2-1 (yaw, pitch, roll) direction cosine matrix.
// The result maps a vector in the reference frame into the body frame.
func EulerToDCM(ori model.Vec3) Matrix3 {
	sPsi, cPsi := math.Sincos(ori.Yaw())
	sTheta, cTheta := math.Sincos(ori.Pitch())
	sPhi, cPhi := math.Sincos(ori.Roll())

	return Matrix3{
		{
			cTheta * cPsi,
			cTheta * sPsi,
			-sTheta,
		},
		{
			sPhi*sTheta*cPsi - cPhi*sPsi,
			sPhi*sTheta*sPsi + cPhi*cPsi,
			sPhi * cTheta,
		},
		{
			cPhi*sTheta*cPsi + sPhi*sPsi,
			cPhi*sTheta*sPsi - sPhi*cPsi,
			cPhi * cTheta,
		},
	}
}

// DCMToEuler decomposes a 3-2-1 direction cosine matrix back into yaw,
// pitch and roll. At gimbal lock roll is reported as zero and the shared
// rotation is carried by yaw.
func DCMToEuler(m Matrix3) model.Vec3 {
	sTheta := -m[0][2]
	if sTheta > 1 {
		sTheta = 1
	} else if sTheta < -1 {
		sTheta = -1
	}
	pitch := math.Asin(sTheta)

	if math.Abs(sTheta) > 1-gimbalLockTolerance {
		return model.Vec3{X: math.Atan2(-m[1][0], m[1][1]), Y: pitch, Z: 0}
	}
	return model.Vec3{
		X: math.Atan2(m[0][1], m[0][0]),
		Y: pitch,
		Z: math.Atan2(m[1][2], m[2][2]),
	}
}

// LocalToEarthMatrix returns the rotation whose rows are the axes of the
// local-level frame at (lat, lon) expressed in ECEF. frame selects NED, NWU
// or ENU; any other system yields NED.
func LocalToEarthMatrix(lat, lon float64, frame model.System) Matrix3 {
	sLat, cLat := math.Sincos(lat)
	sLon, cLon := math.Sincos(lon)

	north := [3]float64{-sLat * cLon, -sLat * sLon, cLat}
	east := [3]float64{-sLon, cLon, 0}
	up := [3]float64{cLat * cLon, cLat * sLon, sLat}

	neg := func(v [3]float64) [3]float64 { return [3]float64{-v[0], -v[1], -v[2]} }

	switch frame {
	case model.SystemNWU:
		return Matrix3{north, neg(east), up}
	case model.SystemENU:
		return Matrix3{east, north, up}
	default:
		return Matrix3{north, east, neg(up)}
	}
}

// orientationLocalToEarth converts Euler angles relative to a local frame
// into Euler angles relative to the earth frame, given that frame's
// local-to-earth matrix.
func orientationLocalToEarth(ori model.Vec3, localToEarth Matrix3) model.Vec3 {
	return DCMToEuler(EulerToDCM(ori).Mul(localToEarth))
}

// orientationEarthToLocal is the inverse of orientationLocalToEarth.
func orientationEarthToLocal(ori model.Vec3, localToEarth Matrix3) model.Vec3 {
	return DCMToEuler(EulerToDCM(ori).MulTranspose(localToEarth))
}
