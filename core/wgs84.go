package core

import "math"

// WGS84 ellipsoid parameters.
const (
	WGSSemiMajorAxis        = 6378137.0
	WGSFlattening           = 1.0 / 298.257223563
	WGSSemiMinorAxis        = WGSSemiMajorAxis * (1.0 - WGSFlattening)
	WGSEccentricitySquared  = WGSFlattening * (2.0 - WGSFlattening)
	WGSSecondEccentricitySq = WGSEccentricitySquared / (1.0 - WGSEccentricitySquared)
)

// EarthRotationRate is the sidereal rotation rate of the earth in rad/s.
const EarthRotationRate = 7.2921158553e-5

// poleTolerance is how close (radians) a reference origin may come to a
// pole before flat-earth scaling is refused.
const poleTolerance = 1.0e-5

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * degToRad }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * radToDeg }
