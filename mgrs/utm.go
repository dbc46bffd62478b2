package mgrs

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/coordinate-engine/core"
)

// UTM is a Universal Transverse Mercator position in metres.
type UTM struct {
	Zone       int
	Hemisphere Hemisphere
	Easting    float64
	Northing   float64
}

func (u UTM) String() string {
	return fmt.Sprintf("%d%s %.3f %.3f", u.Zone, u.Hemisphere, u.Easting, u.Northing)
}

const (
	esq  = core.WGSEccentricitySquared
	ep2  = core.WGSSecondEccentricitySq
	semi = core.WGSSemiMajorAxis
)

// Meridian arc series coefficients.
var (
	arcM0 = 1 - esq/4 - 3*esq*esq/64 - 5*esq*esq*esq/256
	arcM2 = 3*esq/8 + 3*esq*esq/32 + 45*esq*esq*esq/1024
	arcM4 = 15*esq*esq/256 + 45*esq*esq*esq/1024
	arcM6 = 35 * esq * esq * esq / 3072
)

// Footpoint latitude coefficients.
var (
	footE1 = (1 - math.Sqrt(1-esq)) / (1 + math.Sqrt(1-esq))
	footP2 = 3*footE1/2 - 27*footE1*footE1*footE1/32
	footP4 = 21*footE1*footE1/16 - 55*footE1*footE1*footE1*footE1/32
	footP6 = 151 * footE1 * footE1 * footE1 / 96
	footP8 = 1097 * footE1 * footE1 * footE1 * footE1 / 512
)

func centralMeridian(zone int) float64 {
	return core.DegToRad(float64(zone*6 - 183))
}

// ConvertUTMToGeodetic inverts the transverse Mercator projection for one
// zone and returns latitude and longitude in radians.
func ConvertUTMToGeodetic(zone int, hemisphere Hemisphere, easting, northing float64) (lat, lon float64, err error) {
	if zone < 1 || zone > 60 {
		return 0, 0, fmt.Errorf("utm zone %d: %w", zone, ErrInvalidZone)
	}
	if easting < utmMinEasting || easting > utmMaxEasting {
		return 0, 0, fmt.Errorf("utm easting %.3f: %w", easting, ErrOutOfRange)
	}
	if northing < 0 || northing > utmMaxNorthing {
		return 0, 0, fmt.Errorf("utm northing %.3f: %w", northing, ErrOutOfRange)
	}

	x := easting - utmFalseEasting
	y := northing
	if hemisphere == South {
		y -= utmFalseNorthingS
	}

	mu := y / utmScale / (semi * arcM0)
	phi1 := mu + footP2*math.Sin(2*mu) + footP4*math.Sin(4*mu) + footP6*math.Sin(6*mu) + footP8*math.Sin(8*mu)

	sPhi, cPhi := math.Sincos(phi1)
	tPhi := sPhi / cPhi
	w := 1 - esq*sPhi*sPhi
	n1 := semi / math.Sqrt(w)
	r1 := semi * (1 - esq) / (w * math.Sqrt(w))
	t1 := tPhi * tPhi
	c1 := ep2 * cPhi * cPhi
	d := x / (n1 * utmScale)
	d2 := d * d

	lat = phi1 - (n1*tPhi/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d2*d2/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d2*d2*d2/720)
	lon = centralMeridian(zone) + (d-
		(1+2*t1+c1)*d2*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d2*d2*d/120)/cPhi

	if math.IsNaN(lat) || math.IsNaN(lon) || math.Abs(lat) > math.Pi/2 {
		return 0, 0, fmt.Errorf("utm %d%s %.3f %.3f gives latitude %v: %w", zone, hemisphere, easting, northing, lat, ErrOutOfRange)
	}
	return lat, wrapLon(lon), nil
}

// ConvertGeodeticToUTM projects a latitude and longitude in radians into
// its UTM zone, applying the Norway and Svalbard zone exceptions.
func ConvertGeodeticToUTM(lat, lon float64) (UTM, error) {
	latDeg, lonDeg := core.RadToDeg(lat), core.RadToDeg(wrapLon(lon))
	if latDeg < -80.5 || latDeg > 84.5 {
		return UTM{}, fmt.Errorf("latitude %.6f outside UTM: %w", latDeg, ErrOutOfRange)
	}
	return utmForward(lat, wrapLon(lon), utmZone(latDeg, lonDeg)), nil
}

func utmZone(latDeg, lonDeg float64) int {
	zone := int((lonDeg+180)/6) + 1
	if zone > 60 {
		zone = 60
	}
	if latDeg >= 56 && latDeg < 64 && lonDeg >= 3 && lonDeg < 12 {
		return 32
	}
	if latDeg >= 72 && lonDeg >= 0 && lonDeg < 42 {
		switch {
		case lonDeg < 9:
			return 31
		case lonDeg < 21:
			return 33
		case lonDeg < 33:
			return 35
		default:
			return 37
		}
	}
	return zone
}

func utmForward(lat, lon float64, zone int) UTM {
	sLat, cLat := math.Sincos(lat)
	tLat := sLat / cLat
	n := semi / math.Sqrt(1-esq*sLat*sLat)
	t := tLat * tLat
	c := ep2 * cLat * cLat
	a := cLat * angleDiff(lon, centralMeridian(zone))
	m := semi * (arcM0*lat - arcM2*math.Sin(2*lat) + arcM4*math.Sin(4*lat) - arcM6*math.Sin(6*lat))

	a2 := a * a
	x := utmScale * n * (a + (1-t+c)*a2*a/6 + (5-18*t+t*t+72*c-58*ep2)*a2*a2*a/120)
	y := utmScale * (m + n*tLat*(a2/2+(5-t+9*c+4*c*c)*a2*a2/24+(61-58*t+t*t+600*c-330*ep2)*a2*a2*a2/720))

	u := UTM{Zone: zone, Hemisphere: North, Easting: x + utmFalseEasting, Northing: y}
	if lat < 0 {
		u.Hemisphere = South
		u.Northing += utmFalseNorthingS
	}
	return u
}

func wrapLon(lon float64) float64 {
	return angleDiff(lon, 0)
}

// angleDiff returns a-b wrapped into [-π, π).
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}
