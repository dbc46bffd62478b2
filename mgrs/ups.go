package mgrs

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/coordinate-engine/core"
)

// UPS is a Universal Polar Stereographic position in metres.
type UPS struct {
	Hemisphere Hemisphere
	Easting    float64
	Northing   float64
}

func (u UPS) String() string {
	return fmt.Sprintf("UPS%s %.3f %.3f", u.Hemisphere, u.Easting, u.Northing)
}

var (
	eccentricity = math.Sqrt(esq)
	// upsConformal is sqrt((1+e)^(1+e) (1-e)^(1-e)), the polar scale term.
	upsConformal = math.Sqrt(math.Pow(1+eccentricity, 1+eccentricity) * math.Pow(1-eccentricity, 1-eccentricity))
)

// ConvertUPSToGeodetic inverts the polar stereographic projection. The
// conformal latitude is refined by fixed-point iteration on sin(lat) until
// successive values agree to 1e-15.
func ConvertUPSToGeodetic(hemisphere Hemisphere, easting, northing float64) (lat, lon float64, err error) {
	if easting < 0 || easting > upsMaxEastNorth {
		return 0, 0, fmt.Errorf("ups easting %.3f: %w", easting, ErrOutOfRange)
	}
	if northing < 0 || northing > upsMaxEastNorth {
		return 0, 0, fmt.Errorf("ups northing %.3f: %w", northing, ErrOutOfRange)
	}

	dx := easting - upsFalseOrigin
	dy := northing - upsFalseOrigin
	rho := math.Hypot(dx, dy)
	pole := math.Pi / 2
	if hemisphere == South {
		pole = -pole
	}
	if rho == 0 {
		return pole, 0, nil
	}

	t := rho * upsConformal / (2 * semi * upsScale)
	if hemisphere == South {
		lon = math.Atan2(dx, dy)
	} else {
		lon = math.Atan2(dx, -dy)
	}

	sinPhi := math.Sin(math.Pi/2 - 2*math.Atan(t))
	converged := false
	for i := 0; i < upsMaxIterations; i++ {
		es := eccentricity * sinPhi
		next := math.Sin(math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), eccentricity/2)))
		delta := math.Abs(next - sinPhi)
		sinPhi = next
		if delta <= upsTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, fmt.Errorf("ups %s %.3f %.3f: %w", hemisphere, easting, northing, ErrNoConvergence)
	}

	lat = math.Asin(sinPhi)
	if hemisphere == South {
		lat = -lat
	}
	return lat, lon, nil
}

// ConvertGeodeticToUPS projects a polar latitude and longitude in radians.
// The north zone starts at 83.5°N and the south zone at 79.5°S.
func ConvertGeodeticToUPS(lat, lon float64) (UPS, error) {
	latDeg := core.RadToDeg(lat)
	if latDeg > -79.5 && latDeg < 83.5 || math.Abs(lat) > math.Pi/2 {
		return UPS{}, fmt.Errorf("latitude %.6f outside UPS: %w", latDeg, ErrOutOfRange)
	}
	hemisphere := North
	if lat < 0 {
		hemisphere = South
	}
	absLat := math.Abs(lat)

	s := math.Sin(absLat)
	t := math.Tan(math.Pi/4-absLat/2) / math.Pow((1-eccentricity*s)/(1+eccentricity*s), eccentricity/2)
	rho := 2 * semi * upsScale * t / upsConformal

	sLon, cLon := math.Sincos(lon)
	u := UPS{Hemisphere: hemisphere, Easting: upsFalseOrigin + rho*sLon}
	if hemisphere == North {
		u.Northing = upsFalseOrigin - rho*cLon
	} else {
		u.Northing = upsFalseOrigin + rho*cLon
	}
	return u, nil
}
