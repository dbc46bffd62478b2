// Package mgrs converts Military Grid Reference System strings to and from
// UTM, UPS and geodetic coordinates on the WGS84 ellipsoid. Angles are in
// radians. All functions are pure and safe for concurrent use.
package mgrs

import (
	"fmt"
	"math"
	"strings"

	"github.com/signalsfoundry/coordinate-engine/core"
)

// ConvertMGRSToGeodetic parses an MGRS reference and returns the latitude
// and longitude in radians of the south-west corner of the referenced
// square.
func ConvertMGRSToGeodetic(s string) (lat, lon float64, err error) {
	p, err := BreakMGRSString(s)
	if err != nil {
		return 0, 0, err
	}
	if p.Polar() {
		ups, err := ConvertMGRSToUPS(p.Letters, p.Easting, p.Northing)
		if err != nil {
			return 0, 0, fmt.Errorf("mgrs %q: %w", s, err)
		}
		return ConvertUPSToGeodetic(ups.Hemisphere, ups.Easting, ups.Northing)
	}
	utm, err := ConvertMGRSToUTM(p.Zone, p.Letters, p.Easting, p.Northing)
	if err != nil {
		return 0, 0, fmt.Errorf("mgrs %q: %w", s, err)
	}
	return ConvertUTMToGeodetic(utm.Zone, utm.Hemisphere, utm.Easting, utm.Northing)
}

// ConvertMGRSToUTM resolves the grid letters of a UTM zone into a full
// easting and northing. easting and northing are metres within the 100 km
// square.
func ConvertMGRSToUTM(zone int, letters string, easting, northing float64) (UTM, error) {
	if zone < 1 || zone > 60 {
		return UTM{}, fmt.Errorf("zone %d: %w", zone, ErrInvalidZone)
	}
	if len(letters) != 3 {
		return UTM{}, fmt.Errorf("letters %q: %w", letters, ErrInvalidLetters)
	}
	letters = strings.ToUpper(letters)
	band, col, row := letters[0], letters[1], letters[2]
	if !isBandLetter(band) {
		return UTM{}, fmt.Errorf("latitude band %c: %w", band, ErrInvalidLetters)
	}
	if band == 'X' && (zone == 32 || zone == 34 || zone == 36) {
		return UTM{}, fmt.Errorf("zone %d%c does not exist: %w", zone, band, ErrInvalidZone)
	}
	if zone == 31 && band == 'V' && col > 'D' {
		return UTM{}, fmt.Errorf("column %c not in zone 31V: %w", col, ErrInvalidLetters)
	}

	low, high, patternOffset := utmColumns(zone)
	if col < low || col > high || col == 'I' || col == 'O' {
		return UTM{}, fmt.Errorf("column %c outside %c-%c for zone %d: %w", col, low, high, zone, ErrInvalidLetters)
	}
	if row < 'A' || row > 'V' || row == 'I' || row == 'O' {
		return UTM{}, fmt.Errorf("row %c: %w", row, ErrInvalidLetters)
	}

	gridEasting := float64(col-low+1) * oneHundredK
	if low == 'J' && col > 'O' {
		gridEasting -= oneHundredK
	}

	gridNorthing := float64(row-'A') * oneHundredK
	if row > 'O' {
		gridNorthing -= oneHundredK
	}
	if row > 'I' {
		gridNorthing -= oneHundredK
	}
	if gridNorthing >= twoMillion {
		gridNorthing -= twoMillion
	}
	gridNorthing -= patternOffset
	if gridNorthing < 0 {
		gridNorthing += twoMillion
	}
	bandMin := minNorthing[band-'A']
	for gridNorthing < bandMin {
		gridNorthing += twoMillion
	}

	u := UTM{
		Zone:       zone,
		Hemisphere: North,
		Easting:    gridEasting + easting,
		Northing:   gridNorthing + northing,
	}
	if band < 'N' {
		u.Hemisphere = South
	}
	return u, nil
}

// ConvertMGRSToUPS resolves polar grid letters into a UPS easting and
// northing.
func ConvertMGRSToUPS(letters string, easting, northing float64) (UPS, error) {
	if len(letters) != 3 {
		return UPS{}, fmt.Errorf("letters %q: %w", letters, ErrInvalidLetters)
	}
	letters = strings.ToUpper(letters)
	zoneLetter, col, row := letters[0], letters[1], letters[2]
	z, ok := upsZones[zoneLetter]
	if !ok {
		return UPS{}, fmt.Errorf("polar zone %c: %w", zoneLetter, ErrInvalidLetters)
	}
	if col < z.ltr2Low || col > z.ltr2High || strings.IndexByte("DEIMNOVW", col) >= 0 {
		return UPS{}, fmt.Errorf("column %c not in polar zone %c: %w", col, zoneLetter, ErrInvalidLetters)
	}
	if row < 'A' || row > z.ltr3High || row == 'I' || row == 'O' {
		return UPS{}, fmt.Errorf("row %c not in polar zone %c: %w", row, zoneLetter, ErrInvalidLetters)
	}

	gridNorthing := float64(row-'A')*oneHundredK + z.falseNorthing
	if row > 'I' {
		gridNorthing -= oneHundredK
	}
	if row > 'O' {
		gridNorthing -= oneHundredK
	}

	gridEasting := float64(col-z.ltr2Low)*oneHundredK + z.falseEasting
	if z.ltr2Low != 'A' {
		if col > 'L' {
			gridEasting -= 300000
		}
		if col > 'U' {
			gridEasting -= 200000
		}
	} else {
		if col > 'C' {
			gridEasting -= 200000
		}
		if col > 'I' {
			gridEasting -= oneHundredK
		}
		if col > 'L' {
			gridEasting -= 300000
		}
	}

	u := UPS{Hemisphere: South, Easting: gridEasting + easting, Northing: gridNorthing + northing}
	if zoneLetter == 'Y' || zoneLetter == 'Z' {
		u.Hemisphere = North
	}
	return u, nil
}

// ConvertGeodeticToMGRS encodes a latitude and longitude in radians as an
// MGRS reference with precision digits (0 to 5) per coordinate. Latitudes
// from 80°S up to 84°N use UTM; the rest use UPS.
func ConvertGeodeticToMGRS(lat, lon float64, precision int) (string, error) {
	if err := checkPrecision(precision); err != nil {
		return "", err
	}
	if math.IsNaN(lat) || math.Abs(lat) > math.Pi/2 {
		return "", fmt.Errorf("latitude %v: %w", core.RadToDeg(lat), ErrOutOfRange)
	}
	latDeg := core.RadToDeg(lat)
	lon = wrapLon(lon)

	if latDeg >= -80 && latDeg < 84 {
		u := utmForward(lat, lon, utmZone(latDeg, core.RadToDeg(lon)))
		band := bandLetters[bandIndex(latDeg)]
		return ConvertUTMToMGRS(u, band, precision)
	}
	u, err := ConvertGeodeticToUPS(lat, lon)
	if err != nil {
		return "", err
	}
	return ConvertUPSToMGRS(u, precision)
}

func bandIndex(latDeg float64) int {
	i := int(math.Floor((latDeg + 80) / 8))
	if i < 0 {
		return 0
	}
	if i >= len(bandLetters) {
		return len(bandLetters) - 1
	}
	return i
}

// ConvertUTMToMGRS encodes a UTM position given its latitude band letter.
func ConvertUTMToMGRS(u UTM, band byte, precision int) (string, error) {
	if u.Zone < 1 || u.Zone > 60 {
		return "", fmt.Errorf("zone %d: %w", u.Zone, ErrInvalidZone)
	}
	if !isBandLetter(band) {
		return "", fmt.Errorf("latitude band %c: %w", band, ErrInvalidLetters)
	}
	if err := checkPrecision(precision); err != nil {
		return "", err
	}
	easting, northing := truncateToPrecision(u.Easting, precision), truncateToPrecision(u.Northing, precision)

	set := u.Zone % 6
	if set == 0 {
		set = 6
	}
	cols := utmColumnLetters[(set-1)%3]
	colIdx := int(easting/oneHundredK) - 1
	if colIdx < 0 || colIdx >= len(cols) {
		return "", fmt.Errorf("utm easting %.3f: %w", u.Easting, ErrOutOfRange)
	}
	_, _, patternOffset := utmColumns(u.Zone)
	n := math.Mod(math.Mod(northing, twoMillion)+patternOffset, twoMillion)
	rowIdx := int(n / oneHundredK)

	return formatMGRS(fmt.Sprintf("%02d%c%c%c", u.Zone, band, cols[colIdx], utmRowLetters[rowIdx]), easting, northing, precision), nil
}

// ConvertUPSToMGRS encodes a UPS position.
func ConvertUPSToMGRS(u UPS, precision int) (string, error) {
	if err := checkPrecision(precision); err != nil {
		return "", err
	}
	easting, northing := truncateToPrecision(u.Easting, precision), truncateToPrecision(u.Northing, precision)

	var zoneLetter byte
	switch {
	case u.Hemisphere == North && easting < upsFalseOrigin:
		zoneLetter = 'Y'
	case u.Hemisphere == North:
		zoneLetter = 'Z'
	case easting < upsFalseOrigin:
		zoneLetter = 'A'
	default:
		zoneLetter = 'B'
	}
	z := upsZones[zoneLetter]

	colIdx := int((easting - z.falseEasting) / oneHundredK)
	rowIdx := int((northing - z.falseNorthing) / oneHundredK)
	if easting < z.falseEasting || colIdx >= len(z.columns) ||
		northing < z.falseNorthing || rowIdx >= strings.IndexByte(upsRowLetters, z.ltr3High)+1 {
		return "", fmt.Errorf("ups %s: %w", u, ErrOutOfRange)
	}
	return formatMGRS(fmt.Sprintf("%c%c%c", zoneLetter, z.columns[colIdx], upsRowLetters[rowIdx]), easting, northing, precision), nil
}

func checkPrecision(precision int) error {
	if precision < 0 || precision > 5 {
		return fmt.Errorf("precision %d outside 0-5: %w", precision, ErrOutOfRange)
	}
	return nil
}

// truncateToPrecision drops the digits of v below the grid implied by
// precision, so the encoded square always contains v.
func truncateToPrecision(v float64, precision int) float64 {
	divisor := math.Pow(10, float64(5-precision))
	return math.Floor(v/divisor) * divisor
}

// formatMGRS appends the digits of easting and northing, which must already
// be truncated to precision and are therefore whole metres.
func formatMGRS(gzd string, easting, northing float64, precision int) string {
	if precision == 0 {
		return gzd
	}
	divisor := int64(math.Pow(10, float64(5-precision)))
	e := int64(easting) % int64(oneHundredK) / divisor
	n := int64(northing) % int64(oneHundredK) / divisor
	return fmt.Sprintf("%s%0*d%0*d", gzd, precision, e, precision, n)
}
