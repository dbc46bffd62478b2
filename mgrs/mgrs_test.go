package mgrs

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/coordinate-engine/core"
)

const degTol = 1e-5

func requireGeodetic(t *testing.T, s string, wantLatDeg, wantLonDeg, tolDeg float64) {
	t.Helper()
	lat, lon, err := ConvertMGRSToGeodetic(s)
	require.NoError(t, err, s)
	assert.InDelta(t, wantLatDeg, core.RadToDeg(lat), tolDeg, "%s latitude", s)
	assert.InDelta(t, wantLonDeg, core.RadToDeg(lon), tolDeg, "%s longitude", s)
}

func TestConvertMGRSToGeodeticReferenceValues(t *testing.T) {
	requireGeodetic(t, "31NAA6602100000", 0, 0, degTol)
	requireGeodetic(t, "10SGA3487998613", 32.5, -120.5, degTol)
	requireGeodetic(t, "02Q MD 0000", 16.27876350, -171.93592645, 1e-7)
	requireGeodetic(t, `"02qmd0000"`, 16.27876350, -171.93592645, 1e-7)
	requireGeodetic(t, "YZG9922199208", 89.98999, -44.5259, 1e-4)
}

func TestConvertMGRSToUTMGridLetters(t *testing.T) {
	tests := []struct {
		zone    int
		letters string
		e, n    float64
		want    UTM
	}{
		{31, "NAA", 66021, 0, UTM{31, North, 166021, 0}},
		{10, "SGA", 34879, 98613, UTM{10, North, 734879, 3598613}},
		{2, "QMD", 0, 0, UTM{2, North, 400000, 1800000}},
		// Zone set 2 skips O, so P is the sixth column.
		{2, "QPD", 0, 0, UTM{2, North, 600000, 1800000}},
		{34, "HCA", 0, 0, UTM{34, South, 300000, 5500000}},
	}
	for _, tt := range tests {
		got, err := ConvertMGRSToUTM(tt.zone, tt.letters, tt.e, tt.n)
		require.NoError(t, err, "%d%s", tt.zone, tt.letters)
		assert.Equal(t, tt.want, got, "%d%s", tt.zone, tt.letters)
	}
}

func TestConvertMGRSToUTMExceptions(t *testing.T) {
	for _, zone := range []int{32, 34, 36} {
		_, err := ConvertMGRSToUTM(zone, "XJA", 0, 0)
		assert.ErrorIs(t, err, ErrInvalidZone, "zone %dX", zone)
	}
	_, err := ConvertMGRSToUTM(31, "VEA", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidLetters)
	_, err = ConvertMGRSToUTM(31, "VDA", 0, 0)
	assert.NoError(t, err)

	_, err = ConvertMGRSToUTM(10, "SJA", 0, 0) // column outside A-H
	assert.ErrorIs(t, err, ErrInvalidLetters)
	_, err = ConvertMGRSToUTM(10, "SAW", 0, 0) // row past V
	assert.ErrorIs(t, err, ErrInvalidLetters)
	_, err = ConvertMGRSToUTM(10, "ZAA", 0, 0) // polar letter with a zone
	assert.ErrorIs(t, err, ErrInvalidLetters)
	_, err = ConvertMGRSToUTM(61, "SAA", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidZone)
}

func TestConvertMGRSToUPS(t *testing.T) {
	got, err := ConvertMGRSToUPS("YZG", 99221, 99208)
	require.NoError(t, err)
	assert.Equal(t, UPS{North, 1999221, 1999208}, got)

	got, err = ConvertMGRSToUPS("BAN", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, UPS{South, 2000000, 2000000}, got)

	for _, letters := range []string{"YDA", "ZKA", "YJQ", "CAA", "AEA"} {
		_, err := ConvertMGRSToUPS(letters, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidLetters, letters)
	}
}

func TestConvertUPSToGeodeticPoles(t *testing.T) {
	lat, lon, err := ConvertUPSToGeodetic(South, 2000000, 2000000)
	require.NoError(t, err)
	assert.Equal(t, -math.Pi/2, lat)
	assert.Equal(t, 0.0, lon)

	lat, lon, err = ConvertUPSToGeodetic(North, 2000000, 2000000)
	require.NoError(t, err)
	assert.Equal(t, math.Pi/2, lat)
	assert.Equal(t, 0.0, lon)

	_, _, err = ConvertUPSToGeodetic(North, -1, 2000000)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConvertUPSRoundTrip(t *testing.T) {
	for _, p := range [][2]float64{{85.5, -120.25}, {89.9, 10}, {-85.5, 60.25}, {-80.1, 179.5}, {-89.99, -3}} {
		lat, lon := core.DegToRad(p[0]), core.DegToRad(p[1])
		u, err := ConvertGeodeticToUPS(lat, lon)
		require.NoError(t, err)
		gotLat, gotLon, err := ConvertUPSToGeodetic(u.Hemisphere, u.Easting, u.Northing)
		require.NoError(t, err)
		assert.InDelta(t, lat, gotLat, 1e-12, "%v", p)
		assert.InDelta(t, lon, gotLon, 1e-12, "%v", p)
	}
	_, err := ConvertGeodeticToUPS(core.DegToRad(45), 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConvertUTMRoundTrip(t *testing.T) {
	for _, p := range [][2]float64{{32.5, -120.5}, {-33.9, 18.4}, {0.1, 0.1}, {60, 5}, {78, 10}, {-79.9, -179.9}, {83.9, 40}} {
		lat, lon := core.DegToRad(p[0]), core.DegToRad(p[1])
		u, err := ConvertGeodeticToUTM(lat, lon)
		require.NoError(t, err)
		gotLat, gotLon, err := ConvertUTMToGeodetic(u.Zone, u.Hemisphere, u.Easting, u.Northing)
		require.NoError(t, err)
		assert.InDelta(t, lat, gotLat, 2e-8, "%v", p)
		assert.InDelta(t, lon, gotLon, 2e-8, "%v", p)
	}
}

func TestUTMZoneExceptions(t *testing.T) {
	tests := []struct {
		lat, lon float64
		zone     int
	}{
		{32.5, -120.5, 10},
		{60, 5, 32},  // Norway
		{60, 2, 31},  // west of the Norway widening
		{78, 5, 31},  // Svalbard
		{78, 10, 33}, // Svalbard
		{78, 25, 35},
		{78, 40, 37},
		{0, 180, 1},
	}
	for _, tt := range tests {
		u, err := ConvertGeodeticToUTM(core.DegToRad(tt.lat), core.DegToRad(tt.lon))
		require.NoError(t, err)
		assert.Equal(t, tt.zone, u.Zone, "(%v, %v)", tt.lat, tt.lon)
	}
}

func TestConvertUTMToGeodeticRejectsBadInput(t *testing.T) {
	_, _, err := ConvertUTMToGeodetic(0, North, 500000, 0)
	assert.ErrorIs(t, err, ErrInvalidZone)
	_, _, err = ConvertUTMToGeodetic(10, North, 50000, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = ConvertUTMToGeodetic(10, North, 500000, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConvertGeodeticToMGRSEncodesSquare(t *testing.T) {
	u, err := ConvertMGRSToUTM(10, "SGA", 34879, 98613)
	require.NoError(t, err)
	// Centre of the 1 m square so projection round-off cannot cross a line.
	lat, lon, err := ConvertUTMToGeodetic(u.Zone, u.Hemisphere, u.Easting+0.5, u.Northing+0.5)
	require.NoError(t, err)

	for precision, want := range map[int]string{
		5: "10SGA3487998613",
		3: "10SGA348986",
		1: "10SGA39",
		0: "10SGA",
	} {
		got, err := ConvertGeodeticToMGRS(lat, lon, precision)
		require.NoError(t, err)
		assert.Equal(t, want, got, "precision %d", precision)
	}

	_, err = ConvertGeodeticToMGRS(lat, lon, 6)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConvertUTMToMGRSTruncatesIntoContainingSquare(t *testing.T) {
	tests := []struct {
		name      string
		u         UTM
		precision int
		want      string
	}{
		{"upper corner of a 1 m square", UTM{10, North, 699999.6, 3599999.7}, 5, "10SFA9999999999"},
		{"last easting column", UTM{10, North, 899999.7, 3599999.7}, 5, "10SHA9999999999"},
		{"upper half of a 10 km square", UTM{10, North, 734879, 3598613}, 1, "10SGA39"},
		{"upper half of a 100 km square", UTM{10, North, 799999.9, 3599999.9}, 0, "10SGA"},
		{"exact grid line", UTM{10, North, 734800, 3598600}, 3, "10SGA348986"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertUTMToMGRS(tt.u, 'S', tt.precision)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// The decoded corner never lies past the encoded point.
			parts, err := BreakMGRSString(got)
			require.NoError(t, err)
			corner, err := ConvertMGRSToUTM(parts.Zone, parts.Letters, parts.Easting, parts.Northing)
			require.NoError(t, err)
			assert.LessOrEqual(t, corner.Easting, tt.u.Easting)
			assert.LessOrEqual(t, corner.Northing, tt.u.Northing)
		})
	}

	_, err := ConvertUTMToMGRS(UTM{10, North, 734879, 3598613}, 'S', 6)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ConvertUPSToMGRS(UPS{South, 2000000, 2000000}, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConvertGeodeticToMGRSRoundTrip(t *testing.T) {
	for latDeg := -89.5; latDeg < 90; latDeg += 7.3 {
		for lonDeg := -179.0; lonDeg < 180; lonDeg += 23.7 {
			lat, lon := core.DegToRad(latDeg), core.DegToRad(lonDeg)
			s, err := ConvertGeodeticToMGRS(lat, lon, 5)
			require.NoError(t, err, "(%v, %v)", latDeg, lonDeg)

			gotLat, gotLon, err := ConvertMGRSToGeodetic(s)
			require.NoError(t, err, s)
			north := (gotLat - lat) * core.WGSSemiMajorAxis
			east := math.Remainder(gotLon-lon, 2*math.Pi) * core.WGSSemiMajorAxis * math.Cos(lat)
			// The reference names the 1 m square's south-west corner.
			assert.Less(t, math.Hypot(north, east), 1.6, "%s from (%v, %v)", s, latDeg, lonDeg)
		}
	}
}

func TestConvertGeodeticToMGRSPolar(t *testing.T) {
	s, err := ConvertGeodeticToMGRS(math.Pi/2, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, "ZAH0000000000", s)

	s, err = ConvertGeodeticToMGRS(-math.Pi/2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "BAN", s)
}

func TestParseErrorUnwraps(t *testing.T) {
	_, _, err := ConvertMGRSToGeodetic("4QFJ123456789")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.NotEmpty(t, pe.Reason)
	assert.ErrorIs(t, err, ErrOddPrecision)
}
