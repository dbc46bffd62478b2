package mgrs

const (
	oneHundredK = 100000.0
	twoMillion  = 2000000.0

	utmScale          = 0.9996
	utmFalseEasting   = 500000.0
	utmFalseNorthingS = 10000000.0
	utmMinEasting     = 100000.0
	utmMaxEasting     = 900000.0
	utmMaxNorthing    = 10000000.0

	upsScale         = 0.994
	upsFalseOrigin   = 2000000.0
	upsMaxEastNorth  = 4000000.0
	upsMaxIterations = 30
	upsTolerance     = 1.0e-15
)

// Hemisphere selects the northern or southern half of a projection.
type Hemisphere int

const (
	North Hemisphere = iota
	South
)

func (h Hemisphere) String() string {
	if h == South {
		return "S"
	}
	return "N"
}

// minNorthing is the smallest UTM northing inside each latitude band,
// indexed by letter. Zero marks letters that are not bands, except N whose
// minimum really is the equator.
var minNorthing = [26]float64{
	'C' - 'A': 1100000,
	'D' - 'A': 2000000,
	'E' - 'A': 2800000,
	'F' - 'A': 3700000,
	'G' - 'A': 4600000,
	'H' - 'A': 5500000,
	'J' - 'A': 6400000,
	'K' - 'A': 7300000,
	'L' - 'A': 8200000,
	'M' - 'A': 9100000,
	'N' - 'A': 0,
	'P' - 'A': 800000,
	'Q' - 'A': 1700000,
	'R' - 'A': 2600000,
	'S' - 'A': 3500000,
	'T' - 'A': 4400000,
	'U' - 'A': 5300000,
	'V' - 'A': 6200000,
	'W' - 'A': 7000000,
	'X' - 'A': 7900000,
}

const bandLetters = "CDEFGHJKLMNPQRSTUVWX"

func isBandLetter(l byte) bool {
	return l >= 'C' && l <= 'X' && l != 'I' && l != 'O'
}

func isPolarLetter(l byte) bool {
	return l == 'A' || l == 'B' || l == 'Y' || l == 'Z'
}

// utmColumns returns the 100 km column letter range and the row pattern
// offset for a UTM zone. The letters cycle every three zones and the row
// offset alternates between odd and even zones.
func utmColumns(zone int) (low, high byte, patternOffset float64) {
	set := zone % 6
	if set == 0 {
		set = 6
	}
	switch set {
	case 1, 4:
		low, high = 'A', 'H'
	case 2, 5:
		low, high = 'J', 'R'
	default:
		low, high = 'S', 'Z'
	}
	if set%2 == 0 {
		patternOffset = 500000
	}
	return low, high, patternOffset
}

// utmColumnLetters lists the column letters of each three-zone set in order.
var utmColumnLetters = [3]string{"ABCDEFGH", "JKLMNPQR", "STUVWXYZ"}

const utmRowLetters = "ABCDEFGHJKLMNPQRSTUV"

type upsZone struct {
	ltr2Low, ltr2High byte
	ltr3High          byte
	falseEasting      float64
	falseNorthing     float64
	columns           string
}

// upsZones covers the four polar grid zones: A and B in the south, Y and Z
// in the north.
var upsZones = map[byte]upsZone{
	'A': {'J', 'Z', 'Z', 800000, 800000, "JKLPQRSTUXYZ"},
	'B': {'A', 'R', 'Z', 2000000, 800000, "ABCFGHJKLPQR"},
	'Y': {'J', 'Z', 'P', 800000, 1300000, "JKLPQRSTUXYZ"},
	'Z': {'A', 'J', 'P', 2000000, 1300000, "ABCFGHJ"},
}

const upsRowLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
