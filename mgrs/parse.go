package mgrs

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parts is an MGRS string split into its components. Easting and northing
// are metres within the 100 km square; Zone is 0 for the polar UPS zones.
type Parts struct {
	Zone     int
	Letters  string
	Easting  float64
	Northing float64
	// Precision is the number of digits given for each of easting and
	// northing.
	Precision int
}

// Polar reports whether the reference lies in a UPS zone.
func (p Parts) Polar() bool { return p.Zone == 0 }

// BreakMGRSString splits an MGRS reference such as "31NAA6602100000" or
// "02Q MD 0000" into zone, grid letters, easting and northing. Whitespace
// and quotes are ignored and letters are case-insensitive. Fewer than five
// digits per coordinate scale up to metres; more scale down.
func BreakMGRSString(s string) (Parts, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '"' || r == '\'' {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
	if clean == "" {
		return Parts{}, parseErr(s, ErrInvalidZone, "empty reference")
	}

	i := 0
	for i < len(clean) && clean[i] >= '0' && clean[i] <= '9' {
		i++
	}
	var p Parts
	if i > 2 {
		return Parts{}, parseErr(s, ErrInvalidZone, "zone has %d digits", i)
	}
	if i > 0 {
		zone, _ := strconv.Atoi(clean[:i])
		if zone > 60 {
			return Parts{}, parseErr(s, ErrInvalidZone, "zone %d outside 1-60", zone)
		}
		p.Zone = zone
	}

	j := i
	for j < len(clean) && clean[j] >= 'A' && clean[j] <= 'Z' {
		if clean[j] == 'I' || clean[j] == 'O' {
			return Parts{}, parseErr(s, ErrInvalidLetters, "letter %c is not used in MGRS", clean[j])
		}
		j++
	}
	if j-i != 3 {
		return Parts{}, parseErr(s, ErrInvalidLetters, "want 3 grid letters, got %d", j-i)
	}
	p.Letters = clean[i:j]
	if p.Zone == 0 && !isPolarLetter(p.Letters[0]) {
		return Parts{}, parseErr(s, ErrInvalidZone, "missing zone for non-polar letter %c", p.Letters[0])
	}

	digits := clean[j:]
	for k := 0; k < len(digits); k++ {
		if digits[k] < '0' || digits[k] > '9' {
			return Parts{}, parseErr(s, ErrInvalidLetters, "unexpected %q after grid letters", digits[k])
		}
	}
	if len(digits)%2 != 0 {
		return Parts{}, parseErr(s, ErrOddPrecision, "%d digits cannot split evenly", len(digits))
	}
	n := len(digits) / 2
	p.Precision = n
	if n > 0 {
		e, err := strconv.ParseFloat(digits[:n], 64)
		if err != nil {
			return Parts{}, parseErr(s, ErrOutOfRange, "easting: %v", err)
		}
		no, err := strconv.ParseFloat(digits[n:], 64)
		if err != nil {
			return Parts{}, parseErr(s, ErrOutOfRange, "northing: %v", err)
		}
		mult := math.Pow(10, float64(5-n))
		p.Easting = e * mult
		p.Northing = no * mult
	}
	return p, nil
}
