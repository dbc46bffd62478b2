package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSystem is returned by ParseSystem for unrecognised names.
var ErrUnknownSystem = errors.New("unknown coordinate system")

// System identifies the reference frame a Coordinate is expressed in.
// The numeric values are stable and shared with the wire API.
type System int

const (
	SystemNone  System = iota
	SystemLLA          // geodetic latitude, longitude (radians), altitude (metres)
	SystemECEF         // earth-centred, earth-fixed
	SystemECI          // earth-centred inertial
	SystemNED          // flat-earth north/east/down
	SystemNWU          // flat-earth north/west/up
	SystemENU          // flat-earth east/north/up
	SystemXEast        // tangent plane, X east
	SystemGTP          // generic tangent plane: XEast with user offset and rotation
)

var systemNames = [...]string{"NONE", "LLA", "ECEF", "ECI", "NED", "NWU", "ENU", "XEAST", "GTP"}

// ConvertibleSystems lists every system the converter dispatches between,
// in enumeration order.
var ConvertibleSystems = []System{
	SystemLLA, SystemECEF, SystemECI, SystemNED, SystemNWU, SystemENU, SystemXEast, SystemGTP,
}

func (s System) String() string {
	if s >= 0 && int(s) < len(systemNames) {
		return systemNames[s]
	}
	return fmt.Sprintf("System(%d)", int(s))
}

// IsFlatEarth reports whether s is one of the locally scaled flat-earth frames.
func (s System) IsFlatEarth() bool {
	return s == SystemNED || s == SystemNWU || s == SystemENU
}

// IsTangentPlane reports whether s is XEAST or GTP.
func (s System) IsTangentPlane() bool {
	return s == SystemXEast || s == SystemGTP
}

// NeedsReferenceOrigin reports whether conversions touching s require a
// reference origin on the converter.
func (s System) NeedsReferenceOrigin() bool {
	return s.IsFlatEarth() || s.IsTangentPlane()
}

// Valid reports whether s is a known, non-NONE system.
func (s System) Valid() bool {
	return s > SystemNone && s <= SystemGTP
}

// ParseSystem maps a case-insensitive name ("lla", "Xeast", ...) onto a System.
func ParseSystem(name string) (System, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch n {
	case "X_EAST", "X-EAST":
		n = "XEAST"
	case "GEODETIC":
		n = "LLA"
	}
	for i, v := range systemNames {
		if v == n {
			return System(i), nil
		}
	}
	return SystemNone, fmt.Errorf("%q: %w", name, ErrUnknownSystem)
}
