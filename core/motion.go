package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/coordinate-engine/model"
)

// ErrInvalidTLE is returned when a two-line element set fails validation.
var ErrInvalidTLE = errors.New("invalid two-line element set")

// MotionModel reports a platform's state at a simulation time.
type MotionModel interface {
	CoordinateAt(simTime time.Time) (model.Coordinate, error)
}

// StaticMotionModel always reports the same coordinate.
type StaticMotionModel struct {
	Coordinate model.Coordinate
}

// CoordinateAt returns the fixed coordinate.
func (m *StaticMotionModel) CoordinateAt(time.Time) (model.Coordinate, error) {
	return m.Coordinate, nil
}

// OrbitalSGP4MotionModel propagates a TLE with SGP4 and reports ECI
// coordinates whose elapsed ECI time is chosen so that the converter's ECI
// to ECEF rotation equals Greenwich mean sidereal time.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE validates and parses a TLE using WGS72 gravity.
func NewOrbitalModelFromTLE(line1, line2 string) (*OrbitalSGP4MotionModel, error) {
	line1 = strings.TrimRight(line1, " \r\n")
	line2 = strings.TrimRight(line2, " \r\n")
	if err := validateTLELine(line1, '1'); err != nil {
		return nil, err
	}
	if err := validateTLELine(line2, '2'); err != nil {
		return nil, err
	}
	if line1[2:7] != line2[2:7] {
		return nil, fmt.Errorf("catalog numbers %q and %q differ: %w", line1[2:7], line2[2:7], ErrInvalidTLE)
	}
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}, nil
}

// wgs72Mu is the WGS72 gravitational parameter in km^3/s^2, matching the
// constants the TLE is propagated with.
const wgs72Mu = 398600.8

// CoordinateAt propagates to simTime. go-satellite works in kilometres and
// whole seconds, so the state is propagated to the enclosing second and
// carried over the sub-second remainder with a second-order two-body step.
// The result is in metres and m/s.
func (m *OrbitalSGP4MotionModel) CoordinateAt(simTime time.Time) (model.Coordinate, error) {
	simTime = simTime.UTC()
	whole := simTime.Truncate(time.Second)
	frac := simTime.Sub(whole).Seconds()
	year, month, day := whole.Date()
	hour, min, sec := whole.Clock()

	pos, vel := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	p := model.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
	v := model.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z}
	if frac > 0 && p.IsFinite() && Norm(p) > 0 {
		r := Norm(p)
		acc := scale(p, -wgs72Mu/(r*r*r))
		p = add(add(p, scale(v, frac)), scale(acc, frac*frac/2))
		v = add(v, scale(acc, frac))
	}

	const kmToM = 1000.0
	p, v = scale(p, kmToM), scale(v, kmToM)
	if !p.IsFinite() || !v.IsFinite() || Norm(p) == 0 {
		return model.Coordinate{}, fmt.Errorf("SGP4 propagation to %s diverged", simTime.Format(time.RFC3339Nano))
	}

	c := model.NewCoordinate(model.SystemECI, p)
	c.SetVelocity(v)
	c.SetElapsedECITime(ECIElapsedTime(simTime))
	return c, nil
}

// ECIElapsedTime maps a UTC instant to the elapsed ECI time whose earth
// rotation angle equals GMST, aligning the converter's ECI frame with the
// TEME frame SGP4 produces. Sub-second time is kept.
func ECIElapsedTime(t time.Time) float64 {
	t = t.UTC()
	whole := t.Truncate(time.Second)
	year, month, day := whole.Date()
	hour, min, sec := whole.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec) + t.Sub(whole).Seconds()/86400
	gmst := angFix2PI(satellite.ThetaG_JD(jd))
	return gmst / EarthRotationRate
}

// NewMotionModel chooses SGP4 when both TLE lines are present, otherwise a
// static model holding start.
func NewMotionModel(start model.Coordinate, tle1, tle2 string) (MotionModel, error) {
	if tle1 != "" && tle2 != "" {
		return NewOrbitalModelFromTLE(tle1, tle2)
	}
	return &StaticMotionModel{Coordinate: start}, nil
}

func validateTLELine(line string, number byte) error {
	if len(line) < 69 {
		return fmt.Errorf("line %c has %d characters, want 69: %w", number, len(line), ErrInvalidTLE)
	}
	if line[0] != number || line[1] != ' ' {
		return fmt.Errorf("line %c has wrong line number: %w", number, ErrInvalidTLE)
	}
	sum := 0
	for i := 0; i < 68; i++ {
		switch ch := line[i]; {
		case ch >= '0' && ch <= '9':
			sum += int(ch - '0')
		case ch == '-':
			sum++
		}
	}
	want := line[68]
	if want < '0' || want > '9' || int(want-'0') != sum%10 {
		return fmt.Errorf("line %c checksum mismatch: %w", number, ErrInvalidTLE)
	}
	return nil
}

// SubSatellitePoint converts an ECI sample to geodetic latitude, longitude
// (radians) and altitude (metres).
func SubSatellitePoint(eci model.Coordinate) (model.Vec3, error) {
	ecef, err := ConvertECIToECEF(eci)
	if err != nil {
		return model.Vec3{}, err
	}
	lla := ECEFToGeodeticPos(ecef.Position())
	if math.IsNaN(lla.Lat()) {
		return model.Vec3{}, fmt.Errorf("sub-satellite point undefined for %v", eci)
	}
	return lla, nil
}
