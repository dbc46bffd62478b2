package model

import (
	"errors"
	"fmt"
	"math"
)

// Vec3 is a three-component vector whose meaning depends on the owning
// Coordinate's System: (x, y, z) for Cartesian frames, (lat, lon, alt) for
// LLA, (yaw, pitch, roll) for orientation.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a vector from its components.
func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Lat() float64 { return v.X }
func (v Vec3) Lon() float64 { return v.Y }
func (v Vec3) Alt() float64 { return v.Z }

func (v Vec3) Yaw() float64   { return v.X }
func (v Vec3) Pitch() float64 { return v.Y }
func (v Vec3) Roll() float64  { return v.Z }

// IsFinite reports whether no component is NaN or Inf.
func (v Vec3) IsFinite() bool {
	return !badFloat(v.X) && !badFloat(v.Y) && !badFloat(v.Z)
}

func badFloat(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }

// ErrNonFinite is returned by Coordinate.Validate when a set field holds NaN or Inf.
var ErrNonFinite = errors.New("coordinate holds a non-finite value")

// Coordinate is a position in a given System with optional orientation,
// velocity and acceleration. Optional fields read as zero when unset; check
// the Has* accessors before interpreting them.
//
// The zero value is an empty coordinate in SystemNone.
type Coordinate struct {
	system System
	pos    Vec3

	ori, vel, acc          Vec3
	hasOri, hasVel, hasAcc bool

	elapsedEciTime float64
}

// NewCoordinate returns a coordinate holding only a position.
func NewCoordinate(sys System, pos Vec3) Coordinate {
	return Coordinate{system: sys, pos: pos}
}

// NewCoordinateWithOrientation returns a coordinate with position and orientation.
func NewCoordinateWithOrientation(sys System, pos, ori Vec3) Coordinate {
	c := NewCoordinate(sys, pos)
	c.SetOrientation(ori)
	return c
}

// NewCoordinateWithVelocity returns a coordinate with position, orientation and velocity.
func NewCoordinateWithVelocity(sys System, pos, ori, vel Vec3) Coordinate {
	c := NewCoordinateWithOrientation(sys, pos, ori)
	c.SetVelocity(vel)
	return c
}

// NewFullCoordinate returns a coordinate with every field populated.
func NewFullCoordinate(sys System, pos, ori, vel, acc Vec3, elapsedEciTime float64) Coordinate {
	c := NewCoordinateWithVelocity(sys, pos, ori, vel)
	c.SetAcceleration(acc)
	c.elapsedEciTime = elapsedEciTime
	return c
}

// Clear resets c to the empty coordinate.
func (c *Coordinate) Clear() { *c = Coordinate{} }

func (c Coordinate) System() System          { return c.system }
func (c Coordinate) Position() Vec3          { return c.pos }
func (c Coordinate) Orientation() Vec3       { return c.ori }
func (c Coordinate) Velocity() Vec3          { return c.vel }
func (c Coordinate) Acceleration() Vec3      { return c.acc }
func (c Coordinate) HasOrientation() bool    { return c.hasOri }
func (c Coordinate) HasVelocity() bool       { return c.hasVel }
func (c Coordinate) HasAcceleration() bool   { return c.hasAcc }
func (c Coordinate) ElapsedECITime() float64 { return c.elapsedEciTime }

func (c *Coordinate) SetSystem(sys System)        { c.system = sys }
func (c *Coordinate) SetPosition(pos Vec3)        { c.pos = pos }
func (c *Coordinate) SetElapsedECITime(t float64) { c.elapsedEciTime = t }

// SetPositionLLA sets the position from latitude and longitude in radians
// and altitude in metres.
func (c *Coordinate) SetPositionLLA(lat, lon, alt float64) {
	c.pos = Vec3{X: lat, Y: lon, Z: alt}
}

// SetOrientation stores yaw, pitch and roll in radians.
func (c *Coordinate) SetOrientation(ori Vec3) {
	c.ori = ori
	c.hasOri = true
}

// SetOrientationEuler stores psi, theta and phi; identical to SetOrientation.
func (c *Coordinate) SetOrientationEuler(psi, theta, phi float64) {
	c.SetOrientation(Vec3{X: psi, Y: theta, Z: phi})
}

func (c *Coordinate) SetVelocity(vel Vec3) {
	c.vel = vel
	c.hasVel = true
}

func (c *Coordinate) SetAcceleration(acc Vec3) {
	c.acc = acc
	c.hasAcc = true
}

func (c *Coordinate) ClearOrientation() {
	c.ori = Vec3{}
	c.hasOri = false
}

func (c *Coordinate) ClearVelocity() {
	c.vel = Vec3{}
	c.hasVel = false
}

func (c *Coordinate) ClearAcceleration() {
	c.acc = Vec3{}
	c.hasAcc = false
}

// Equal compares every field, including the presence flags.
func (c Coordinate) Equal(o Coordinate) bool {
	return c == o
}

// Validate rejects NaN and Inf in any populated field. Conversion routines
// do not call it; it is meant for trust boundaries.
func (c Coordinate) Validate() error {
	check := func(name string, v Vec3) error {
		if !v.IsFinite() {
			return fmt.Errorf("%s %+v: %w", name, v, ErrNonFinite)
		}
		return nil
	}
	if err := check("position", c.pos); err != nil {
		return err
	}
	if c.hasOri {
		if err := check("orientation", c.ori); err != nil {
			return err
		}
	}
	if c.hasVel {
		if err := check("velocity", c.vel); err != nil {
			return err
		}
	}
	if c.hasAcc {
		if err := check("acceleration", c.acc); err != nil {
			return err
		}
	}
	if badFloat(c.elapsedEciTime) {
		return fmt.Errorf("elapsed ECI time %v: %w", c.elapsedEciTime, ErrNonFinite)
	}
	return nil
}

func (c Coordinate) String() string {
	s := fmt.Sprintf("%s pos=(%g, %g, %g)", c.system, c.pos.X, c.pos.Y, c.pos.Z)
	if c.hasOri {
		s += fmt.Sprintf(" ori=(%g, %g, %g)", c.ori.X, c.ori.Y, c.ori.Z)
	}
	if c.hasVel {
		s += fmt.Sprintf(" vel=(%g, %g, %g)", c.vel.X, c.vel.Y, c.vel.Z)
	}
	if c.hasAcc {
		s += fmt.Sprintf(" acc=(%g, %g, %g)", c.acc.X, c.acc.Y, c.acc.Z)
	}
	if c.elapsedEciTime != 0 {
		s += fmt.Sprintf(" eci_t=%g", c.elapsedEciTime)
	}
	return s
}
