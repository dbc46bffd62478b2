// Package types holds the wire messages of the coordinate service and the
// mappings between them and the engine's model types.
//
// Messages are plain structs carried by the JSON codec in package nbi.
// Well-known protobuf types (emptypb.Empty, structpb.Struct) travel as
// protojson.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/kb"
	"github.com/signalsfoundry/coordinate-engine/model"
)

// ErrInvalidMessage marks a message that cannot be mapped onto the model.
var ErrInvalidMessage = errors.New("invalid message")

// Vec3 is a three-component vector on the wire.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vecFromModel(v model.Vec3) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vec3) toModel() model.Vec3 { return model.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Coordinate mirrors model.Coordinate. Optional state is present only when
// its pointer is non-nil.
type Coordinate struct {
	System         string  `json:"system"`
	Position       Vec3    `json:"position"`
	Orientation    *Vec3   `json:"orientation,omitempty"`
	Velocity       *Vec3   `json:"velocity,omitempty"`
	Acceleration   *Vec3   `json:"acceleration,omitempty"`
	ElapsedECITime float64 `json:"elapsed_eci_time,omitempty"`
}

// CoordinateFromModel maps a model coordinate onto the wire. With degrees
// set, LLA latitude/longitude and every orientation angle are converted
// from radians.
func CoordinateFromModel(c model.Coordinate, degrees bool) Coordinate {
	out := Coordinate{
		System:         c.System().String(),
		Position:       vecFromModel(c.Position()),
		ElapsedECITime: c.ElapsedECITime(),
	}
	if c.HasOrientation() {
		o := vecFromModel(c.Orientation())
		out.Orientation = &o
	}
	if c.HasVelocity() {
		v := vecFromModel(c.Velocity())
		out.Velocity = &v
	}
	if c.HasAcceleration() {
		a := vecFromModel(c.Acceleration())
		out.Acceleration = &a
	}
	if degrees {
		scaleAngles(&out, c.System(), core.RadToDeg)
	}
	return out
}

// ToModel parses and validates the wire coordinate. With degrees set the
// angles are read as degrees, as CoordinateFromModel writes them.
func (c Coordinate) ToModel(degrees bool) (model.Coordinate, error) {
	sys, err := model.ParseSystem(c.System)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if degrees {
		scaleAngles(&c, sys, core.DegToRad)
	}
	out := model.NewCoordinate(sys, c.Position.toModel())
	out.SetElapsedECITime(c.ElapsedECITime)
	if c.Orientation != nil {
		out.SetOrientation(c.Orientation.toModel())
	}
	if c.Velocity != nil {
		out.SetVelocity(c.Velocity.toModel())
	}
	if c.Acceleration != nil {
		out.SetAcceleration(c.Acceleration.toModel())
	}
	if err := out.Validate(); err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return out, nil
}

// scaleAngles applies f to LLA latitude/longitude and to orientation. sys
// is the parsed system, so aliases of LLA are scaled too. It works on
// copies of the pointed-to vectors.
func scaleAngles(c *Coordinate, sys model.System, f func(float64) float64) {
	if sys == model.SystemLLA {
		c.Position.X = f(c.Position.X)
		c.Position.Y = f(c.Position.Y)
	}
	if c.Orientation != nil {
		o := Vec3{X: f(c.Orientation.X), Y: f(c.Orientation.Y), Z: f(c.Orientation.Z)}
		c.Orientation = &o
	}
}

// Origin is an inline reference origin for requests that do not name a site.
type Origin struct {
	LatDeg      float64 `json:"lat_deg"`
	LonDeg      float64 `json:"lon_deg"`
	AltM        float64 `json:"alt_m"`
	OffsetX     float64 `json:"offset_x,omitempty"`
	OffsetY     float64 `json:"offset_y,omitempty"`
	RotationDeg float64 `json:"rotation_deg,omitempty"`
}

// Site returns the origin as an anonymous site.
func (o Origin) Site() kb.Site {
	return kb.Site{
		ID:          "inline",
		LatDeg:      o.LatDeg,
		LonDeg:      o.LonDeg,
		AltM:        o.AltM,
		OffsetX:     o.OffsetX,
		OffsetY:     o.OffsetY,
		RotationDeg: o.RotationDeg,
	}
}

// Frame selects the reference origin of a request: a catalog site by ID,
// an inline origin, or neither.
type Frame struct {
	SiteID string  `json:"site_id,omitempty"`
	Origin *Origin `json:"origin,omitempty"`
	// Degrees switches LLA latitude/longitude and orientation to degrees
	// in both the request and the response.
	Degrees bool `json:"degrees,omitempty"`
}

type ConvertRequest struct {
	Frame
	Input  Coordinate `json:"input"`
	Output string     `json:"output"`
}

type ConvertResponse struct {
	Output Coordinate `json:"output"`
	// Route lists the systems passed through after the input system.
	Route []string `json:"route"`
}

type ConvertBatchRequest struct {
	Frame
	Inputs []Coordinate `json:"inputs"`
	Output string       `json:"output"`
}

// BatchResult holds either an output or the error for one batch entry.
type BatchResult struct {
	Output *Coordinate `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type ConvertBatchResponse struct {
	Results []BatchResult `json:"results"`
	Failed  int           `json:"failed"`
}

type DecodeMGRSRequest struct {
	MGRS string `json:"mgrs"`
}

type DecodeMGRSResponse struct {
	LatDeg     float64 `json:"lat_deg"`
	LonDeg     float64 `json:"lon_deg"`
	Zone       int     `json:"zone"`
	Hemisphere string  `json:"hemisphere"`
	Easting    float64 `json:"easting"`
	Northing   float64 `json:"northing"`
	// Polar is true for UPS squares; Zone is 0 then.
	Polar bool `json:"polar,omitempty"`
}

type EncodeMGRSRequest struct {
	LatDeg    float64 `json:"lat_deg"`
	LonDeg    float64 `json:"lon_deg"`
	Precision int     `json:"precision"`
}

type EncodeMGRSResponse struct {
	MGRS string `json:"mgrs"`
}

// SystemInfo describes one coordinate system.
type SystemInfo struct {
	Name        string `json:"name"`
	Value       int    `json:"value"`
	NeedsOrigin bool   `json:"needs_origin"`
	FlatEarth   bool   `json:"flat_earth"`
}

type ListSystemsResponse struct {
	Systems []SystemInfo `json:"systems"`
}

// Metadata wraps a structpb.Struct so it encodes as a plain JSON object.
type Metadata struct {
	*structpb.Struct
}

// MetadataFromMap builds Metadata from a map; nil or empty maps yield an
// empty Metadata.
func MetadataFromMap(m map[string]any) (Metadata, error) {
	if len(m) == 0 {
		return Metadata{}, nil
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: metadata: %v", ErrInvalidMessage, err)
	}
	return Metadata{Struct: st}, nil
}

// AsMap returns the metadata as a map, nil when empty.
func (m Metadata) AsMap() map[string]any {
	if m.Struct == nil || len(m.Struct.GetFields()) == 0 {
		return nil
	}
	return m.Struct.AsMap()
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.Struct == nil {
		return []byte("null"), nil
	}
	return protojson.Marshal(m.Struct)
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		m.Struct = nil
		return nil
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return err
	}
	m.Struct = st
	return nil
}

// SiteMessage is a catalog site on the wire.
type SiteMessage struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	LatDeg      float64  `json:"lat_deg"`
	LonDeg      float64  `json:"lon_deg"`
	AltM        float64  `json:"alt_m"`
	OffsetX     float64  `json:"offset_x,omitempty"`
	OffsetY     float64  `json:"offset_y,omitempty"`
	RotationDeg float64  `json:"rotation_deg,omitempty"`
	Metadata    Metadata `json:"metadata"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// SiteFromKB maps a catalog site onto the wire.
func SiteFromKB(s kb.Site) (SiteMessage, error) {
	md, err := MetadataFromMap(s.Metadata)
	if err != nil {
		return SiteMessage{}, err
	}
	msg := SiteMessage{
		ID:          s.ID,
		Name:        s.Name,
		LatDeg:      s.LatDeg,
		LonDeg:      s.LonDeg,
		AltM:        s.AltM,
		OffsetX:     s.OffsetX,
		OffsetY:     s.OffsetY,
		RotationDeg: s.RotationDeg,
		Metadata:    md,
	}
	if !s.UpdatedAt.IsZero() {
		msg.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return msg, nil
}

// ToKB maps the wire site onto the catalog type. UpdatedAt is ignored; the
// catalog stamps it.
func (m SiteMessage) ToKB() kb.Site {
	return kb.Site{
		ID:          strings.TrimSpace(m.ID),
		Name:        m.Name,
		LatDeg:      m.LatDeg,
		LonDeg:      m.LonDeg,
		AltM:        m.AltM,
		OffsetX:     m.OffsetX,
		OffsetY:     m.OffsetY,
		RotationDeg: m.RotationDeg,
		Metadata:    m.Metadata.AsMap(),
	}
}

type PutSiteRequest struct {
	Site SiteMessage `json:"site"`
}

type PutSiteResponse struct {
	Site    SiteMessage `json:"site"`
	Created bool        `json:"created"`
}

type SiteRequest struct {
	ID string `json:"id"`
}

type ListSitesResponse struct {
	Sites []SiteMessage `json:"sites"`
}

// TrackRequest samples a TLE over a window.
type TrackRequest struct {
	Frame
	TLELine1    string  `json:"tle_line1"`
	TLELine2    string  `json:"tle_line2"`
	Start       string  `json:"start"` // RFC 3339
	StepSeconds float64 `json:"step_seconds"`
	Count       int     `json:"count"`
	Output      string  `json:"output"`
	// ElevationMaskDeg sets the visibility threshold when a site is given.
	ElevationMaskDeg float64 `json:"elevation_mask_deg,omitempty"`
}

// TrackSample is one point of a track. Look angles are in degrees and
// present only when the request named a frame origin.
type TrackSample struct {
	Time         string     `json:"time"`
	Coordinate   Coordinate `json:"coordinate"`
	AzimuthDeg   *float64   `json:"azimuth_deg,omitempty"`
	ElevationDeg *float64   `json:"elevation_deg,omitempty"`
	RangeM       *float64   `json:"range_m,omitempty"`
	Visible      bool       `json:"visible,omitempty"`
}

type TrackResponse struct {
	Samples []TrackSample `json:"samples"`
}
