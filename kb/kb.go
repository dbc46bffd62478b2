// Package kb holds the catalog of named reference sites. A site fixes the
// reference origin and tangent-plane parameters a converter needs for the
// NED, NWU, ENU, XEAST and GTP frames.
package kb

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/signalsfoundry/coordinate-engine/core"
)

var (
	// ErrSiteNotFound is returned when no site has the requested ID.
	ErrSiteNotFound = errors.New("site not found")
	// ErrSiteExists is returned by AddSite when the ID is already taken.
	ErrSiteExists = errors.New("site already exists")
	// ErrInvalidSite is returned when a site fails validation.
	ErrInvalidSite = errors.New("invalid site")
)

// Site is a named reference origin. Angles are stored in degrees so the
// catalog reads naturally in YAML and SQL; Converter switches to radians.
type Site struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	LatDeg      float64        `yaml:"lat_deg"`
	LonDeg      float64        `yaml:"lon_deg"`
	AltM        float64        `yaml:"alt_m"`
	OffsetX     float64        `yaml:"offset_x"`
	OffsetY     float64        `yaml:"offset_y"`
	RotationDeg float64        `yaml:"rotation_deg"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
	UpdatedAt   time.Time      `yaml:"-"`
}

// Validate checks the ID and that the origin is a finite point on or
// near the ellipsoid.
func (s Site) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSite)
	}
	for name, v := range map[string]float64{
		"lat_deg": s.LatDeg, "lon_deg": s.LonDeg, "alt_m": s.AltM,
		"offset_x": s.OffsetX, "offset_y": s.OffsetY, "rotation_deg": s.RotationDeg,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s of site %q is not finite", ErrInvalidSite, name, s.ID)
		}
	}
	if s.LatDeg < -90 || s.LatDeg > 90 {
		return fmt.Errorf("%w: latitude %v of site %q outside [-90, 90]", ErrInvalidSite, s.LatDeg, s.ID)
	}
	if s.LonDeg < -180 || s.LonDeg > 360 {
		return fmt.Errorf("%w: longitude %v of site %q outside [-180, 360]", ErrInvalidSite, s.LonDeg, s.ID)
	}
	return nil
}

// Converter returns a converter with this site's origin and tangent-plane
// offsets applied. Each call yields an independent converter.
func (s Site) Converter(opts ...core.ConverterOption) *core.CoordinateConverter {
	c := core.NewCoordinateConverter(opts...)
	c.SetReferenceOriginDegrees(s.LatDeg, s.LonDeg, s.AltM)
	c.SetTangentPlaneOffsets(s.OffsetX, s.OffsetY, core.DegToRad(s.RotationDeg))
	return c
}

func (s Site) clone() Site {
	if s.Metadata != nil {
		md := make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			md[k] = v
		}
		s.Metadata = md
	}
	return s
}

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventSiteAdded EventType = iota
	EventSiteUpdated
	EventSiteRemoved
)

func (t EventType) String() string {
	switch t {
	case EventSiteAdded:
		return "added"
	case EventSiteUpdated:
		return "updated"
	case EventSiteRemoved:
		return "removed"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted to subscribers after a site changes.
type Event struct {
	Type EventType
	Site Site
}

// SiteMetricsRecorder receives the catalog size after every change.
type SiteMetricsRecorder interface {
	SetSiteCount(n int)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithMetrics reports the catalog size to m.
func WithMetrics(m SiteMetricsRecorder) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// Catalog is an in-memory, thread-safe store of sites.
type Catalog struct {
	mu sync.RWMutex

	sites   map[string]Site
	subs    map[int]func(Event)
	nextSub int

	metrics SiteMetricsRecorder
	now     func() time.Time
}

// NewCatalog constructs an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		sites: make(map[string]Site),
		subs:  make(map[int]func(Event)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddSite inserts a new site. It fails if the ID already exists.
func (c *Catalog) AddSite(s Site) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	if _, exists := c.sites[s.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("site %q: %w", s.ID, ErrSiteExists)
	}
	s = s.clone()
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = c.now().UTC()
	}
	c.sites[s.ID] = s
	c.notifyLocked(Event{Type: EventSiteAdded, Site: s.clone()})
	return nil
}

// UpdateSite replaces an existing site. It fails if the ID is unknown.
func (c *Catalog) UpdateSite(s Site) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	if _, exists := c.sites[s.ID]; !exists {
		c.mu.Unlock()
		return fmt.Errorf("site %q: %w", s.ID, ErrSiteNotFound)
	}
	s = s.clone()
	s.UpdatedAt = c.now().UTC()
	c.sites[s.ID] = s
	c.notifyLocked(Event{Type: EventSiteUpdated, Site: s.clone()})
	return nil
}

// PutSite inserts or replaces a site and reports whether it was created.
func (c *Catalog) PutSite(s Site) (created bool, err error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	c.mu.Lock()
	_, exists := c.sites[s.ID]
	s = s.clone()
	s.UpdatedAt = c.now().UTC()
	c.sites[s.ID] = s
	ev := Event{Type: EventSiteUpdated, Site: s.clone()}
	if !exists {
		ev.Type = EventSiteAdded
	}
	c.notifyLocked(ev)
	return !exists, nil
}

// GetSite returns a copy of the site with the given ID.
func (c *Catalog) GetSite(id string) (Site, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sites[id]
	if !ok {
		return Site{}, fmt.Errorf("site %q: %w", id, ErrSiteNotFound)
	}
	return s.clone(), nil
}

// ListSites returns a snapshot of all sites ordered by ID.
func (c *Catalog) ListSites() []Site {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]Site, 0, len(c.sites))
	for _, s := range c.sites {
		res = append(res, s.clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len reports the number of sites.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sites)
}

// RemoveSite deletes a site.
func (c *Catalog) RemoveSite(id string) error {
	c.mu.Lock()
	s, ok := c.sites[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("site %q: %w", id, ErrSiteNotFound)
	}
	delete(c.sites, id)
	c.notifyLocked(Event{Type: EventSiteRemoved, Site: s})
	return nil
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function that is safe to call more than once.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// notifyLocked releases c.mu, then updates metrics and calls subscribers
// outside the lock so callbacks may read the catalog.
func (c *Catalog) notifyLocked(ev Event) {
	n := len(c.sites)
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subs[id])
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SetSiteCount(n)
	}
	for _, sub := range subs {
		sub(ev)
	}
}
