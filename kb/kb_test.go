package kb

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/model"
)

func testSite(id string) Site {
	return Site{
		ID:          id,
		Name:        "Site " + id,
		LatDeg:      33.2,
		LonDeg:      -117.4,
		AltM:        150,
		OffsetX:     1200,
		OffsetY:     -800,
		RotationDeg: 25,
	}
}

type countRecorder struct {
	mu   sync.Mutex
	last int
	n    int
}

func (r *countRecorder) SetSiteCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = n
	r.n++
}

func TestAddAndGetSite(t *testing.T) {
	cat := NewCatalog()
	if err := cat.AddSite(testSite("s1")); err != nil {
		t.Fatalf("AddSite error: %v", err)
	}
	got, err := cat.GetSite("s1")
	if err != nil {
		t.Fatalf("GetSite error: %v", err)
	}
	if got.Name != "Site s1" || got.LatDeg != 33.2 {
		t.Fatalf("GetSite returned %#v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
}

func TestAddSiteDuplicate(t *testing.T) {
	cat := NewCatalog()
	if err := cat.AddSite(testSite("s1")); err != nil {
		t.Fatalf("first AddSite error: %v", err)
	}
	if err := cat.AddSite(testSite("s1")); !errors.Is(err, ErrSiteExists) {
		t.Fatalf("duplicate AddSite error = %v, want ErrSiteExists", err)
	}
}

func TestSiteValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Site)
	}{
		{"empty id", func(s *Site) { s.ID = " " }},
		{"latitude too large", func(s *Site) { s.LatDeg = 91 }},
		{"longitude too small", func(s *Site) { s.LonDeg = -181 }},
		{"nan altitude", func(s *Site) { s.AltM = math.NaN() }},
		{"infinite rotation", func(s *Site) { s.RotationDeg = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSite("s1")
			tt.mutate(&s)
			if err := NewCatalog().AddSite(s); !errors.Is(err, ErrInvalidSite) {
				t.Fatalf("AddSite error = %v, want ErrInvalidSite", err)
			}
		})
	}
}

func TestGetMissingSite(t *testing.T) {
	cat := NewCatalog()
	if _, err := cat.GetSite("nope"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("GetSite error = %v, want ErrSiteNotFound", err)
	}
	if err := cat.UpdateSite(testSite("nope")); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("UpdateSite error = %v, want ErrSiteNotFound", err)
	}
	if err := cat.RemoveSite("nope"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("RemoveSite error = %v, want ErrSiteNotFound", err)
	}
}

func TestListSitesSortedSnapshot(t *testing.T) {
	cat := NewCatalog()
	for _, id := range []string{"c", "a", "b"} {
		s := testSite(id)
		s.Metadata = map[string]any{"owner": "range-ops"}
		if err := cat.AddSite(s); err != nil {
			t.Fatalf("AddSite(%s) error: %v", id, err)
		}
	}
	list := cat.ListSites()
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Fatalf("ListSites order = %v", list)
	}

	list[0].Metadata["owner"] = "changed"
	got, _ := cat.GetSite("a")
	if got.Metadata["owner"] != "range-ops" {
		t.Fatalf("catalog metadata mutated through snapshot: %v", got.Metadata)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cat.Len())
	}
}

func TestPutSiteReportsCreation(t *testing.T) {
	cat := NewCatalog()
	created, err := cat.PutSite(testSite("s1"))
	if err != nil || !created {
		t.Fatalf("first PutSite = %v, %v; want created", created, err)
	}
	s := testSite("s1")
	s.AltM = 10
	created, err = cat.PutSite(s)
	if err != nil || created {
		t.Fatalf("second PutSite = %v, %v; want replaced", created, err)
	}
	got, _ := cat.GetSite("s1")
	if got.AltM != 10 {
		t.Fatalf("AltM = %v, want 10", got.AltM)
	}
}

func TestSubscribeReceivesEventsInOrder(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &countRecorder{}
	cat := NewCatalog(WithMetrics(rec), WithClock(func() time.Time { return fixed }))

	var events []Event
	unsubscribe := cat.Subscribe(func(ev Event) {
		// Callbacks run outside the lock.
		_ = cat.Len()
		events = append(events, ev)
	})

	if err := cat.AddSite(testSite("s1")); err != nil {
		t.Fatalf("AddSite error: %v", err)
	}
	upd := testSite("s1")
	upd.Name = "renamed"
	if err := cat.UpdateSite(upd); err != nil {
		t.Fatalf("UpdateSite error: %v", err)
	}
	if err := cat.RemoveSite("s1"); err != nil {
		t.Fatalf("RemoveSite error: %v", err)
	}

	want := []EventType{EventSiteAdded, EventSiteUpdated, EventSiteRemoved}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Type != want[i] {
			t.Fatalf("event %d type = %s, want %s", i, ev.Type, want[i])
		}
	}
	if events[1].Site.Name != "renamed" || !events[1].Site.UpdatedAt.Equal(fixed) {
		t.Fatalf("update event carried %#v", events[1].Site)
	}
	if rec.last != 0 || rec.n != 3 {
		t.Fatalf("metrics recorder last=%d calls=%d, want 0 and 3", rec.last, rec.n)
	}

	unsubscribe()
	unsubscribe()
	if err := cat.AddSite(testSite("s2")); err != nil {
		t.Fatalf("AddSite error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("received event after unsubscribe")
	}
}

func TestSiteConverterAppliesOriginAndOffsets(t *testing.T) {
	s := testSite("s1")
	conv := s.Converter()

	if conv.ReferenceOriginStatus() != core.OriginSet {
		t.Fatalf("origin status = %s, want set", conv.ReferenceOriginStatus())
	}
	origin := conv.ReferenceOrigin()
	if math.Abs(origin.Lat()-core.DegToRad(33.2)) > 1e-12 || origin.Alt() != 150 {
		t.Fatalf("origin = %+v", origin)
	}
	x, y, rot := conv.TangentPlaneOffsets()
	if x != 1200 || y != -800 || math.Abs(rot-core.DegToRad(25)) > 1e-12 {
		t.Fatalf("offsets = %v, %v, %v", x, y, rot)
	}

	at := model.NewCoordinate(model.SystemLLA, origin)
	ned, err := conv.Convert(at, model.SystemNED)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if core.Norm(ned.Position()) > 1e-6 {
		t.Fatalf("origin in NED = %+v, want zero", ned.Position())
	}
}

func TestConcurrentAccess(t *testing.T) {
	cat := NewCatalog(WithMetrics(&countRecorder{}))
	if err := cat.AddSite(testSite("s0")); err != nil {
		t.Fatalf("AddSite error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = cat.GetSite("s0")
			_ = cat.ListSites()
		}()
		go func() {
			defer wg.Done()
			s := testSite(fmt.Sprintf("s%d", i+1))
			_, _ = cat.PutSite(s)
		}()
	}
	wg.Wait()
	if cat.Len() != 11 {
		t.Fatalf("Len = %d, want 11", cat.Len())
	}
}
