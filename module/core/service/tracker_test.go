package service

import (
	"errors"
	"math"
	"testing"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

// northOf returns a point distanceKm due north of c.
func northOf(c domain.Coordinate, distanceKm float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + distanceKm/6371*180/math.Pi, Lon: c.Lon}
}

func newTestTracker(t *testing.T, wps ...domain.Coordinate) *WaypointTracker {
	t.Helper()
	tr := NewWaypointTracker(DefaultArrivalRadiusKm)
	if err := tr.Initialize(wps); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return tr
}

func TestOnPositionUpdate_NotInitialized(t *testing.T) {
	tr := NewWaypointTracker(0)
	_, err := tr.OnPositionUpdate(domain.Coordinate{Lat: 1, Lon: 1})
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInitialize_NoWaypoints(t *testing.T) {
	tr := NewWaypointTracker(0)
	if err := tr.Initialize(nil); !errors.Is(err, domain.ErrNoWaypoints) {
		t.Fatalf("expected ErrNoWaypoints, got %v", err)
	}
	if tr.Initialized() {
		t.Error("expected tracker to stay idle")
	}
}

func TestOnPositionUpdate_ArrivalRadius(t *testing.T) {
	wp0 := domain.Coordinate{Lat: 1, Lon: 1}
	wp1 := domain.Coordinate{Lat: 2, Lon: 2}
	tr := newTestTracker(t, wp0, wp1)

	p, err := tr.OnPositionUpdate(northOf(wp0, 0.35))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Arrived || p.CurrentIndex != 0 {
		t.Fatalf("expected no arrival at 0.35km, got %+v", p)
	}
	if math.Abs(p.DistanceToTargetKm-0.35) > 1e-6 {
		t.Errorf("expected 0.35km, got %f", p.DistanceToTargetKm)
	}

	p, err = tr.OnPositionUpdate(northOf(wp0, 0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Arrived || p.CurrentIndex != 1 {
		t.Fatalf("expected arrival at 0.25km, got %+v", p)
	}
	if p.TripComplete {
		t.Error("expected trip to continue")
	}

	p, err = tr.OnPositionUpdate(northOf(wp1, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentIndex != 2 || !p.TripComplete {
		t.Fatalf("expected trip complete at index 2, got %+v", p)
	}
}

func TestOnPositionUpdate_AdvancesAtMostOnce(t *testing.T) {
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	tr := newTestTracker(t, wp, wp, wp)

	p, err := tr.OnPositionUpdate(wp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentIndex != 1 {
		t.Fatalf("expected index 1, got %d", p.CurrentIndex)
	}
}

func TestOnPositionUpdate_CompletesTrip(t *testing.T) {
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	tr := newTestTracker(t, wp)

	p, err := tr.OnPositionUpdate(wp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.TripComplete {
		t.Fatal("expected trip complete")
	}
	if p.Arrived {
		t.Error("expected arrived to be false on completion")
	}
	if !tr.Complete() {
		t.Error("expected tracker complete")
	}
}

func TestOnPositionUpdate_CompleteIsTerminal(t *testing.T) {
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	tr := newTestTracker(t, wp)
	if _, err := tr.OnPositionUpdate(wp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := tr.State()

	far := domain.Coordinate{Lat: 10, Lon: 10}
	p, err := tr.OnPositionUpdate(far)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.TripComplete || p.CurrentIndex != 1 {
		t.Errorf("expected complete at index 1, got %+v", p)
	}
	after := tr.State()
	if *after.LastKnownPosition != *before.LastKnownPosition {
		t.Errorf("expected last position unchanged, got %+v", after.LastKnownPosition)
	}
}

func TestOnPositionUpdate_MonotonicIndex(t *testing.T) {
	wps := []domain.Coordinate{{Lat: 45, Lon: 5}, {Lat: 45.1, Lon: 5}, {Lat: 45.2, Lon: 5}}
	tr := newTestTracker(t, wps...)

	positions := []domain.Coordinate{wps[0], {Lat: 0, Lon: 0}, wps[0], wps[1], {Lat: 50, Lon: 5}, wps[2]}
	last := 0
	for _, pos := range positions {
		p, err := tr.OnPositionUpdate(pos)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.CurrentIndex < last || p.CurrentIndex > last+1 {
			t.Fatalf("index moved from %d to %d", last, p.CurrentIndex)
		}
		last = p.CurrentIndex
	}
	if last != 3 {
		t.Errorf("expected 3, got %d", last)
	}
}

func TestInitialize_ResetsProgress(t *testing.T) {
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	tr := newTestTracker(t, wp, wp)
	if _, err := tr.OnPositionUpdate(wp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tr.Initialize([]domain.Coordinate{{Lat: 1, Lon: 1}}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	s := tr.State()
	if s.CurrentIndex != 0 || s.LastKnownPosition != nil || len(s.Waypoints) != 1 {
		t.Errorf("expected fresh state, got %+v", s)
	}
}

func TestState_ReturnsCopy(t *testing.T) {
	wps := []domain.Coordinate{{Lat: 45, Lon: 5}}
	tr := newTestTracker(t, wps...)
	wps[0] = domain.Coordinate{}

	s := tr.State()
	s.Waypoints[0] = domain.Coordinate{Lat: 1}
	if tr.State().Waypoints[0] != (domain.Coordinate{Lat: 45, Lon: 5}) {
		t.Error("expected tracker waypoints to be isolated from callers")
	}
}
