package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

func twoStopRoute() domain.Route {
	return domain.Route{
		Car:       domain.Path{{Lat: 45, Lon: 5}, {Lat: 45.2, Lon: 5}},
		Truck:     domain.Path{{Lat: 45, Lon: 5.1}, {Lat: 45.2, Lon: 5}},
		Waypoints: []domain.Coordinate{{Lat: 45, Lon: 5.1}, {Lat: 45.2, Lon: 5}},
	}
}

func sampleAt(id string, c domain.Coordinate, ts time.Time) domain.PositionSample {
	return domain.PositionSample{SessionID: id, Location: c, Timestamp: ts}
}

func TestSessionStore_CreateGetDelete(t *testing.T) {
	store := NewSessionStore(0.3)
	sess := store.Create()
	if sess.ID == "" {
		t.Fatal("expected session id")
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sess {
		t.Error("expected same session")
	}

	if _, err := store.Delete(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := store.Delete(sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_UniqueIDs(t *testing.T) {
	store := NewSessionStore(0.3)
	if store.Create().ID == store.Create().ID {
		t.Error("expected distinct session ids")
	}
}

func TestSession_ApplyBeforeRoute(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	_, err := sess.ApplyPosition(sampleAt(sess.ID, domain.Coordinate{}, time.Now()))
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSession_ReplaceRouteResetsProgress(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	route := twoStopRoute()
	if err := sess.ReplaceRoute(route); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	d := sess.Dashboard()
	if d.TargetOrdinal != 1 || d.Total != 2 {
		t.Errorf("expected 1/2, got %d/%d", d.TargetOrdinal, d.Total)
	}

	now := time.Now()
	if _, err := sess.ApplyPosition(sampleAt(sess.ID, route.Waypoints[0], now)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sess.TrackerState().CurrentIndex != 1 {
		t.Fatalf("expected index 1, got %d", sess.TrackerState().CurrentIndex)
	}

	if err := sess.ReplaceRoute(route); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	if sess.TrackerState().CurrentIndex != 0 {
		t.Errorf("expected index reset to 0, got %d", sess.TrackerState().CurrentIndex)
	}
	// An older sample is accepted again once the route has been replaced.
	if _, err := sess.ApplyPosition(sampleAt(sess.ID, route.Waypoints[0], now)); err != nil {
		t.Errorf("expected sample to be accepted after replacement, got %v", err)
	}
}

func TestSession_ReplaceRouteKeepsOldOnFailure(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	if err := sess.ReplaceRoute(twoStopRoute()); err != nil {
		t.Fatalf("replace route: %v", err)
	}

	err := sess.ReplaceRoute(domain.Route{})
	if !errors.Is(err, domain.ErrNoWaypoints) {
		t.Fatalf("expected ErrNoWaypoints, got %v", err)
	}
	route, ok := sess.Route()
	if !ok || len(route.Waypoints) != 2 {
		t.Errorf("expected previous route kept, got %+v", route)
	}
}

func TestSession_StaleSamples(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	if err := sess.ReplaceRoute(twoStopRoute()); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	now := time.Now()
	far := domain.Coordinate{Lat: 10, Lon: 10}

	if _, err := sess.ApplyPosition(sampleAt(sess.ID, far, now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sess.ApplyPosition(sampleAt(sess.ID, far, now)); !errors.Is(err, ErrStaleSample) {
		t.Errorf("expected ErrStaleSample for duplicate sample, got %v", err)
	}
	if _, err := sess.ApplyPosition(sampleAt(sess.ID, far, now.Add(-time.Second))); !errors.Is(err, ErrStaleSample) {
		t.Errorf("expected ErrStaleSample for reordered sample, got %v", err)
	}
}

func TestSession_AcceptsLaggingDeviceClock(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	if err := sess.ReplaceRoute(twoStopRoute()); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	behind := time.Now().Add(-time.Hour)
	far := domain.Coordinate{Lat: 10, Lon: 10}

	if _, err := sess.ApplyPosition(sampleAt(sess.ID, far, behind)); err != nil {
		t.Fatalf("expected sample from a slow clock to be accepted, got %v", err)
	}
	if _, err := sess.ApplyPosition(sampleAt(sess.ID, far, behind.Add(time.Second))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSession_DashboardFollowsNewTarget(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	wp0 := domain.Coordinate{Lat: 45, Lon: 5}
	wp1 := domain.Coordinate{Lat: 46, Lon: 5}
	if err := sess.ReplaceRoute(domain.Route{Waypoints: []domain.Coordinate{wp0, wp1}}); err != nil {
		t.Fatalf("replace route: %v", err)
	}

	upd, err := sess.ApplyPosition(sampleAt(sess.ID, wp0, time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := HaversineKm(wp0, wp1)
	d := upd.Dashboard
	if d.TargetOrdinal != 2 {
		t.Fatalf("expected ordinal 2, got %d", d.TargetOrdinal)
	}
	if math.Abs(d.DistanceKm-want) > 1e-9 {
		t.Errorf("expected %fkm to waypoint 2, got %f", want, d.DistanceKm)
	}
	if math.Abs(d.ETAMinutes-want) > 1e-9 {
		t.Errorf("expected eta %f, got %f", want, d.ETAMinutes)
	}
	if sess.Dashboard() != d {
		t.Errorf("expected stored dashboard %+v, got %+v", d, sess.Dashboard())
	}
}

func TestSession_CompleteIgnoresTimestamps(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	if err := sess.ReplaceRoute(domain.Route{Waypoints: []domain.Coordinate{wp}}); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	now := time.Now()
	if _, err := sess.ApplyPosition(sampleAt(sess.ID, wp, now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ts := range []time.Time{now, now.Add(-time.Minute)} {
		upd, err := sess.ApplyPosition(sampleAt(sess.ID, wp, ts))
		if err != nil {
			t.Fatalf("expected no error after completion, got %v", err)
		}
		if !upd.Progress.TripComplete || upd.Progress.CurrentIndex != 1 {
			t.Errorf("expected terminal progress, got %+v", upd.Progress)
		}
		if upd.Completed {
			t.Error("expected completion to be reported once")
		}
		if !upd.Dashboard.TripComplete {
			t.Error("expected dashboard to stay complete")
		}
	}
}

func TestSession_DuplicateSampleAdvancesOnce(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	if err := sess.ReplaceRoute(domain.Route{Waypoints: []domain.Coordinate{wp, wp, wp}}); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	now := time.Now()
	s := sampleAt(sess.ID, wp, now)

	upd, err := sess.ApplyPosition(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !upd.Progress.Arrived || upd.Next == nil || *upd.Next != wp {
		t.Errorf("expected arrival with next target, got %+v", upd)
	}
	if _, err := sess.ApplyPosition(s); !errors.Is(err, ErrStaleSample) {
		t.Fatalf("expected ErrStaleSample, got %v", err)
	}
	if sess.TrackerState().CurrentIndex != 1 {
		t.Errorf("expected index 1, got %d", sess.TrackerState().CurrentIndex)
	}
}

func TestSession_CompletedReportedOnce(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	wp := domain.Coordinate{Lat: 45, Lon: 5}
	if err := sess.ReplaceRoute(domain.Route{Waypoints: []domain.Coordinate{wp}}); err != nil {
		t.Fatalf("replace route: %v", err)
	}
	now := time.Now()

	upd, err := sess.ApplyPosition(sampleAt(sess.ID, wp, now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !upd.Completed || !upd.Dashboard.TripComplete {
		t.Fatalf("expected completion, got %+v", upd)
	}

	upd, err = sess.ApplyPosition(sampleAt(sess.ID, wp, now.Add(time.Second)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.Completed {
		t.Error("expected completion to be reported once")
	}
	if !upd.Progress.TripComplete {
		t.Error("expected trip to stay complete")
	}
}

func TestSession_BeginEndTracking(t *testing.T) {
	sess := NewSessionStore(0.3).Create()
	if _, err := sess.BeginTracking(); !errors.Is(err, domain.ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
	if err := sess.ReplaceRoute(twoStopRoute()); err != nil {
		t.Fatalf("replace route: %v", err)
	}

	started, err := sess.BeginTracking()
	if err != nil || !started {
		t.Fatalf("expected tracking to start, got %v %v", started, err)
	}
	if started, _ := sess.BeginTracking(); started {
		t.Error("expected second begin to be a no-op")
	}
	if !sess.EndTracking() {
		t.Error("expected end to report a change")
	}
	if sess.EndTracking() {
		t.Error("expected second end to be a no-op")
	}
	if sess.Tracking() {
		t.Error("expected tracking off")
	}
}
