package service

import (
	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

const DefaultArrivalRadiusKm = 0.3

// WaypointTracker advances through a waypoint sequence as positions come in.
// It is not safe for concurrent use; Session serializes access to it.
//
// States: idle until Initialize, then tracking waypoint i, then complete once
// the index reaches len(waypoints). Complete is terminal.
type WaypointTracker struct {
	radiusKm float64
	state    domain.TrackerState
	ready    bool
}

func NewWaypointTracker(radiusKm float64) *WaypointTracker {
	if radiusKm <= 0 {
		radiusKm = DefaultArrivalRadiusKm
	}
	return &WaypointTracker{radiusKm: radiusKm}
}

// Initialize starts a new trip at the first waypoint.
func (t *WaypointTracker) Initialize(waypoints []domain.Coordinate) error {
	if len(waypoints) == 0 {
		return domain.ErrNoWaypoints
	}

	wps := make([]domain.Coordinate, len(waypoints))
	copy(wps, waypoints)
	t.state = domain.TrackerState{Waypoints: wps}
	t.ready = true
	return nil
}

// OnPositionUpdate measures the distance to the current target and advances
// by at most one waypoint when it is inside the arrival radius.
func (t *WaypointTracker) OnPositionUpdate(position domain.Coordinate) (domain.Progress, error) {
	if !t.ready {
		return domain.Progress{}, domain.ErrNotInitialized
	}

	total := len(t.state.Waypoints)
	if t.state.CurrentIndex >= total {
		return domain.Progress{CurrentIndex: t.state.CurrentIndex, TripComplete: true}, nil
	}

	pos := position
	t.state.LastKnownPosition = &pos

	dist := HaversineKm(position, t.state.Waypoints[t.state.CurrentIndex])
	progress := domain.Progress{DistanceToTargetKm: dist}

	if dist < t.radiusKm {
		t.state.CurrentIndex++
		if t.state.CurrentIndex == total {
			progress.TripComplete = true
		} else {
			progress.Arrived = true
		}
	}
	progress.CurrentIndex = t.state.CurrentIndex

	return progress, nil
}

func (t *WaypointTracker) Initialized() bool {
	return t.ready
}

func (t *WaypointTracker) Complete() bool {
	return t.ready && t.state.CurrentIndex >= len(t.state.Waypoints)
}

// State returns a copy of the tracker state.
func (t *WaypointTracker) State() domain.TrackerState {
	s := domain.TrackerState{
		Waypoints:    make([]domain.Coordinate, len(t.state.Waypoints)),
		CurrentIndex: t.state.CurrentIndex,
	}
	copy(s.Waypoints, t.state.Waypoints)
	if t.state.LastKnownPosition != nil {
		pos := *t.state.LastKnownPosition
		s.LastKnownPosition = &pos
	}
	return s
}
