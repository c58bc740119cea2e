package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

// ErrStaleSample is returned for position samples that are not newer than the
// last accepted sample.
var ErrStaleSample = errors.New("stale position sample")

// Session owns one user's route and trip progress. All mutations hold mu, so
// a route replacement and a position update never interleave.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	radiusKm   float64
	route      *domain.Route
	tracker    *WaypointTracker
	tracking   bool
	lastSample time.Time
	dashboard  domain.Dashboard
}

// PositionUpdate is the outcome of one accepted sample.
type PositionUpdate struct {
	Progress  domain.Progress
	Dashboard domain.Dashboard
	// Completed is set only on the update that finished the trip.
	Completed bool
	// Next is the new target after an arrival.
	Next *domain.Coordinate
}

func newSession(id string, radiusKm float64, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		radiusKm:  radiusKm,
		tracker:   NewWaypointTracker(radiusKm),
	}
}

// ReplaceRoute swaps in a freshly analyzed route and restarts the trip at
// the first waypoint. The previous route stays untouched when it fails.
func (s *Session) ReplaceRoute(route domain.Route) error {
	tracker := NewWaypointTracker(s.radiusKm)
	if err := tracker.Initialize(route.Waypoints); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.route = &route
	s.tracker = tracker
	s.lastSample = time.Time{}
	s.dashboard = domain.Dashboard{TargetOrdinal: 1, Total: len(route.Waypoints)}
	return nil
}

func (s *Session) Route() (domain.Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return domain.Route{}, false
	}
	return *s.route, true
}

func (s *Session) TrackerState() domain.TrackerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.State()
}

func (s *Session) Dashboard() domain.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboard
}

func (s *Session) Tracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}

// BeginTracking reports whether tracking was switched on by this call.
func (s *Session) BeginTracking() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return false, domain.ErrNoRoute
	}
	if s.tracking {
		return false, nil
	}
	s.tracking = true
	return true, nil
}

// EndTracking reports whether tracking was switched off by this call.
func (s *Session) EndTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	was := s.tracking
	s.tracking = false
	return was
}

// ApplyPosition feeds one sample to the tracker. Once the trip is complete
// every sample gets the terminal snapshot. Before that, a sample whose
// timestamp is not after the last accepted one is a redelivery and returns
// ErrStaleSample.
func (s *Session) ApplyPosition(sample domain.PositionSample) (PositionUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.Initialized() {
		return PositionUpdate{}, domain.ErrNotInitialized
	}
	if s.tracker.Complete() {
		progress, err := s.tracker.OnPositionUpdate(sample.Location)
		if err != nil {
			return PositionUpdate{}, err
		}
		return PositionUpdate{Progress: progress, Dashboard: s.dashboard}, nil
	}
	if !s.lastSample.IsZero() && !sample.Timestamp.After(s.lastSample) {
		return PositionUpdate{}, ErrStaleSample
	}

	progress, err := s.tracker.OnPositionUpdate(sample.Location)
	if err != nil {
		return PositionUpdate{}, err
	}
	s.lastSample = sample.Timestamp

	total := len(s.route.Waypoints)
	upd := PositionUpdate{
		Progress:  progress,
		Dashboard: NewDashboard(progress, total),
		Completed: progress.TripComplete,
	}
	if progress.Arrived {
		next := s.route.Waypoints[progress.CurrentIndex]
		upd.Next = &next
		// The dashboard follows the new target.
		dist := HaversineKm(sample.Location, next)
		upd.Dashboard.DistanceKm = dist
		upd.Dashboard.ETAMinutes = EstimateETAMinutes(dist)
	}
	s.dashboard = upd.Dashboard

	return upd, nil
}

// SessionStore holds the live sessions of the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	radiusKm float64
	now      func() time.Time
}

func NewSessionStore(radiusKm float64) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		radiusKm: radiusKm,
		now:      time.Now,
	}
}

func (s *SessionStore) Create() *Session {
	sess := newSession(uuid.NewString(), s.radiusKm, s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return sess, nil
}
