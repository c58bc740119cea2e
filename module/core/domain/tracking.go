package domain

import "time"

// TrackerState is the waypoint progress of a trip. CurrentIndex equal to
// len(Waypoints) means the trip is complete.
type TrackerState struct {
	Waypoints         []Coordinate `json:"waypoints"`
	CurrentIndex      int          `json:"current_index"`
	LastKnownPosition *Coordinate  `json:"last_known_position,omitempty"`
}

// Progress is the snapshot returned for every position update.
type Progress struct {
	DistanceToTargetKm float64 `json:"distance_to_target_km"`
	CurrentIndex       int     `json:"current_index"`
	Arrived            bool    `json:"arrived"`
	TripComplete       bool    `json:"trip_complete"`
}

type Dashboard struct {
	TargetOrdinal int     `json:"target_ordinal"`
	Total         int     `json:"total"`
	DistanceKm    float64 `json:"distance_km"`
	ETAMinutes    float64 `json:"eta_minutes"`
	TripComplete  bool    `json:"trip_complete"`
}

type PositionSample struct {
	SessionID string
	Location  Coordinate
	Timestamp time.Time
}

// GeolocationOptions are the acquisition knobs handed to position sources.
type GeolocationOptions struct {
	HighAccuracy bool          `json:"enable_high_accuracy"`
	MaximumAge   time.Duration `json:"-"`
	Timeout      time.Duration `json:"-"`
}

// PositionRecord is one row of the position audit log.
type PositionRecord struct {
	SessionID     string
	Location      Coordinate
	WaypointIndex int
	DistanceKm    float64
	Timestamp     time.Time
}
