package domain

type TripEventType string

const (
	RouteCalculated TripEventType = "route_calculated"
	WaypointArrived TripEventType = "waypoint_arrived"
	TripCompleted   TripEventType = "trip_completed"
)

type TripEvent struct {
	SessionID     string        `json:"session_id"`
	Type          TripEventType `json:"type"`
	WaypointIndex int           `json:"waypoint_index"`
	WaypointTotal int           `json:"waypoint_total"`
	Location      Coordinate    `json:"location"`
	NavigationURL string        `json:"navigation_url,omitempty"`
	Timestamp     int64         `json:"timestamp"`
}
