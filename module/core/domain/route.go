package domain

import "time"

// Route is one car/truck path pair with its divergence waypoints. A new
// calculation replaces it as a whole.
type Route struct {
	StartAddress string       `json:"start_address,omitempty"`
	EndAddress   string       `json:"end_address,omitempty"`
	Start        Coordinate   `json:"start"`
	End          Coordinate   `json:"end"`
	Car          Path         `json:"car_path"`
	Truck        Path         `json:"truck_path"`
	Waypoints    []Coordinate `json:"waypoints"`
	CalculatedAt time.Time    `json:"calculated_at"`
}

// RouteRequest carries either addresses or coordinates for each endpoint.
// Coordinates win when both are given.
type RouteRequest struct {
	StartAddress string
	EndAddress   string
	Start        *Coordinate
	End          *Coordinate
}
