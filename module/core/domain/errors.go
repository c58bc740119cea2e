package domain

import "errors"

var (
	// ErrAddressNotFound is returned when geocoding yields no candidate.
	ErrAddressNotFound = errors.New("address not found")

	// ErrGeocoding wraps any other geocoding failure.
	ErrGeocoding = errors.New("geocoding failed")

	// ErrRouteProvider is returned when a routing request fails or returns no path.
	ErrRouteProvider = errors.New("route provider error")

	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized and ErrNoWaypoints signal tracker misuse.
	ErrNotInitialized = errors.New("tracker not initialized")
	ErrNoWaypoints    = errors.New("no waypoints")

	ErrGeolocationUnavailable = errors.New("geolocation unavailable")

	ErrSessionNotFound = errors.New("session not found")
	ErrNoRoute         = errors.New("no route calculated")
)
