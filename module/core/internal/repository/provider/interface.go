package provider

import (
	"context"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

// Geocoder resolves a free-form address to its best candidate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinate, error)
}

// Router returns the driving geometry between two points in (lat, lon) order.
type Router interface {
	Route(ctx context.Context, origin, destination domain.Coordinate, vehicle domain.VehicleClass) (domain.Path, error)
}
