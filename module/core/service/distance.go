package service

import (
	"math"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

const earthRadiusKm = 6371

// HaversineKm is the great-circle distance between two coordinates. The
// divergence analyzer and the waypoint tracker both measure with it so their
// thresholds stay comparable.
func HaversineKm(p1, p2 domain.Coordinate) float64 {
	dLat := toRad(p2.Lat - p1.Lat)
	dLon := toRad(p2.Lon - p1.Lon)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p1.Lat))*math.Cos(toRad(p2.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
