package service

import (
	"fmt"
	"strconv"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

type WaypointStatus string

const (
	WaypointPassed  WaypointStatus = "passed"
	WaypointPending WaypointStatus = "pending"
)

// NavigationURL is the Waze deep link that hands navigation off to a waypoint.
func NavigationURL(c domain.Coordinate) string {
	return "waze://?ll=" + strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Lon, 'f', -1, 64) + "&navigate=yes"
}

func WaypointLabel(i int) string {
	return fmt.Sprintf("Waypoint %d", i+1)
}

func StatusOf(i, currentIndex int) WaypointStatus {
	if i < currentIndex {
		return WaypointPassed
	}
	return WaypointPending
}

// EstimateETAMinutes keeps the dashboard's shipped formula, which evaluates to
// the distance itself.
// TODO: replace with distanceKm / assumedSpeedKmh * 60 once a speed is agreed.
func EstimateETAMinutes(distanceKm float64) float64 {
	return (distanceKm / 60) * 60
}

func NewDashboard(p domain.Progress, total int) domain.Dashboard {
	return domain.Dashboard{
		TargetOrdinal: min(p.CurrentIndex+1, total),
		Total:         total,
		DistanceKm:    p.DistanceToTargetKm,
		ETAMinutes:    EstimateETAMinutes(p.DistanceToTargetKm),
		TripComplete:  p.TripComplete,
	}
}
