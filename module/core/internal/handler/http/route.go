package http

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/service"
)

type waypointResponse struct {
	Index         int                    `json:"index"`
	Label         string                 `json:"label"`
	Latitude      float64                `json:"latitude"`
	Longitude     float64                `json:"longitude"`
	Status        service.WaypointStatus `json:"status"`
	NavigationURL string                 `json:"navigation_url"`
}

type routeResponse struct {
	SessionID    string             `json:"session_id"`
	StartAddress string             `json:"start_address,omitempty"`
	EndAddress   string             `json:"end_address,omitempty"`
	Start        domain.Coordinate  `json:"start"`
	End          domain.Coordinate  `json:"end"`
	CarPath      domain.Path        `json:"car_path"`
	TruckPath    domain.Path        `json:"truck_path"`
	Waypoints    []waypointResponse `json:"waypoints"`
	CurrentIndex int                `json:"current_index"`
	Total        int                `json:"total"`
	CalculatedAt int64              `json:"calculated_at"`
}

func toRouteResponse(sessionID string, route *domain.Route, currentIndex int) routeResponse {
	wps := make([]waypointResponse, len(route.Waypoints))
	for i, wp := range route.Waypoints {
		wps[i] = waypointResponse{
			Index:         i,
			Label:         service.WaypointLabel(i),
			Latitude:      wp.Lat,
			Longitude:     wp.Lon,
			Status:        service.StatusOf(i, currentIndex),
			NavigationURL: service.NavigationURL(wp),
		}
	}

	return routeResponse{
		SessionID:    sessionID,
		StartAddress: route.StartAddress,
		EndAddress:   route.EndAddress,
		Start:        route.Start,
		End:          route.End,
		CarPath:      route.Car,
		TruckPath:    route.Truck,
		Waypoints:    wps,
		CurrentIndex: currentIndex,
		Total:        len(route.Waypoints),
		CalculatedAt: route.CalculatedAt.UnixMilli(),
	}
}

// toFeatureCollection renders the route as GeoJSON for map clients: both
// paths and the waypoint chain as LineStrings, and one Point per waypoint.
// A line with fewer than two distinct points has no LineString form and is
// left out; the waypoint Points still carry it.
func toFeatureCollection(route *domain.Route, currentIndex int) (geom.GeoJSONFeatureCollection, error) {
	var fc geom.GeoJSONFeatureCollection

	lines := []struct {
		path  []domain.Coordinate
		props map[string]interface{}
	}{
		{route.Car, map[string]interface{}{"kind": "path", "vehicle": string(domain.VehicleCar)}},
		{route.Truck, map[string]interface{}{"kind": "path", "vehicle": string(domain.VehicleTruck)}},
		{route.Waypoints, map[string]interface{}{"kind": "progress"}},
	}
	for _, l := range lines {
		if !hasTwoDistinct(l.path) {
			continue
		}
		ls, err := lineString(l.path)
		if err != nil {
			return nil, err
		}
		fc = append(fc, geom.GeoJSONFeature{Geometry: ls.AsGeometry(), Properties: l.props})
	}

	for i, wp := range route.Waypoints {
		pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: wp.Lon, Y: wp.Lat}, Type: geom.DimXY})
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: pt.AsGeometry(),
			ID:       i,
			Properties: map[string]interface{}{
				"kind":           "waypoint",
				"label":          service.WaypointLabel(i),
				"status":         string(service.StatusOf(i, currentIndex)),
				"navigation_url": service.NavigationURL(wp),
			},
		})
	}
	return fc, nil
}

func hasTwoDistinct(path []domain.Coordinate) bool {
	if len(path) < 2 {
		return false
	}
	for _, c := range path[1:] {
		if c != path[0] {
			return true
		}
	}
	return false
}

func lineString(path []domain.Coordinate) (geom.LineString, error) {
	flat := make([]float64, 0, 2*len(path))
	for _, c := range path {
		flat = append(flat, c.Lon, c.Lat)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}
