package graphhopper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/provider"
)

var _ provider.Router = (*Router)(nil)

type Router struct {
	baseURL    string
	apiKey     string
	locale     string
	httpClient *http.Client
}

func NewRouter(baseURL, apiKey, locale string, httpClient *http.Client) *Router {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Router{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		locale:     locale,
		httpClient: httpClient,
	}
}

// routeResponse is the unencoded (points_encoded=false) GraphHopper answer.
// Coordinates come in GeoJSON [lon, lat] order.
type routeResponse struct {
	Paths []struct {
		Points struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"points"`
	} `json:"paths"`
	Message string `json:"message"`
}

func (r *Router) Route(ctx context.Context, origin, destination domain.Coordinate, vehicle domain.VehicleClass) (domain.Path, error) {
	q := url.Values{}
	q.Add("point", origin.String())
	q.Add("point", destination.String())
	q.Set("vehicle", string(vehicle))
	q.Set("locale", r.locale)
	q.Set("key", r.apiKey)
	q.Set("points_encoded", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/1/route?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %w", domain.ErrRouteProvider, vehicle, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s route: %w", domain.ErrRouteProvider, vehicle, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed routeResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s route: graphhopper returned %d: %s", domain.ErrRouteProvider, vehicle, resp.StatusCode, parsed.Message)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s route: decode: %w", domain.ErrRouteProvider, vehicle, decodeErr)
	}
	if len(parsed.Paths) == 0 || len(parsed.Paths[0].Points.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: %s route: no path", domain.ErrRouteProvider, vehicle)
	}

	raw := parsed.Paths[0].Points.Coordinates
	path := make(domain.Path, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("%w: %s route: malformed coordinate %v", domain.ErrRouteProvider, vehicle, pair)
		}
		path = append(path, domain.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return path, nil
}
