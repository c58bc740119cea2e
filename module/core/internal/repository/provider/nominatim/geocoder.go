package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/provider"
)

var _ provider.Geocoder = (*Geocoder)(nil)

type Geocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewGeocoder(baseURL, userAgent string, httpClient *http.Client) *Geocoder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Geocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Geocoder) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: nominatim returned %d", address, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: decode: %w", address, err)
	}
	if len(results) == 0 {
		return domain.Coordinate{}, fmt.Errorf("%w: %s", domain.ErrAddressNotFound, address)
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: invalid lat/lon %q,%q", address, results[0].Lat, results[0].Lon)
	}

	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}
