package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/provider"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/publisher"
)

type RouteService struct {
	geocoder  provider.Geocoder
	router    provider.Router
	analyzer  *DivergenceAnalyzer
	sessions  *SessionStore
	publisher publisher.TripEventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewRouteService(
	geocoder provider.Geocoder,
	router provider.Router,
	analyzer *DivergenceAnalyzer,
	sessions *SessionStore,
	pub publisher.TripEventPublisher,
	log zerolog.Logger,
) *RouteService {
	return &RouteService{
		geocoder:  geocoder,
		router:    router,
		analyzer:  analyzer,
		sessions:  sessions,
		publisher: pub,
		log:       log,
		now:       time.Now,
	}
}

// Calculate geocodes the endpoints, fetches the car and truck routes
// concurrently and replaces the session's route with the analyzed result.
// On error the session keeps its previous route.
func (s *RouteService) Calculate(ctx context.Context, sessionID string, req domain.RouteRequest) (*domain.Route, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	start, err := s.resolve(ctx, req.Start, req.StartAddress, "start")
	if err != nil {
		return nil, err
	}
	end, err := s.resolve(ctx, req.End, req.EndAddress, "end")
	if err != nil {
		return nil, err
	}

	var car, truck domain.Path
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.router.Route(gctx, start, end, domain.VehicleCar)
		car = p
		return err
	})
	g.Go(func() error {
		p, err := s.router.Route(gctx, start, end, domain.VehicleTruck)
		truck = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	waypoints, err := s.analyzer.Analyze(car, truck)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRouteProvider, err)
	}

	route := domain.Route{
		StartAddress: req.StartAddress,
		EndAddress:   req.EndAddress,
		Start:        start,
		End:          end,
		Car:          car,
		Truck:        truck,
		Waypoints:    waypoints,
		CalculatedAt: s.now(),
	}
	if err := sess.ReplaceRoute(route); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", sessionID).
		Int("car_points", len(car)).
		Int("truck_points", len(truck)).
		Int("waypoints", len(waypoints)).
		Msg("route calculated")

	event := &domain.TripEvent{
		SessionID:     sessionID,
		Type:          domain.RouteCalculated,
		WaypointIndex: 0,
		WaypointTotal: len(waypoints),
		Location:      waypoints[0],
		NavigationURL: NavigationURL(waypoints[0]),
		Timestamp:     route.CalculatedAt.UnixMilli(),
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("publish route event")
	}

	return &route, nil
}

func (s *RouteService) resolve(ctx context.Context, coord *domain.Coordinate, address, which string) (domain.Coordinate, error) {
	if coord != nil {
		if err := coord.Validate(); err != nil {
			return domain.Coordinate{}, fmt.Errorf("%s: %w", which, err)
		}
		return *coord, nil
	}
	if strings.TrimSpace(address) == "" {
		return domain.Coordinate{}, fmt.Errorf("%w: %s address or coordinate required", domain.ErrInvalidInput, which)
	}

	c, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrAddressNotFound) {
			return domain.Coordinate{}, fmt.Errorf("geocode %s: %w", which, err)
		}
		return domain.Coordinate{}, fmt.Errorf("%w: %s: %w", domain.ErrGeocoding, which, err)
	}
	return c, nil
}
