package core

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/yopyKO/pwa-camping-car-final/config"
	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	handler "github.com/yopyKO/pwa-camping-car-final/module/core/internal/handler/http"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/handler/subscriber"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/handler/ws"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/database/postgres"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/provider/graphhopper"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/provider/nominatim"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/publisher/rabbitmq"
	"github.com/yopyKO/pwa-camping-car-final/module/core/service"
)

type Module struct {
	Sessions    *service.SessionStore
	RouteSvc    *service.RouteService
	TrackingSvc *service.TrackingService
	handler     *handler.SessionHandler
	feed        *subscriber.PositionSubscriber
	publisher   *rabbitmq.TripEventPublisher
}

func Build(ctx context.Context, db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, cfg *config.Config, log zerolog.Logger) (*Module, error) {
	positionRepo := postgres.NewPositionRepo(db)
	if err := positionRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("position log schema: %w", err)
	}

	tripPub, err := rabbitmq.NewTripEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("trip event publisher: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	geocoder := nominatim.NewGeocoder(cfg.NominatimURL, cfg.NominatimUserAgent, httpClient)
	router := graphhopper.NewRouter(cfg.GraphHopperURL, cfg.GraphHopperKey, cfg.GraphHopperLocale, httpClient)

	sessions := service.NewSessionStore(cfg.ArrivalRadiusKm)
	analyzer := service.NewDivergenceAnalyzer(cfg.DivergenceStride, cfg.DivergenceThresholdKm)

	feed := subscriber.NewPositionSubscriber(mqttClient, log.With().Str("component", "position_feed").Logger())
	hub := ws.NewHub(log.With().Str("component", "live").Logger())

	routeSvc := service.NewRouteService(geocoder, router, analyzer, sessions, tripPub, log.With().Str("component", "route").Logger())
	trackingSvc := service.NewTrackingService(sessions, positionRepo, tripPub, feed, hub, domain.GeolocationOptions{
		HighAccuracy: cfg.PositionHighAccuracy,
		MaximumAge:   cfg.PositionMaxAge,
		Timeout:      cfg.PositionTimeout,
	}, log.With().Str("component", "tracking").Logger())

	h := handler.NewSessionHandler(sessions, routeSvc, trackingSvc, hub)

	return &Module{
		Sessions:    sessions,
		RouteSvc:    routeSvc,
		TrackingSvc: trackingSvc,
		handler:     h,
		feed:        feed,
		publisher:   tripPub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

// ResumeFeeds restores the position subscriptions of tracked sessions after
// the MQTT client reconnects.
func (m *Module) ResumeFeeds() {
	m.feed.Resubscribe()
}

func (m *Module) Close() error {
	return m.publisher.Close()
}
