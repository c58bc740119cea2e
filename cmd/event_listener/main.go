package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/yopyKO/pwa-camping-car-final/config"
)

const (
	exchangeName = "route.events"
	queueName    = "trip_events"
)

type tripEvent struct {
	SessionID     string `json:"session_id"`
	Type          string `json:"type"`
	WaypointIndex int    `json:"waypoint_index"`
	WaypointTotal int    `json:"waypoint_total"`
	Location      struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	NavigationURL string `json:"navigation_url"`
	Timestamp     int64  `json:"timestamp"`
}

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		log.Fatal().Err(err).Msg("declare exchange")
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Fatal().Err(err).Msg("declare queue")
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		log.Fatal().Err(err).Msg("bind queue")
	}

	msgs, err := ch.Consume(queueName, "", true, false, false, false, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("consume")
	}

	log.Info().Str("queue", queueName).Msg("waiting for trip events")

	go func() {
		for msg := range msgs {
			var ev tripEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Warn().Err(err).Msg("malformed event")
				continue
			}
			log.Info().
				Str("session_id", ev.SessionID).
				Str("type", ev.Type).
				Int("waypoint", ev.WaypointIndex+1).
				Int("total", ev.WaypointTotal).
				Float64("lat", ev.Location.Latitude).
				Float64("lon", ev.Location.Longitude).
				Str("navigation_url", ev.NavigationURL).
				Msg("trip event")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
}
