package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/publisher"
)

var _ publisher.TripEventPublisher = (*TripEventPublisher)(nil)

const (
	ExchangeName = "route.events"
	QueueName    = "trip_events"
)

type TripEventPublisher struct {
	ch *amqp.Channel
}

func NewTripEventPublisher(conn *amqp.Connection) (*TripEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := DeclareTopology(ch); err != nil {
		return nil, err
	}

	return &TripEventPublisher{ch: ch}, nil
}

// DeclareTopology declares the fanout exchange and the durable trip queue.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

type eventMessage struct {
	SessionID     string               `json:"session_id"`
	Type          domain.TripEventType `json:"type"`
	WaypointIndex int                  `json:"waypoint_index"`
	WaypointTotal int                  `json:"waypoint_total"`
	Location      eventLocation        `json:"location"`
	NavigationURL string               `json:"navigation_url,omitempty"`
	Timestamp     int64                `json:"timestamp"`
}

type eventLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *TripEventPublisher) PublishEvent(ctx context.Context, event *domain.TripEvent) error {
	body, err := json.Marshal(toEventMessage(event))
	if err != nil {
		return fmt.Errorf("marshal trip event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Type:        string(event.Type),
		Body:        body,
	})
}

func (p *TripEventPublisher) Close() error {
	return p.ch.Close()
}

func toEventMessage(event *domain.TripEvent) eventMessage {
	return eventMessage{
		SessionID:     event.SessionID,
		Type:          event.Type,
		WaypointIndex: event.WaypointIndex,
		WaypointTotal: event.WaypointTotal,
		Location: eventLocation{
			Latitude:  event.Location.Lat,
			Longitude: event.Location.Lon,
		},
		NavigationURL: event.NavigationURL,
		Timestamp:     event.Timestamp,
	}
}
