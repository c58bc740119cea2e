package subscriber

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

const topicFormat = "routes/session/%s/position"

// positionMessage is one GPS fix. Timestamp is in Unix milliseconds, the
// unit browsers use for Position.timestamp.
type positionMessage struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Timestamp int64    `json:"timestamp" validate:"gt=0"`
}

// PositionSubscriber feeds per-session MQTT position topics to a handler.
// It remembers the active subscriptions so they can be restored after the
// broker connection is re-established.
type PositionSubscriber struct {
	client   mqtt.Client
	validate *validator.Validate
	log      zerolog.Logger

	mu     sync.Mutex
	active map[string]mqtt.MessageHandler
}

func NewPositionSubscriber(client mqtt.Client, log zerolog.Logger) *PositionSubscriber {
	return &PositionSubscriber{
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		active:   make(map[string]mqtt.MessageHandler),
	}
}

func (s *PositionSubscriber) Topic(sessionID string) string {
	return fmt.Sprintf(topicFormat, sessionID)
}

func (s *PositionSubscriber) Available() bool {
	return s.client != nil && s.client.IsConnected()
}

func (s *PositionSubscriber) Subscribe(sessionID string, handle func(domain.PositionSample)) error {
	topic := s.Topic(sessionID)
	cb := s.messageHandler(sessionID, handle)

	token := s.client.Subscribe(topic, 1, cb)
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}

	s.mu.Lock()
	s.active[topic] = cb
	s.mu.Unlock()
	return nil
}

// Resubscribe renews every active subscription. It is meant to run from the
// client's on-connect handler, since a clean-session reconnect drops them on
// the broker side.
func (s *PositionSubscriber) Resubscribe() {
	s.mu.Lock()
	subs := make(map[string]mqtt.MessageHandler, len(s.active))
	for topic, cb := range s.active {
		subs[topic] = cb
	}
	s.mu.Unlock()

	for topic, cb := range subs {
		token := s.client.Subscribe(topic, 1, cb)
		go func(topic string) {
			if token.Wait() && token.Error() != nil {
				s.log.Error().Err(token.Error()).Str("topic", topic).Msg("resubscribe")
			}
		}(topic)
	}
	if len(subs) > 0 {
		s.log.Info().Int("topics", len(subs)).Msg("position feeds resubscribed")
	}
}

// Unsubscribe does not wait for the broker: it is called from inside message
// handlers, where blocking on a token stalls ordered delivery.
func (s *PositionSubscriber) Unsubscribe(sessionID string) error {
	topic := s.Topic(sessionID)

	s.mu.Lock()
	delete(s.active, topic)
	s.mu.Unlock()

	token := s.client.Unsubscribe(topic)
	go func() {
		if token.Wait() && token.Error() != nil {
			s.log.Warn().Err(token.Error()).Str("topic", topic).Msg("unsubscribe")
		}
	}()
	return nil
}

func (s *PositionSubscriber) messageHandler(sessionID string, handle func(domain.PositionSample)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var raw positionMessage
		if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
			s.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("invalid position message")
			return
		}

		if err := s.validate.Struct(&raw); err != nil {
			s.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("position validation error")
			return
		}

		handle(domain.PositionSample{
			SessionID: sessionID,
			Location:  domain.Coordinate{Lat: *raw.Latitude, Lon: *raw.Longitude},
			Timestamp: time.UnixMilli(raw.Timestamp),
		})
	}
}
