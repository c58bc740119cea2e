package config

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// ConnectHooks run after every successful MQTT (re)connect. Hooks may be
// added after the client exists.
type ConnectHooks struct {
	mu    sync.Mutex
	hooks []func()
}

func (h *ConnectHooks) Add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

func (h *ConnectHooks) run() {
	h.mu.Lock()
	hooks := append([]func(){}, h.hooks...)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func NewMQTT(cfg *Config, log zerolog.Logger, hooks *ConnectHooks) (mqtt.Client, error) {
	// Ordered delivery keeps each session's position samples serialized.
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetOrderMatters(true).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Str("broker", cfg.MQTTBroker).Msg("mqtt connection lost")
		}).
		SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
			log.Info().Str("broker", cfg.MQTTBroker).Msg("mqtt reconnecting")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			if hooks != nil {
				hooks.run()
			}
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}
