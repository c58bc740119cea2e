package config

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

const checkTimeout = 2 * time.Second

// Check reports whether one backing service is reachable.
type Check func(ctx context.Context) error

type HealthChecker struct {
	names  []string
	checks map[string]Check
}

// NewHealthChecker checks the position log, the trip event broker and the
// position feed broker.
func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client) *HealthChecker {
	h := &HealthChecker{checks: make(map[string]Check)}
	h.Add("postgres", db.PingContext)
	h.Add("rabbitmq", func(context.Context) error {
		if amqpConn.IsClosed() {
			return errors.New("connection closed")
		}
		return nil
	})
	h.Add("mqtt", func(context.Context) error {
		if !mqttClient.IsConnected() {
			return errors.New("not connected")
		}
		return nil
	})
	return h
}

func (h *HealthChecker) Add(name string, check Check) {
	if _, ok := h.checks[name]; !ok {
		h.names = append(h.names, name)
	}
	h.checks[name] = check
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for _, name := range h.names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = gin.H{"status": "up"}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
