package config

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status       string                       `json:"status"`
	Dependencies map[string]map[string]string `json:"dependencies"`
}

func serveHealth(t *testing.T, h *HealthChecker) (int, healthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(w, req)

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return w.Code, resp
}

func TestHealth_AllUp(t *testing.T) {
	h := &HealthChecker{checks: make(map[string]Check)}
	h.Add("postgres", func(context.Context) error { return nil })
	h.Add("mqtt", func(context.Context) error { return nil })

	code, resp := serveHealth(t, h)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Dependencies["mqtt"]["status"] != "up" {
		t.Errorf("expected mqtt up, got %v", resp.Dependencies["mqtt"])
	}
}

func TestHealth_OneDown(t *testing.T) {
	h := &HealthChecker{checks: make(map[string]Check)}
	h.Add("postgres", func(context.Context) error { return nil })
	h.Add("rabbitmq", func(context.Context) error { return errors.New("connection closed") })

	code, resp := serveHealth(t, h)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %s", resp.Status)
	}
	if resp.Dependencies["rabbitmq"]["error"] != "connection closed" {
		t.Errorf("expected connection closed, got %v", resp.Dependencies["rabbitmq"])
	}
	if resp.Dependencies["postgres"]["status"] != "up" {
		t.Errorf("expected postgres up, got %v", resp.Dependencies["postgres"])
	}
}
