package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/yopyKO/pwa-camping-car-final/config"
)

// Replays a session's truck path as a GPS feed so the tracker can be driven
// without a phone.

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type routeView struct {
	TruckPath []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"truck_path"`
}

func fetchTruckPath(ctx context.Context, apiURL, sessionID string) (*routeView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/sessions/"+sessionID+"/route", nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch route: status %d", resp.StatusCode)
	}

	var view routeView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	return &view, nil
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <session_id> <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	sessionID := os.Args[1]
	intervalSec, err := strconv.Atoi(os.Args[2])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	cfg := config.Load()
	cfg.MQTTClientID = "route-gps-simulator"
	log := config.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	view, err := fetchTruckPath(ctx, cfg.APIURL, sessionID)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("route")
	}
	if len(view.TruckPath) == 0 {
		log.Fatal().Msg("route has no truck path")
	}

	client, err := config.NewMQTT(cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt")
	}
	defer client.Disconnect(250)

	topic := fmt.Sprintf("routes/session/%s/position", sessionID)
	log.Info().Str("topic", topic).Int("points", len(view.TruckPath)).Msg("replaying truck path")

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for _, p := range view.TruckPath {
		<-ticker.C

		msg := positionMessage{
			// ~5m of GPS jitter
			Latitude:  p.Latitude + (rand.Float64()-0.5)*0.00005,
			Longitude: p.Longitude + (rand.Float64()-0.5)*0.00005,
			Timestamp: time.Now().UnixMilli(),
		}

		payload, _ := json.Marshal(msg)
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Msg("publish")
			continue
		}

		log.Debug().RawJSON("payload", payload).Msg("published")
	}

	log.Info().Msg("truck path finished")
}
