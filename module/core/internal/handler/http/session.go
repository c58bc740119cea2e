package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/service"
)

type sessionStore interface {
	Create() *service.Session
	Get(id string) (*service.Session, error)
}

type routeService interface {
	Calculate(ctx context.Context, sessionID string, req domain.RouteRequest) (*domain.Route, error)
}

type trackingService interface {
	Start(ctx context.Context, sessionID string) (service.TrackingInfo, error)
	HandlePosition(ctx context.Context, sample domain.PositionSample) (service.PositionUpdate, error)
	Discard(sessionID string) error
}

type liveHub interface {
	ServeSession(w http.ResponseWriter, r *http.Request, sessionID string, initial domain.Dashboard) error
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

type routeRequest struct {
	Start           string             `json:"start"`
	End             string             `json:"end"`
	StartCoordinate *coordinateRequest `json:"start_coordinate"`
	EndCoordinate   *coordinateRequest `json:"end_coordinate"`
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	// Unix milliseconds; zero means now.
	Timestamp int64 `json:"timestamp" binding:"gte=0"`
}

type geolocationResponse struct {
	EnableHighAccuracy bool  `json:"enable_high_accuracy"`
	MaximumAgeMs       int64 `json:"maximum_age_ms"`
	TimeoutMs          int64 `json:"timeout_ms"`
}

type trackingResponse struct {
	Topic       string              `json:"topic"`
	Geolocation geolocationResponse `json:"geolocation"`
}

type positionResponse struct {
	Progress      domain.Progress  `json:"progress"`
	Dashboard     domain.Dashboard `json:"dashboard"`
	NavigationURL string           `json:"navigation_url,omitempty"`
}

type SessionHandler struct {
	sessions sessionStore
	routes   routeService
	tracking trackingService
	hub      liveHub
	now      func() time.Time
}

func NewSessionHandler(sessions sessionStore, routes routeService, tracking trackingService, hub liveHub) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		routes:   routes,
		tracking: tracking,
		hub:      hub,
		now:      time.Now,
	}
}

func (h *SessionHandler) Register(r *gin.RouterGroup) {
	r.POST("/sessions", h.CreateSession)
	r.DELETE("/sessions/:session_id", h.DeleteSession)
	r.POST("/sessions/:session_id/route", h.CalculateRoute)
	r.GET("/sessions/:session_id/route", h.GetRoute)
	r.POST("/sessions/:session_id/tracking", h.StartTracking)
	r.POST("/sessions/:session_id/positions", h.PostPosition)
	r.GET("/sessions/:session_id/dashboard", h.GetDashboard)
	r.GET("/sessions/:session_id/live", h.Live)
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.tracking.Discard(c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) CalculateRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("session_id")
	route, err := h.routes.Calculate(c.Request.Context(), sessionID, toRouteRequest(&req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRouteResponse(sessionID, route, 0))
}

func (h *SessionHandler) GetRoute(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	route, ok := sess.Route()
	if !ok {
		writeError(c, domain.ErrNoRoute)
		return
	}
	state := sess.TrackerState()

	if c.Query("format") == "geojson" {
		fc, err := toFeatureCollection(&route, state.CurrentIndex)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, fc)
		return
	}
	c.JSON(http.StatusOK, toRouteResponse(sess.ID, &route, state.CurrentIndex))
}

func (h *SessionHandler) StartTracking(c *gin.Context) {
	info, err := h.tracking.Start(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, trackingResponse{
		Topic: info.Topic,
		Geolocation: geolocationResponse{
			EnableHighAccuracy: info.Geolocation.HighAccuracy,
			MaximumAgeMs:       info.Geolocation.MaximumAge.Milliseconds(),
			TimeoutMs:          info.Geolocation.Timeout.Milliseconds(),
		},
	})
}

func (h *SessionHandler) PostPosition(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ts := h.now()
	if req.Timestamp > 0 {
		ts = time.UnixMilli(req.Timestamp)
	}

	upd, err := h.tracking.HandlePosition(c.Request.Context(), domain.PositionSample{
		SessionID: c.Param("session_id"),
		Location:  domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude},
		Timestamp: ts,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := positionResponse{Progress: upd.Progress, Dashboard: upd.Dashboard}
	if upd.Next != nil {
		resp.NavigationURL = service.NavigationURL(*upd.Next)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) GetDashboard(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if _, ok := sess.Route(); !ok {
		writeError(c, domain.ErrNoRoute)
		return
	}
	c.JSON(http.StatusOK, sess.Dashboard())
}

func (h *SessionHandler) Live(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	// The upgrader writes its own error response on failure.
	_ = h.hub.ServeSession(c.Writer, c.Request, sess.ID, sess.Dashboard())
}

func toRouteRequest(req *routeRequest) domain.RouteRequest {
	out := domain.RouteRequest{StartAddress: req.Start, EndAddress: req.End}
	if req.StartCoordinate != nil {
		out.Start = &domain.Coordinate{Lat: *req.StartCoordinate.Latitude, Lon: *req.StartCoordinate.Longitude}
	}
	if req.EndCoordinate != nil {
		out.End = &domain.Coordinate{Lat: *req.EndCoordinate.Latitude, Lon: *req.EndCoordinate.Longitude}
	}
	return out
}

func writeError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.JSON(status, gin.H{"error": err.Error(), "status": message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusNotFound, "geocoding failed"
	case errors.Is(err, domain.ErrGeocoding):
		return http.StatusBadGateway, "geocoding failed"
	case errors.Is(err, domain.ErrRouteProvider):
		return http.StatusBadGateway, "route calculation failed"
	case errors.Is(err, domain.ErrNoRoute),
		errors.Is(err, domain.ErrNoWaypoints),
		errors.Is(err, domain.ErrNotInitialized):
		return http.StatusConflict, "route not calculated"
	case errors.Is(err, domain.ErrGeolocationUnavailable):
		return http.StatusServiceUnavailable, "geolocation unavailable"
	case errors.Is(err, service.ErrStaleSample):
		return http.StatusUnprocessableEntity, "position ignored"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
