package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/database"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/publisher"
)

// PositionFeed delivers live position samples for a session.
type PositionFeed interface {
	Available() bool
	Topic(sessionID string) string
	Subscribe(sessionID string, handle func(domain.PositionSample)) error
	Unsubscribe(sessionID string) error
}

type ProgressNotifier interface {
	Broadcast(sessionID string, dashboard domain.Dashboard)
}

type TrackingInfo struct {
	Topic       string
	Geolocation domain.GeolocationOptions
}

type TrackingService struct {
	sessions  *SessionStore
	repo      database.PositionRepository
	publisher publisher.TripEventPublisher
	feed      PositionFeed
	notifier  ProgressNotifier
	options   domain.GeolocationOptions
	log       zerolog.Logger
}

func NewTrackingService(
	sessions *SessionStore,
	repo database.PositionRepository,
	pub publisher.TripEventPublisher,
	feed PositionFeed,
	notifier ProgressNotifier,
	options domain.GeolocationOptions,
	log zerolog.Logger,
) *TrackingService {
	return &TrackingService{
		sessions:  sessions,
		repo:      repo,
		publisher: pub,
		feed:      feed,
		notifier:  notifier,
		options:   options,
		log:       log,
	}
}

// Start subscribes the session to its position feed. Calling it again while
// tracking is a no-op.
func (s *TrackingService) Start(_ context.Context, sessionID string) (TrackingInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return TrackingInfo{}, err
	}
	if !s.feed.Available() {
		return TrackingInfo{}, domain.ErrGeolocationUnavailable
	}

	started, err := sess.BeginTracking()
	if err != nil {
		return TrackingInfo{}, err
	}
	if started {
		err := s.feed.Subscribe(sessionID, func(sample domain.PositionSample) {
			_, err := s.HandlePosition(context.Background(), sample)
			switch {
			case errors.Is(err, ErrStaleSample):
				s.log.Debug().Str("session_id", sample.SessionID).Time("timestamp", sample.Timestamp).Msg("duplicate position dropped")
			case err != nil:
				s.log.Error().Err(err).Str("session_id", sample.SessionID).Msg("handle position")
			}
		})
		if err != nil {
			sess.EndTracking()
			return TrackingInfo{}, err
		}
		s.log.Info().Str("session_id", sessionID).Msg("tracking started")
	}

	return TrackingInfo{Topic: s.feed.Topic(sessionID), Geolocation: s.options}, nil
}

// Stop cancels the session's position subscription if one is active.
func (s *TrackingService) Stop(sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return s.stop(sess)
}

func (s *TrackingService) stop(sess *Session) error {
	if !sess.EndTracking() {
		return nil
	}
	return s.feed.Unsubscribe(sess.ID)
}

// HandlePosition applies one sample to the session's tracker, records it and
// emits the navigation events for arrivals and trip completion.
func (s *TrackingService) HandlePosition(ctx context.Context, sample domain.PositionSample) (PositionUpdate, error) {
	sess, err := s.sessions.Get(sample.SessionID)
	if err != nil {
		return PositionUpdate{}, err
	}

	upd, err := sess.ApplyPosition(sample)
	if err != nil {
		return PositionUpdate{}, err
	}

	rec := &domain.PositionRecord{
		SessionID:     sample.SessionID,
		Location:      sample.Location,
		WaypointIndex: upd.Progress.CurrentIndex,
		DistanceKm:    upd.Progress.DistanceToTargetKm,
		Timestamp:     sample.Timestamp,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("session_id", sample.SessionID).Msg("save position")
	}

	total := upd.Dashboard.Total
	switch {
	case upd.Progress.Arrived:
		s.publish(ctx, &domain.TripEvent{
			SessionID:     sample.SessionID,
			Type:          domain.WaypointArrived,
			WaypointIndex: upd.Progress.CurrentIndex,
			WaypointTotal: total,
			Location:      *upd.Next,
			NavigationURL: NavigationURL(*upd.Next),
			Timestamp:     sample.Timestamp.UnixMilli(),
		})
	case upd.Completed:
		s.publish(ctx, &domain.TripEvent{
			SessionID:     sample.SessionID,
			Type:          domain.TripCompleted,
			WaypointIndex: upd.Progress.CurrentIndex,
			WaypointTotal: total,
			Location:      sample.Location,
			Timestamp:     sample.Timestamp.UnixMilli(),
		})
		if err := s.stop(sess); err != nil {
			s.log.Warn().Err(err).Str("session_id", sample.SessionID).Msg("cancel position feed")
		}
		s.log.Info().Str("session_id", sample.SessionID).Msg("trip completed")
	}

	s.notifier.Broadcast(sample.SessionID, upd.Dashboard)
	return upd, nil
}

// Discard stops tracking and forgets the session.
func (s *TrackingService) Discard(sessionID string) error {
	sess, err := s.sessions.Delete(sessionID)
	if err != nil {
		return err
	}
	return s.stop(sess)
}

func (s *TrackingService) publish(ctx context.Context, event *domain.TripEvent) {
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("session_id", event.SessionID).Str("type", string(event.Type)).Msg("publish trip event")
	}
}
