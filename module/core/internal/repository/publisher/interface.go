package publisher

import (
	"context"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

type TripEventPublisher interface {
	PublishEvent(ctx context.Context, event *domain.TripEvent) error
}
