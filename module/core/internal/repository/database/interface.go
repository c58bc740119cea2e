package database

import (
	"context"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

type PositionRepository interface {
	Insert(ctx context.Context, rec *domain.PositionRecord) error
}
