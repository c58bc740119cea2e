package postgres

import (
	"context"
	"database/sql"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
	"github.com/yopyKO/pwa-camping-car-final/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

// PositionRepo appends accepted position samples to session_positions. The
// table is an audit trail only; session state is never rebuilt from it.
type PositionRepo struct {
	db *sql.DB
}

func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

const createPositionsTable = `CREATE TABLE IF NOT EXISTS session_positions (
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	waypoint_index INTEGER NOT NULL,
	distance_km DOUBLE PRECISION NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL
)`

func (r *PositionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createPositionsTable)
	return err
}

func (r *PositionRepo) Insert(ctx context.Context, rec *domain.PositionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_positions (session_id, latitude, longitude, waypoint_index, distance_km, timestamp) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.SessionID, rec.Location.Lat, rec.Location.Lon, rec.WaypointIndex, rec.DistanceKm, rec.Timestamp,
	)
	return err
}
