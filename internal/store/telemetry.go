package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetwatch/internal/model"
)

// TelemetryStore reads position reports written by the ingestion pipeline.
// Reads are not guaranteed consistent against concurrent ingestion; a new ping
// may land between two reads within the same detection pass.
type TelemetryStore struct {
	db *gorm.DB
}

// NewTelemetryStore creates a telemetry store.
func NewTelemetryStore(db *gorm.DB) *TelemetryStore {
	return &TelemetryStore{db: db}
}

// LatestPositions returns the most recent n positions for a vehicle, newest
// first by GPS timestamp.
func (s *TelemetryStore) LatestPositions(ctx context.Context, vehicleNo string, n int) ([]model.Position, error) {
	var positions []model.Position
	err := s.db.WithContext(ctx).
		Where("vehicle_no = ?", vehicleNo).
		Order("gps_ts DESC").
		Limit(n).
		Find(&positions).Error
	return positions, err
}

// LatestPosition returns the single most recent position for a vehicle, or
// nil when the vehicle has never reported.
func (s *TelemetryStore) LatestPosition(ctx context.Context, vehicleNo string) (*model.Position, error) {
	var position model.Position
	err := s.db.WithContext(ctx).
		Where("vehicle_no = ?", vehicleNo).
		Order("gps_ts DESC").
		First(&position).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// PositionsSince returns all positions for a vehicle from the given instant
// onwards, oldest first.
func (s *TelemetryStore) PositionsSince(ctx context.Context, vehicleNo string, since time.Time) ([]model.Position, error) {
	var positions []model.Position
	err := s.db.WithContext(ctx).
		Where("vehicle_no = ? AND gps_ts >= ?", vehicleNo, since.Unix()).
		Order("gps_ts ASC").
		Find(&positions).Error
	return positions, err
}
