package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetwatch/internal/model"
)

// ShipmentStore reads shipments and stamps stop arrival/departure times.
type ShipmentStore struct {
	db *gorm.DB
}

// NewShipmentStore creates a shipment store.
func NewShipmentStore(db *gorm.DB) *ShipmentStore {
	return &ShipmentStore{db: db}
}

// ActiveShipment returns the vehicle's active shipment with stops preloaded
// in sequence order, or nil when the vehicle has no active shipment.
func (s *ShipmentStore) ActiveShipment(ctx context.Context, vehicleNo string) (*model.Shipment, error) {
	var shipment model.Shipment
	err := s.db.WithContext(ctx).
		Where("vehicle_no = ? AND status = ?", vehicleNo, model.ShipmentActive).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&shipment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// StampEntry records the arrival time on a stop. The guard on entry_time
// keeps the stamp idempotent even when detection passes overlap.
func (s *ShipmentStore) StampEntry(ctx context.Context, stopID uint, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.Stop{}).
		Where("id = ? AND entry_time IS NULL", stopID).
		Update("entry_time", at).Error
}

// StampExit records the departure time and, when provided, the formatted
// detention duration on a stop.
func (s *ShipmentStore) StampExit(ctx context.Context, stopID uint, at time.Time, detention string) error {
	updates := map[string]interface{}{"exit_time": at}
	if detention != "" {
		updates["detention_time"] = detention
	}
	return s.db.WithContext(ctx).
		Model(&model.Stop{}).
		Where("id = ?", stopID).
		Updates(updates).Error
}
