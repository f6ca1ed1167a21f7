package store

import (
	"context"

	"gorm.io/gorm"

	"fleetwatch/internal/model"
)

// AlarmConfigStore reads alarm configurations and their group bindings.
type AlarmConfigStore struct {
	db *gorm.DB
}

// NewAlarmConfigStore creates an alarm config store.
func NewAlarmConfigStore(db *gorm.DB) *AlarmConfigStore {
	return &AlarmConfigStore{db: db}
}

// EnabledConfigs returns all enabled configs of the given kind.
func (s *AlarmConfigStore) EnabledConfigs(ctx context.Context, kind model.AlarmKind) ([]model.AlarmConfig, error) {
	var configs []model.AlarmConfig
	err := s.db.WithContext(ctx).
		Where("kind = ? AND enabled = ?", kind, true).
		Find(&configs).Error
	return configs, err
}

// VehiclesForConfig returns the vehicles bound to a config through its
// vehicle groups.
func (s *AlarmConfigStore) VehiclesForConfig(ctx context.Context, configID uint) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.db.WithContext(ctx).
		Distinct("vehicles.*").
		Joins("JOIN vehicle_group_members ON vehicle_group_members.vehicle_id = vehicles.id").
		Joins("JOIN alarm_vehicle_groups ON alarm_vehicle_groups.vehicle_group_id = vehicle_group_members.vehicle_group_id").
		Where("alarm_vehicle_groups.alarm_config_id = ?", configID).
		Find(&vehicles).Error
	return vehicles, err
}

// GeofencesForConfig returns the active geofences bound to a config through
// its geofence groups, with polygon vertices preloaded in order.
func (s *AlarmConfigStore) GeofencesForConfig(ctx context.Context, configID uint) ([]model.Geofence, error) {
	var geofences []model.Geofence
	err := s.db.WithContext(ctx).
		Distinct("geofences.*").
		Joins("JOIN geofence_group_members ON geofence_group_members.geofence_id = geofences.id").
		Joins("JOIN alarm_geofence_groups ON alarm_geofence_groups.geofence_group_id = geofence_group_members.geofence_group_id").
		Where("alarm_geofence_groups.alarm_config_id = ? AND geofences.active = ?", configID, true).
		Preload("Vertices", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Find(&geofences).Error
	return geofences, err
}
