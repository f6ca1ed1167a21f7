package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetwatch/internal/model"
)

// AlertStore owns persistence for alert rows.
type AlertStore struct {
	db *gorm.DB
}

// NewAlertStore creates an alert store.
func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

// Create inserts a new alert row.
func (s *AlertStore) Create(ctx context.Context, alert *model.Alert) error {
	return s.db.WithContext(ctx).Create(alert).Error
}

// Get returns an alert by id with its config preloaded.
func (s *AlertStore) Get(ctx context.Context, id uint) (*model.Alert, error) {
	var alert model.Alert
	err := s.db.WithContext(ctx).Preload("AlarmConfig").First(&alert, id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// Active returns the single active alert for a (config, vehicle) pair, or nil
// when none exists.
func (s *AlertStore) Active(ctx context.Context, configID uint, vehicleNo string) (*model.Alert, error) {
	var alert model.Alert
	err := s.db.WithContext(ctx).
		Where("alarm_config_id = ? AND vehicle_no = ? AND status = ?",
			configID, vehicleNo, model.AlertActive).
		First(&alert).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// SetStatus updates an alert's status and bumps updated_at.
func (s *AlertStore) SetStatus(ctx context.Context, id uint, status model.AlertStatus) error {
	return s.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// List returns alerts matching the query with pagination, newest first.
func (s *AlertStore) List(ctx context.Context, query *model.AlertListQuery) (*model.AlertListResponse, error) {
	db := s.db.WithContext(ctx).Model(&model.Alert{})

	if query.VehicleNo != "" {
		db = db.Where("vehicle_no = ?", query.VehicleNo)
	}
	if query.Kind != "" {
		db = db.Joins("JOIN alarm_configs ON alarm_configs.id = alerts.alarm_config_id").
			Where("alarm_configs.kind = ?", query.Kind)
	}
	if query.Status != nil {
		db = db.Where("alerts.status = ?", *query.Status)
	}
	if query.StartTime != nil {
		db = db.Where("alerts.created_at >= ?", *query.StartTime)
	}
	if query.EndTime != nil {
		db = db.Where("alerts.created_at <= ?", *query.EndTime)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	var alerts []model.Alert
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("alerts.created_at DESC").
		Offset(offset).Limit(query.PageSize).
		Preload("AlarmConfig").
		Find(&alerts).Error; err != nil {
		return nil, err
	}

	return &model.AlertListResponse{
		List:     alerts,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
