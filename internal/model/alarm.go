package model

import (
	"time"
)

// AlarmKind 报警类型
type AlarmKind string

const (
	KindStoppage          AlarmKind = "STOPPAGE"
	KindOverspeeding      AlarmKind = "OVERSPEEDING"
	KindContinuousDriving AlarmKind = "CONTINUOUS_DRIVING"
	KindNoGpsFeed         AlarmKind = "NO_GPS_FEED"
	KindGeofence          AlarmKind = "GEOFENCE"
	KindReachedStop       AlarmKind = "REACHED_STOP"
	KindRouteDeviation    AlarmKind = "ROUTE_DEVIATION"
)

// IsStateKind reports whether alerts of this kind are maintained as a single
// active-or-none row per (config, vehicle). Geofence and ReachedStop alerts are
// event records: one row per qualifying transition, never deactivated.
func (k AlarmKind) IsStateKind() bool {
	switch k {
	case KindStoppage, KindOverspeeding, KindContinuousDriving, KindNoGpsFeed, KindRouteDeviation:
		return true
	default:
		return false
	}
}

// GeofenceMode gates which boundary transitions fire an alert.
type GeofenceMode string

const (
	ModeEntryOnly GeofenceMode = "entry_only"
	ModeExitOnly  GeofenceMode = "exit_only"
	ModeBoth      GeofenceMode = "both"
)

// AllowsEntry reports whether entry transitions fire under this mode.
func (m GeofenceMode) AllowsEntry() bool { return m == ModeEntryOnly || m == ModeBoth }

// AllowsExit reports whether exit transitions fire under this mode.
func (m GeofenceMode) AllowsExit() bool { return m == ModeExitOnly || m == ModeBoth }

// AlarmConfig 报警配置
//
// Threshold carries the kind-specific limit: km/h for overspeeding, minutes
// for stoppage, hours for continuous driving. Configs are treated as immutable
// during a detection cycle.
type AlarmConfig struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:varchar(100);not null"`
	Kind        AlarmKind    `json:"kind" gorm:"type:varchar(30);not null;index"`
	Threshold   float64      `json:"threshold"`
	Enabled     bool         `json:"enabled" gorm:"not null;default:true;index"`
	Mode        GeofenceMode `json:"mode" gorm:"type:varchar(20);default:'both'"`
	RestMinutes int          `json:"rest_minutes" gorm:"default:30"`

	VehicleGroups  []VehicleGroup  `json:"vehicle_groups,omitempty" gorm:"many2many:alarm_vehicle_groups;"`
	GeofenceGroups []GeofenceGroup `json:"geofence_groups,omitempty" gorm:"many2many:alarm_geofence_groups;"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

func (AlarmConfig) TableName() string {
	return "alarm_configs"
}

// RestThreshold returns the configured rest duration, falling back to the
// 30-minute default when unset.
func (c *AlarmConfig) RestThreshold() time.Duration {
	minutes := c.RestMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// AlertStatus 报警状态
type AlertStatus int16

const (
	AlertInactive       AlertStatus = 0
	AlertActive         AlertStatus = 1
	AlertManuallyClosed AlertStatus = 2
)

// Valid reports whether the status is one of the three known values.
func (s AlertStatus) Valid() bool {
	return s == AlertInactive || s == AlertActive || s == AlertManuallyClosed
}

// Alert 报警记录
//
// Created and mutated only by the alert lifecycle manager; administrative
// deletion happens outside this service.
type Alert struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	AlarmConfigID uint         `json:"alarm_config_id" gorm:"not null;index"`
	AlarmConfig   *AlarmConfig `json:"alarm_config,omitempty"`
	VehicleNo     string       `json:"vehicle_no" gorm:"type:varchar(20);not null;index"`
	Status        AlertStatus  `json:"status" gorm:"not null;default:0;index"`
	Lat           float64      `json:"lat"`
	Lon           float64      `json:"lon"`
	ShipmentID    *uint        `json:"shipment_id,omitempty" gorm:"index"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:now()"`
}

func (Alert) TableName() string {
	return "alerts"
}

// AlertListQuery 报警列表查询参数
type AlertListQuery struct {
	VehicleNo string      `form:"vehicle_no"`
	Kind      AlarmKind   `form:"kind"`
	Status    *AlertStatus `form:"status"`
	StartTime *time.Time  `form:"start_time"`
	EndTime   *time.Time  `form:"end_time"`
	Page      int         `form:"page,default=1"`
	PageSize  int         `form:"page_size,default=20"`
}

// AlertListResponse 报警列表响应
type AlertListResponse struct {
	List     []Alert `json:"list"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// CloseAlertRequest 手工关闭报警请求
type CloseAlertRequest struct {
	Status     AlertStatus `json:"status"`
	ShipmentID *uint       `json:"shipment_id"`
}
