package model

import "time"

// Vehicle 车辆信息
//
// VehicleNo is the stable join key across pings, alerts and shipments.
type Vehicle struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	VehicleNo string    `json:"vehicle_no" gorm:"type:varchar(20);not null;uniqueIndex"`
	Name      string    `json:"name,omitempty" gorm:"type:varchar(100)"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// VehicleGroup 车辆分组
type VehicleGroup struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(50);not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Vehicles    []Vehicle `json:"vehicles,omitempty" gorm:"many2many:vehicle_group_members;"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:now()"`
}

func (VehicleGroup) TableName() string {
	return "vehicle_groups"
}
