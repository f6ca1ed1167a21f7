package model

import "time"

// Shipment statuses.
const (
	ShipmentActive    = "active"
	ShipmentCompleted = "completed"
)

// Shipment 运单
type Shipment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	VehicleNo string    `json:"vehicle_no" gorm:"type:varchar(20);not null;index"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Stops     []Stop    `json:"stops,omitempty" gorm:"foreignKey:ShipmentID"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// Stop is a planned halt on a shipment. EntryTime/ExitTime are stamped by the
// detection engine when the vehicle reaches or leaves the stop location;
// DetentionTime is the elapsed time between the two, formatted HH:MM:SS.
type Stop struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	ShipmentID    uint       `json:"shipment_id" gorm:"not null;index"`
	Seq           int        `json:"seq" gorm:"not null"`
	Lat           float64    `json:"lat"`
	Lon           float64    `json:"lon"`
	RadiusM       float64    `json:"radius_m" gorm:"default:100"`
	LocationID    *uint      `json:"location_id,omitempty" gorm:"index"`
	EntryTime     *time.Time `json:"entry_time,omitempty"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	DetentionTime string     `json:"detention_time,omitempty" gorm:"type:varchar(20)"`
}

func (Stop) TableName() string {
	return "stops"
}

// Radius returns the stop's arrival radius, defaulting to 100 meters.
func (s *Stop) Radius() float64 {
	if s.RadiusM <= 0 {
		return 100
	}
	return s.RadiusM
}
