package model

import "time"

// Position represents one normalized GPS position report for a vehicle.
// Rows are append-only and written by the ingestion pipeline; arrival order is
// not guaranteed to match timestamp order, so readers always sort explicitly.
type Position struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	VehicleNo string   `json:"vehicle_no" gorm:"type:varchar(20);not null;index:idx_positions_vehicle_time"`
	DeviceTS  int64    `json:"device_ts"`
	GpsTS     int64    `json:"gps_ts" gorm:"index:idx_positions_vehicle_time"`
	ServerTS  int64    `json:"server_ts"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Speed     *float64 `json:"speed,omitempty"`
	Heading   int16    `json:"heading"`
	Vendor    string   `json:"vendor,omitempty" gorm:"type:varchar(30)"`
	Inputs    int32    `json:"inputs"`
}

func (Position) TableName() string {
	return "positions"
}

// SpeedKmh returns the reported speed, treating a missing value as 0.
func (p *Position) SpeedKmh() float64 {
	if p.Speed == nil {
		return 0
	}
	return *p.Speed
}

// Time returns the GPS clock timestamp. A zero value means the device never
// reported a usable fix time.
func (p *Position) Time() time.Time {
	if p.GpsTS == 0 {
		return time.Time{}
	}
	return time.Unix(p.GpsTS, 0)
}
