package model

import "time"

// Geofence shape kinds.
const (
	GeofenceCircle  = "circle"
	GeofencePolygon = "polygon"
)

// Geofence represents an electronic fence. Circle fences carry a center and
// radius; polygon fences carry an ordered vertex list (at least 3 entries).
type Geofence struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Name       string  `json:"name" gorm:"type:varchar(100);not null"`
	Kind       string  `json:"kind" gorm:"type:varchar(20);not null"`
	CenterLat  float64 `json:"center_lat"`
	CenterLon  float64 `json:"center_lon"`
	RadiusM    float64 `json:"radius_m"`
	Active     bool    `json:"active" gorm:"not null;default:true;index"`
	LocationID *uint   `json:"location_id,omitempty" gorm:"index"`

	Vertices []GeofenceVertex `json:"vertices,omitempty" gorm:"foreignKey:GeofenceID"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

func (Geofence) TableName() string {
	return "geofences"
}

// GeofenceVertex is one ordered corner of a polygon fence.
type GeofenceVertex struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	GeofenceID uint    `json:"geofence_id" gorm:"not null;index"`
	Seq        int     `json:"seq" gorm:"not null"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

func (GeofenceVertex) TableName() string {
	return "geofence_vertices"
}

// GeofenceGroup 围栏分组
type GeofenceGroup struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(50);not null"`
	Geofences []Geofence `json:"geofences,omitempty" gorm:"many2many:geofence_group_members;"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;default:now()"`
}

func (GeofenceGroup) TableName() string {
	return "geofence_groups"
}
