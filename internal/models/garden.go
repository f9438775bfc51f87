package models

import "time"

// Garden owns a set of plants and, optionally, a geocoded location.
// Latitude and Longitude stay nil until the garden is geocoded and are
// treated as immutable afterwards.
type Garden struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	City      string     `json:"city,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Plants []GardenPlant `gorm:"constraint:OnDelete:CASCADE" json:"plants,omitempty"`
}

// HasLocation reports whether the garden has been geocoded.
func (g *Garden) HasLocation() bool {
	return g.Latitude != nil && g.Longitude != nil
}

// GardenPlant is a plant growing in one garden.
type GardenPlant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GardenID  uint      `gorm:"index;not null" json:"garden_id"`
	Name      string    `gorm:"not null" json:"name"`
	Species   string    `json:"species,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Reminders []CareReminder `gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE" json:"reminders,omitempty"`
}
