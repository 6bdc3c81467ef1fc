package models

import "time"

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyCondo     PropertyType = "condo"
	PropertyVilla     PropertyType = "villa"
	PropertyStudio    PropertyType = "studio"
	PropertyLoft      PropertyType = "loft"
	PropertyCabin     PropertyType = "cabin"
	PropertyTownhouse PropertyType = "townhouse"
)

// Property is a host-owned listing. Prices are stored as integer cents.
type Property struct {
	ID           int64        `gorm:"primaryKey"                      json:"id"`
	HostID       int64        `gorm:"not null;index:idx_property_host" json:"host_id"`
	Host         *User        `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE" json:"host,omitempty"`
	Name         string       `gorm:"size:255;not null"               json:"name"          validate:"required"`
	Description  string       `json:"description"`
	Location     string       `gorm:"size:255;index:idx_property_location" json:"location" validate:"required"`
	PriceCents   int64        `gorm:"not null;index:idx_property_price" json:"price_per_night_cents" validate:"gt=0"`
	PropertyType PropertyType `gorm:"size:20;default:'apartment';index:idx_property_type" json:"property_type"`
	MaxGuests    int          `gorm:"default:1"                       json:"max_guests"    validate:"gt=0"`
	Bedrooms     int          `gorm:"default:1"                       json:"bedrooms"`
	Bathrooms    int          `gorm:"default:1"                       json:"bathrooms"`
	Amenities    string       `json:"amenities,omitempty"`
	IsAvailable  bool         `gorm:"default:true"                    json:"is_available"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
