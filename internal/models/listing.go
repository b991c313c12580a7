package models

import (
	"time"

	"gorm.io/datatypes"
)

// Listing - объявление о грузе или об услуге перевозки
type Listing struct {
	BaseModel
	OwnerID     string      `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Kind        ListingKind `gorm:"type:varchar(30);not null;index" json:"kind"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`

	OriginCity         string        `gorm:"size:100;not null;index" json:"origin_city"`
	OriginCountry      string        `gorm:"size:100" json:"origin_country"`
	DestinationCity    string        `gorm:"size:100;not null;index" json:"destination_city"`
	DestinationCountry string        `gorm:"size:100" json:"destination_country"`
	TransportMode      TransportMode `gorm:"type:varchar(20);not null" json:"transport_mode"`
	CargoType          string        `gorm:"size:100" json:"cargo_type"`
	WeightKg           *float64      `json:"weight_kg,omitempty"`
	VolumeM3           *float64      `json:"volume_m3,omitempty"`
	VehicleType        string        `gorm:"size:100" json:"vehicle_type,omitempty"`

	Price    *float64 `json:"price,omitempty"`
	Currency string   `gorm:"size:3" json:"currency,omitempty"`

	Status     ListingStatus     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Visibility ListingVisibility `gorm:"type:varchar(20);not null;default:'public'" json:"visibility"`
	PickupDate *time.Time        `json:"pickup_date,omitempty"`
	ExpiresAt  *time.Time        `gorm:"index" json:"expires_at,omitempty"`
	Tags       datatypes.JSON    `json:"tags,omitempty"`
	Views      int               `gorm:"not null;default:0" json:"views"`
}

// IsExpired - истек ли срок объявления на момент now
func (l *Listing) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

func (l *Listing) IsVisibleTo(userID string) bool {
	if l.Status == ListingStatusDeleted {
		return false
	}
	return l.Visibility == VisibilityPublic || l.OwnerID == userID
}
