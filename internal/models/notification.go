package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTypeNewOffer       = "new_offer"
	NotificationTypeOfferStatus    = "offer_status"
	NotificationTypeNewMessage     = "new_message"
	NotificationTypeVerification   = "verification"
	NotificationTypeListingExpired = "listing_expired"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type    string         `gorm:"size:40;not null" json:"type"`
	Title   string         `gorm:"size:200;not null" json:"title"`
	Message string         `gorm:"type:text" json:"message"`
	Data    datatypes.JSON `json:"data,omitempty"`
	IsRead  bool           `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt  *time.Time     `json:"read_at,omitempty"`
}
