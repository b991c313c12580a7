package models

import (
	"time"

	"gorm.io/datatypes"
)

// Offer - ценовое предложение перевозчика/заказчика по объявлению
type Offer struct {
	BaseModel
	ListingID   string      `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	BidderID    string      `gorm:"type:varchar(36);not null;index" json:"bidder_id"`
	Amount      float64     `gorm:"not null" json:"amount"`
	Currency    string      `gorm:"size:3;not null" json:"currency"`
	PricingUnit PricingUnit `gorm:"type:varchar(20);not null;default:'total'" json:"pricing_unit"`
	Message     string      `gorm:"type:text" json:"message"`

	// Необязательные логистические поля
	PickupDate        *time.Time     `json:"pickup_date,omitempty"`
	DeliveryDate      *time.Time     `json:"delivery_date,omitempty"`
	ValidUntil        *time.Time     `gorm:"index" json:"valid_until,omitempty"`
	TransitDays       *int           `json:"transit_days,omitempty"`
	VehicleType       string         `gorm:"size:100" json:"vehicle_type,omitempty"`
	CapacityTons      *float64       `json:"capacity_tons,omitempty"`
	CapacityM3        *float64       `json:"capacity_m3,omitempty"`
	InsuranceIncluded bool           `json:"insurance_included"`
	CargoGuarantee    string         `gorm:"size:255" json:"cargo_guarantee,omitempty"`
	IncludedServices  datatypes.JSON `json:"included_services,omitempty"`

	// Встречное предложение владельца объявления
	CounterAmount  *float64 `json:"counter_amount,omitempty"`
	CounterMessage string   `gorm:"type:text" json:"counter_message,omitempty"`

	Status OfferStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}

// OfferEvent - запись журнала переходов статуса оффера
type OfferEvent struct {
	BaseModel
	OfferID    string      `gorm:"type:varchar(36);not null;index" json:"offer_id"`
	ActorID    string      `gorm:"type:varchar(36);not null" json:"actor_id"`
	FromStatus OfferStatus `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   OfferStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	Note       string      `gorm:"type:text" json:"note,omitempty"`
}

// SystemActorID - актор для автоматических переходов (воркеры)
const SystemActorID = "system"
