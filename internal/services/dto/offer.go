package dto

import (
	"time"

	"cargomarket_backend/internal/models"
)

// CreateOfferRequest - одно API для всех вариантов формы оффера:
// логистические поля необязательны
type CreateOfferRequest struct {
	ListingID   string             `json:"listing_id" validate:"required"`
	Amount      float64            `json:"amount" validate:"required,gt=0"`
	Currency    string             `json:"currency" validate:"required,is-currency"`
	PricingUnit models.PricingUnit `json:"pricing_unit" validate:"omitempty,is-pricing-unit"`
	Message     string             `json:"message" validate:"max=2000"`

	PickupDate        *time.Time `json:"pickup_date" validate:"omitempty,future"`
	DeliveryDate      *time.Time `json:"delivery_date" validate:"omitempty,future"`
	ValidUntil        *time.Time `json:"valid_until" validate:"omitempty,future"`
	TransitDays       *int       `json:"transit_days" validate:"omitempty,min=0,max=365"`
	VehicleType       string     `json:"vehicle_type" validate:"max=100"`
	CapacityTons      *float64   `json:"capacity_tons" validate:"omitempty,gt=0"`
	CapacityM3        *float64   `json:"capacity_m3" validate:"omitempty,gt=0"`
	InsuranceIncluded bool       `json:"insurance_included"`
	CargoGuarantee    string     `json:"cargo_guarantee" validate:"max=255"`
	IncludedServices  []string   `json:"included_services" validate:"omitempty,max=20,dive,max=60"`
}

// UpdateOfferRequest - правка оффера участником торга, пока он в pending
type UpdateOfferRequest struct {
	Amount      *float64            `json:"amount" validate:"omitempty,gt=0"`
	Currency    *string             `json:"currency" validate:"omitempty,is-currency"`
	PricingUnit *models.PricingUnit `json:"pricing_unit" validate:"omitempty,is-pricing-unit"`
	Message     *string             `json:"message" validate:"omitempty,max=2000"`

	PickupDate        *time.Time `json:"pickup_date" validate:"omitempty,future"`
	DeliveryDate      *time.Time `json:"delivery_date" validate:"omitempty,future"`
	ValidUntil        *time.Time `json:"valid_until" validate:"omitempty,future"`
	TransitDays       *int       `json:"transit_days" validate:"omitempty,min=0,max=365"`
	VehicleType       *string    `json:"vehicle_type" validate:"omitempty,max=100"`
	CapacityTons      *float64   `json:"capacity_tons" validate:"omitempty,gt=0"`
	CapacityM3        *float64   `json:"capacity_m3" validate:"omitempty,gt=0"`
	InsuranceIncluded *bool      `json:"insurance_included"`
	CargoGuarantee    *string    `json:"cargo_guarantee" validate:"omitempty,max=255"`
	IncludedServices  []string   `json:"included_services" validate:"omitempty,max=20,dive,max=60"`
}

type CounterOfferRequest struct {
	CounterAmount  float64 `json:"counter_amount" validate:"required,gt=0"`
	CounterMessage string  `json:"counter_message" validate:"max=2000"`
}

// OfferActionRequest - необязательный комментарий к переходу
type OfferActionRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type OfferListRequest struct {
	Status   string `form:"status" validate:"omitempty,is-offer-status"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type OfferResponse struct {
	ID          string             `json:"id"`
	ListingID   string             `json:"listing_id"`
	BidderID    string             `json:"bidder_id"`
	Amount      float64            `json:"amount"`
	Currency    string             `json:"currency"`
	PricingUnit models.PricingUnit `json:"pricing_unit"`
	Message     string             `json:"message,omitempty"`

	PickupDate        *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate      *time.Time `json:"delivery_date,omitempty"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	TransitDays       *int       `json:"transit_days,omitempty"`
	VehicleType       string     `json:"vehicle_type,omitempty"`
	CapacityTons      *float64   `json:"capacity_tons,omitempty"`
	CapacityM3        *float64   `json:"capacity_m3,omitempty"`
	InsuranceIncluded bool       `json:"insurance_included"`
	CargoGuarantee    string     `json:"cargo_guarantee,omitempty"`
	IncludedServices  []string   `json:"included_services"`

	CounterAmount  *float64 `json:"counter_amount,omitempty"`
	CounterMessage string   `json:"counter_message,omitempty"`

	Status       models.OfferStatus `json:"status"`
	ListingTitle string             `json:"listing_title,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewOfferResponse(o *models.Offer) *OfferResponse {
	resp := &OfferResponse{
		ID:                o.ID,
		ListingID:         o.ListingID,
		BidderID:          o.BidderID,
		Amount:            o.Amount,
		Currency:          o.Currency,
		PricingUnit:       o.PricingUnit,
		Message:           o.Message,
		PickupDate:        o.PickupDate,
		DeliveryDate:      o.DeliveryDate,
		ValidUntil:        o.ValidUntil,
		TransitDays:       o.TransitDays,
		VehicleType:       o.VehicleType,
		CapacityTons:      o.CapacityTons,
		CapacityM3:        o.CapacityM3,
		InsuranceIncluded: o.InsuranceIncluded,
		CargoGuarantee:    o.CargoGuarantee,
		IncludedServices:  DecodeStrings(o.IncludedServices),
		CounterAmount:     o.CounterAmount,
		CounterMessage:    o.CounterMessage,
		Status:            o.Status,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.Listing != nil {
		resp.ListingTitle = o.Listing.Title
	}
	return resp
}

type OfferEventResponse struct {
	ActorID    string             `json:"actor_id"`
	FromStatus models.OfferStatus `json:"from_status,omitempty"`
	ToStatus   models.OfferStatus `json:"to_status"`
	Note       string             `json:"note,omitempty"`
	At         time.Time          `json:"at"`
}

func NewOfferEventResponse(e *models.OfferEvent) *OfferEventResponse {
	return &OfferEventResponse{
		ActorID:    e.ActorID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Note:       e.Note,
		At:         e.CreatedAt,
	}
}
