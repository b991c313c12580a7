package dto

import (
	"encoding/json"
	"time"

	"cargomarket_backend/internal/models"
)

type CreateListingRequest struct {
	Kind        models.ListingKind `json:"kind" validate:"required,is-listing-kind"`
	Title       string             `json:"title" validate:"required,min=3,max=200"`
	Description string             `json:"description" validate:"max=5000"`

	OriginCity         string               `json:"origin_city" validate:"required,max=100"`
	OriginCountry      string               `json:"origin_country" validate:"max=100"`
	DestinationCity    string               `json:"destination_city" validate:"required,max=100"`
	DestinationCountry string               `json:"destination_country" validate:"max=100"`
	TransportMode      models.TransportMode `json:"transport_mode" validate:"required,is-transport-mode"`
	CargoType          string               `json:"cargo_type" validate:"max=100"`
	WeightKg           *float64             `json:"weight_kg" validate:"omitempty,gt=0"`
	VolumeM3           *float64             `json:"volume_m3" validate:"omitempty,gt=0"`
	VehicleType        string               `json:"vehicle_type" validate:"max=100"`

	Price    *float64 `json:"price" validate:"omitempty,gt=0"`
	Currency string   `json:"currency" validate:"omitempty,is-currency"`

	Status     models.ListingStatus     `json:"status" validate:"omitempty,oneof=active pending"`
	Visibility models.ListingVisibility `json:"visibility" validate:"omitempty,is-visibility"`
	PickupDate *time.Time               `json:"pickup_date" validate:"omitempty,future"`
	ExpiresAt  *time.Time               `json:"expires_at" validate:"omitempty,future"`
	Tags       []string                 `json:"tags" validate:"omitempty,max=20,dive,max=40"`
}

// UpdateListingRequest - частичное обновление; nil означает "не менять"
type UpdateListingRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`

	OriginCity         *string               `json:"origin_city" validate:"omitempty,max=100"`
	OriginCountry      *string               `json:"origin_country" validate:"omitempty,max=100"`
	DestinationCity    *string               `json:"destination_city" validate:"omitempty,max=100"`
	DestinationCountry *string               `json:"destination_country" validate:"omitempty,max=100"`
	TransportMode      *models.TransportMode `json:"transport_mode" validate:"omitempty,is-transport-mode"`
	CargoType          *string               `json:"cargo_type" validate:"omitempty,max=100"`
	WeightKg           *float64              `json:"weight_kg" validate:"omitempty,gt=0"`
	VolumeM3           *float64              `json:"volume_m3" validate:"omitempty,gt=0"`
	VehicleType        *string               `json:"vehicle_type" validate:"omitempty,max=100"`

	Price    *float64 `json:"price" validate:"omitempty,gt=0"`
	Currency *string  `json:"currency" validate:"omitempty,is-currency"`

	Visibility *models.ListingVisibility `json:"visibility" validate:"omitempty,is-visibility"`
	PickupDate *time.Time                `json:"pickup_date" validate:"omitempty,future"`
	ExpiresAt  *time.Time                `json:"expires_at" validate:"omitempty,future"`
	Tags       []string                  `json:"tags" validate:"omitempty,max=20,dive,max=40"`
}

type ChangeListingStatusRequest struct {
	Status models.ListingStatus `json:"status" validate:"required,is-listing-status"`
}

// ListingSearchRequest - параметры строки запроса для поиска
type ListingSearchRequest struct {
	Kind          string   `form:"kind" validate:"omitempty,is-listing-kind"`
	Origin        string   `form:"origin" validate:"omitempty,max=100"`
	Destination   string   `form:"destination" validate:"omitempty,max=100"`
	TransportMode string   `form:"transport_mode" validate:"omitempty,is-transport-mode"`
	CargoType     string   `form:"cargo_type" validate:"omitempty,max=100"`
	Status        string   `form:"status" validate:"omitempty,is-listing-status"`
	Query         string   `form:"q" validate:"omitempty,max=200"`
	MinPrice      *float64 `form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice      *float64 `form:"max_price" validate:"omitempty,gte=0"`
	Sort          string   `form:"sort" validate:"omitempty,oneof=newest price_asc price_desc expiring"`
	Page          int      `form:"page" validate:"omitempty,min=1"`
	PageSize      int      `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type ListingResponse struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	Kind        models.ListingKind `json:"kind"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`

	OriginCity         string               `json:"origin_city"`
	OriginCountry      string               `json:"origin_country,omitempty"`
	DestinationCity    string               `json:"destination_city"`
	DestinationCountry string               `json:"destination_country,omitempty"`
	TransportMode      models.TransportMode `json:"transport_mode"`
	CargoType          string               `json:"cargo_type,omitempty"`
	WeightKg           *float64             `json:"weight_kg,omitempty"`
	VolumeM3           *float64             `json:"volume_m3,omitempty"`
	VehicleType        string               `json:"vehicle_type,omitempty"`

	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`

	Status     models.ListingStatus     `json:"status"`
	Visibility models.ListingVisibility `json:"visibility"`
	PickupDate *time.Time               `json:"pickup_date,omitempty"`
	ExpiresAt  *time.Time               `json:"expires_at,omitempty"`
	IsExpired  bool                     `json:"is_expired"`
	Tags       []string                 `json:"tags"`
	Views      int                      `json:"views"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

func NewListingResponse(l *models.Listing, now time.Time) *ListingResponse {
	return &ListingResponse{
		ID:                 l.ID,
		OwnerID:            l.OwnerID,
		Kind:               l.Kind,
		Title:              l.Title,
		Description:        l.Description,
		OriginCity:         l.OriginCity,
		OriginCountry:      l.OriginCountry,
		DestinationCity:    l.DestinationCity,
		DestinationCountry: l.DestinationCountry,
		TransportMode:      l.TransportMode,
		CargoType:          l.CargoType,
		WeightKg:           l.WeightKg,
		VolumeM3:           l.VolumeM3,
		VehicleType:        l.VehicleType,
		Price:              l.Price,
		Currency:           l.Currency,
		Status:             l.Status,
		Visibility:         l.Visibility,
		PickupDate:         l.PickupDate,
		ExpiresAt:          l.ExpiresAt,
		IsExpired:          l.IsExpired(now),
		Tags:               DecodeStrings(l.Tags),
		Views:              l.Views,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// DecodeStrings читает JSON-массив строк; битое значение дает пустой список
func DecodeStrings(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}
