package models

type UserStatus string
type UserRole string
type ListingKind string
type ListingStatus string
type ListingVisibility string
type TransportMode string
type OfferStatus string
type PricingUnit string
type VerificationStatus string
type AdStatus string
type NewsCategory string
type PaymentMethod string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	ListingKindCargo            ListingKind = "cargo"
	ListingKindTransportService ListingKind = "transport_service"

	ListingStatusActive    ListingStatus = "active"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusPaused    ListingStatus = "paused"
	ListingStatusCompleted ListingStatus = "completed"
	ListingStatusDeleted   ListingStatus = "deleted" // мягкое удаление

	VisibilityPublic  ListingVisibility = "public"
	VisibilityPrivate ListingVisibility = "private"

	TransportModeRoad       TransportMode = "road"
	TransportModeRail       TransportMode = "rail"
	TransportModeSea        TransportMode = "sea"
	TransportModeAir        TransportMode = "air"
	TransportModeMultimodal TransportMode = "multimodal"

	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
	OfferStatusCountered OfferStatus = "countered"

	PricingUnitTotal     PricingUnit = "total"
	PricingUnitPerKm     PricingUnit = "per_km"
	PricingUnitPerTon    PricingUnit = "per_ton"
	PricingUnitPerPallet PricingUnit = "per_pallet"
	PricingUnitPerDay    PricingUnit = "per_day"

	VerificationNone     VerificationStatus = "none"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"

	AdStatusActive AdStatus = "active"
	AdStatusPaused AdStatus = "paused"

	NewsCategoryMarket     NewsCategory = "market"
	NewsCategoryRegulation NewsCategory = "regulation"
	NewsCategoryTechnology NewsCategory = "technology"
	NewsCategoryLogistics  NewsCategory = "logistics"
	NewsCategoryGeneral    NewsCategory = "general"

	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

var ListingKinds = []ListingKind{ListingKindCargo, ListingKindTransportService}

var ListingStatuses = []ListingStatus{
	ListingStatusActive, ListingStatusPending, ListingStatusPaused, ListingStatusCompleted,
}

var TransportModes = []TransportMode{
	TransportModeRoad, TransportModeRail, TransportModeSea, TransportModeAir, TransportModeMultimodal,
}

var OfferStatuses = []OfferStatus{
	OfferStatusPending, OfferStatusAccepted, OfferStatusRejected, OfferStatusWithdrawn, OfferStatusCountered,
}

var PricingUnits = []PricingUnit{
	PricingUnitTotal, PricingUnitPerKm, PricingUnitPerTon, PricingUnitPerPallet, PricingUnitPerDay,
}

var NewsCategories = []NewsCategory{
	NewsCategoryMarket, NewsCategoryRegulation, NewsCategoryTechnology, NewsCategoryLogistics, NewsCategoryGeneral,
}

// Currencies - поддерживаемые валюты (ISO 4217)
var Currencies = []string{"USD", "EUR", "TRY", "KZT", "RUB", "GBP"}

// IsOpen - оффер еще участвует в переговорах
func (s OfferStatus) IsOpen() bool {
	return s == OfferStatusPending || s == OfferStatusCountered
}

// Label - подпись статуса рекламы для интерфейса
func (s AdStatus) Label() string {
	switch s {
	case AdStatusActive:
		return "Aktif"
	case AdStatusPaused:
		return "Pasif"
	default:
		return string(s)
	}
}
