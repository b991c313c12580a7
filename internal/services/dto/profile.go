package dto

import (
	"time"

	"cargomarket_backend/internal/models"
)

// ProfileResponse - полная карточка для владельца и администратора
type ProfileResponse struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Bio          string `json:"bio,omitempty"`

	CompanyName    string `json:"company_name,omitempty"`
	TaxID          string `json:"tax_id,omitempty"`
	TaxOffice      string `json:"tax_office,omitempty"`
	CompanyAddress string `json:"company_address,omitempty"`
	Website        string `json:"website,omitempty"`

	AvatarURL    string `json:"avatar_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	VerificationStatus models.VerificationStatus `json:"verification_status"`
	VerificationNote   string                    `json:"verification_note,omitempty"`
	HasDocument        bool                      `json:"has_verification_document"`

	TotalListings int       `json:"total_listings"`
	TotalOffers   int       `json:"total_offers"`
	Rating        float64   `json:"rating"`
	RatingCount   int       `json:"rating_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewProfileResponse(p *models.Profile) *ProfileResponse {
	return &ProfileResponse{
		UserID:             p.UserID,
		FullName:           p.FullName,
		Phone:              p.Phone,
		ContactEmail:       p.ContactEmail,
		City:               p.City,
		Country:            p.Country,
		Bio:                p.Bio,
		CompanyName:        p.CompanyName,
		TaxID:              p.TaxID,
		TaxOffice:          p.TaxOffice,
		CompanyAddress:     p.CompanyAddress,
		Website:            p.Website,
		AvatarURL:          p.AvatarURL,
		ThumbnailURL:       p.ThumbnailURL,
		VerificationStatus: p.VerificationStatus,
		VerificationNote:   p.VerificationNote,
		HasDocument:        p.VerificationDocPath != "",
		TotalListings:      p.TotalListings,
		TotalOffers:        p.TotalOffers,
		Rating:             p.Rating,
		RatingCount:        p.RatingCount,
		UpdatedAt:          p.UpdatedAt,
	}
}

// PublicProfileResponse - то, что видят другие пользователи: без налоговых и контактных данных
type PublicProfileResponse struct {
	UserID             string                    `json:"user_id"`
	FullName           string                    `json:"full_name"`
	City               string                    `json:"city,omitempty"`
	Country            string                    `json:"country,omitempty"`
	Bio                string                    `json:"bio,omitempty"`
	CompanyName        string                    `json:"company_name,omitempty"`
	Website            string                    `json:"website,omitempty"`
	AvatarURL          string                    `json:"avatar_url,omitempty"`
	ThumbnailURL       string                    `json:"thumbnail_url,omitempty"`
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	TotalListings      int                       `json:"total_listings"`
	Rating             float64                   `json:"rating"`
	RatingCount        int                       `json:"rating_count"`
}

func NewPublicProfileResponse(p *models.Profile) *PublicProfileResponse {
	return &PublicProfileResponse{
		UserID:             p.UserID,
		FullName:           p.FullName,
		City:               p.City,
		Country:            p.Country,
		Bio:                p.Bio,
		CompanyName:        p.CompanyName,
		Website:            p.Website,
		AvatarURL:          p.AvatarURL,
		ThumbnailURL:       p.ThumbnailURL,
		VerificationStatus: p.VerificationStatus,
		TotalListings:      p.TotalListings,
		Rating:             p.Rating,
		RatingCount:        p.RatingCount,
	}
}

// UpdateProfileRequest - частичное обновление; nil означает "не менять"
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
	Bio          *string `json:"bio" validate:"omitempty,max=2000"`

	CompanyName    *string `json:"company_name" validate:"omitempty,max=200"`
	TaxID          *string `json:"tax_id" validate:"omitempty,numeric,min=10,max=11"`
	TaxOffice      *string `json:"tax_office" validate:"omitempty,max=120"`
	CompanyAddress *string `json:"company_address" validate:"omitempty,max=255"`
	Website        *string `json:"website" validate:"omitempty,url"`
}

type AvatarResponse struct {
	AvatarURL    string `json:"avatar_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type VerificationDocumentResponse struct {
	Status    models.VerificationStatus `json:"verification_status"`
	URL       string                    `json:"url,omitempty"`
	ExpiresAt *time.Time                `json:"expires_at,omitempty"`
}

// ReviewVerificationRequest - решение администратора
type ReviewVerificationRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Note    string `json:"note" validate:"max=500"`
}
