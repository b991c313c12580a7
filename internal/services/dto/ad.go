package dto

import (
	"time"

	"cargomarket_backend/internal/models"
)

type CreateAdRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	Description  string  `json:"description" validate:"max=2000"`
	TargetURL    string  `json:"target_url" validate:"omitempty,url"`
	Budget       float64 `json:"budget" validate:"required,gt=0"`
	DurationDays int     `json:"duration_days" validate:"required,min=1,max=365"`
}

type UpdateAdRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	TargetURL    *string  `json:"target_url" validate:"omitempty,url"`
	Budget       *float64 `json:"budget" validate:"omitempty,gt=0"`
	DurationDays *int     `json:"duration_days" validate:"omitempty,min=1,max=365"`
}

type AdResponse struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	TargetURL    string          `json:"target_url,omitempty"`
	Budget       float64         `json:"budget"`
	DurationDays int             `json:"duration_days"`
	Status       models.AdStatus `json:"status"`
	StatusLabel  string          `json:"status_label"`
	CanActivate  bool            `json:"can_activate"`
	CanPause     bool            `json:"can_pause"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       time.Time       `json:"ends_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func NewAdResponse(ad *models.Ad) *AdResponse {
	return &AdResponse{
		ID:           ad.ID,
		OwnerID:      ad.OwnerID,
		Title:        ad.Title,
		Description:  ad.Description,
		TargetURL:    ad.TargetURL,
		Budget:       ad.Budget,
		DurationDays: ad.DurationDays,
		Status:       ad.Status,
		StatusLabel:  ad.Status.Label(),
		CanActivate:  ad.Status == models.AdStatusPaused,
		CanPause:     ad.Status == models.AdStatusActive,
		StartsAt:     ad.StartsAt,
		EndsAt:       ad.EndsAt,
		CreatedAt:    ad.CreatedAt,
		UpdatedAt:    ad.UpdatedAt,
	}
}
