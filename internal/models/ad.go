package models

import "time"

// Ad - рекламная кампания пользователя
type Ad struct {
	BaseModel
	OwnerID      string    `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	TargetURL    string    `gorm:"size:500" json:"target_url,omitempty"`
	Budget       float64   `gorm:"not null" json:"budget"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	Status       AdStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
}

// RecalculateEnd пересчитывает дату окончания по длительности
func (a *Ad) RecalculateEnd() {
	a.EndsAt = a.StartsAt.AddDate(0, 0, a.DurationDays)
}
