package models

import (
	"time"

	"gorm.io/datatypes"
)

type NewsArticle struct {
	BaseModel
	Title       string         `gorm:"size:300;not null" json:"title"`
	Slug        string         `gorm:"size:320;uniqueIndex;not null" json:"slug"`
	Summary     string         `gorm:"type:text" json:"summary"`
	Content     string         `gorm:"type:text" json:"content,omitempty"`
	Category    NewsCategory   `gorm:"type:varchar(20);not null;default:'general';index" json:"category"`
	Tags        datatypes.JSON `json:"tags,omitempty"`
	Source      string         `gorm:"size:120" json:"source,omitempty"`
	SourceURL   string         `gorm:"size:500" json:"source_url,omitempty"`
	ImageURL    string         `gorm:"size:500" json:"image_url,omitempty"`
	Views       int            `gorm:"not null;default:0" json:"views"`
	PublishedAt time.Time      `gorm:"index" json:"published_at"`
	IsExternal  bool           `gorm:"not null;default:false" json:"is_external"`
}
