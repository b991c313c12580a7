package models

// Upload - учет загруженных файлов по бакетам (для квот и раздачи)
type Upload struct {
	BaseModel
	UserID       string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Bucket       string `gorm:"size:64;not null;index" json:"bucket"`
	EntityType   string `gorm:"size:40" json:"entity_type"` // profile, message
	EntityID     string `gorm:"type:varchar(36);index" json:"entity_id"`
	Usage        string `gorm:"size:40" json:"usage"` // avatar, avatar_thumbnail, attachment, verification_document
	Path         string `gorm:"uniqueIndex;not null" json:"path"`
	OriginalName string `gorm:"size:255" json:"original_name"`
	MimeType     string `gorm:"size:127" json:"mime_type"`
	Size         int64  `json:"size"`
	IsPublic     bool   `gorm:"not null;default:true" json:"is_public"`
}
