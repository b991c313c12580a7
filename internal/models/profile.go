package models

// Profile - карточка пользователя: контакты, реквизиты компании, аватар и счетчики
type Profile struct {
	BaseModel
	UserID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`

	// Контакты
	FullName     string `gorm:"size:120" json:"full_name"`
	Phone        string `gorm:"size:32" json:"phone"`
	ContactEmail string `gorm:"size:255" json:"contact_email"`
	City         string `gorm:"size:100" json:"city"`
	Country      string `gorm:"size:100" json:"country"`
	Bio          string `gorm:"type:text" json:"bio"`

	// Компания и налоговые реквизиты
	CompanyName    string `gorm:"size:200" json:"company_name"`
	TaxID          string `gorm:"size:20" json:"tax_id"`
	TaxOffice      string `gorm:"size:120" json:"tax_office"`
	CompanyAddress string `gorm:"size:255" json:"company_address"`
	Website        string `gorm:"size:255" json:"website"`

	// Аватар хранится в бакете avatars
	AvatarPath    string `json:"-"`
	AvatarURL     string `json:"avatar_url"`
	ThumbnailPath string `json:"-"`
	ThumbnailURL  string `json:"thumbnail_url"`

	// Верификация компании
	VerificationStatus  VerificationStatus `gorm:"type:varchar(20);not null;default:'none'" json:"verification_status"`
	VerificationDocPath string             `json:"-"`
	VerificationDocMime string             `json:"-"`
	VerificationNote    string             `json:"verification_note,omitempty"`

	// Счетчики
	TotalListings int     `gorm:"not null;default:0" json:"total_listings"`
	TotalOffers   int     `gorm:"not null;default:0" json:"total_offers"`
	Rating        float64 `gorm:"not null;default:0" json:"rating"`
	RatingCount   int     `gorm:"not null;default:0" json:"rating_count"`
}
