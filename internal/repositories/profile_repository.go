package repositories

import (
	"errors"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists for this user")
)

// Счетчики профиля, которые можно инкрементировать
const (
	CounterTotalListings = "total_listings"
	CounterTotalOffers   = "total_offers"
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *models.Profile) error
	FindByUserID(db *gorm.DB, userID string) (*models.Profile, error)
	Update(db *gorm.DB, profile *models.Profile) error
	UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error
	IncrementCounter(db *gorm.DB, userID, counter string, delta int) error
	ListByVerificationStatus(db *gorm.DB, status models.VerificationStatus, page models.Page) ([]models.Profile, int64, error)
}

type profileRepository struct{}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(db *gorm.DB, profile *models.Profile) error {
	var count int64
	if err := db.Model(&models.Profile{}).Where("user_id = ?", profile.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrProfileAlreadyExists
	}
	return db.Create(profile).Error
}

func (r *profileRepository) FindByUserID(db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(db *gorm.DB, profile *models.Profile) error {
	return db.Save(profile).Error
}

func (r *profileRepository) UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error {
	result := db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// IncrementCounter - атомарный инкремент без чтения строки
func (r *profileRepository) IncrementCounter(db *gorm.DB, userID, counter string, delta int) error {
	switch counter {
	case CounterTotalListings, CounterTotalOffers:
	default:
		return errors.New("unknown profile counter: " + counter)
	}

	result := db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumn(counter, gorm.Expr(counter+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) ListByVerificationStatus(db *gorm.DB, status models.VerificationStatus, page models.Page) ([]models.Profile, int64, error) {
	var (
		profiles []models.Profile
		total    int64
	)

	query := db.Model(&models.Profile{}).Where("verification_status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("updated_at ASC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&profiles).Error
	return profiles, total, err
}
