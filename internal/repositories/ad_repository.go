package repositories

import (
	"errors"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAdNotFound      = errors.New("ad not found")
	ErrAdStatusChanged = errors.New("ad status changed concurrently")
)

type AdRepository interface {
	Create(db *gorm.DB, ad *models.Ad) error
	FindByID(db *gorm.DB, id string) (*models.Ad, error)
	Update(db *gorm.DB, ad *models.Ad) error
	TransitionStatus(db *gorm.DB, id string, from, to models.AdStatus) error
	Delete(db *gorm.DB, id string) error
	ListByOwner(db *gorm.DB, ownerID string, page models.Page) ([]models.Ad, int64, error)
}

type adRepository struct{}

func NewAdRepository() AdRepository {
	return &adRepository{}
}

func (r *adRepository) Create(db *gorm.DB, ad *models.Ad) error {
	return db.Create(ad).Error
}

func (r *adRepository) FindByID(db *gorm.DB, id string) (*models.Ad, error) {
	var ad models.Ad
	if err := db.First(&ad, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	return &ad, nil
}

// Update не трогает status: паузу и активацию меняет только TransitionStatus
func (r *adRepository) Update(db *gorm.DB, ad *models.Ad) error {
	result := db.Model(ad).
		Select("*").
		Omit("id", "created_at", "owner_id", "status").
		Updates(ad)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAdNotFound
	}
	return nil
}

func (r *adRepository) TransitionStatus(db *gorm.DB, id string, from, to models.AdStatus) error {
	result := db.Model(&models.Ad{}).Where("id = ? AND status = ?", id, from).Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAdStatusChanged
	}
	return nil
}

func (r *adRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Ad{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAdNotFound
	}
	return nil
}

func (r *adRepository) ListByOwner(db *gorm.DB, ownerID string, page models.Page) ([]models.Ad, int64, error) {
	var (
		ads   []models.Ad
		total int64
	)

	query := db.Model(&models.Ad{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&ads).Error
	return ads, total, err
}
