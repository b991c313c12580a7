package repositories

import (
	"errors"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUploadNotFound = errors.New("upload not found")

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.Upload) error
	FindByPath(db *gorm.DB, path string) (*models.Upload, error)
	DeleteByPath(db *gorm.DB, path string) error
	ListByEntity(db *gorm.DB, entityType, entityID string) ([]models.Upload, error)
	// SumSizeByUser - занятое пользователем место в бакете
	SumSizeByUser(db *gorm.DB, userID, bucket string) (int64, error)
}

type uploadRepository struct{}

func NewUploadRepository() UploadRepository {
	return &uploadRepository{}
}

func (r *uploadRepository) Create(db *gorm.DB, upload *models.Upload) error {
	return db.Create(upload).Error
}

func (r *uploadRepository) FindByPath(db *gorm.DB, path string) (*models.Upload, error) {
	var upload models.Upload
	if err := db.First(&upload, "path = ?", path).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) DeleteByPath(db *gorm.DB, path string) error {
	return db.Where("path = ?", path).Delete(&models.Upload{}).Error
}

func (r *uploadRepository) ListByEntity(db *gorm.DB, entityType, entityID string) ([]models.Upload, error) {
	var uploads []models.Upload
	err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) SumSizeByUser(db *gorm.DB, userID, bucket string) (int64, error) {
	var total int64
	err := db.Model(&models.Upload{}).
		Select("COALESCE(SUM(size), 0)").
		Where("user_id = ? AND bucket = ?", userID, bucket).
		Scan(&total).Error
	return total, err
}
