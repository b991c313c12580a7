package repositories

import (
	"errors"
	"time"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	ListByUser(db *gorm.DB, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error)
	MarkRead(db *gorm.DB, userID, id string) error
	MarkAllRead(db *gorm.DB, userID string) (int64, error)
	UnreadCount(db *gorm.DB, userID string) (int64, error)
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *notificationRepository) ListByUser(db *gorm.DB, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error) {
	var (
		notifications []models.Notification
		total         int64
	)

	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkRead - чужое уведомление неотличимо от отсутствующего
func (r *notificationRepository) MarkRead(db *gorm.DB, userID, id string) error {
	now := time.Now().UTC()
	result := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(db *gorm.DB, userID string) (int64, error) {
	now := time.Now().UTC()
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) UnreadCount(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
