package services

import (
	"context"
	"encoding/json"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationService interface {
	// Notify сохраняет уведомление и отправляет его в websocket
	Notify(ctx context.Context, db *gorm.DB, userID, notificationType, title, message string, data map[string]interface{}) error
	ListNotifications(ctx context.Context, db *gorm.DB, userID string, req *dto.NotificationListRequest) (*dto.PageResponse[*dto.NotificationResponse], error)
	MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	GetUnreadCount(ctx context.Context, db *gorm.DB, userID string) (*dto.UnreadCountResponse, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	realtime         RealtimeNotifier
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, realtime RealtimeNotifier) NotificationService {
	if realtime == nil {
		realtime = noopNotifier{}
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		realtime:         realtime,
	}
}

func (s *notificationService) Notify(ctx context.Context, db *gorm.DB, userID, notificationType, title, message string, data map[string]interface{}) error {
	n := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return apperrors.InternalError(err)
		}
		n.Data = datatypes.JSON(raw)
	}

	if err := s.notificationRepo.Create(db, n); err != nil {
		return apperrors.InternalError(err)
	}

	s.realtime.SendToUser(userID, EventNotification, dto.NewNotificationResponse(n))
	return nil
}

// notifySafe - уведомления вторичны: ошибка логируется и не ломает основную операцию
func notifySafe(ctx context.Context, ns NotificationService, db *gorm.DB, userID, notificationType, title, message string, data map[string]interface{}) {
	if ns == nil || userID == "" {
		return
	}
	if err := ns.Notify(ctx, db, userID, notificationType, title, message, data); err != nil {
		logger.CtxWithError(ctx, "Failed to create notification", err, "user_id", userID, "type", notificationType)
	}
}

func (s *notificationService) ListNotifications(ctx context.Context, db *gorm.DB, userID string, req *dto.NotificationListRequest) (*dto.PageResponse[*dto.NotificationResponse], error) {
	page := newPage(req.Page, req.PageSize)

	items, total, err := s.notificationRepo.ListByUser(db, userID, req.UnreadOnly, page)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]*dto.NotificationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, dto.NewNotificationResponse(&items[i]))
	}
	return dto.NewPageResponse(responses, total, page.Page, page.PageSize), nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.MarkRead(db, userID, notificationID); err != nil {
		return handleNotificationError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return n, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, db *gorm.DB, userID string) (*dto.UnreadCountResponse, error) {
	n, err := s.notificationRepo.UnreadCount(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.UnreadCountResponse{Unread: n}, nil
}

func handleNotificationError(err error) error {
	if isNotFound(err, repositories.ErrNotificationNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
