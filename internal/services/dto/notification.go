package dto

import (
	"encoding/json"
	"time"

	"cargomarket_backend/internal/models"
)

type NotificationListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page" validate:"omitempty,min=1"`
	PageSize   int  `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewNotificationResponse(n *models.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		resp.Data = json.RawMessage(n.Data)
	}
	return resp
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
