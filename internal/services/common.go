package services

import (
	"encoding/json"
	"time"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RealtimeNotifier доставляет событие подключенным клиентам пользователя
type RealtimeNotifier interface {
	SendToUser(userID string, event string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) SendToUser(string, string, interface{}) {}

// Realtime-события
const (
	EventMessageNew        = "message.new"
	EventAttachmentNew     = "attachment.new"
	EventAttachmentDeleted = "attachment.deleted"
	EventOfferNew          = "offer.new"
	EventOfferUpdated      = "offer.updated"
	EventNotification      = "notification"
)

func newPage(page, pageSize int) models.Page {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return models.Page{Page: page, PageSize: pageSize}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func encodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return datatypes.JSON(raw)
}

// requireFuture - даты сроков обязаны быть в будущем, если указаны
func requireFuture(field string, t *time.Time, now time.Time) error {
	if t != nil && !t.After(now) {
		return apperrors.FieldError(field, "Must be a date in the future")
	}
	return nil
}

func requirePositive(field string, v float64) error {
	if v <= 0 {
		return apperrors.FieldError(field, "Must be greater than 0")
	}
	return nil
}

func uniqueIDs(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
