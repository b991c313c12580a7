package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cargomarket_backend/internal/cache"
	"cargomarket_backend/internal/email"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"
)

// EmailService - функция send-email для авторизованных пользователей
type EmailService struct {
	provider email.Provider
	cache    cache.Cache
	limit    int
	window   time.Duration
}

// NewEmailService; limit <= 0 отключает ограничение частоты
func NewEmailService(provider email.Provider, c cache.Cache, limit int, window time.Duration) *EmailService {
	return &EmailService{
		provider: provider,
		cache:    c,
		limit:    limit,
		window:   window,
	}
}

// Send отправляет письмо по шаблону или с произвольным телом
func (s *EmailService) Send(ctx context.Context, userID string, req *dto.SendEmailRequest) (*dto.SendEmailResponse, error) {
	if req.Template == "" && strings.TrimSpace(req.Body) == "" {
		return nil, apperrors.FieldError("body", "Either template or body is required")
	}
	if err := s.checkRate(ctx, userID); err != nil {
		return nil, err
	}

	msg := &email.Email{
		To:      req.To,
		Subject: req.Subject,
	}

	var err error
	if req.Template != "" {
		data := email.TemplateData{}
		for k, v := range req.Data {
			data[k] = v
		}
		if req.Template == email.TemplateGeneric {
			if _, ok := data["Body"]; !ok {
				data["Body"] = req.Body
			}
			if _, ok := data["Title"]; !ok {
				data["Title"] = req.Subject
			}
		}
		err = s.provider.SendWithTemplate(req.Template, data, msg)
	} else {
		msg.Body = req.Body
		err = s.provider.Send(msg)
	}
	if err != nil {
		logger.CtxWithError(ctx, "Failed to send email", err, "template", req.Template, "recipients", len(req.To))
		return nil, apperrors.ErrExternalService(err, "email", "Failed to send email")
	}

	logger.CtxInfo(ctx, "Email sent", "template", req.Template, "recipients", len(req.To))
	return &dto.SendEmailResponse{
		Sent:       true,
		Recipients: req.To,
		Template:   req.Template,
	}, nil
}

// checkRate - счетчик окна в кэше; сбой кэша не блокирует отправку
func (s *EmailService) checkRate(ctx context.Context, userID string) error {
	if s.limit <= 0 || s.cache == nil {
		return nil
	}

	n, err := s.cache.Incr(ctx, cache.RateKey("email", userID), s.window)
	if err != nil {
		logger.CtxWithError(ctx, "Email rate counter failed", err, "user_id", userID)
		return nil
	}
	if n > int64(s.limit) {
		return apperrors.NewTooManyRequestsError(
			fmt.Sprintf("Email limit reached: %d messages per %s", s.limit, s.window))
	}
	return nil
}

// Validate проверяет конфигурацию провайдера
func (s *EmailService) Validate() error {
	return s.provider.Validate()
}
