package services

import (
	"cargomarket_backend/internal/email"
	"cargomarket_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	ProfileService      ProfileService
	ListingService      ListingService
	OfferService        OfferService
	StatsService        StatsService
	ChatService         ChatService
	NewsService         NewsService
	AdService           AdService
	BalanceService      BalanceService
	NotificationService NotificationService
	UploadService       UploadService
	FileService         FileService
	EmailService        *EmailService

	EmailProvider email.Provider
	Storage       storage.Storage
}
