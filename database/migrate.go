package database

import (
	"fmt"
	"time"

	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models - полный список таблиц; тесты мигрируют тот же набор
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Listing{},
		&models.Offer{},
		&models.OfferEvent{},
		&models.Conversation{},
		&models.Message{},
		&models.MessageAttachment{},
		&models.NewsArticle{},
		&models.Ad{},
		&models.Wallet{},
		&models.BalanceTransaction{},
		&models.Notification{},
		&models.Upload{},
		&models.RefreshToken{},
	}
}

// Connect открывает postgres через GORM и настраивает пул
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.Server.Env == "production" {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	return nil
}
