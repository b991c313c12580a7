package helpers

import (
	"fmt"
	"testing"

	"cargomarket_backend/database"
	"cargomarket_backend/internal/auth"
	"cargomarket_backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestPassword = "password123"

// NewTestDB - отдельная in-memory база sqlite на каждый тест
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "не удалось открыть тестовую БД")
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewStatsDB - sqlx поверх того же соединения, что и GORM
func NewStatsDB(t *testing.T, db *gorm.DB) *sqlx.DB {
	t.Helper()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlite3")
}

// CreateUser создает пользователя вместе с профилем и кошельком
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	require.NoError(t, err)

	if role == "" {
		role = models.UserRoleUser
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error, "не удалось создать пользователя %s", email)

	profile := &models.Profile{UserID: user.ID, FullName: "Test " + email}
	require.NoError(t, db.Create(profile).Error)
	require.NoError(t, db.Create(&models.Wallet{UserID: user.ID, Currency: "USD"}).Error)

	user.Profile = profile
	return user
}

// UniqueEmail - email, не пересекающийся между тестами
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%s@test.com", prefix, uuid.NewString()[:8])
}
