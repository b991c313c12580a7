package services

import (
	"context"
	"errors"
	"time"

	"cargomarket_backend/internal/auth"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	// Register создает пользователя, профиль и кошелек одной транзакцией
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)

	// Refresh ротирует refresh-токен: старый становится недействительным
	Refresh(ctx context.Context, db *gorm.DB, req *dto.RefreshRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, db *gorm.DB, req *dto.RefreshRequest) error
	LogoutAll(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// CleanupExpiredTokens вызывается фоновым воркером
	CleanupExpiredTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}

type authService struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	walletRepo       repositories.WalletRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	refreshTTL       time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	walletRepo repositories.WalletRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	refreshTTL time.Duration,
) AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		walletRepo:       walletRepo,
		refreshTokenRepo: refreshTokenRepo,
		refreshTTL:       refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	profile := &models.Profile{
		UserID:             user.ID,
		FullName:           req.FullName,
		ContactEmail:       user.Email,
		VerificationStatus: models.VerificationNone,
	}
	if err := s.profileRepo.Create(tx, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if _, err := s.walletRepo.FindOrCreate(tx, user.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	user.Profile = profile
	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "User registered", "user_id", user.ID)
	return resp, nil
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "Login failed: wrong password", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	return s.issueTokens(db, user)
}

func (s *authService) Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleAuthError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) Refresh(ctx context.Context, db *gorm.DB, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	hash := auth.HashRefreshToken(req.RefreshToken)

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	token, err := s.refreshTokenRepo.FindByHash(tx, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	// Удаление до выпуска нового: повторное использование того же токена получит 401
	if err := s.refreshTokenRepo.DeleteByHash(tx, hash); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if token.IsExpired(nowUTC()) {
		if err := tx.Commit().Error; err != nil {
			return nil, apperrors.InternalError(err)
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, token.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, db *gorm.DB, req *dto.RefreshRequest) error {
	err := s.refreshTokenRepo.DeleteByHash(db, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	n, err := s.refreshTokenRepo.DeleteByUserID(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "All sessions revoked", "user_id", userID, "tokens", n)
	return n, nil
}

func (s *authService) CleanupExpiredTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(db, now)
}

// issueTokens выпускает access-токен и сохраняет новый refresh-токен через db
func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	access, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashRefreshToken(refresh),
		ExpiresAt: nowUTC().Add(s.refreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(auth.TokenTTL().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

func handleAuthError(err error) error {
	if isNotFound(err, repositories.ErrUserNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
