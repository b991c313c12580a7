package services

import (
	"context"
	"errors"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AdService interface {
	CreateAd(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateAdRequest) (*dto.AdResponse, error)
	GetAd(ctx context.Context, db *gorm.DB, userID, adID string) (*dto.AdResponse, error)
	ListMyAds(ctx context.Context, db *gorm.DB, userID string, page, pageSize int) (*dto.PageResponse[*dto.AdResponse], error)
	UpdateAd(ctx context.Context, db *gorm.DB, userID, adID string, req *dto.UpdateAdRequest) (*dto.AdResponse, error)
	PauseAd(ctx context.Context, db *gorm.DB, userID, adID string) (*dto.AdResponse, error)
	ActivateAd(ctx context.Context, db *gorm.DB, userID, adID string) (*dto.AdResponse, error)
	DeleteAd(ctx context.Context, db *gorm.DB, userID, adID string) error
}

type adService struct {
	adRepo repositories.AdRepository
}

func NewAdService(adRepo repositories.AdRepository) AdService {
	return &adService{adRepo: adRepo}
}

func (s *adService) CreateAd(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateAdRequest) (*dto.AdResponse, error) {
	if err := requirePositive("budget", req.Budget); err != nil {
		return nil, err
	}
	if req.DurationDays < 1 || req.DurationDays > 365 {
		return nil, apperrors.FieldError("duration_days", "Must be between 1 and 365")
	}

	ad := &models.Ad{
		OwnerID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		TargetURL:    req.TargetURL,
		Budget:       req.Budget,
		DurationDays: req.DurationDays,
		Status:       models.AdStatusActive,
		StartsAt:     nowUTC(),
	}
	ad.RecalculateEnd()

	if err := s.adRepo.Create(db, ad); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Ad created", "ad_id", ad.ID, "budget", ad.Budget)
	return dto.NewAdResponse(ad), nil
}

func (s *adService) GetAd(ctx context.Context, db *gorm.DB, userID, adID string) (*dto.AdResponse, error) {
	ad, err := s.ownedAd(db, userID, adID)
	if err != nil {
		return nil, err
	}
	return dto.NewAdResponse(ad), nil
}

func (s *adService) ListMyAds(ctx context.Context, db *gorm.DB, userID string, page, pageSize int) (*dto.PageResponse[*dto.AdResponse], error) {
	p := newPage(page, pageSize)
	ads, total, err := s.adRepo.ListByOwner(db, userID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.AdResponse, 0, len(ads))
	for i := range ads {
		items = append(items, dto.NewAdResponse(&ads[i]))
	}
	return dto.NewPageResponse(items, total, p.Page, p.PageSize), nil
}

// UpdateAd сохраняет строку и пересчитывает ends_at при смене длительности
func (s *adService) UpdateAd(ctx context.Context, db *gorm.DB, userID, adID string, req *dto.UpdateAdRequest) (*dto.AdResponse, error) {
	if req.Budget != nil {
		if err := requirePositive("budget", *req.Budget); err != nil {
			return nil, err
		}
	}

	ad, err := s.ownedAd(db, userID, adID)
	if err != nil {
		return nil, err
	}

	applyString(&ad.Title, req.Title)
	applyString(&ad.Description, req.Description)
	applyString(&ad.TargetURL, req.TargetURL)
	if req.Budget != nil {
		ad.Budget = *req.Budget
	}
	if req.DurationDays != nil && *req.DurationDays != ad.DurationDays {
		ad.DurationDays = *req.DurationDays
		ad.RecalculateEnd()
	}

	if err := s.adRepo.Update(db, ad); err != nil {
		return nil, handleAdError(err)
	}
	// статус мог смениться параллельно, отдаем актуальную строку
	fresh, err := s.adRepo.FindByID(db, ad.ID)
	if err != nil {
		return nil, handleAdError(err)
	}
	return dto.NewAdResponse(fresh), nil
}

func (s *adService) PauseAd(ctx context.Context, db *gorm.DB, userID, adID string) (*dto.AdResponse, error) {
	return s.changeStatus(db, userID, adID, models.AdStatusActive, models.AdStatusPaused)
}

func (s *adService) ActivateAd(ctx context.Context, db *gorm.DB, userID, adID string) (*dto.AdResponse, error) {
	return s.changeStatus(db, userID, adID, models.AdStatusPaused, models.AdStatusActive)
}

func (s *adService) changeStatus(db *gorm.DB, userID, adID string, from, to models.AdStatus) (*dto.AdResponse, error) {
	ad, err := s.ownedAd(db, userID, adID)
	if err != nil {
		return nil, err
	}
	if ad.Status != from {
		return nil, apperrors.ErrInvalidAdStatus
	}

	if err := s.adRepo.TransitionStatus(db, ad.ID, from, to); err != nil {
		if errors.Is(err, repositories.ErrAdStatusChanged) {
			return nil, apperrors.ErrInvalidAdStatus.WithError(err)
		}
		return nil, apperrors.InternalError(err)
	}
	ad.Status = to
	return dto.NewAdResponse(ad), nil
}

func (s *adService) DeleteAd(ctx context.Context, db *gorm.DB, userID, adID string) error {
	ad, err := s.ownedAd(db, userID, adID)
	if err != nil {
		return err
	}
	if err := s.adRepo.Delete(db, ad.ID); err != nil {
		return handleAdError(err)
	}

	logger.CtxInfo(ctx, "Ad deleted", "ad_id", ad.ID)
	return nil
}

// ownedAd - чужая реклама неотличима от отсутствующей
func (s *adService) ownedAd(db *gorm.DB, userID, adID string) (*models.Ad, error) {
	ad, err := s.adRepo.FindByID(db, adID)
	if err != nil {
		return nil, handleAdError(err)
	}
	if ad.OwnerID != userID {
		return nil, apperrors.ErrNotFound(repositories.ErrAdNotFound)
	}
	return ad, nil
}

func handleAdError(err error) error {
	if isNotFound(err, repositories.ErrAdNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
