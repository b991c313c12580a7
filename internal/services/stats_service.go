package services

import (
	"context"
	"time"

	"cargomarket_backend/internal/cache"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"github.com/jmoiron/sqlx"
)

// StatsService - агрегаты по объявлениям и офферам.
// Результат кэшируется по ключу stats:user:<id>, мутации сбрасывают ключ.
type StatsService interface {
	GetUserStats(ctx context.Context, userID string) (*dto.UserStatsResponse, error)
	GetPlatformStats(ctx context.Context) (*dto.PlatformStatsResponse, error)
	Invalidate(ctx context.Context, userIDs ...string)
}

type statsService struct {
	statsRepo repositories.StatsRepository
	statsDB   *sqlx.DB
	cache     cache.Cache
	ttl       time.Duration
}

func NewStatsService(statsRepo repositories.StatsRepository, statsDB *sqlx.DB, c cache.Cache, ttl time.Duration) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		statsDB:   statsDB,
		cache:     c,
		ttl:       ttl,
	}
}

func (s *statsService) GetUserStats(ctx context.Context, userID string) (*dto.UserStatsResponse, error) {
	key := cache.StatsUserKey(userID)

	var cached dto.UserStatsResponse
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.CtxWithError(ctx, "Stats cache read failed", err, "key", key)
	} else if hit {
		cached.Cached = true
		return &cached, nil
	}

	listings, err := s.statsRepo.ListingCountsByStatus(ctx, s.statsDB, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	sent, err := s.statsRepo.SentOfferCountsByStatus(ctx, s.statsDB, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	received, err := s.statsRepo.ReceivedOfferCountsByStatus(ctx, s.statsDB, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.UserStatsResponse{
		Listings:       breakdown(listings),
		OffersSent:     breakdown(sent),
		OffersReceived: breakdown(received),
		GeneratedAt:    nowUTC(),
	}
	pending := string(models.OfferStatusPending)
	accepted := string(models.OfferStatusAccepted)
	resp.Pending = resp.OffersSent.Count(pending) + resp.OffersReceived.Count(pending)
	resp.Accepted = resp.OffersSent.Count(accepted) + resp.OffersReceived.Count(accepted)
	resp.Total = resp.OffersSent.Total + resp.OffersReceived.Total

	if err := s.cache.SetJSON(ctx, key, resp, s.ttl); err != nil {
		logger.CtxWithError(ctx, "Stats cache write failed", err, "key", key)
	}
	return resp, nil
}

func (s *statsService) GetPlatformStats(ctx context.Context) (*dto.PlatformStatsResponse, error) {
	totals, err := s.statsRepo.PlatformTotals(ctx, s.statsDB)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.PlatformStatsResponse{
		Users:       totals.Users,
		Listings:    totals.Listings,
		Offers:      totals.Offers,
		News:        totals.News,
		GeneratedAt: nowUTC(),
	}, nil
}

func (s *statsService) Invalidate(ctx context.Context, userIDs ...string) {
	ids := uniqueIDs(userIDs...)
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.StatsUserKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.CtxWithError(ctx, "Stats cache invalidation failed", err, "keys", keys)
	}
}

func breakdown(rows []repositories.StatusCount) dto.StatusBreakdown {
	b := dto.StatusBreakdown{ByStatus: make(map[string]int64, len(rows))}
	for _, r := range rows {
		b.ByStatus[r.Status] = r.Count
		b.Total += r.Count
	}
	return b
}
