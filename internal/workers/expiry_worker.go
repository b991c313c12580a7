package workers

import (
	"context"
	"time"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/metrics"
	"cargomarket_backend/internal/services"

	"gorm.io/gorm"
)

const (
	expiryWorkerName = "expiry"
	expiryBatchSize  = 200
)

// ExpiryWorker закрывает просроченные объявления и офферы
// и чистит истекшие refresh-токены
type ExpiryWorker struct {
	db             *gorm.DB
	listingService services.ListingService
	offerService   services.OfferService
	authService    services.AuthService
	interval       time.Duration
}

func NewExpiryWorker(
	db *gorm.DB,
	listingService services.ListingService,
	offerService services.OfferService,
	authService services.AuthService,
	interval time.Duration,
) *ExpiryWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ExpiryWorker{
		db:             db,
		listingService: listingService,
		offerService:   offerService,
		authService:    authService,
		interval:       interval,
	}
}

// Start запускает фоновый цикл; останавливается вместе с ctx
func (w *ExpiryWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *ExpiryWorker) loop(ctx context.Context) {
	ctx = logger.WithWorker(ctx, expiryWorkerName)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx, time.Now().UTC())
	for {
		select {
		case <-ctx.Done():
			logger.CtxInfo(ctx, "Expiry worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx, time.Now().UTC())
		}
	}
}

// RunOnce - один проход: сначала офферы, потом объявления
func (w *ExpiryWorker) RunOnce(ctx context.Context, now time.Time) (offers int64, listings int64) {
	db := w.db.WithContext(ctx)

	offers, err := w.offerService.ExpireOffers(ctx, db, now, expiryBatchSize)
	logger.WorkerLog(expiryWorkerName, "expire_offers", offers, err)
	metrics.WorkerAffected(expiryWorkerName, "expire_offers", offers)

	listings, err = w.listingService.ExpireListings(ctx, db, now, expiryBatchSize)
	logger.WorkerLog(expiryWorkerName, "expire_listings", listings, err)
	metrics.WorkerAffected(expiryWorkerName, "expire_listings", listings)

	if w.authService != nil {
		tokens, err := w.authService.CleanupExpiredTokens(ctx, db, now)
		logger.WorkerLog(expiryWorkerName, "cleanup_refresh_tokens", tokens, err)
		metrics.WorkerAffected(expiryWorkerName, "cleanup_refresh_tokens", tokens)
	}

	return offers, listings
}
