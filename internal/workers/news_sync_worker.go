package workers

import (
	"context"
	"time"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/metrics"
	"cargomarket_backend/internal/services"

	"gorm.io/gorm"
)

const newsSyncWorkerName = "news_sync"

// NewsSyncWorker периодически импортирует внешнюю ленту в таблицу новостей
type NewsSyncWorker struct {
	db          *gorm.DB
	newsService services.NewsService
	interval    time.Duration
	categories  []string
}

func NewNewsSyncWorker(db *gorm.DB, newsService services.NewsService, interval time.Duration, categories []string) *NewsSyncWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &NewsSyncWorker{
		db:          db,
		newsService: newsService,
		interval:    interval,
		categories:  categories,
	}
}

func (w *NewsSyncWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *NewsSyncWorker) loop(ctx context.Context) {
	ctx = logger.WithWorker(ctx, newsSyncWorkerName)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.CtxInfo(ctx, "News sync worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *NewsSyncWorker) RunOnce(ctx context.Context) int64 {
	result, err := w.newsService.SyncExternal(ctx, w.db.WithContext(ctx), w.categories)
	var imported int64
	if result != nil {
		imported = int64(result.Imported)
		if result.Fallback {
			logger.CtxWarn(ctx, "News sync used fallback, nothing imported for some categories")
		}
	}
	logger.WorkerLog(newsSyncWorkerName, "sync", imported, err)
	metrics.WorkerAffected(newsSyncWorkerName, "sync", imported)
	return imported
}
