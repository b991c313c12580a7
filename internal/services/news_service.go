package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode"

	"cargomarket_backend/internal/cache"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/metrics"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/newsapi"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// NewsFetcher - источник внешних новостей (*newsapi.Client)
type NewsFetcher interface {
	Fetch(ctx context.Context, category string) ([]newsapi.Article, error)
}

type NewsService interface {
	ListNews(ctx context.Context, db *gorm.DB, req *dto.NewsListRequest) (*dto.PageResponse[*dto.NewsResponse], error)
	// GetNews принимает id или slug и увеличивает счетчик просмотров.
	// Статьи с будущей датой публикации видны только при withScheduled
	GetNews(ctx context.Context, db *gorm.DB, idOrSlug string, withScheduled bool) (*dto.NewsResponse, error)
	ListExternalNews(ctx context.Context, category string) (*dto.ExternalNewsResponse, error)

	// Администрирование
	CreateNews(ctx context.Context, db *gorm.DB, req *dto.CreateNewsRequest) (*dto.NewsResponse, error)
	UpdateNews(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateNewsRequest) (*dto.NewsResponse, error)
	DeleteNews(ctx context.Context, db *gorm.DB, id string) error

	// SyncExternal импортирует внешние статьи, дубликаты по slug пропускаются
	SyncExternal(ctx context.Context, db *gorm.DB, categories []string) (*dto.NewsSyncResult, error)
}

type newsService struct {
	newsRepo repositories.NewsRepository
	fetcher  NewsFetcher
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewNewsService(newsRepo repositories.NewsRepository, fetcher NewsFetcher, c cache.Cache, cacheTTL time.Duration) NewsService {
	return &newsService{
		newsRepo: newsRepo,
		fetcher:  fetcher,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func (s *newsService) ListNews(ctx context.Context, db *gorm.DB, req *dto.NewsListRequest) (*dto.PageResponse[*dto.NewsResponse], error) {
	page := newPage(req.Page, req.PageSize)
	articles, total, err := s.newsRepo.List(db, repositories.NewsFilter{
		Category:        models.NewsCategory(req.Category),
		Tag:             req.Tag,
		Query:           req.Query,
		PublishedBefore: nowUTC(),
		Page:            page,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.NewsResponse, 0, len(articles))
	for i := range articles {
		items = append(items, dto.NewNewsResponse(&articles[i]))
	}
	return dto.NewPageResponse(items, total, page.Page, page.PageSize), nil
}

func (s *newsService) GetNews(ctx context.Context, db *gorm.DB, idOrSlug string, withScheduled bool) (*dto.NewsResponse, error) {
	article, err := s.newsRepo.FindByID(db, idOrSlug)
	if errors.Is(err, repositories.ErrNewsNotFound) {
		article, err = s.newsRepo.FindBySlug(db, idOrSlug)
	}
	if err != nil {
		return nil, handleNewsError(err)
	}
	if !withScheduled && article.PublishedAt.After(nowUTC()) {
		return nil, handleNewsError(repositories.ErrNewsNotFound)
	}

	if err := s.newsRepo.IncrementViews(db, article.ID); err != nil {
		logger.CtxWithError(ctx, "Failed to increment news views", err, "news_id", article.ID)
	} else {
		article.Views++
	}
	return dto.NewNewsResponse(article), nil
}

func (s *newsService) ListExternalNews(ctx context.Context, category string) (*dto.ExternalNewsResponse, error) {
	key := cache.NewsExternalKey(category)

	var cached dto.ExternalNewsResponse
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.CtxWithError(ctx, "News cache read failed", err, "key", key)
	}
	if hit {
		cached.Cached = true
		return &cached, nil
	}

	resp := &dto.ExternalNewsResponse{Category: category}

	var articles []newsapi.Article
	if s.fetcher != nil {
		articles, err = s.fetcher.Fetch(ctx, category)
	} else {
		err = newsapi.ErrNotConfigured
	}
	if err != nil {
		// Деградация до локальных статей; их не кэшируем, чтобы API подхватился при восстановлении
		logger.CtxWarn(ctx, "External news unavailable, serving fallback", "category", category, "error", err.Error())
		metrics.NewsFallback()
		resp.Fallback = true
		resp.Articles = externalItems(newsapi.Fallback(category, nowUTC()))
		return resp, nil
	}

	resp.Articles = externalItems(articles)
	if err := s.cache.SetJSON(ctx, key, resp, s.cacheTTL); err != nil {
		logger.CtxWithError(ctx, "News cache write failed", err, "key", key)
	}
	return resp, nil
}

func (s *newsService) CreateNews(ctx context.Context, db *gorm.DB, req *dto.CreateNewsRequest) (*dto.NewsResponse, error) {
	slug := slugify(req.Slug)
	if slug == "" {
		slug = slugify(req.Title)
	}
	if slug == "" {
		return nil, apperrors.FieldError("slug", "Cannot derive a slug from the title")
	}

	category := req.Category
	if category == "" {
		category = models.NewsCategoryGeneral
	}
	publishedAt := nowUTC()
	if req.PublishedAt != nil {
		publishedAt = req.PublishedAt.UTC()
	}

	article := &models.NewsArticle{
		Title:       req.Title,
		Slug:        slug,
		Summary:     req.Summary,
		Content:     req.Content,
		Category:    category,
		Tags:        encodeStrings(req.Tags),
		Source:      req.Source,
		SourceURL:   req.SourceURL,
		ImageURL:    req.ImageURL,
		PublishedAt: publishedAt,
	}
	if err := s.newsRepo.Create(db, article); err != nil {
		return nil, handleNewsError(err)
	}

	logger.CtxInfo(ctx, "News article created", "news_id", article.ID, "slug", slug)
	return dto.NewNewsResponse(article), nil
}

func (s *newsService) UpdateNews(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateNewsRequest) (*dto.NewsResponse, error) {
	article, err := s.newsRepo.FindByID(db, id)
	if err != nil {
		return nil, handleNewsError(err)
	}

	applyString(&article.Title, req.Title)
	applyString(&article.Summary, req.Summary)
	applyString(&article.Content, req.Content)
	applyString(&article.SourceURL, req.SourceURL)
	applyString(&article.ImageURL, req.ImageURL)
	if req.Category != nil {
		article.Category = *req.Category
	}
	if req.Tags != nil {
		article.Tags = encodeStrings(req.Tags)
	}
	if req.PublishedAt != nil {
		article.PublishedAt = req.PublishedAt.UTC()
	}

	if err := s.newsRepo.Update(db, article); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewNewsResponse(article), nil
}

func (s *newsService) DeleteNews(ctx context.Context, db *gorm.DB, id string) error {
	if err := s.newsRepo.Delete(db, id); err != nil {
		return handleNewsError(err)
	}
	return nil
}

func (s *newsService) SyncExternal(ctx context.Context, db *gorm.DB, categories []string) (*dto.NewsSyncResult, error) {
	result := &dto.NewsSyncResult{}
	if s.fetcher == nil {
		result.Fallback = true
		return result, nil
	}
	if len(categories) == 0 {
		for _, c := range models.NewsCategories {
			categories = append(categories, string(c))
		}
	}

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		articles, err := s.fetcher.Fetch(ctx, category)
		if err != nil {
			// Локальные статьи в таблицу не импортируются
			logger.CtxWarn(ctx, "News sync fetch failed", "category", category, "error", err.Error())
			result.Fallback = true
			continue
		}
		result.Fetched += len(articles)

		for _, a := range articles {
			article := articleFromExternal(a, category)
			if article.Slug == "" {
				result.Skipped++
				continue
			}
			err := s.newsRepo.Create(db, article)
			if errors.Is(err, repositories.ErrNewsSlugTaken) {
				result.Skipped++
				continue
			}
			if err != nil {
				return result, err
			}
			result.Imported++
		}
	}
	return result, nil
}

func articleFromExternal(a newsapi.Article, category string) *models.NewsArticle {
	base := slugify(a.Title)
	slug := ""
	if base != "" {
		sum := sha1.Sum([]byte(a.URL))
		slug = base + "-" + hex.EncodeToString(sum[:])[:8]
	}

	publishedAt := a.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = nowUTC()
	}
	cat := models.NewsCategory(category)
	if category == "" {
		cat = models.NewsCategoryGeneral
	}

	return &models.NewsArticle{
		Title:       a.Title,
		Slug:        slug,
		Summary:     a.Description,
		Content:     a.Content,
		Category:    cat,
		Tags:        encodeStrings(nil),
		Source:      a.Source.Name,
		SourceURL:   a.URL,
		ImageURL:    a.URLToImage,
		PublishedAt: publishedAt.UTC(),
		IsExternal:  true,
	}
}

func externalItems(articles []newsapi.Article) []dto.ExternalNewsItem {
	items := make([]dto.ExternalNewsItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, dto.NewExternalNewsItem(a))
	}
	return items
}

const maxSlugLen = 300

// slugify: диакритика снимается, все кроме латиницы и цифр становится дефисом
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		plain = strings.ToLower(s)
	}

	var b strings.Builder
	dash := false
	for _, r := range plain {
		switch {
		case r == 'ı':
			r = 'i'
		case r == 'ß':
			b.WriteString("ss")
			dash = false
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

func handleNewsError(err error) error {
	switch {
	case isNotFound(err, repositories.ErrNewsNotFound):
		return apperrors.ErrNotFound(err)
	case errors.Is(err, repositories.ErrNewsSlugTaken):
		return apperrors.ErrAlreadyExists(err).WithMessage("A news article with this slug already exists")
	default:
		return apperrors.InternalError(err)
	}
}
