package dto

import (
	"time"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/newsapi"
)

type NewsListRequest struct {
	Category string `form:"category" validate:"omitempty,is-news-category"`
	Tag      string `form:"tag" validate:"omitempty,max=40"`
	Query    string `form:"q" validate:"omitempty,max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type CreateNewsRequest struct {
	Title       string              `json:"title" validate:"required,min=3,max=300"`
	Slug        string              `json:"slug" validate:"omitempty,max=320"`
	Summary     string              `json:"summary" validate:"max=1000"`
	Content     string              `json:"content" validate:"required"`
	Category    models.NewsCategory `json:"category" validate:"omitempty,is-news-category"`
	Tags        []string            `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Source      string              `json:"source" validate:"max=120"`
	SourceURL   string              `json:"source_url" validate:"omitempty,url"`
	ImageURL    string              `json:"image_url" validate:"omitempty,url"`
	PublishedAt *time.Time          `json:"published_at"`
}

type UpdateNewsRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=3,max=300"`
	Summary     *string              `json:"summary" validate:"omitempty,max=1000"`
	Content     *string              `json:"content" validate:"omitempty,min=1"`
	Category    *models.NewsCategory `json:"category" validate:"omitempty,is-news-category"`
	Tags        []string             `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	SourceURL   *string              `json:"source_url" validate:"omitempty,url"`
	ImageURL    *string              `json:"image_url" validate:"omitempty,url"`
	PublishedAt *time.Time           `json:"published_at"`
}

type NewsResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Summary     string              `json:"summary,omitempty"`
	Content     string              `json:"content,omitempty"`
	Category    models.NewsCategory `json:"category"`
	Tags        []string            `json:"tags"`
	Source      string              `json:"source,omitempty"`
	SourceURL   string              `json:"source_url,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	Views       int                 `json:"views"`
	PublishedAt time.Time           `json:"published_at"`
	IsExternal  bool                `json:"is_external"`
}

func NewNewsResponse(a *models.NewsArticle) *NewsResponse {
	return &NewsResponse{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Summary:     a.Summary,
		Content:     a.Content,
		Category:    a.Category,
		Tags:        DecodeStrings(a.Tags),
		Source:      a.Source,
		SourceURL:   a.SourceURL,
		ImageURL:    a.ImageURL,
		Views:       a.Views,
		PublishedAt: a.PublishedAt,
		IsExternal:  a.IsExternal,
	}
}

type ExternalNewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

func NewExternalNewsItem(a newsapi.Article) ExternalNewsItem {
	return ExternalNewsItem{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    a.URLToImage,
		Source:      a.Source.Name,
		PublishedAt: a.PublishedAt,
	}
}

// ExternalNewsResponse - fallback=true, если внешний API недоступен и отданы локальные статьи
type ExternalNewsResponse struct {
	Category string             `json:"category,omitempty"`
	Articles []ExternalNewsItem `json:"articles"`
	Fallback bool               `json:"fallback"`
	Cached   bool               `json:"cached"`
}

// NewsSyncResult - итог импорта внешних новостей
type NewsSyncResult struct {
	Fetched  int  `json:"fetched"`
	Imported int  `json:"imported"`
	Skipped  int  `json:"skipped"`
	Fallback bool `json:"fallback"`
}
