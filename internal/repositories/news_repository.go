package repositories

import (
	"errors"
	"strings"
	"time"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNewsNotFound  = errors.New("news article not found")
	ErrNewsSlugTaken = errors.New("news slug already exists")
)

type NewsFilter struct {
	Category        models.NewsCategory
	Tag             string
	Query           string
	PublishedBefore time.Time // нулевое значение - без ограничения
	Page            models.Page
}

type NewsRepository interface {
	Create(db *gorm.DB, article *models.NewsArticle) error
	FindByID(db *gorm.DB, id string) (*models.NewsArticle, error)
	FindBySlug(db *gorm.DB, slug string) (*models.NewsArticle, error)
	ExistsBySlug(db *gorm.DB, slug string) (bool, error)
	Update(db *gorm.DB, article *models.NewsArticle) error
	Delete(db *gorm.DB, id string) error
	List(db *gorm.DB, filter NewsFilter) ([]models.NewsArticle, int64, error)
	IncrementViews(db *gorm.DB, id string) error
}

type newsRepository struct{}

func NewNewsRepository() NewsRepository {
	return &newsRepository{}
}

func (r *newsRepository) Create(db *gorm.DB, article *models.NewsArticle) error {
	exists, err := r.ExistsBySlug(db, article.Slug)
	if err != nil {
		return err
	}
	if exists {
		return ErrNewsSlugTaken
	}
	return db.Create(article).Error
}

func (r *newsRepository) FindByID(db *gorm.DB, id string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := db.First(&article, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *newsRepository) FindBySlug(db *gorm.DB, slug string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := db.First(&article, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *newsRepository) ExistsBySlug(db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.Model(&models.NewsArticle{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *newsRepository) Update(db *gorm.DB, article *models.NewsArticle) error {
	return db.Save(article).Error
}

func (r *newsRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.NewsArticle{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNewsNotFound
	}
	return nil
}

func (r *newsRepository) List(db *gorm.DB, f NewsFilter) ([]models.NewsArticle, int64, error) {
	var (
		articles []models.NewsArticle
		total    int64
	)

	query := db.Model(&models.NewsArticle{})
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Tag != "" {
		// tags хранятся JSON-массивом строк
		tag := likeReplacer.Replace(strings.ReplaceAll(f.Tag, `"`, ""))
		query = query.Where("CAST(tags AS TEXT) LIKE ? ESCAPE '!'", `%"`+tag+`"%`)
	}
	if f.Query != "" {
		like := containsPattern(f.Query)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(summary) LIKE ? ESCAPE '!')", like, like)
	}
	if !f.PublishedBefore.IsZero() {
		query = query.Where("published_at <= ?", f.PublishedBefore)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Select("id, created_at, updated_at, title, slug, summary, category, tags, source, source_url, image_url, views, published_at, is_external").
		Order("published_at DESC").
		Offset(f.Page.Offset()).Limit(f.Page.Limit()).
		Find(&articles).Error
	return articles, total, err
}

// IncrementViews - views = views + 1 на стороне БД
func (r *newsRepository) IncrementViews(db *gorm.DB, id string) error {
	result := db.Model(&models.NewsArticle{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNewsNotFound
	}
	return nil
}
