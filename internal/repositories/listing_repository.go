package repositories

import (
	"errors"
	"strings"
	"time"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingStatusChanged = errors.New("listing status changed concurrently")
	ErrListingNotEditable   = errors.New("listing is completed or deleted")
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortExpiring  = "expiring"
)

// ListingFilter - критерии поиска объявлений
type ListingFilter struct {
	OwnerID       string
	Kind          models.ListingKind
	Statuses      []models.ListingStatus
	Origin        string
	Destination   string
	TransportMode models.TransportMode
	CargoType     string
	Query         string
	MinPrice      *float64
	MaxPrice      *float64
	PublicOnly    bool
	Sort          string
	Page          models.Page
}

type ListingRepository interface {
	Create(db *gorm.DB, listing *models.Listing) error
	FindByID(db *gorm.DB, id string) (*models.Listing, error)
	// Update пишет редактируемые поля; status, views и owner_id не перезаписываются
	Update(db *gorm.DB, listing *models.Listing) error
	// TransitionStatus меняет статус, только если текущий входит в from
	TransitionStatus(db *gorm.DB, id string, from []models.ListingStatus, to models.ListingStatus) error
	Search(db *gorm.DB, filter ListingFilter) ([]models.Listing, int64, error)
	IncrementViews(db *gorm.DB, id string) error
	FindExpiredActive(db *gorm.DB, now time.Time, limit int) ([]models.Listing, error)
}

type listingRepository struct{}

func NewListingRepository() ListingRepository {
	return &listingRepository{}
}

func (r *listingRepository) Create(db *gorm.DB, listing *models.Listing) error {
	return db.Create(listing).Error
}

func (r *listingRepository) FindByID(db *gorm.DB, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := db.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(db *gorm.DB, listing *models.Listing) error {
	result := db.Model(listing).
		Where("status NOT IN ?", []models.ListingStatus{models.ListingStatusCompleted, models.ListingStatusDeleted}).
		Select("*").
		Omit("id", "created_at", "owner_id", "status", "views").
		Updates(listing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotEditable
	}
	return nil
}

func (r *listingRepository) TransitionStatus(db *gorm.DB, id string, from []models.ListingStatus, to models.ListingStatus) error {
	result := db.Model(&models.Listing{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingStatusChanged
	}
	return nil
}

func (r *listingRepository) Search(db *gorm.DB, f ListingFilter) ([]models.Listing, int64, error) {
	var (
		listings []models.Listing
		total    int64
	)

	query := db.Model(&models.Listing{}).Where("status <> ?", models.ListingStatusDeleted)

	if f.OwnerID != "" {
		query = query.Where("owner_id = ?", f.OwnerID)
	}
	if f.PublicOnly {
		query = query.Where("visibility = ?", models.VisibilityPublic)
	}
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.Origin != "" {
		like := containsPattern(f.Origin)
		query = query.Where("(LOWER(origin_city) LIKE ? ESCAPE '!' OR LOWER(origin_country) LIKE ? ESCAPE '!')", like, like)
	}
	if f.Destination != "" {
		like := containsPattern(f.Destination)
		query = query.Where("(LOWER(destination_city) LIKE ? ESCAPE '!' OR LOWER(destination_country) LIKE ? ESCAPE '!')", like, like)
	}
	if f.TransportMode != "" {
		query = query.Where("transport_mode = ?", f.TransportMode)
	}
	if f.CargoType != "" {
		query = query.Where("LOWER(cargo_type) = ?", strings.ToLower(f.CargoType))
	}
	if f.Query != "" {
		like := containsPattern(f.Query)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", like, like)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case SortPriceAsc:
		query = query.Order("price IS NULL").Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price IS NULL").Order("price DESC")
	case SortExpiring:
		query = query.Order("expires_at IS NULL").Order("expires_at ASC")
	default:
		query = query.Order("created_at DESC")
	}

	err := query.Offset(f.Page.Offset()).Limit(f.Page.Limit()).Find(&listings).Error
	return listings, total, err
}

func (r *listingRepository) IncrementViews(db *gorm.DB, id string) error {
	return db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *listingRepository) FindExpiredActive(db *gorm.DB, now time.Time, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := db.Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.ListingStatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}
