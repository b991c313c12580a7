package repositories

import (
	"errors"
	"time"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOfferNotFound = errors.New("offer not found")
	// ErrOfferStatusChanged - условный UPDATE не затронул строк
	ErrOfferStatusChanged = errors.New("offer status changed concurrently")
)

type OfferFilter struct {
	ListingID string
	BidderID  string
	Status    models.OfferStatus
	Page      models.Page
}

type OfferRepository interface {
	Create(db *gorm.DB, offer *models.Offer) error
	FindByID(db *gorm.DB, id string) (*models.Offer, error)
	List(db *gorm.DB, filter OfferFilter) ([]models.Offer, int64, error)
	HasOpenOffer(db *gorm.DB, listingID, bidderID string) (bool, error)
	FindOpenByListing(db *gorm.DB, listingID string) ([]models.Offer, error)
	// FindExpiredPending возвращает офферы вместе с Listing
	FindExpiredPending(db *gorm.DB, now time.Time, limit int) ([]models.Offer, error)

	// TransitionStatus - UPDATE ... WHERE id = ? AND status IN (from).
	// fields дописываются в тот же UPDATE (amount, counter_amount, ...).
	TransitionStatus(db *gorm.DB, id string, from []models.OfferStatus, to models.OfferStatus, fields map[string]interface{}) error

	CreateEvent(db *gorm.DB, event *models.OfferEvent) error
	ListEvents(db *gorm.DB, offerID string) ([]models.OfferEvent, error)
}

type offerRepository struct{}

func NewOfferRepository() OfferRepository {
	return &offerRepository{}
}

func (r *offerRepository) Create(db *gorm.DB, offer *models.Offer) error {
	return db.Create(offer).Error
}

func (r *offerRepository) FindByID(db *gorm.DB, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := db.Preload("Listing").First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) List(db *gorm.DB, f OfferFilter) ([]models.Offer, int64, error) {
	var (
		offers []models.Offer
		total  int64
	)

	query := db.Model(&models.Offer{})
	if f.ListingID != "" {
		query = query.Where("listing_id = ?", f.ListingID)
	}
	if f.BidderID != "" {
		query = query.Where("bidder_id = ?", f.BidderID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Listing").
		Order("created_at DESC").
		Offset(f.Page.Offset()).Limit(f.Page.Limit()).
		Find(&offers).Error
	return offers, total, err
}

func (r *offerRepository) HasOpenOffer(db *gorm.DB, listingID, bidderID string) (bool, error) {
	var count int64
	err := db.Model(&models.Offer{}).
		Where("listing_id = ? AND bidder_id = ? AND status IN ?", listingID, bidderID,
			[]models.OfferStatus{models.OfferStatusPending, models.OfferStatusCountered}).
		Count(&count).Error
	return count > 0, err
}

func (r *offerRepository) FindOpenByListing(db *gorm.DB, listingID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := db.Where("listing_id = ? AND status IN ?", listingID,
		[]models.OfferStatus{models.OfferStatusPending, models.OfferStatusCountered}).
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) FindExpiredPending(db *gorm.DB, now time.Time, limit int) ([]models.Offer, error) {
	var offers []models.Offer
	err := db.Preload("Listing").
		Where("status = ? AND valid_until IS NOT NULL AND valid_until <= ?", models.OfferStatusPending, now).
		Order("valid_until ASC").
		Limit(limit).
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) TransitionStatus(db *gorm.DB, id string, from []models.OfferStatus, to models.OfferStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := db.Model(&models.Offer{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferStatusChanged
	}
	return nil
}

func (r *offerRepository) CreateEvent(db *gorm.DB, event *models.OfferEvent) error {
	return db.Create(event).Error
}

func (r *offerRepository) ListEvents(db *gorm.DB, offerID string) ([]models.OfferEvent, error) {
	var events []models.OfferEvent
	err := db.Where("offer_id = ?", offerID).Order("created_at ASC").Find(&events).Error
	return events, err
}
