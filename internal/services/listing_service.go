package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ListingService interface {
	CreateListing(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error)
	// GetListing - приватные видит только владелец, удаленные не видит никто
	GetListing(ctx context.Context, db *gorm.DB, viewerID, listingID string) (*dto.ListingResponse, error)
	SearchListings(ctx context.Context, db *gorm.DB, req *dto.ListingSearchRequest) (*dto.PageResponse[*dto.ListingResponse], error)
	MyListings(ctx context.Context, db *gorm.DB, userID string, status string, page, pageSize int) (*dto.PageResponse[*dto.ListingResponse], error)
	UpdateListing(ctx context.Context, db *gorm.DB, userID, listingID string, req *dto.UpdateListingRequest) (*dto.ListingResponse, error)
	ChangeListingStatus(ctx context.Context, db *gorm.DB, userID, listingID string, req *dto.ChangeListingStatusRequest) (*dto.ListingResponse, error)
	DeleteListing(ctx context.Context, db *gorm.DB, userID, listingID string) error

	// ExpireListings переводит просроченные активные объявления в completed
	ExpireListings(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error)
}

// listingTransitions - допустимые переходы, инициированные владельцем
var listingTransitions = map[models.ListingStatus][]models.ListingStatus{
	models.ListingStatusActive:  {models.ListingStatusPaused, models.ListingStatusCompleted, models.ListingStatusPending},
	models.ListingStatusPaused:  {models.ListingStatusActive, models.ListingStatusCompleted},
	models.ListingStatusPending: {models.ListingStatusActive, models.ListingStatusCompleted},
}

func canTransitionListing(from, to models.ListingStatus) bool {
	for _, allowed := range listingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type listingService struct {
	listingRepo         repositories.ListingRepository
	offerRepo           repositories.OfferRepository
	profileRepo         repositories.ProfileRepository
	statsService        StatsService
	notificationService NotificationService
}

func NewListingService(
	listingRepo repositories.ListingRepository,
	offerRepo repositories.OfferRepository,
	profileRepo repositories.ProfileRepository,
	statsService StatsService,
	notificationService NotificationService,
) ListingService {
	return &listingService{
		listingRepo:         listingRepo,
		offerRepo:           offerRepo,
		profileRepo:         profileRepo,
		statsService:        statsService,
		notificationService: notificationService,
	}
}

func (s *listingService) CreateListing(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error) {
	now := nowUTC()
	if err := requireFuture("expires_at", req.ExpiresAt, now); err != nil {
		return nil, err
	}
	if err := requireFuture("pickup_date", req.PickupDate, now); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ListingStatusActive
	}
	if status != models.ListingStatusActive && status != models.ListingStatusPending {
		return nil, apperrors.FieldError("status", "Must be one of: active, pending")
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	currency := req.Currency
	if req.Price != nil && currency == "" {
		currency = "USD"
	}

	listing := &models.Listing{
		OwnerID:            userID,
		Kind:               req.Kind,
		Title:              req.Title,
		Description:        req.Description,
		OriginCity:         req.OriginCity,
		OriginCountry:      req.OriginCountry,
		DestinationCity:    req.DestinationCity,
		DestinationCountry: req.DestinationCountry,
		TransportMode:      req.TransportMode,
		CargoType:          req.CargoType,
		WeightKg:           req.WeightKg,
		VolumeM3:           req.VolumeM3,
		VehicleType:        req.VehicleType,
		Price:              req.Price,
		Currency:           currency,
		Status:             status,
		Visibility:         visibility,
		PickupDate:         req.PickupDate,
		ExpiresAt:          req.ExpiresAt,
		Tags:               encodeStrings(req.Tags),
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.listingRepo.Create(tx, listing); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.profileRepo.IncrementCounter(tx, userID, repositories.CounterTotalListings, 1); err != nil {
		return nil, handleListingError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.statsService.Invalidate(ctx, userID)
	logger.CtxInfo(ctx, "Listing created", "listing_id", listing.ID, "kind", listing.Kind)
	return dto.NewListingResponse(listing, now), nil
}

func (s *listingService) GetListing(ctx context.Context, db *gorm.DB, viewerID, listingID string) (*dto.ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(db, listingID)
	if err != nil {
		return nil, handleListingError(err)
	}
	if !listing.IsVisibleTo(viewerID) {
		return nil, apperrors.ErrNotFound(repositories.ErrListingNotFound)
	}

	if listing.OwnerID != viewerID {
		if err := s.listingRepo.IncrementViews(db, listing.ID); err != nil {
			logger.CtxWithError(ctx, "Failed to increment listing views", err, "listing_id", listing.ID)
		} else {
			listing.Views++
		}
	}
	return dto.NewListingResponse(listing, nowUTC()), nil
}

func (s *listingService) SearchListings(ctx context.Context, db *gorm.DB, req *dto.ListingSearchRequest) (*dto.PageResponse[*dto.ListingResponse], error) {
	page := newPage(req.Page, req.PageSize)

	status := models.ListingStatus(req.Status)
	if status == "" {
		status = models.ListingStatusActive
	}
	if status == models.ListingStatusDeleted {
		return dto.NewPageResponse([]*dto.ListingResponse{}, 0, page.Page, page.PageSize), nil
	}

	filter := repositories.ListingFilter{
		Kind:          models.ListingKind(req.Kind),
		Statuses:      []models.ListingStatus{status},
		Origin:        req.Origin,
		Destination:   req.Destination,
		TransportMode: models.TransportMode(req.TransportMode),
		CargoType:     req.CargoType,
		Query:         req.Query,
		MinPrice:      req.MinPrice,
		MaxPrice:      req.MaxPrice,
		PublicOnly:    true,
		Sort:          req.Sort,
		Page:          page,
	}
	return s.search(db, filter)
}

func (s *listingService) MyListings(ctx context.Context, db *gorm.DB, userID string, status string, page, pageSize int) (*dto.PageResponse[*dto.ListingResponse], error) {
	p := newPage(page, pageSize)
	filter := repositories.ListingFilter{OwnerID: userID, Page: p}
	if status != "" {
		filter.Statuses = []models.ListingStatus{models.ListingStatus(status)}
	}
	return s.search(db, filter)
}

func (s *listingService) search(db *gorm.DB, filter repositories.ListingFilter) (*dto.PageResponse[*dto.ListingResponse], error) {
	listings, total, err := s.listingRepo.Search(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := nowUTC()
	items := make([]*dto.ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, dto.NewListingResponse(&listings[i], now))
	}
	return dto.NewPageResponse(items, total, filter.Page.Page, filter.Page.PageSize), nil
}

func (s *listingService) UpdateListing(ctx context.Context, db *gorm.DB, userID, listingID string, req *dto.UpdateListingRequest) (*dto.ListingResponse, error) {
	now := nowUTC()
	if err := requireFuture("expires_at", req.ExpiresAt, now); err != nil {
		return nil, err
	}
	if err := requireFuture("pickup_date", req.PickupDate, now); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	listing, err := s.ownedListing(tx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == models.ListingStatusCompleted {
		return nil, apperrors.ErrListingNotEditable
	}

	applyString(&listing.Title, req.Title)
	applyString(&listing.Description, req.Description)
	applyString(&listing.OriginCity, req.OriginCity)
	applyString(&listing.OriginCountry, req.OriginCountry)
	applyString(&listing.DestinationCity, req.DestinationCity)
	applyString(&listing.DestinationCountry, req.DestinationCountry)
	applyString(&listing.CargoType, req.CargoType)
	applyString(&listing.VehicleType, req.VehicleType)
	applyString(&listing.Currency, req.Currency)
	if req.TransportMode != nil {
		listing.TransportMode = *req.TransportMode
	}
	if req.WeightKg != nil {
		listing.WeightKg = req.WeightKg
	}
	if req.VolumeM3 != nil {
		listing.VolumeM3 = req.VolumeM3
	}
	if req.Price != nil {
		listing.Price = req.Price
		if listing.Currency == "" {
			listing.Currency = "USD"
		}
	}
	if req.Visibility != nil {
		listing.Visibility = *req.Visibility
	}
	if req.PickupDate != nil {
		listing.PickupDate = req.PickupDate
	}
	if req.ExpiresAt != nil {
		listing.ExpiresAt = req.ExpiresAt
	}
	if req.Tags != nil {
		listing.Tags = encodeStrings(req.Tags)
	}

	if err := s.listingRepo.Update(tx, listing); err != nil {
		if errors.Is(err, repositories.ErrListingNotEditable) {
			return nil, apperrors.ErrListingNotEditable.WithError(err)
		}
		return nil, apperrors.InternalError(err)
	}
	updated, err := s.listingRepo.FindByID(tx, listing.ID)
	if err != nil {
		return nil, handleListingError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return dto.NewListingResponse(updated, now), nil
}

func (s *listingService) ChangeListingStatus(ctx context.Context, db *gorm.DB, userID, listingID string, req *dto.ChangeListingStatusRequest) (*dto.ListingResponse, error) {
	now := nowUTC()

	listing, err := s.ownedListing(db, userID, listingID)
	if err != nil {
		return nil, err
	}

	if !canTransitionListing(listing.Status, req.Status) {
		return nil, apperrors.ErrInvalidStatus("listing",
			fmt.Sprintf("Cannot change listing status from %s to %s", listing.Status, req.Status))
	}
	if req.Status == models.ListingStatusActive && listing.IsExpired(now) {
		return nil, apperrors.ErrListingExpired
	}

	err = s.listingRepo.TransitionStatus(db, listing.ID, []models.ListingStatus{listing.Status}, req.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrListingStatusChanged) {
			return nil, apperrors.ErrConflict(err, "listing", "Listing status changed concurrently, reload and retry")
		}
		return nil, apperrors.InternalError(err)
	}
	listing.Status = req.Status

	s.statsService.Invalidate(ctx, userID)
	return dto.NewListingResponse(listing, now), nil
}

func (s *listingService) DeleteListing(ctx context.Context, db *gorm.DB, userID, listingID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	listing, err := s.ownedListing(tx, userID, listingID)
	if err != nil {
		return err
	}

	err = s.listingRepo.TransitionStatus(tx, listing.ID, []models.ListingStatus{listing.Status}, models.ListingStatusDeleted)
	if err != nil {
		if errors.Is(err, repositories.ErrListingStatusChanged) {
			return apperrors.ErrConflict(err, "listing", "Listing status changed concurrently, reload and retry")
		}
		return apperrors.InternalError(err)
	}

	// Открытые офферы по удаленному объявлению отклоняются
	open, err := s.offerRepo.FindOpenByListing(tx, listing.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	affected := []string{userID}
	for _, offer := range open {
		err := s.offerRepo.TransitionStatus(tx, offer.ID, openOfferStatuses, models.OfferStatusRejected, nil)
		if errors.Is(err, repositories.ErrOfferStatusChanged) {
			continue
		}
		if err != nil {
			return apperrors.InternalError(err)
		}
		if err := s.offerRepo.CreateEvent(tx, &models.OfferEvent{
			OfferID:    offer.ID,
			ActorID:    userID,
			FromStatus: offer.Status,
			ToStatus:   models.OfferStatusRejected,
			Note:       "listing deleted",
		}); err != nil {
			return apperrors.InternalError(err)
		}
		notifySafe(ctx, s.notificationService, tx, offer.BidderID, models.NotificationTypeOfferStatus,
			"Offer rejected", fmt.Sprintf("Listing %q was removed by its owner", listing.Title),
			map[string]interface{}{"offer_id": offer.ID, "listing_id": listing.ID, "status": models.OfferStatusRejected})
		affected = append(affected, offer.BidderID)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	s.statsService.Invalidate(ctx, affected...)
	logger.CtxInfo(ctx, "Listing deleted", "listing_id", listing.ID, "rejected_offers", len(open))
	return nil
}

func (s *listingService) ExpireListings(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error) {
	expired, err := s.listingRepo.FindExpiredActive(db, now, limit)
	if err != nil {
		return 0, err
	}

	var count int64
	for _, listing := range expired {
		err := s.listingRepo.TransitionStatus(db, listing.ID,
			[]models.ListingStatus{models.ListingStatusActive}, models.ListingStatusCompleted)
		if errors.Is(err, repositories.ErrListingStatusChanged) {
			continue
		}
		if err != nil {
			return count, err
		}
		count++

		notifySafe(ctx, s.notificationService, db, listing.OwnerID, models.NotificationTypeListingExpired,
			"Listing expired", fmt.Sprintf("Your listing %q has expired and was completed", listing.Title),
			map[string]interface{}{"listing_id": listing.ID})
		s.statsService.Invalidate(ctx, listing.OwnerID)
	}
	return count, nil
}

// ownedListing - чужое и удаленное объявление неотличимы от отсутствующего
func (s *listingService) ownedListing(db *gorm.DB, userID, listingID string) (*models.Listing, error) {
	listing, err := s.listingRepo.FindByID(db, listingID)
	if err != nil {
		return nil, handleListingError(err)
	}
	if listing.Status == models.ListingStatusDeleted {
		return nil, apperrors.ErrNotFound(repositories.ErrListingNotFound)
	}
	if listing.OwnerID != userID {
		if listing.Visibility == models.VisibilityPrivate {
			return nil, apperrors.ErrNotFound(repositories.ErrListingNotFound)
		}
		return nil, apperrors.ErrInsufficientPermissions
	}
	return listing, nil
}

func handleListingError(err error) error {
	if isNotFound(err, repositories.ErrListingNotFound, repositories.ErrProfileNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
