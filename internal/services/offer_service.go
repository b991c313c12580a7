package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cargomarket_backend/internal/email"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/metrics"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type OfferService interface {
	CreateOffer(ctx context.Context, db *gorm.DB, bidderID string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error)
	GetOffer(ctx context.Context, db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error)
	ListListingOffers(ctx context.Context, db *gorm.DB, ownerID, listingID string, req *dto.OfferListRequest) (*dto.PageResponse[*dto.OfferResponse], error)
	MyOffers(ctx context.Context, db *gorm.DB, bidderID string, req *dto.OfferListRequest) (*dto.PageResponse[*dto.OfferResponse], error)
	UpdateOffer(ctx context.Context, db *gorm.DB, bidderID, offerID string, req *dto.UpdateOfferRequest) (*dto.OfferResponse, error)
	GetOfferHistory(ctx context.Context, db *gorm.DB, userID, offerID string) ([]*dto.OfferEventResponse, error)

	// Переходы статуса
	AcceptOffer(ctx context.Context, db *gorm.DB, ownerID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error)
	RejectOffer(ctx context.Context, db *gorm.DB, ownerID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error)
	CounterOffer(ctx context.Context, db *gorm.DB, ownerID, offerID string, req *dto.CounterOfferRequest) (*dto.OfferResponse, error)
	AcceptCounter(ctx context.Context, db *gorm.DB, bidderID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error)
	WithdrawOffer(ctx context.Context, db *gorm.DB, bidderID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error)

	// ExpireOffers отклоняет pending-офферы с истекшим valid_until
	ExpireOffers(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error)
}

var openOfferStatuses = []models.OfferStatus{models.OfferStatusPending, models.OfferStatusCountered}

type offerRole int

const (
	roleNone offerRole = iota
	roleOwner
	roleBidder
)

// offerAction - строка таблицы переходов
type offerAction struct {
	name        string
	actor       offerRole
	from        []models.OfferStatus
	to          models.OfferStatus
	liveListing bool // объявление должно быть active и не просрочено
}

var (
	actionAccept = offerAction{
		name: "accept", actor: roleOwner, to: models.OfferStatusAccepted, liveListing: true,
		from: []models.OfferStatus{models.OfferStatusPending},
	}
	actionReject = offerAction{
		name: "reject", actor: roleOwner, to: models.OfferStatusRejected,
		from: openOfferStatuses,
	}
	actionCounter = offerAction{
		name: "counter", actor: roleOwner, to: models.OfferStatusCountered, liveListing: true,
		from: []models.OfferStatus{models.OfferStatusPending},
	}
	actionAcceptCounter = offerAction{
		name: "accept_counter", actor: roleBidder, to: models.OfferStatusAccepted, liveListing: true,
		from: []models.OfferStatus{models.OfferStatusCountered},
	}
	actionWithdraw = offerAction{
		name: "withdraw", actor: roleBidder, to: models.OfferStatusWithdrawn,
		from: openOfferStatuses,
	}
)

func (a offerAction) allows(status models.OfferStatus) bool {
	for _, s := range a.from {
		if s == status {
			return true
		}
	}
	return false
}

type offerService struct {
	offerRepo           repositories.OfferRepository
	listingRepo         repositories.ListingRepository
	userRepo            repositories.UserRepository
	profileRepo         repositories.ProfileRepository
	notificationService NotificationService
	statsService        StatsService
	emailProvider       email.Provider
	realtime            RealtimeNotifier
	baseURL             string
}

func NewOfferService(
	offerRepo repositories.OfferRepository,
	listingRepo repositories.ListingRepository,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	notificationService NotificationService,
	statsService StatsService,
	emailProvider email.Provider,
	realtime RealtimeNotifier,
	baseURL string,
) OfferService {
	if realtime == nil {
		realtime = noopNotifier{}
	}
	return &offerService{
		offerRepo:           offerRepo,
		listingRepo:         listingRepo,
		userRepo:            userRepo,
		profileRepo:         profileRepo,
		notificationService: notificationService,
		statsService:        statsService,
		emailProvider:       emailProvider,
		realtime:            realtime,
		baseURL:             strings.TrimRight(baseURL, "/"),
	}
}

func (s *offerService) CreateOffer(ctx context.Context, db *gorm.DB, bidderID string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	now := nowUTC()
	if err := requirePositive("amount", req.Amount); err != nil {
		return nil, err
	}
	for field, t := range map[string]*time.Time{
		"pickup_date":   req.PickupDate,
		"delivery_date": req.DeliveryDate,
		"valid_until":   req.ValidUntil,
	} {
		if err := requireFuture(field, t, now); err != nil {
			return nil, err
		}
	}
	if req.PickupDate != nil && req.DeliveryDate != nil && req.DeliveryDate.Before(*req.PickupDate) {
		return nil, apperrors.FieldError("delivery_date", "Must not be before pickup_date")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	listing, err := s.listingRepo.FindByID(tx, req.ListingID)
	if err != nil {
		return nil, handleOfferError(err)
	}
	if !listing.IsVisibleTo(bidderID) {
		return nil, apperrors.ErrNotFound(repositories.ErrListingNotFound)
	}
	if listing.OwnerID == bidderID {
		return nil, apperrors.ErrOwnListingOffer
	}
	if listing.Status != models.ListingStatusActive {
		return nil, apperrors.ErrListingNotActive
	}
	if listing.IsExpired(now) {
		return nil, apperrors.ErrListingExpired
	}

	hasOpen, err := s.offerRepo.HasOpenOffer(tx, listing.ID, bidderID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if hasOpen {
		return nil, apperrors.ErrDuplicateOffer
	}

	pricingUnit := req.PricingUnit
	if pricingUnit == "" {
		pricingUnit = models.PricingUnitTotal
	}

	offer := &models.Offer{
		ListingID:         listing.ID,
		BidderID:          bidderID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		PricingUnit:       pricingUnit,
		Message:           req.Message,
		PickupDate:        req.PickupDate,
		DeliveryDate:      req.DeliveryDate,
		ValidUntil:        req.ValidUntil,
		TransitDays:       req.TransitDays,
		VehicleType:       req.VehicleType,
		CapacityTons:      req.CapacityTons,
		CapacityM3:        req.CapacityM3,
		InsuranceIncluded: req.InsuranceIncluded,
		CargoGuarantee:    req.CargoGuarantee,
		IncludedServices:  encodeStrings(req.IncludedServices),
		Status:            models.OfferStatusPending,
	}
	if err := s.offerRepo.Create(tx, offer); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.offerRepo.CreateEvent(tx, &models.OfferEvent{
		OfferID:  offer.ID,
		ActorID:  bidderID,
		ToStatus: models.OfferStatusPending,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.profileRepo.IncrementCounter(tx, bidderID, repositories.CounterTotalOffers, 1); err != nil {
		return nil, handleOfferError(err)
	}

	notifySafe(ctx, s.notificationService, tx, listing.OwnerID, models.NotificationTypeNewOffer,
		"New offer", fmt.Sprintf("New offer of %.2f %s on %q", offer.Amount, offer.Currency, listing.Title),
		map[string]interface{}{"offer_id": offer.ID, "listing_id": listing.ID})

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	offer.Listing = listing
	resp := dto.NewOfferResponse(offer)

	metrics.OfferTransition(string(models.OfferStatusPending))
	s.statsService.Invalidate(ctx, bidderID, listing.OwnerID)
	s.realtime.SendToUser(listing.OwnerID, EventOfferNew, resp)
	s.emailOfferReceived(ctx, db, listing, offer)

	logger.CtxInfo(ctx, "Offer created", "offer_id", offer.ID, "listing_id", listing.ID)
	return resp, nil
}

func (s *offerService) GetOffer(ctx context.Context, db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error) {
	offer, _, err := s.participantOffer(db, userID, offerID)
	if err != nil {
		return nil, err
	}
	return dto.NewOfferResponse(offer), nil
}

func (s *offerService) GetOfferHistory(ctx context.Context, db *gorm.DB, userID, offerID string) ([]*dto.OfferEventResponse, error) {
	if _, _, err := s.participantOffer(db, userID, offerID); err != nil {
		return nil, err
	}

	events, err := s.offerRepo.ListEvents(db, offerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := make([]*dto.OfferEventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, dto.NewOfferEventResponse(&events[i]))
	}
	return resp, nil
}

func (s *offerService) ListListingOffers(ctx context.Context, db *gorm.DB, ownerID, listingID string, req *dto.OfferListRequest) (*dto.PageResponse[*dto.OfferResponse], error) {
	listing, err := s.listingRepo.FindByID(db, listingID)
	if err != nil {
		return nil, handleOfferError(err)
	}
	if listing.Status == models.ListingStatusDeleted && listing.OwnerID != ownerID {
		return nil, apperrors.ErrNotFound(repositories.ErrListingNotFound)
	}
	if listing.OwnerID != ownerID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	return s.list(db, repositories.OfferFilter{
		ListingID: listing.ID,
		Status:    models.OfferStatus(req.Status),
		Page:      newPage(req.Page, req.PageSize),
	})
}

func (s *offerService) MyOffers(ctx context.Context, db *gorm.DB, bidderID string, req *dto.OfferListRequest) (*dto.PageResponse[*dto.OfferResponse], error) {
	return s.list(db, repositories.OfferFilter{
		BidderID: bidderID,
		Status:   models.OfferStatus(req.Status),
		Page:     newPage(req.Page, req.PageSize),
	})
}

func (s *offerService) list(db *gorm.DB, filter repositories.OfferFilter) (*dto.PageResponse[*dto.OfferResponse], error) {
	offers, total, err := s.offerRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]*dto.OfferResponse, 0, len(offers))
	for i := range offers {
		items = append(items, dto.NewOfferResponse(&offers[i]))
	}
	return dto.NewPageResponse(items, total, filter.Page.Page, filter.Page.PageSize), nil
}

func (s *offerService) UpdateOffer(ctx context.Context, db *gorm.DB, bidderID, offerID string, req *dto.UpdateOfferRequest) (*dto.OfferResponse, error) {
	now := nowUTC()
	if req.Amount != nil {
		if err := requirePositive("amount", *req.Amount); err != nil {
			return nil, err
		}
	}
	for field, t := range map[string]*time.Time{
		"pickup_date":   req.PickupDate,
		"delivery_date": req.DeliveryDate,
		"valid_until":   req.ValidUntil,
	} {
		if err := requireFuture(field, t, now); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{}
	if req.Amount != nil {
		fields["amount"] = *req.Amount
	}
	if req.Currency != nil {
		fields["currency"] = *req.Currency
	}
	if req.PricingUnit != nil {
		fields["pricing_unit"] = *req.PricingUnit
	}
	if req.Message != nil {
		fields["message"] = *req.Message
	}
	if req.PickupDate != nil {
		fields["pickup_date"] = *req.PickupDate
	}
	if req.DeliveryDate != nil {
		fields["delivery_date"] = *req.DeliveryDate
	}
	if req.ValidUntil != nil {
		fields["valid_until"] = *req.ValidUntil
	}
	if req.TransitDays != nil {
		fields["transit_days"] = *req.TransitDays
	}
	if req.VehicleType != nil {
		fields["vehicle_type"] = *req.VehicleType
	}
	if req.CapacityTons != nil {
		fields["capacity_tons"] = *req.CapacityTons
	}
	if req.CapacityM3 != nil {
		fields["capacity_m3"] = *req.CapacityM3
	}
	if req.InsuranceIncluded != nil {
		fields["insurance_included"] = *req.InsuranceIncluded
	}
	if req.CargoGuarantee != nil {
		fields["cargo_guarantee"] = *req.CargoGuarantee
	}
	if req.IncludedServices != nil {
		fields["included_services"] = encodeStrings(req.IncludedServices)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	offer, role, err := s.participantOffer(tx, bidderID, offerID)
	if err != nil {
		return nil, err
	}
	if role != roleBidder {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if offer.Status != models.OfferStatusPending {
		return nil, apperrors.ErrInvalidStatus("offer",
			fmt.Sprintf("Offer in status %s can no longer be edited", offer.Status))
	}

	pickup, delivery := offer.PickupDate, offer.DeliveryDate
	if req.PickupDate != nil {
		pickup = req.PickupDate
	}
	if req.DeliveryDate != nil {
		delivery = req.DeliveryDate
	}
	if pickup != nil && delivery != nil && delivery.Before(*pickup) {
		return nil, apperrors.FieldError("delivery_date", "Must not be before pickup_date")
	}

	// Статус не меняется, но условие WHERE status защищает от гонки с accept/reject
	err = s.offerRepo.TransitionStatus(tx, offer.ID,
		[]models.OfferStatus{models.OfferStatusPending}, models.OfferStatusPending, fields)
	if err != nil {
		return nil, transitionError(err)
	}
	if err := s.offerRepo.CreateEvent(tx, &models.OfferEvent{
		OfferID:    offer.ID,
		ActorID:    bidderID,
		FromStatus: models.OfferStatusPending,
		ToStatus:   models.OfferStatusPending,
		Note:       "edited",
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	updated, err := s.offerRepo.FindByID(tx, offer.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewOfferResponse(updated)
	if updated.Listing != nil {
		s.realtime.SendToUser(updated.Listing.OwnerID, EventOfferUpdated, resp)
	}
	return resp, nil
}

func (s *offerService) AcceptOffer(ctx context.Context, db *gorm.DB, ownerID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error) {
	return s.transition(ctx, db, ownerID, offerID, actionAccept, req.Note, nil)
}

func (s *offerService) RejectOffer(ctx context.Context, db *gorm.DB, ownerID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error) {
	return s.transition(ctx, db, ownerID, offerID, actionReject, req.Note, nil)
}

func (s *offerService) CounterOffer(ctx context.Context, db *gorm.DB, ownerID, offerID string, req *dto.CounterOfferRequest) (*dto.OfferResponse, error) {
	if err := requirePositive("counter_amount", req.CounterAmount); err != nil {
		return nil, err
	}
	return s.transition(ctx, db, ownerID, offerID, actionCounter, req.CounterMessage,
		func(*models.Offer) map[string]interface{} {
			return map[string]interface{}{
				"counter_amount":  req.CounterAmount,
				"counter_message": req.CounterMessage,
			}
		})
}

func (s *offerService) AcceptCounter(ctx context.Context, db *gorm.DB, bidderID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error) {
	return s.transition(ctx, db, bidderID, offerID, actionAcceptCounter, req.Note,
		func(offer *models.Offer) map[string]interface{} {
			if offer.CounterAmount == nil {
				return nil
			}
			return map[string]interface{}{"amount": *offer.CounterAmount}
		})
}

func (s *offerService) WithdrawOffer(ctx context.Context, db *gorm.DB, bidderID, offerID string, req *dto.OfferActionRequest) (*dto.OfferResponse, error) {
	return s.transition(ctx, db, bidderID, offerID, actionWithdraw, req.Note, nil)
}

// transition выполняет переход по таблице: проверка роли и статуса,
// условный UPDATE, запись OfferEvent и побочные эффекты после коммита
func (s *offerService) transition(
	ctx context.Context,
	db *gorm.DB,
	actorID, offerID string,
	action offerAction,
	note string,
	fields func(*models.Offer) map[string]interface{},
) (*dto.OfferResponse, error) {
	now := nowUTC()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	offer, role, err := s.participantOffer(tx, actorID, offerID)
	if err != nil {
		return nil, err
	}
	if role != action.actor {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !action.allows(offer.Status) {
		return nil, apperrors.ErrInvalidStatus("offer",
			fmt.Sprintf("Cannot %s an offer in status %s", strings.ReplaceAll(action.name, "_", " "), offer.Status))
	}

	listing := offer.Listing
	if action.liveListing {
		if listing.Status != models.ListingStatusActive {
			return nil, apperrors.ErrListingNotActive
		}
		if listing.IsExpired(now) {
			return nil, apperrors.ErrListingExpired
		}
	}

	var extra map[string]interface{}
	if fields != nil {
		extra = fields(offer)
	}
	from := offer.Status
	if err := s.offerRepo.TransitionStatus(tx, offer.ID, action.from, action.to, extra); err != nil {
		return nil, transitionError(err)
	}
	if err := s.offerRepo.CreateEvent(tx, &models.OfferEvent{
		OfferID:    offer.ID,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   action.to,
		Note:       note,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Уведомляется вторая сторона
	counterparty := offer.BidderID
	if role == roleBidder {
		counterparty = listing.OwnerID
	}
	notifySafe(ctx, s.notificationService, tx, counterparty, models.NotificationTypeOfferStatus,
		offerStatusTitle(action.to), fmt.Sprintf("Offer on %q is now %s", listing.Title, action.to),
		map[string]interface{}{"offer_id": offer.ID, "listing_id": listing.ID, "status": action.to})

	updated, err := s.offerRepo.FindByID(tx, offer.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewOfferResponse(updated)

	metrics.OfferTransition(string(action.to))
	s.statsService.Invalidate(ctx, offer.BidderID, listing.OwnerID)
	s.realtime.SendToUser(counterparty, EventOfferUpdated, resp)
	if action.to == models.OfferStatusAccepted {
		s.emailOfferAccepted(ctx, db, listing, updated)
	}

	logger.CtxInfo(ctx, "Offer status changed",
		"offer_id", offer.ID, "action", action.name, "from", from, "to", action.to)
	return resp, nil
}

func (s *offerService) ExpireOffers(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error) {
	expired, err := s.offerRepo.FindExpiredPending(db, now, limit)
	if err != nil {
		return 0, err
	}

	var count int64
	for _, offer := range expired {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := s.offerRepo.TransitionStatus(tx, offer.ID,
				[]models.OfferStatus{models.OfferStatusPending}, models.OfferStatusRejected, nil); err != nil {
				return err
			}
			return s.offerRepo.CreateEvent(tx, &models.OfferEvent{
				OfferID:    offer.ID,
				ActorID:    models.SystemActorID,
				FromStatus: models.OfferStatusPending,
				ToStatus:   models.OfferStatusRejected,
				Note:       "offer validity expired",
			})
		})
		if errors.Is(err, repositories.ErrOfferStatusChanged) {
			continue
		}
		if err != nil {
			return count, err
		}
		count++

		metrics.OfferTransition(string(models.OfferStatusRejected))
		notifySafe(ctx, s.notificationService, db, offer.BidderID, models.NotificationTypeOfferStatus,
			"Offer expired", "Your offer expired before the owner responded",
			map[string]interface{}{"offer_id": offer.ID, "listing_id": offer.ListingID, "status": models.OfferStatusRejected})
		affected := []string{offer.BidderID}
		if offer.Listing != nil {
			affected = append(affected, offer.Listing.OwnerID)
		}
		s.statsService.Invalidate(ctx, affected...)
	}
	return count, nil
}

// participantOffer загружает оффер вместе с объявлением и определяет роль.
// Посторонний получает 404, чтобы не раскрывать существование оффера
func (s *offerService) participantOffer(db *gorm.DB, userID, offerID string) (*models.Offer, offerRole, error) {
	offer, err := s.offerRepo.FindByID(db, offerID)
	if err != nil {
		return nil, roleNone, handleOfferError(err)
	}
	if offer.Listing == nil {
		listing, err := s.listingRepo.FindByID(db, offer.ListingID)
		if err != nil {
			return nil, roleNone, handleOfferError(err)
		}
		offer.Listing = listing
	}

	switch userID {
	case offer.Listing.OwnerID:
		return offer, roleOwner, nil
	case offer.BidderID:
		return offer, roleBidder, nil
	default:
		return nil, roleNone, apperrors.ErrNotFound(repositories.ErrOfferNotFound)
	}
}

func (s *offerService) emailOfferReceived(ctx context.Context, db *gorm.DB, listing *models.Listing, offer *models.Offer) {
	owner, err := s.userRepo.FindByID(db, listing.OwnerID)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to load listing owner for email", err, "listing_id", listing.ID)
		return
	}

	data := email.TemplateData{
		"ListingTitle": listing.Title,
		"BidderName":   s.displayName(db, offer.BidderID),
		"Amount":       fmt.Sprintf("%.2f", offer.Amount),
		"Currency":     offer.Currency,
		"PricingUnit":  offer.PricingUnit,
		"Message":      offer.Message,
		"Link":         s.baseURL + "/offers/" + offer.ID,
	}
	s.sendAsync(ctx, owner.Email, "New offer on "+listing.Title, email.TemplateOfferReceived, data)
}

func (s *offerService) emailOfferAccepted(ctx context.Context, db *gorm.DB, listing *models.Listing, offer *models.Offer) {
	bidder, err := s.userRepo.FindByID(db, offer.BidderID)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to load bidder for email", err, "offer_id", offer.ID)
		return
	}

	data := email.TemplateData{
		"ListingTitle": listing.Title,
		"Amount":       fmt.Sprintf("%.2f", offer.Amount),
		"Currency":     offer.Currency,
		"Link":         s.baseURL + "/offers/" + offer.ID,
	}
	s.sendAsync(ctx, bidder.Email, "Your offer was accepted", email.TemplateOfferAccepted, data)
}

// sendAsync - ошибка отправки только логируется
func (s *offerService) sendAsync(ctx context.Context, to, subject, template string, data email.TemplateData) {
	if s.emailProvider == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.emailProvider.SendTemplate([]string{to}, subject, template, data); err != nil {
			logger.CtxWithError(ctx, "Failed to send offer email", err, "template", template)
		}
	}()
}

func (s *offerService) displayName(db *gorm.DB, userID string) string {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return "A carrier"
	}
	if profile.CompanyName != "" {
		return profile.CompanyName
	}
	if profile.FullName != "" {
		return profile.FullName
	}
	return "A carrier"
}

func offerStatusTitle(status models.OfferStatus) string {
	switch status {
	case models.OfferStatusAccepted:
		return "Offer accepted"
	case models.OfferStatusRejected:
		return "Offer rejected"
	case models.OfferStatusCountered:
		return "Counter offer received"
	case models.OfferStatusWithdrawn:
		return "Offer withdrawn"
	default:
		return "Offer updated"
	}
}

func transitionError(err error) error {
	if errors.Is(err, repositories.ErrOfferStatusChanged) {
		return apperrors.ErrOfferStatusChanged.WithError(err)
	}
	return apperrors.InternalError(err)
}

func handleOfferError(err error) error {
	if isNotFound(err, repositories.ErrOfferNotFound, repositories.ErrListingNotFound, repositories.ErrProfileNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
