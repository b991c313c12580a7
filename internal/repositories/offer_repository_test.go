package repositories_test

import (
	"testing"
	"time"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedListing(t *testing.T, db *gorm.DB, ownerID string) *models.Listing {
	t.Helper()
	expires := time.Now().UTC().Add(72 * time.Hour)
	listing := &models.Listing{
		OwnerID:         ownerID,
		Kind:            models.ListingKindCargo,
		Title:           "Steel coils Istanbul - Ankara",
		OriginCity:      "Istanbul",
		DestinationCity: "Ankara",
		TransportMode:   models.TransportModeRoad,
		Status:          models.ListingStatusActive,
		Visibility:      models.VisibilityPublic,
		ExpiresAt:       &expires,
	}
	require.NoError(t, repositories.NewListingRepository().Create(db, listing))
	return listing
}

func TestOfferRepository_TransitionStatusIsGuarded(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewOfferRepository()

	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("owner"), "")
	bidder := helpers.CreateUser(t, db, helpers.UniqueEmail("bidder"), "")
	listing := seedListing(t, db, owner.ID)

	offer := &models.Offer{
		ListingID: listing.ID,
		BidderID:  bidder.ID,
		Amount:    1500,
		Currency:  "USD",
		Status:    models.OfferStatusPending,
	}
	require.NoError(t, repo.Create(db, offer))

	pending := []models.OfferStatus{models.OfferStatusPending}

	// первый переход выигрывает
	err := repo.TransitionStatus(db, offer.ID, pending, models.OfferStatusAccepted, nil)
	require.NoError(t, err)

	// второй видит уже измененный статус
	err = repo.TransitionStatus(db, offer.ID, pending, models.OfferStatusRejected, nil)
	assert.ErrorIs(t, err, repositories.ErrOfferStatusChanged)

	stored, err := repo.FindByID(db, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, stored.Status)
	require.NotNil(t, stored.Listing)
	assert.Equal(t, listing.ID, stored.Listing.ID)
}

func TestOfferRepository_HasOpenOffer(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewOfferRepository()

	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("owner"), "")
	bidder := helpers.CreateUser(t, db, helpers.UniqueEmail("bidder"), "")
	listing := seedListing(t, db, owner.ID)

	open, err := repo.HasOpenOffer(db, listing.ID, bidder.ID)
	require.NoError(t, err)
	assert.False(t, open)

	offer := &models.Offer{ListingID: listing.ID, BidderID: bidder.ID, Amount: 10, Currency: "EUR", Status: models.OfferStatusCountered}
	require.NoError(t, repo.Create(db, offer))

	open, err = repo.HasOpenOffer(db, listing.ID, bidder.ID)
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, repo.TransitionStatus(db, offer.ID,
		[]models.OfferStatus{models.OfferStatusCountered}, models.OfferStatusWithdrawn, nil))

	open, err = repo.HasOpenOffer(db, listing.ID, bidder.ID)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestOfferRepository_FindExpiredPending(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewOfferRepository()

	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("owner"), "")
	bidder := helpers.CreateUser(t, db, helpers.UniqueEmail("bidder"), "")
	listing := seedListing(t, db, owner.ID)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(48 * time.Hour)

	expired := &models.Offer{ListingID: listing.ID, BidderID: bidder.ID, Amount: 5, Currency: "USD", Status: models.OfferStatusPending, ValidUntil: &past}
	fresh := &models.Offer{ListingID: listing.ID, BidderID: owner.ID, Amount: 6, Currency: "USD", Status: models.OfferStatusPending, ValidUntil: &future}
	require.NoError(t, repo.Create(db, expired))
	require.NoError(t, repo.Create(db, fresh))

	found, err := repo.FindExpiredPending(db, now, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, expired.ID, found[0].ID)
	require.NotNil(t, found[0].Listing)
	assert.Equal(t, owner.ID, found[0].Listing.OwnerID)
}

func TestOfferRepository_Events(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewOfferRepository()

	require.NoError(t, repo.CreateEvent(db, &models.OfferEvent{OfferID: "o1", ActorID: "u1", ToStatus: models.OfferStatusPending}))
	require.NoError(t, repo.CreateEvent(db, &models.OfferEvent{OfferID: "o1", ActorID: "u2", FromStatus: models.OfferStatusPending, ToStatus: models.OfferStatusAccepted}))
	require.NoError(t, repo.CreateEvent(db, &models.OfferEvent{OfferID: "o2", ActorID: "u1", ToStatus: models.OfferStatusPending}))

	events, err := repo.ListEvents(db, "o1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
