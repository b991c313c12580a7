package repositories_test

import (
	"context"
	"testing"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countsToMap(rows []repositories.StatusCount) map[string]int64 {
	m := make(map[string]int64, len(rows))
	for _, r := range rows {
		m[r.Status] = r.Count
	}
	return m
}

func TestStatsRepository_GroupByStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	statsDB := helpers.NewStatsDB(t, db)
	repo := repositories.NewStatsRepository()
	offers := repositories.NewOfferRepository()
	ctx := context.Background()

	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("owner"), "")
	bidder := helpers.CreateUser(t, db, helpers.UniqueEmail("bidder"), "")

	l1 := seedListing(t, db, owner.ID)
	l2 := seedListing(t, db, owner.ID)
	l3 := seedListing(t, db, owner.ID)
	require.NoError(t, db.Model(l2).Update("status", models.ListingStatusPaused).Error)
	require.NoError(t, db.Model(l3).Update("status", models.ListingStatusDeleted).Error)

	for _, st := range []models.OfferStatus{models.OfferStatusPending, models.OfferStatusPending, models.OfferStatusAccepted} {
		require.NoError(t, offers.Create(db, &models.Offer{ListingID: l1.ID, BidderID: bidder.ID, Amount: 100, Currency: "USD", Status: st}))
	}

	listingRows, err := repo.ListingCountsByStatus(ctx, statsDB, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"active": 1, "paused": 1}, countsToMap(listingRows))

	sent, err := repo.SentOfferCountsByStatus(ctx, statsDB, bidder.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"pending": 2, "accepted": 1}, countsToMap(sent))

	received, err := repo.ReceivedOfferCountsByStatus(ctx, statsDB, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"pending": 2, "accepted": 1}, countsToMap(received))

	none, err := repo.SentOfferCountsByStatus(ctx, statsDB, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	totals, err := repo.PlatformTotals(ctx, statsDB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Users)
	assert.Equal(t, int64(2), totals.Listings)
	assert.Equal(t, int64(3), totals.Offers)
	assert.Equal(t, int64(0), totals.News)
}
