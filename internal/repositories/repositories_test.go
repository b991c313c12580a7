package repositories_test

import (
	"testing"
	"time"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateRejectsDuplicateEmail(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewUserRepository()

	require.NoError(t, repo.Create(db, &models.User{Email: "Carrier@Test.com", PasswordHash: "x"}))
	err := repo.Create(db, &models.User{Email: "carrier@test.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)

	found, err := repo.FindByEmail(db, "carrier@test.com")
	require.NoError(t, err)
	assert.Equal(t, "carrier@test.com", found.Email)

	_, err = repo.FindByID(db, "missing")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestProfileRepository_IncrementCounter(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewProfileRepository()
	user := helpers.CreateUser(t, db, helpers.UniqueEmail("p"), "")

	require.NoError(t, repo.IncrementCounter(db, user.ID, repositories.CounterTotalListings, 1))
	require.NoError(t, repo.IncrementCounter(db, user.ID, repositories.CounterTotalListings, 1))
	require.NoError(t, repo.IncrementCounter(db, user.ID, repositories.CounterTotalOffers, 1))

	profile, err := repo.FindByUserID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.TotalListings)
	assert.Equal(t, 1, profile.TotalOffers)
}

func TestListingRepository_SearchOnlyPublicNotDeleted(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewListingRepository()
	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("o"), "")

	visible := seedListing(t, db, owner.ID)
	private := seedListing(t, db, owner.ID)
	deleted := seedListing(t, db, owner.ID)
	require.NoError(t, db.Model(private).Update("visibility", models.VisibilityPrivate).Error)
	require.NoError(t, repo.TransitionStatus(db, deleted.ID,
		[]models.ListingStatus{models.ListingStatusActive}, models.ListingStatusDeleted))

	found, total, err := repo.Search(db, repositories.ListingFilter{
		PublicOnly: true,
		Statuses:   []models.ListingStatus{models.ListingStatusActive},
		Origin:     "istan",
		Page:       models.Page{Page: 1, PageSize: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, visible.ID, found[0].ID)

	mine, total, err := repo.Search(db, repositories.ListingFilter{OwnerID: owner.ID, Page: models.Page{Page: 1, PageSize: 20}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)
}

func TestListingRepository_UpdateKeepsConcurrentStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewListingRepository()
	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("o"), "")
	listing := seedListing(t, db, owner.ID)

	stale, err := repo.FindByID(db, listing.ID)
	require.NoError(t, err)
	require.NoError(t, repo.IncrementViews(db, listing.ID))
	require.NoError(t, repo.TransitionStatus(db, listing.ID,
		[]models.ListingStatus{models.ListingStatusActive}, models.ListingStatusPaused))

	stale.Title = "Steel coils Istanbul - Izmir"
	require.NoError(t, repo.Update(db, stale))

	stored, err := repo.FindByID(db, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Steel coils Istanbul - Izmir", stored.Title)
	assert.Equal(t, models.ListingStatusPaused, stored.Status)
	assert.Equal(t, 1, stored.Views)

	require.NoError(t, repo.TransitionStatus(db, listing.ID,
		[]models.ListingStatus{models.ListingStatusPaused}, models.ListingStatusDeleted))

	stale.Title = "revived"
	assert.ErrorIs(t, repo.Update(db, stale), repositories.ErrListingNotEditable)

	stored, err = repo.FindByID(db, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusDeleted, stored.Status)
	assert.Equal(t, "Steel coils Istanbul - Izmir", stored.Title)
}

func TestListingRepository_SearchEscapesLikeWildcards(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewListingRepository()
	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("o"), "")

	percent := seedListing(t, db, owner.ID)
	plain := seedListing(t, db, owner.ID)
	require.NoError(t, db.Model(percent).Update("title", "100% cotton bales").Error)
	require.NoError(t, db.Model(plain).Update("title", "1000 cotton bales").Error)

	search := func(q string) []models.Listing {
		found, _, err := repo.Search(db, repositories.ListingFilter{Query: q, Page: models.Page{Page: 1, PageSize: 20}})
		require.NoError(t, err)
		return found
	}

	found := search("100%")
	require.Len(t, found, 1)
	assert.Equal(t, percent.ID, found[0].ID)

	assert.Empty(t, search("10_0"))
	assert.Len(t, search("cotton"), 2)
}

func TestListingRepository_FindExpiredActive(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewListingRepository()
	owner := helpers.CreateUser(t, db, helpers.UniqueEmail("o"), "")

	fresh := seedListing(t, db, owner.ID)
	stale := seedListing(t, db, owner.ID)
	past := time.Now().UTC().Add(-3 * time.Hour)
	require.NoError(t, db.Model(stale).Update("expires_at", past).Error)

	found, err := repo.FindExpiredActive(db, time.Now().UTC(), 50)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
	assert.NotEqual(t, fresh.ID, found[0].ID)
}

func TestNewsRepository_IncrementViews(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewNewsRepository()

	article := &models.NewsArticle{
		Title:       "Port congestion eases",
		Slug:        "port-congestion-eases",
		Category:    models.NewsCategoryMarket,
		PublishedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(db, article))

	require.NoError(t, repo.IncrementViews(db, article.ID))
	require.NoError(t, repo.IncrementViews(db, article.ID))

	stored, err := repo.FindBySlug(db, "port-congestion-eases")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Views)

	assert.ErrorIs(t, repo.IncrementViews(db, "missing"), repositories.ErrNewsNotFound)
	assert.ErrorIs(t, repo.Create(db, &models.NewsArticle{Title: "dup", Slug: "port-congestion-eases"}), repositories.ErrNewsSlugTaken)
}

func TestNewsRepository_ListHidesScheduled(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewNewsRepository()
	now := time.Now().UTC()

	published := &models.NewsArticle{Title: "Rail tariffs 2025", Slug: "rail-tariffs", Category: models.NewsCategoryMarket, PublishedAt: now.Add(-time.Hour)}
	scheduled := &models.NewsArticle{Title: "Rail tariffs 2026", Slug: "rail-tariffs-2026", Category: models.NewsCategoryMarket, PublishedAt: now.Add(72 * time.Hour)}
	require.NoError(t, repo.Create(db, published))
	require.NoError(t, repo.Create(db, scheduled))

	page := models.Page{Page: 1, PageSize: 10}

	found, total, err := repo.List(db, repositories.NewsFilter{PublishedBefore: now, Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, published.ID, found[0].ID)

	_, total, err = repo.List(db, repositories.NewsFilter{Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = repo.List(db, repositories.NewsFilter{Query: "tariffs_", Page: page})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWalletRepository_CreditAndTransactions(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewWalletRepository()

	wallet, err := repo.FindOrCreate(db, "user-1")
	require.NoError(t, err)
	assert.Zero(t, wallet.BalanceMinor)

	again, err := repo.FindOrCreate(db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)

	require.NoError(t, repo.Credit(db, wallet.ID, 25050))
	require.NoError(t, repo.CreateTransaction(db, &models.BalanceTransaction{
		WalletID: wallet.ID, UserID: "user-1", AmountMinor: 25050, Kind: models.BalanceTxTopUp, BalanceAfterMinor: 25050,
	}))

	updated, err := repo.FindByUserID(db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(25050), updated.BalanceMinor)

	txs, total, err := repo.ListTransactions(db, "user-1", models.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, txs, 1)

	assert.ErrorIs(t, repo.Credit(db, "missing", 1), repositories.ErrWalletNotFound)
}

func TestAdRepository_TransitionAndDelete(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewAdRepository()

	ad := &models.Ad{OwnerID: "u1", Title: "Reefer fleet", Budget: 100, DurationDays: 7, Status: models.AdStatusActive, StartsAt: time.Now().UTC()}
	ad.RecalculateEnd()
	require.NoError(t, repo.Create(db, ad))

	stale, err := repo.FindByID(db, ad.ID)
	require.NoError(t, err)

	require.NoError(t, repo.TransitionStatus(db, ad.ID, models.AdStatusActive, models.AdStatusPaused))
	assert.ErrorIs(t, repo.TransitionStatus(db, ad.ID, models.AdStatusActive, models.AdStatusPaused), repositories.ErrAdStatusChanged)

	// редактирование по устаревшей копии не возвращает статус active
	stale.Budget = 250
	require.NoError(t, repo.Update(db, stale))
	stored, err := repo.FindByID(db, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusPaused, stored.Status)
	assert.Equal(t, 250.0, stored.Budget)

	require.NoError(t, repo.Delete(db, ad.ID))
	ads, total, err := repo.ListByOwner(db, "u1", models.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, ads)
	assert.ErrorIs(t, repo.Delete(db, ad.ID), repositories.ErrAdNotFound)
}

func TestNotificationRepository_ReadFlow(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewNotificationRepository()

	n1 := &models.Notification{UserID: "u1", Type: models.NotificationTypeNewOffer, Title: "New offer"}
	n2 := &models.Notification{UserID: "u1", Type: models.NotificationTypeNewMessage, Title: "New message"}
	require.NoError(t, repo.Create(db, n1))
	require.NoError(t, repo.Create(db, n2))

	count, err := repo.UnreadCount(db, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.ErrorIs(t, repo.MarkRead(db, "u2", n1.ID), repositories.ErrNotificationNotFound)
	require.NoError(t, repo.MarkRead(db, "u1", n1.ID))

	unread, total, err := repo.ListByUser(db, "u1", true, models.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, n2.ID, unread[0].ID)

	affected, err := repo.MarkAllRead(db, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
