package integration_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/internal/workers"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingSearchAndVisibility(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, strangerToken := ts.NewUser(t, "stranger")

	public := createListing(t, ts, ownerToken, "Текстиль на паллетах")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/listings", ownerToken, map[string]interface{}{
		"kind":             "transport_service",
		"title":            "Свободный рефрижератор",
		"origin_city":      "Istanbul",
		"destination_city": "Tashkent",
		"transport_mode":   "road",
		"visibility":       "private",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var private dto.ListingResponse
	helpers.DecodeJSON(t, body, &private)

	t.Run("Search hides private listings", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/listings?origin=istanbul", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var page dto.PageResponse[dto.ListingResponse]
		helpers.DecodeJSON(t, body, &page)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, public.ID, page.Items[0].ID)
	})

	t.Run("Private listing is visible to owner only", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+private.ID, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+private.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+private.ID, ownerToken, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("Views count non-owners", func(t *testing.T) {
		ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+public.ID, ownerToken, nil)
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+public.ID, strangerToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var got dto.ListingResponse
		helpers.DecodeJSON(t, body, &got)
		assert.Equal(t, 1, got.Views)
	})

	t.Run("Invalid filter", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/listings?transport_mode=teleport", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestListingStatusTransitions(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, strangerToken := ts.NewUser(t, "stranger")
	listing := createListing(t, ts, ownerToken, "Станки в контейнере")
	statusPath := "/api/v1/listings/" + listing.ID + "/status"

	res, _ := ts.SendRequest(t, http.MethodPatch, statusPath, strangerToken, map[string]string{"status": "paused"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPatch, statusPath, ownerToken, map[string]string{"status": "paused"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var paused dto.ListingResponse
	helpers.DecodeJSON(t, body, &paused)
	assert.Equal(t, models.ListingStatusPaused, paused.Status)

	// На приостановленное объявление офферы не принимаются
	_, bidderToken := ts.NewUser(t, "carrier")
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/offers", bidderToken, map[string]interface{}{
		"listing_id": listing.ID,
		"amount":     500,
		"currency":   "EUR",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPatch, statusPath, ownerToken, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPatch, statusPath, ownerToken, map[string]string{"status": "active"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPatch, statusPath, ownerToken, map[string]string{"status": "deleted"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteListingRejectsOpenOffers(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, bidderToken := ts.NewUser(t, "carrier")

	listing := createListing(t, ts, ownerToken, "Зерно навалом")
	offer := createOffer(t, ts, bidderToken, listing.ID, 2400)

	res, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/listings/"+listing.ID, bidderToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/listings/"+listing.ID, ownerToken, nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+listing.ID, ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/offers/"+offer.ID, bidderToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var got dto.OfferResponse
	helpers.DecodeJSON(t, body, &got)
	assert.Equal(t, models.OfferStatusRejected, got.Status)
}

func TestExpiryWorker(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, bidderToken := ts.NewUser(t, "carrier")

	now := time.Now().UTC()
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/listings", ownerToken, map[string]interface{}{
		"kind":             "cargo",
		"title":            "Срочная партия",
		"origin_city":      "Mersin",
		"destination_city": "Aktau",
		"transport_mode":   "multimodal",
		"expires_at":       now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var listing dto.ListingResponse
	helpers.DecodeJSON(t, body, &listing)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/offers", bidderToken, map[string]interface{}{
		"listing_id":  listing.ID,
		"amount":      3100,
		"currency":    "USD",
		"valid_until": now.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var offer dto.OfferResponse
	helpers.DecodeJSON(t, body, &offer)

	ownerStats := func() dto.UserStatsResponse {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/profile/stats", ownerToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var stats dto.UserStatsResponse
		helpers.DecodeJSON(t, body, &stats)
		return stats
	}
	warm := ownerStats()
	assert.Equal(t, int64(1), warm.OffersReceived.Count(string(models.OfferStatusPending)))
	assert.True(t, ownerStats().Cached)

	worker := workers.NewExpiryWorker(ts.DB, ts.Services.ListingService, ts.Services.OfferService, ts.Services.AuthService, time.Minute)
	ctx := context.Background()

	offers, listings := worker.RunOnce(ctx, now.Add(2*time.Hour))
	assert.Equal(t, int64(1), offers)
	assert.Equal(t, int64(0), listings)

	// владелец объявления тоже видит отклоненный оффер без ожидания TTL
	afterExpiry := ownerStats()
	assert.False(t, afterExpiry.Cached)
	assert.Equal(t, int64(0), afterExpiry.OffersReceived.Count(string(models.OfferStatusPending)))
	assert.Equal(t, int64(1), afterExpiry.OffersReceived.Count(string(models.OfferStatusRejected)))

	offers, listings = worker.RunOnce(ctx, now.Add(72*time.Hour))
	assert.Equal(t, int64(0), offers)
	assert.Equal(t, int64(1), listings)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/offers/"+offer.ID+"/history", bidderToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var history struct {
		Events []dto.OfferEventResponse `json:"events"`
	}
	helpers.DecodeJSON(t, body, &history)
	require.NotEmpty(t, history.Events)
	last := history.Events[len(history.Events)-1]
	assert.Equal(t, models.OfferStatusRejected, last.ToStatus)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+listing.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var expired dto.ListingResponse
	helpers.DecodeJSON(t, body, &expired)
	assert.Equal(t, models.ListingStatusCompleted, expired.Status)
}
