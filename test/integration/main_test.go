package integration_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/require"
)

// Письма уходят асинхронно после коммита
const (
	eventuallyWait = 2 * time.Second
	eventuallyTick = 20 * time.Millisecond
)

// createListing - активное публичное объявление через API
func createListing(t *testing.T, ts *helpers.TestServer, token, title string) *dto.ListingResponse {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/listings", token, map[string]interface{}{
		"kind":             "cargo",
		"title":            title,
		"origin_city":      "Istanbul",
		"destination_city": "Almaty",
		"transport_mode":   "road",
		"weight_kg":        1200,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var listing dto.ListingResponse
	helpers.DecodeJSON(t, body, &listing)
	return &listing
}

func createOffer(t *testing.T, ts *helpers.TestServer, token, listingID string, amount float64) *dto.OfferResponse {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/offers", token, map[string]interface{}{
		"listing_id": listingID,
		"amount":     amount,
		"currency":   "USD",
		"message":    "Могу забрать завтра",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var offer dto.OfferResponse
	helpers.DecodeJSON(t, body, &offer)
	return &offer
}

func offerPath(offerID, action string) string {
	if action == "" {
		return fmt.Sprintf("/api/v1/offers/%s", offerID)
	}
	return fmt.Sprintf("/api/v1/offers/%s/%s", offerID, action)
}

func TestHealth(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, `"status":"ok"`)
}
