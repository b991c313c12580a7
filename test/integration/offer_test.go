package integration_test

import (
	"net/http"
	"testing"
	"time"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOffer_Validation(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, bidderToken := ts.NewUser(t, "carrier")
	listing := createListing(t, ts, ownerToken, "Паллеты Стамбул - Алматы")

	for name, amount := range map[string]float64{"zero": 0, "negative": -100} {
		t.Run("Amount "+name, func(t *testing.T) {
			res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/offers", bidderToken, map[string]interface{}{
				"listing_id": listing.ID,
				"amount":     amount,
				"currency":   "USD",
			})
			assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
			assert.Contains(t, body, "amount")
		})
	}

	t.Run("Own listing", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/offers", ownerToken, map[string]interface{}{
			"listing_id": listing.ID,
			"amount":     500,
			"currency":   "USD",
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, body, "own listing")
	})

	t.Run("Duplicate open offer", func(t *testing.T) {
		createOffer(t, ts, bidderToken, listing.ID, 900)

		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/offers", bidderToken, map[string]interface{}{
			"listing_id": listing.ID,
			"amount":     950,
			"currency":   "USD",
		})
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("Edit keeps delivery after stored pickup", func(t *testing.T) {
		_, carrierToken := ts.NewUser(t, "carrier2")
		pickup := time.Now().UTC().Add(72 * time.Hour)

		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/offers", carrierToken, map[string]interface{}{
			"listing_id":    listing.ID,
			"amount":        1200,
			"currency":      "USD",
			"pickup_date":   pickup.Format(time.RFC3339),
			"delivery_date": pickup.Add(96 * time.Hour).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, res.StatusCode, body)
		var offer dto.OfferResponse
		helpers.DecodeJSON(t, body, &offer)

		// в запросе только delivery_date, pickup_date берется из сохраненного оффера
		res, body = ts.SendRequest(t, http.MethodPut, offerPath(offer.ID, ""), carrierToken, map[string]interface{}{
			"delivery_date": pickup.Add(-24 * time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
		assert.Contains(t, body, "delivery_date")

		res, body = ts.SendRequest(t, http.MethodPut, offerPath(offer.ID, ""), carrierToken, map[string]interface{}{
			"delivery_date": pickup.Add(24 * time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusOK, res.StatusCode, body)
	})

	t.Run("Unknown currency", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/offers", bidderToken, map[string]interface{}{
			"listing_id": listing.ID,
			"amount":     100,
			"currency":   "XXX",
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestOfferTransitions(t *testing.T) {
	ts := helpers.NewTestServer(t)
	owner, ownerToken := ts.NewUser(t, "shipper")
	_, bidderToken := ts.NewUser(t, "carrier")
	_, strangerToken := ts.NewUser(t, "stranger")
	listing := createListing(t, ts, ownerToken, "Контейнер 40ft")

	t.Run("Accept then reject conflicts", func(t *testing.T) {
		offer := createOffer(t, ts, bidderToken, listing.ID, 1500)

		res, body := ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "accept"), ownerToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var accepted dto.OfferResponse
		helpers.DecodeJSON(t, body, &accepted)
		assert.Equal(t, models.OfferStatusAccepted, accepted.Status)

		res, _ = ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "reject"), ownerToken, nil)
		assert.Equal(t, http.StatusConflict, res.StatusCode)

		// Письмо владельцу о новом оффере и участнику о принятии уходят асинхронно
		assert.Eventually(t, func() bool { return len(ts.Email.Sent()) >= 2 }, eventuallyWait, eventuallyTick)
	})

	t.Run("Bidder cannot accept own offer", func(t *testing.T) {
		offer := createOffer(t, ts, bidderToken, listing.ID, 1400)

		res, _ := ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "accept"), bidderToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "reject"), strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, body := ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "withdraw"), bidderToken, map[string]interface{}{
			"note": "нашли другой груз",
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Contains(t, body, `"status":"withdrawn"`)
	})

	t.Run("Counter and accept counter", func(t *testing.T) {
		offer := createOffer(t, ts, bidderToken, listing.ID, 2000)

		res, body := ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "counter"), ownerToken, map[string]interface{}{
			"counter_amount":  1750,
			"counter_message": "Готов на 1750",
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var countered dto.OfferResponse
		helpers.DecodeJSON(t, body, &countered)
		assert.Equal(t, models.OfferStatusCountered, countered.Status)
		require.NotNil(t, countered.CounterAmount)
		assert.Equal(t, 1750.0, *countered.CounterAmount)

		// Владелец не может принять собственное встречное предложение
		res, _ = ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "accept-counter"), ownerToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, body = ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "accept-counter"), bidderToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var final dto.OfferResponse
		helpers.DecodeJSON(t, body, &final)
		assert.Equal(t, models.OfferStatusAccepted, final.Status)
		assert.Equal(t, 1750.0, final.Amount)

		res, body = ts.SendRequest(t, http.MethodGet, offerPath(offer.ID, "history"), bidderToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var history struct {
			Events []*dto.OfferEventResponse `json:"events"`
		}
		helpers.DecodeJSON(t, body, &history)
		require.Len(t, history.Events, 3)
		assert.Equal(t, models.OfferStatusPending, history.Events[0].ToStatus)
		assert.Equal(t, models.OfferStatusCountered, history.Events[1].ToStatus)
		assert.Equal(t, owner.ID, history.Events[1].ActorID)
		assert.Equal(t, models.OfferStatusAccepted, history.Events[2].ToStatus)
	})

	t.Run("Edit only while pending", func(t *testing.T) {
		offer := createOffer(t, ts, bidderToken, listing.ID, 800)

		res, body := ts.SendRequest(t, http.MethodPut, offerPath(offer.ID, ""), bidderToken, map[string]interface{}{
			"amount": 850,
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Contains(t, body, `"amount":850`)

		res, _ = ts.SendRequest(t, http.MethodPost, offerPath(offer.ID, "reject"), ownerToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodPut, offerPath(offer.ID, ""), bidderToken, map[string]interface{}{
			"amount": 900,
		})
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("Owner lists offers on listing", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+listing.ID+"/offers?status=accepted", ownerToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var page dto.PageResponse[*dto.OfferResponse]
		helpers.DecodeJSON(t, body, &page)
		assert.Equal(t, int64(2), page.Total)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/listings/"+listing.ID+"/offers", bidderToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})
}

func TestOfferNotifiesOwner(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, bidderToken := ts.NewUser(t, "carrier")
	listing := createListing(t, ts, ownerToken, "Зерно 20 тонн")

	createOffer(t, ts, bidderToken, listing.ID, 3000)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var unread dto.UnreadCountResponse
	helpers.DecodeJSON(t, body, &unread)
	assert.Equal(t, int64(1), unread.Unread)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/read-all", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"updated":1`)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	helpers.DecodeJSON(t, body, &unread)
	assert.Equal(t, int64(0), unread.Unread)
}
