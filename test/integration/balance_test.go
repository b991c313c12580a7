package integration_test

import (
	"net/http"
	"testing"

	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topUpBody(amount float64) map[string]interface{} {
	return map[string]interface{}{
		"amount":         amount,
		"payment_method": "card",
		"card_holder":    "IVAN PETROV",
		"card_last4":     "4242",
	}
}

func TestTopUp(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, token := ts.NewUser(t, "wallet")

	t.Run("Success", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/balance/top-up", token, topUpBody(150.5))
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var resp dto.TopUpResponse
		helpers.DecodeJSON(t, body, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, 0.0, resp.PreviousBalance)
		assert.Equal(t, 150.5, resp.Balance)
		require.NotNil(t, resp.Transaction)
		assert.Equal(t, "4242", resp.Transaction.CardLast4)
		assert.Equal(t, 150.5, resp.Transaction.BalanceAfter)
		assert.Equal(t, int64(15050), resp.BalanceMinor)
	})

	t.Run("Accumulates", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/balance/top-up", token, topUpBody(49.5))
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var resp dto.TopUpResponse
		helpers.DecodeJSON(t, body, &resp)
		assert.Equal(t, 150.5, resp.PreviousBalance)
		assert.Equal(t, 200.0, resp.Balance)
		assert.Equal(t, resp.PreviousBalanceMinor+resp.Transaction.AmountMinor, resp.BalanceMinor)

		res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/balance", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var bal dto.BalanceResponse
		helpers.DecodeJSON(t, body, &bal)
		assert.Equal(t, 200.0, bal.Balance)
	})

	t.Run("Missing field", func(t *testing.T) {
		req := topUpBody(10)
		delete(req, "card_holder")

		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/balance/top-up", token, req)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, body, "card_holder")
	})

	t.Run("Cents add up exactly", func(t *testing.T) {
		_, fresh := ts.NewUser(t, "cents")
		for _, amount := range []float64{0.1, 0.2} {
			res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/balance/top-up", fresh, topUpBody(amount))
			require.Equal(t, http.StatusOK, res.StatusCode, body)
		}

		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/balance", fresh, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var bal dto.BalanceResponse
		helpers.DecodeJSON(t, body, &bal)
		assert.Equal(t, int64(30), bal.BalanceMinor)
		assert.Equal(t, 0.3, bal.Balance)
	})

	t.Run("Sub-cent amount", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/balance/top-up", token, topUpBody(10.005))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, body, "amount")
	})

	t.Run("Non-positive amount", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/balance/top-up", token, topUpBody(-5))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("Transactions", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/balance/transactions", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		var page dto.PageResponse[*dto.TransactionResponse]
		helpers.DecodeJSON(t, body, &page)
		assert.Equal(t, int64(2), page.Total)
	})
}
