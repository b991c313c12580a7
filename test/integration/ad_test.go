package integration_test

import (
	"net/http"
	"testing"

	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdLifecycle(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, token := ts.NewUser(t, "advertiser")
	_, otherToken := ts.NewUser(t, "stranger")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/ads", token, map[string]interface{}{
		"title":         "Рефрижераторы по Турции",
		"budget":        300,
		"duration_days": 7,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var ad dto.AdResponse
	helpers.DecodeJSON(t, body, &ad)
	assert.Equal(t, models.AdStatusActive, ad.Status)
	assert.Equal(t, "Aktif", ad.StatusLabel)
	assert.True(t, ad.CanPause)
	assert.False(t, ad.CanActivate)

	adPath := "/api/v1/ads/" + ad.ID

	t.Run("Pause", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, adPath+"/pause", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var paused dto.AdResponse
		helpers.DecodeJSON(t, body, &paused)
		assert.Equal(t, models.AdStatusPaused, paused.Status)
		assert.Equal(t, "Pasif", paused.StatusLabel)
		assert.True(t, paused.CanActivate)
		assert.False(t, paused.CanPause)

		// Повторная пауза не разрешена
		res, _ = ts.SendRequest(t, http.MethodPost, adPath+"/pause", token, nil)
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("Activate", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, adPath+"/activate", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var active dto.AdResponse
		helpers.DecodeJSON(t, body, &active)
		assert.Equal(t, "Aktif", active.StatusLabel)
	})

	t.Run("Edit duration moves end date", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPut, adPath, token, map[string]interface{}{
			"title":         "Рефрижераторы по Европе",
			"duration_days": 30,
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var edited dto.AdResponse
		helpers.DecodeJSON(t, body, &edited)
		assert.Equal(t, "Рефрижераторы по Европе", edited.Title)
		assert.Equal(t, 30, edited.DurationDays)
		assert.True(t, edited.EndsAt.After(ad.EndsAt))
	})

	t.Run("Stranger cannot see or modify", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodGet, adPath, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodDelete, adPath, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodDelete, adPath, token, nil)
		require.Equal(t, http.StatusNoContent, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodGet, adPath, token, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}
