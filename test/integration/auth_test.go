package integration_test

import (
	"net/http"
	"testing"

	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := helpers.NewTestServer(t)
	email := helpers.UniqueEmail("carrier")

	regRes, regBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":     email,
		"password":  "super_password123",
		"full_name": "Тестовый Перевозчик",
	})
	require.Equal(t, http.StatusCreated, regRes.StatusCode, regBody)

	logRes, logBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "super_password123",
	})
	require.Equal(t, http.StatusOK, logRes.StatusCode, logBody)

	var authResp dto.AuthResponse
	helpers.DecodeJSON(t, logBody, &authResp)
	require.NotEmpty(t, authResp.AccessToken)

	meRes, meBody := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", authResp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, meRes.StatusCode)
	assert.Contains(t, meBody, email)

	// Кошелек создается при регистрации
	balRes, balBody := ts.SendRequest(t, http.MethodGet, "/api/v1/balance", authResp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, balRes.StatusCode, balBody)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := helpers.NewTestServer(t)
	user, _ := ts.NewUser(t, "dup")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":     user.Email,
		"password":  "password_is_long_enough_123",
		"full_name": "Second",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, body, "Email already in use")
}

func TestLogin_BadPassword(t *testing.T) {
	ts := helpers.NewTestServer(t)
	user, _ := ts.NewUser(t, "badpass")

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestProtectedRoute_NoToken(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRefreshTokenRotation(t *testing.T) {
	ts := helpers.NewTestServer(t)
	user, _ := ts.NewUser(t, "refresh")

	login := func() dto.AuthResponse {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
			"email":    user.Email,
			"password": helpers.TestPassword,
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var resp dto.AuthResponse
		helpers.DecodeJSON(t, body, &resp)
		require.NotEmpty(t, resp.RefreshToken)
		return resp
	}
	refresh := func(token string) (*http.Response, dto.AuthResponse) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": token})
		var resp dto.AuthResponse
		if res.StatusCode == http.StatusOK {
			helpers.DecodeJSON(t, body, &resp)
		}
		return res, resp
	}

	first := login()

	res, rotated := refresh(first.RefreshToken)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)
	assert.NotEmpty(t, rotated.AccessToken)

	// Повторное использование старого токена
	res, _ = refresh(first.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{"refresh_token": rotated.RefreshToken})
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = refresh(rotated.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLogoutAll(t *testing.T) {
	ts := helpers.NewTestServer(t)
	user, token := ts.NewUser(t, "sessions")

	var sessions []string
	for i := 0; i < 2; i++ {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
			"email":    user.Email,
			"password": helpers.TestPassword,
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var resp dto.AuthResponse
		helpers.DecodeJSON(t, body, &resp)
		sessions = append(sessions, resp.RefreshToken)
	}

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout-all", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.JSONEq(t, `{"revoked":2}`, body)

	for _, s := range sessions {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": s})
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	}
}
