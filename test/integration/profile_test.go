package integration_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAvatarUpload(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, token := ts.NewUser(t, "avatar")

	t.Run("Too large", func(t *testing.T) {
		before := ts.Storage.Saves()
		ts.Config.Upload.AvatarMaxSize = 1024
		defer func() { ts.Config.Upload.AvatarMaxSize = 5 * 1024 * 1024 }()

		res, body := ts.SendFile(t, http.MethodPost, "/api/v1/profile/avatar", token, "file", "big.png", pngImage(t, 200, 200))
		assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode, body)
		assert.Equal(t, before, ts.Storage.Saves(), "хранилище не должно вызываться")
	})

	t.Run("Wrong type", func(t *testing.T) {
		before := ts.Storage.Saves()

		res, body := ts.SendFile(t, http.MethodPost, "/api/v1/profile/avatar", token, "file", "notes.txt", []byte("just some plain text, not an image"))
		assert.Equal(t, http.StatusUnsupportedMediaType, res.StatusCode, body)
		assert.Equal(t, before, ts.Storage.Saves())
	})

	t.Run("Missing file field", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/profile/avatar", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("Success and public download", func(t *testing.T) {
		res, body := ts.SendFile(t, http.MethodPost, "/api/v1/profile/avatar", token, "file", "me.png", pngImage(t, 64, 64))
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var avatar dto.AvatarResponse
		helpers.DecodeJSON(t, body, &avatar)
		require.True(t, strings.HasPrefix(avatar.AvatarURL, "/api/v1/files/avatars/"), avatar.AvatarURL)
		assert.NotEmpty(t, avatar.ThumbnailURL)

		res, _ = ts.SendRequest(t, http.MethodGet, avatar.AvatarURL, "", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "image/"))

		res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/profile", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, avatar.AvatarURL)
	})

	t.Run("Delete", func(t *testing.T) {
		before := ts.Storage.Deletes()

		res, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/profile/avatar", token, nil)
		require.Equal(t, http.StatusNoContent, res.StatusCode)
		assert.Greater(t, ts.Storage.Deletes(), before)
	})
}

func TestVerificationDocumentAccess(t *testing.T) {
	ts := helpers.NewTestServer(t)
	owner, ownerToken := ts.NewUser(t, "company")
	_, strangerToken := ts.NewUser(t, "stranger")
	_, adminToken := ts.NewAdmin(t)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	res, body := ts.SendFile(t, http.MethodPost, "/api/v1/profile/verification-document", ownerToken, "file", "tax.pdf", pdf)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	assert.Contains(t, body, `"verification_status":"pending"`)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/profile/verification-document", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var doc dto.VerificationDocumentResponse
	helpers.DecodeJSON(t, body, &doc)
	require.True(t, strings.HasPrefix(doc.URL, "/api/v1/files/verification-documents/"), doc.URL)

	res, _ = ts.SendRequest(t, http.MethodGet, doc.URL, "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, doc.URL, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, doc.URL, ownerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/pdf", res.Header.Get("Content-Type"))

	res, _ = ts.SendRequest(t, http.MethodGet, doc.URL, adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// Администратор одобряет заявку
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/verifications/"+owner.ID+"/review", adminToken, map[string]interface{}{
		"approve": true,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"verification_status":"verified"`)
}

func TestFiles_BadPaths(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/files/unknown-bucket/file.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/files/avatars/nobody/missing.jpg", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestStatsCacheInvalidation(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, ownerToken := ts.NewUser(t, "shipper")
	_, bidderToken := ts.NewUser(t, "carrier")
	listing := createListing(t, ts, ownerToken, "Стройматериалы")

	getStats := func() dto.UserStatsResponse {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/profile/stats", bidderToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var stats dto.UserStatsResponse
		helpers.DecodeJSON(t, body, &stats)
		return stats
	}

	first := getStats()
	assert.False(t, first.Cached)
	assert.Equal(t, int64(0), first.OffersSent.Total)

	second := getStats()
	assert.True(t, second.Cached)

	createOffer(t, ts, bidderToken, listing.ID, 700)

	third := getStats()
	assert.False(t, third.Cached, "кэш должен сбрасываться после нового оффера")
	assert.Equal(t, int64(1), third.OffersSent.Total)
	assert.Equal(t, int64(1), third.Pending)
}
