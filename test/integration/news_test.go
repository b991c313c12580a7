package integration_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"cargomarket_backend/internal/newsapi"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalNews_Fallback(t *testing.T) {
	ts := helpers.NewTestServer(t)
	ts.News.Set(nil, errors.New("upstream timeout"))

	get := func() dto.ExternalNewsResponse {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/news/external?category=logistics", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var resp dto.ExternalNewsResponse
		helpers.DecodeJSON(t, body, &resp)
		return resp
	}

	fallback := get()
	assert.True(t, fallback.Fallback)
	assert.False(t, fallback.Cached)
	assert.NotEmpty(t, fallback.Articles)

	// Fallback не кэшируется: после восстановления API берутся свежие данные
	ts.News.Set([]newsapi.Article{{
		Title:       "Freight rates climb in Q3",
		URL:         "https://example.com/freight-rates",
		PublishedAt: time.Now().UTC(),
		Source:      newsapi.Source{Name: "Example"},
	}}, nil)

	live := get()
	assert.False(t, live.Fallback)
	assert.False(t, live.Cached)
	require.Len(t, live.Articles, 1)
	assert.Equal(t, "Freight rates climb in Q3", live.Articles[0].Title)

	calls := ts.News.Calls()
	cached := get()
	assert.True(t, cached.Cached)
	assert.Equal(t, calls, ts.News.Calls(), "ответ из кэша не должен обращаться к API")
}

func TestNews_CRUDAndViews(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, adminToken := ts.NewAdmin(t)
	_, userToken := ts.NewUser(t, "reader")

	req := map[string]interface{}{
		"title":    "Gümrük kuralları değişiyor",
		"content":  "Beyanname prosedürü 1 Ocak itibarıyla değişiyor.",
		"category": "regulation",
		"tags":     []string{"customs"},
	}

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/news", userToken, req)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/news", adminToken, req)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var created dto.NewsResponse
	helpers.DecodeJSON(t, body, &created)
	require.NotEmpty(t, created.Slug)
	assert.Equal(t, 0, created.Views)

	t.Run("Views increment by id and slug", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/news/"+created.ID, "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var first dto.NewsResponse
		helpers.DecodeJSON(t, body, &first)
		assert.Equal(t, 1, first.Views)

		res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/news/"+created.Slug, "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var second dto.NewsResponse
		helpers.DecodeJSON(t, body, &second)
		assert.Equal(t, 2, second.Views)
	})

	t.Run("List by category", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/news?category=regulation", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var page dto.PageResponse[*dto.NewsResponse]
		helpers.DecodeJSON(t, body, &page)
		assert.Equal(t, int64(1), page.Total)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/news?category=sports", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/admin/news/"+created.ID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/news/"+created.Slug, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestNews_ScheduledArticleHidden(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, adminToken := ts.NewAdmin(t)
	_, userToken := ts.NewUser(t, "reader")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/news", adminToken, map[string]interface{}{
		"title":        "New port tariffs from March",
		"content":      "Embargoed until the ministry announcement.",
		"category":     "regulation",
		"published_at": time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var scheduled dto.NewsResponse
	helpers.DecodeJSON(t, body, &scheduled)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/news", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var page dto.PageResponse[*dto.NewsResponse]
	helpers.DecodeJSON(t, body, &page)
	assert.Zero(t, page.Total)

	for _, token := range []string{"", userToken} {
		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/news/"+scheduled.Slug, token, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	}

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/news/"+scheduled.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var preview dto.NewsResponse
	helpers.DecodeJSON(t, body, &preview)
	assert.Equal(t, scheduled.ID, preview.ID)
}

func TestNews_SyncExternal(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, adminToken := ts.NewAdmin(t)

	ts.News.Set([]newsapi.Article{
		{Title: "Port congestion eases", URL: "https://example.com/a", PublishedAt: time.Now().UTC()},
		{Title: "Rail freight volumes up", URL: "https://example.com/b", PublishedAt: time.Now().UTC()},
	}, nil)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/news/sync?categories=logistics", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var result dto.NewsSyncResult
	helpers.DecodeJSON(t, body, &result)
	assert.Equal(t, 2, result.Imported)

	// Повторный импорт тех же ссылок пропускается
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/news/sync?categories=logistics", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	helpers.DecodeJSON(t, body, &result)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Skipped)
}
