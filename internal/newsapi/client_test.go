package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "/everything", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"title":"Rates fall","description":"d","url":"https://x.test/a","publishedAt":"2024-05-01T10:00:00Z","source":{"name":"X"}},
			{"title":"[Removed]","url":"https://x.test/b","publishedAt":"2024-05-01T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	articles, err := c.Fetch(context.Background(), "market")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Rates fall", articles[0].Title)
	assert.Equal(t, "X", articles[0].Source.Name)
}

func TestFetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}).Fetch(context.Background(), "market")
	assert.Error(t, err)
}

func TestFetch_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}).Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 20 * time.Millisecond}).
		Fetch(context.Background(), "market")
	assert.Error(t, err)
}

func TestFetch_NotConfigured(t *testing.T) {
	_, err := NewClient(Config{}).Fetch(context.Background(), "market")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFallback(t *testing.T) {
	now := time.Now()
	assert.Len(t, Fallback("logistics", now), 2)
	assert.NotEmpty(t, Fallback("unknown", now))
	assert.Len(t, Fallback("", now), 6)
}
