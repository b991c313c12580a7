package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"cargomarket_backend/internal/app"
	"cargomarket_backend/internal/auth"
	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/newsapi"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Config   *config.Config
	Services *services.ServiceContainer
	Email    *app.MockEmailProvider
	Storage  *CountingStorage
	News     *StubFetcher
}

// TestConfig - конфиг для тестов: sqlite, локальное хранилище во временной папке,
// лимиты запросов подняты, чтобы не мешать сценариям
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Server.BaseURL = "http://localhost:5173"
	cfg.Database.DSN = "sqlite"
	cfg.JWT.Secret = "test-secret-key-for-cargomarket"
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Storage.BaseURL = "/api/v1/files"
	cfg.RateLimit.RequestsPerSecond = 10000
	cfg.RateLimit.Burst = 10000
	cfg.RateLimit.AuthPerMinute = 60000
	config.ApplyDefaults(cfg)

	auth.Init(cfg.JWT.Secret, cfg.JWTTTL())
	return cfg
}

// NewTestServer поднимает полный роутер поверх sqlite в памяти
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig(t)
	db := NewTestDB(t)

	local, err := storage.NewLocalStorage(storage.Config{BasePath: cfg.Storage.BasePath, BaseURL: cfg.Storage.BaseURL})
	require.NoError(t, err)

	ts := &TestServer{
		DB:      db,
		Config:  cfg,
		Email:   &app.MockEmailProvider{},
		Storage: &CountingStorage{Storage: local},
		News:    &StubFetcher{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	router, container := app.SetupRouter(ctx, cfg, db, NewStatsDB(t, db), &app.Dependencies{
		Storage: ts.Storage,
		Email:   ts.Email,
		News:    ts.News,
	})
	ts.Services = container
	ts.Server = httptest.NewServer(router)

	t.Cleanup(func() {
		ts.Server.Close()
		cancel()
	})
	return ts
}

// Login - токен для пользователя, созданного через CreateUser
func Login(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err)
	return token
}

// NewUser создает пользователя и сразу выдает токен
func (ts *TestServer) NewUser(t *testing.T, prefix string) (*models.User, string) {
	t.Helper()
	user := CreateUser(t, ts.DB, UniqueEmail(prefix), models.UserRoleUser)
	return user, Login(t, user)
}

func (ts *TestServer) NewAdmin(t *testing.T) (*models.User, string) {
	t.Helper()
	user := CreateUser(t, ts.DB, UniqueEmail("admin"), models.UserRoleAdmin)
	return user, Login(t, user)
}

// SendRequest отправляет JSON-запрос и возвращает ответ с телом
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req)
}

// SendFile отправляет multipart-запрос с одним файлом в поле field
func (ts *TestServer) SendFile(t *testing.T, method, path, token, field, filename string, content []byte) (*http.Response, string) {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// DecodeJSON разбирает тело ответа в out
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), "тело ответа: %s", body)
}

// CountingStorage считает обращения к хранилищу
type CountingStorage struct {
	storage.Storage
	saves   atomic.Int64
	deletes atomic.Int64
}

func (s *CountingStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	s.saves.Add(1)
	return s.Storage.Save(ctx, path, reader, contentType)
}

func (s *CountingStorage) Delete(ctx context.Context, path string) error {
	s.deletes.Add(1)
	return s.Storage.Delete(ctx, path)
}

func (s *CountingStorage) Saves() int64   { return s.saves.Load() }
func (s *CountingStorage) Deletes() int64 { return s.deletes.Load() }

// StubFetcher - управляемый источник внешних новостей
type StubFetcher struct {
	mu       sync.Mutex
	Articles []newsapi.Article
	Err      error
	calls    int
}

func (f *StubFetcher) Fetch(ctx context.Context, category string) ([]newsapi.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Articles, nil
}

func (f *StubFetcher) Set(articles []newsapi.Article, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Articles, f.Err = articles, err
}

func (f *StubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
