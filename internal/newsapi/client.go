package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotConfigured = errors.New("news api is not configured")
	ErrEmptyResult   = errors.New("news api returned no articles")
)

type Source struct {
	Name string `json:"name"`
}

// Article - статья в формате внешнего API
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      Source    `json:"source"`
}

type response struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

type Config struct {
	BaseURL  string
	APIKey   string
	Country  string
	PageSize int
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

// queryFor - поисковый запрос внешнего API для категории
var queryFor = map[string]string{
	"market":     "freight rates OR freight market",
	"regulation": "customs regulation OR transport regulation",
	"technology": "logistics technology",
	"logistics":  "logistics OR supply chain",
	"general":    "cargo OR shipping",
}

// Fetch запрашивает статьи категории. Любая ошибка сети, не-2xx ответ,
// сбой декодирования или пустой список возвращаются как error.
func (c *Client) Fetch(ctx context.Context, category string) ([]Article, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q, ok := queryFor[category]
	if !ok {
		q = queryFor["general"]
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
	params.Set("sortBy", "publishedAt")
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/everything?" + params.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("news api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news api response: %w", err)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if strings.TrimSpace(a.Title) == "" || a.Title == "[Removed]" {
			continue
		}
		articles = append(articles, a)
	}
	if len(articles) == 0 {
		return nil, ErrEmptyResult
	}
	return articles, nil
}
