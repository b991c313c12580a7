package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Env             string `yaml:"env"`
		BaseURL         string `yaml:"base_url"` // публичный адрес приложения (ссылки в письмах)
		ShutdownTimeout int    `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	JWT struct {
		Secret     string `yaml:"secret"`
		TTL        int    `yaml:"ttl"`         // минуты
		RefreshTTL int    `yaml:"refresh_ttl"` // дни
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"`        // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		UseSSL     bool   `yaml:"use_ssl"`     // For S3/R2
		PublicRead bool   `yaml:"public_read"` // Make files public
	} `yaml:"storage"`

	Upload struct {
		AvatarMaxSize     int64 `yaml:"avatar_max_size"`
		AttachmentMaxSize int64 `yaml:"attachment_max_size"`
		DocumentMaxSize   int64 `yaml:"document_max_size"`
		ImageQuality      int   `yaml:"image_quality"` // JPEG quality (1-100)
		SignedURLTTL      int   `yaml:"signed_url_ttl"` // минуты
	} `yaml:"upload"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		StatsTTL int `yaml:"stats_ttl"` // секунды
		NewsTTL  int `yaml:"news_ttl"`  // секунды
	} `yaml:"cache"`

	NewsAPI struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Country  string `yaml:"country"`
		Timeout  int    `yaml:"timeout"` // секунды
		PageSize int    `yaml:"page_size"`
	} `yaml:"news_api"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		AuthPerMinute     float64 `yaml:"auth_per_minute"`
		EmailPerHour      int     `yaml:"email_per_hour"` // лимит функции send-email на пользователя
	} `yaml:"rate_limit"`

	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`

	Workers struct {
		Enabled          bool `yaml:"enabled"`
		ExpiryInterval   int  `yaml:"expiry_interval"`    // секунды
		NewsSyncInterval int  `yaml:"news_sync_interval"` // секунды
	} `yaml:"workers"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

func LoadConfig() {
	// .env необязателен: в контейнере переменные передаются напрямую
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("Загрузка конфигурации из %s", configPath)

		loaded, err := LoadFromFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load config file at %s: %v", configPath, err)
		}
		cfg = *loaded
	} else {
		log.Println("Загрузка конфигурации из переменных окружения")
		cfg = *FromEnv(dbURL)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	AppConfig = &cfg
}

// LoadFromFile читает YAML-конфиг без побочных эффектов
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv собирает конфиг для контейнеров и тестов
func FromEnv(dbURL string) *Config {
	var cfg Config

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.Server.BaseURL = os.Getenv("APP_BASE_URL")
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.NewsAPI.BaseURL = os.Getenv("NEWS_API_URL")
	cfg.NewsAPI.APIKey = os.Getenv("NEWS_API_KEY")

	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")

	cfg.Workers.Enabled = os.Getenv("WORKERS_ENABLED") != "false"

	return &cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.NewsAPI.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("APP_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		cfg.CORS.AllowOrigins = strings.Split(v, ",")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60 * 24
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = 30
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Upload.AvatarMaxSize == 0 {
		cfg.Upload.AvatarMaxSize = 5 * 1024 * 1024 // 5MB
	}
	if cfg.Upload.AttachmentMaxSize == 0 {
		cfg.Upload.AttachmentMaxSize = 20 * 1024 * 1024 // 20MB
	}
	if cfg.Upload.DocumentMaxSize == 0 {
		cfg.Upload.DocumentMaxSize = 10 * 1024 * 1024 // 10MB
	}
	if cfg.Upload.ImageQuality == 0 {
		cfg.Upload.ImageQuality = 85
	}
	if cfg.Upload.SignedURLTTL == 0 {
		cfg.Upload.SignedURLTTL = 15
	}
	if cfg.Cache.StatsTTL == 0 {
		cfg.Cache.StatsTTL = 60
	}
	if cfg.Cache.NewsTTL == 0 {
		cfg.Cache.NewsTTL = 600
	}
	if cfg.NewsAPI.Timeout == 0 {
		cfg.NewsAPI.Timeout = 5
	}
	if cfg.NewsAPI.PageSize == 0 {
		cfg.NewsAPI.PageSize = 20
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 50
	}
	if cfg.RateLimit.AuthPerMinute == 0 {
		cfg.RateLimit.AuthPerMinute = 20
	}
	if cfg.RateLimit.EmailPerHour == 0 {
		cfg.RateLimit.EmailPerHour = 20
	}
	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if cfg.Workers.ExpiryInterval == 0 {
		cfg.Workers.ExpiryInterval = 300
	}
	if cfg.Workers.NewsSyncInterval == 0 {
		cfg.Workers.NewsSyncInterval = 3600
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	if c.JWT.Secret == "" && c.Server.Env != "development" && c.Server.Env != "test" {
		return errors.New("jwt secret is required outside development")
	}
	return nil
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.Upload.SignedURLTTL) * time.Minute
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// ApplyDefaults заполняет пустые поля значениями по умолчанию (нужно тестам)
func ApplyDefaults(cfg *Config) {
	applyDefaults(cfg)
}
