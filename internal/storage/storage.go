package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage - объектное хранилище. Путь объекта начинается с имени бакета:
// avatars/<user>/..., message-attachments/<conversation>/...
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL - публичная ссылка (для публичных бакетов)
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL - временная ссылка для приватных объектов
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	GetSize(ctx context.Context, path string) (int64, error)
}

type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // local
	BaseURL    string // публичный префикс ссылок
	Bucket     string // s3 / r2
	Region     string // s3
	AccessKey  string
	SecretKey  string
	Endpoint   string // r2 или s3-совместимый сервис
	UseSSL     bool
	PublicRead bool

	// PrivateBuckets отдаются только по подписанной ссылке
	PrivateBuckets []string
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ObjectPath собирает ключ объекта внутри бакета
func ObjectPath(bucket string, parts ...string) string {
	return path.Join(append([]string{bucket}, parts...)...)
}

// BucketOf возвращает бакет, к которому относится путь
func BucketOf(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i]
	}
	return p
}

// CleanPath нормализует путь из запроса и отсекает выход за корень
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	for _, seg := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
