package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const (
	r2PartSize    = 8 * 1024 * 1024
	r2CacheShort  = "private, max-age=0, no-store"
	r2CachePublic = "public, max-age=86400"
)

// CloudflareR2Storage хранит все бакеты приложения префиксами в одном R2-бакете.
// SDK v1: R2 не поддерживает часть заголовков checksum, которые шлет v2
type CloudflareR2Storage struct {
	api       *s3.S3
	uploader  *s3manager.Uploader
	bucket    string
	publicURL string
	private   map[string]bool
}

func NewCloudflareR2Storage(cfg Config) (*CloudflareR2Storage, error) {
	switch {
	case cfg.Endpoint == "":
		return nil, errors.New("r2: endpoint is required (https://<account>.r2.cloudflarestorage.com)")
	case cfg.Bucket == "":
		return nil, errors.New("r2: bucket is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("r2: access key and secret are required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String("auto"),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("r2 session: %w", err)
	}

	publicURL := strings.TrimRight(cfg.BaseURL, "/")
	if publicURL == "" {
		publicURL = "https://" + cfg.Bucket + ".r2.dev"
	}

	private := make(map[string]bool, len(cfg.PrivateBuckets))
	for _, b := range cfg.PrivateBuckets {
		private[b] = true
	}

	return &CloudflareR2Storage{
		api: s3.New(sess),
		uploader: s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
			u.PartSize = r2PartSize
		}),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		private:   private,
	}, nil
}

// Save; приватные объекты не кэшируются на CDN
func (s *CloudflareR2Storage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	cacheControl := r2CachePublic
	if s.private[BucketOf(key)] {
		cacheControl = r2CacheShort
	}

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         reader,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("r2 put %s: %w", key, err)
	}
	return nil
}

func (s *CloudflareR2Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, r2Error("get", key, err)
	}
	return out.Body, nil
}

// Delete идемпотентен: S3 API не сообщает об отсутствии ключа
func (s *CloudflareR2Storage) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return r2Error("delete", key, err)
	}
	return nil
}

func (s *CloudflareR2Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.head(ctx, key)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *CloudflareR2Storage) GetURL(ctx context.Context, key string) (string, error) {
	if s.private[BucketOf(key)] {
		return "", fmt.Errorf("r2: %s is private, use a signed url", key)
	}
	return s.publicURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

func (s *CloudflareR2Storage) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := s.api.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("r2 presign %s: %w", key, err)
	}
	return signed, nil
}

func (s *CloudflareR2Storage) GetSize(ctx context.Context, key string) (int64, error) {
	out, err := s.head(ctx, key)
	if err != nil {
		return 0, err
	}
	return aws.Int64Value(out.ContentLength), nil
}

func (s *CloudflareR2Storage) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	out, err := s.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, r2Error("head", key, err)
	}
	return out, nil
}

// r2Error приводит отсутствие ключа к fs.ErrNotExist, как у локального хранилища
func r2Error(op, key string, err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return fmt.Errorf("r2 %s %s: %w", op, key, fs.ErrNotExist)
		}
	}
	return fmt.Errorf("r2 %s %s: %w", op, key, err)
}
