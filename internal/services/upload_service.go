package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/storage"
	"cargomarket_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidatedFile - файл, прошедший проверку размера и типа; содержимое уже в памяти
type ValidatedFile struct {
	FileName string
	MimeType string
	Ext      string
	Size     int64
	Data     []byte
}

// StoreRequest - куда и с какой привязкой сохранить файл
type StoreRequest struct {
	UserID     string
	Rules      config.BucketRules
	Dir        string // подкаталог внутри бакета
	Name       string // имя объекта без расширения; пусто - uuid
	EntityType string
	EntityID   string
	Usage      string
	File       *ValidatedFile
}

// UploadService - общий слой проверки и сохранения файлов для всех модулей
type UploadService interface {
	// Validate не обращается к хранилищу: размер и тип проверяются до любой записи
	Validate(rules config.BucketRules, header *multipart.FileHeader) (*ValidatedFile, error)
	// Store пишет объект в хранилище и создает запись Upload в db
	Store(ctx context.Context, db *gorm.DB, req *StoreRequest) (*models.Upload, error)
	// URL - публичная ссылка или подписанная для приватного бакета
	URL(ctx context.Context, upload *models.Upload) (string, error)
	DeleteRecords(db *gorm.DB, paths ...string) error
	// DeleteObjects удаляет объекты; ошибки логируются
	DeleteObjects(ctx context.Context, paths ...string)
}

type uploadService struct {
	uploadRepo repositories.UploadRepository
	storage    storage.Storage
	cfg        *config.Config
}

func NewUploadService(uploadRepo repositories.UploadRepository, storage storage.Storage, cfg *config.Config) UploadService {
	return &uploadService{
		uploadRepo: uploadRepo,
		storage:    storage,
		cfg:        cfg,
	}
}

func (s *uploadService) Validate(rules config.BucketRules, header *multipart.FileHeader) (*ValidatedFile, error) {
	if header == nil {
		return nil, apperrors.FieldError("file", "This field is required")
	}
	if header.Size == 0 {
		return nil, apperrors.ErrEmptyFile
	}
	if rules.MaxSize > 0 && header.Size > rules.MaxSize {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]interface{}{
			"max_size": rules.MaxSize,
			"size":     header.Size,
		})
	}

	// Заголовок клиента проверяем, только если он конкретный
	declared := declaredMimeType(header)
	if declared != "" && !isAllowedType(declared, rules.AllowedTypes) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"mime_type": declared,
			"allowed":   rules.AllowedTypes,
		})
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("open multipart file: %w", err))
	}
	defer f.Close()

	limit := header.Size
	if rules.MaxSize > 0 {
		limit = rules.MaxSize
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("read multipart file: %w", err))
	}
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyFile
	}
	if rules.MaxSize > 0 && int64(len(data)) > rules.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	sniffed, ok := matchAllowed(detected, rules.AllowedTypes)
	if !ok {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"mime_type": detected.String(),
			"allowed":   rules.AllowedTypes,
		})
	}

	return &ValidatedFile{
		FileName: sanitizeFileName(header.Filename),
		MimeType: sniffed,
		Ext:      detected.Extension(),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

func (s *uploadService) Store(ctx context.Context, db *gorm.DB, req *StoreRequest) (*models.Upload, error) {
	name := req.Name
	if name == "" {
		name = uuid.NewString()
	}
	objectPath := storage.ObjectPath(req.Rules.Bucket, req.Dir, name+req.File.Ext)

	if err := s.storage.Save(ctx, objectPath, bytes.NewReader(req.File.Data), req.File.MimeType); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("save %s: %w", objectPath, err))
	}

	upload := &models.Upload{
		UserID:       req.UserID,
		Bucket:       req.Rules.Bucket,
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		Usage:        req.Usage,
		Path:         objectPath,
		OriginalName: req.File.FileName,
		MimeType:     req.File.MimeType,
		Size:         req.File.Size,
		IsPublic:     req.Rules.IsPublic,
	}
	if err := s.uploadRepo.Create(db, upload); err != nil {
		s.DeleteObjects(ctx, objectPath)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "File stored", "path", objectPath, "size", upload.Size, "mime", upload.MimeType)
	return upload, nil
}

func (s *uploadService) URL(ctx context.Context, upload *models.Upload) (string, error) {
	if upload.IsPublic {
		return s.storage.GetURL(ctx, upload.Path)
	}
	return s.storage.GetSignedURL(ctx, upload.Path, s.cfg.SignedURLTTL())
}

func (s *uploadService) DeleteRecords(db *gorm.DB, paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.uploadRepo.DeleteByPath(db, p); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return nil
}

func (s *uploadService) DeleteObjects(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.storage.Delete(ctx, p); err != nil {
			logger.CtxWithError(ctx, "Failed to delete storage object", err, "path", p)
		}
	}
}

func declaredMimeType(header *multipart.FileHeader) string {
	raw := header.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return ""
	}
	if mt == "application/octet-stream" {
		return ""
	}
	return strings.ToLower(mt)
}

func isAllowedType(mt string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, mt) {
			return true
		}
	}
	return false
}

// matchAllowed поднимается по иерархии mimetype: docx определяется и как zip
func matchAllowed(detected *mimetype.MIME, allowed []string) (string, bool) {
	for mt := detected; mt != nil; mt = mt.Parent() {
		for _, a := range allowed {
			if mt.Is(a) {
				return a, true
			}
		}
	}
	return "", false
}

const (
	maxFileNameLen = 255
	maxFileExtLen  = 16 // длиннее - это уже не расширение, а часть имени
)

// sanitizeFileName оставляет только базовое имя и ограничивает длину в байтах,
// не разрезая многобайтовые символы
func sanitizeFileName(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	if len(name) <= maxFileNameLen {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > maxFileExtLen {
		ext = ""
	}
	base := truncateUTF8(strings.TrimSuffix(name, ext), maxFileNameLen-len(ext))
	return base + ext
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// classifyFileType - грубая категория вложения для интерфейса
func classifyFileType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case mimeType == "application/zip":
		return "archive"
	case mimeType == "application/pdf", strings.Contains(mimeType, "word"),
		strings.Contains(mimeType, "excel"), strings.Contains(mimeType, "spreadsheet"),
		mimeType == "text/plain":
		return "document"
	default:
		return "file"
	}
}

func isNotFound(err error, sentinels ...error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
