package services

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"path"

	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/storage"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// FileObject - открытый объект хранилища; Reader закрывает вызывающий
type FileObject struct {
	Reader      io.ReadCloser
	ContentType string
	Name        string
	Size        int64
}

// FileService раздает объекты локального хранилища с проверкой доступа к приватным бакетам
type FileService interface {
	Open(ctx context.Context, db *gorm.DB, requesterID string, isAdmin bool, rawPath string) (*FileObject, error)
}

var knownBuckets = map[string]bool{
	config.BucketAvatars:               true,
	config.BucketMessageAttachments:    true,
	config.BucketVerificationDocuments: false,
}

type fileService struct {
	uploadRepo repositories.UploadRepository
	storage    storage.Storage
}

func NewFileService(uploadRepo repositories.UploadRepository, storage storage.Storage) FileService {
	return &fileService{
		uploadRepo: uploadRepo,
		storage:    storage,
	}
}

func (s *fileService) Open(ctx context.Context, db *gorm.DB, requesterID string, isAdmin bool, rawPath string) (*FileObject, error) {
	objectPath, err := storage.CleanPath(rawPath)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Invalid file path")
	}

	public, known := knownBuckets[storage.BucketOf(objectPath)]
	if !known {
		return nil, apperrors.ErrNotFound(fs.ErrNotExist)
	}

	upload, err := s.uploadRepo.FindByPath(db, objectPath)
	if err != nil && !errors.Is(err, repositories.ErrUploadNotFound) {
		return nil, apperrors.InternalError(err)
	}

	if !public {
		if upload == nil {
			return nil, apperrors.ErrNotFound(repositories.ErrUploadNotFound)
		}
		if err := authorizePrivate(upload, requesterID, isAdmin); err != nil {
			return nil, err
		}
	}

	reader, err := s.storage.Get(ctx, objectPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	obj := &FileObject{
		Reader:      reader,
		Name:        path.Base(objectPath),
		ContentType: mime.TypeByExtension(path.Ext(objectPath)),
	}
	if upload != nil {
		obj.ContentType = upload.MimeType
		obj.Size = upload.Size
		if upload.OriginalName != "" {
			obj.Name = upload.OriginalName
		}
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	return obj, nil
}

// authorizePrivate - владелец файла или администратор
func authorizePrivate(upload *models.Upload, requesterID string, isAdmin bool) error {
	if requesterID == "" {
		return apperrors.NewUnauthorizedError("Authentication required")
	}
	if isAdmin || upload.UserID == requesterID {
		return nil
	}
	return apperrors.ErrInsufficientPermissions
}
