package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"

	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/imageprocessor"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EntityProfile = "profile"

	UsageAvatar          = "avatar"
	UsageAvatarThumbnail = "avatar_thumbnail"
	UsageVerificationDoc = "verification_document"
)

type ProfileService interface {
	GetMyProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	// GetPublicProfile скрывает налоговые и контактные данные
	GetPublicProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.PublicProfileResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)

	UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.AvatarResponse, error)
	DeleteAvatar(ctx context.Context, db *gorm.DB, userID string) error

	UploadVerificationDocument(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.VerificationDocumentResponse, error)
	GetVerificationDocumentURL(ctx context.Context, db *gorm.DB, requesterID string, isAdmin bool, userID string) (*dto.VerificationDocumentResponse, error)

	// Администрирование верификации
	ListPendingVerifications(ctx context.Context, db *gorm.DB, page, pageSize int) (*dto.PageResponse[*dto.ProfileResponse], error)
	ReviewVerification(ctx context.Context, db *gorm.DB, adminID, userID string, req *dto.ReviewVerificationRequest) (*dto.ProfileResponse, error)
}

type profileService struct {
	profileRepo         repositories.ProfileRepository
	uploadService       UploadService
	imageProc           *imageprocessor.Processor
	notificationService NotificationService
	cfg                 *config.Config
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	uploadService UploadService,
	imageProc *imageprocessor.Processor,
	notificationService NotificationService,
	cfg *config.Config,
) ProfileService {
	return &profileService{
		profileRepo:         profileRepo,
		uploadService:       uploadService,
		imageProc:           imageProc,
		notificationService: notificationService,
		cfg:                 cfg,
	}
}

func (s *profileService) GetMyProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) GetPublicProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.PublicProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return dto.NewPublicProfileResponse(profile), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if req.TaxID != nil && *req.TaxID != "" && !isTaxID(*req.TaxID) {
		return nil, apperrors.FieldError("tax_id", "Must be 10 or 11 digits")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindByUserID(tx, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	applyString(&profile.FullName, req.FullName)
	applyString(&profile.Phone, req.Phone)
	applyString(&profile.ContactEmail, req.ContactEmail)
	applyString(&profile.City, req.City)
	applyString(&profile.Country, req.Country)
	applyString(&profile.Bio, req.Bio)
	applyString(&profile.CompanyName, req.CompanyName)
	applyString(&profile.TaxID, req.TaxID)
	applyString(&profile.TaxOffice, req.TaxOffice)
	applyString(&profile.CompanyAddress, req.CompanyAddress)
	applyString(&profile.Website, req.Website)

	if err := s.profileRepo.Update(tx, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.AvatarResponse, error) {
	rules := s.cfg.AvatarRules()

	// До любой записи в хранилище
	validated, err := s.uploadService.Validate(rules, file)
	if err != nil {
		return nil, err
	}

	avatar, err := s.imageProc.ProcessImage(bytes.NewReader(validated.Data), imageprocessor.SizeAvatar, "")
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}
	thumb, err := s.imageProc.Thumbnail(validated.Data)
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindByUserID(tx, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	oldPaths := []string{profile.AvatarPath, profile.ThumbnailPath}

	name := uuid.NewString()
	avatarUpload, err := s.uploadService.Store(ctx, tx, &StoreRequest{
		UserID:     userID,
		Rules:      rules,
		Dir:        userID,
		Name:       name,
		EntityType: EntityProfile,
		EntityID:   profile.ID,
		Usage:      UsageAvatar,
		File:       processedFile(validated.FileName, avatar),
	})
	if err != nil {
		return nil, err
	}
	thumbUpload, err := s.uploadService.Store(ctx, tx, &StoreRequest{
		UserID:     userID,
		Rules:      rules,
		Dir:        userID,
		Name:       name + "_thumb",
		EntityType: EntityProfile,
		EntityID:   profile.ID,
		Usage:      UsageAvatarThumbnail,
		File:       processedFile(validated.FileName, thumb),
	})
	if err != nil {
		s.uploadService.DeleteObjects(ctx, avatarUpload.Path)
		return nil, err
	}
	newPaths := []string{avatarUpload.Path, thumbUpload.Path}

	avatarURL, err := s.uploadService.URL(ctx, avatarUpload)
	if err != nil {
		s.uploadService.DeleteObjects(ctx, newPaths...)
		return nil, apperrors.InternalError(err)
	}
	thumbURL, err := s.uploadService.URL(ctx, thumbUpload)
	if err != nil {
		s.uploadService.DeleteObjects(ctx, newPaths...)
		return nil, apperrors.InternalError(err)
	}

	profile.AvatarPath = avatarUpload.Path
	profile.AvatarURL = avatarURL
	profile.ThumbnailPath = thumbUpload.Path
	profile.ThumbnailURL = thumbURL

	if err := s.profileRepo.Update(tx, profile); err != nil {
		s.uploadService.DeleteObjects(ctx, newPaths...)
		return nil, apperrors.InternalError(err)
	}
	if err := s.uploadService.DeleteRecords(tx, oldPaths...); err != nil {
		s.uploadService.DeleteObjects(ctx, newPaths...)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		s.uploadService.DeleteObjects(ctx, newPaths...)
		return nil, apperrors.InternalError(err)
	}

	// Старый аватар удаляется только после фиксации нового
	s.uploadService.DeleteObjects(ctx, oldPaths...)

	logger.CtxInfo(ctx, "Avatar updated", "user_id", userID, "path", avatarUpload.Path)
	return &dto.AvatarResponse{AvatarURL: avatarURL, ThumbnailURL: thumbURL}, nil
}

func (s *profileService) DeleteAvatar(ctx context.Context, db *gorm.DB, userID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindByUserID(tx, userID)
	if err != nil {
		return handleProfileError(err)
	}
	if profile.AvatarPath == "" {
		return nil
	}
	oldPaths := []string{profile.AvatarPath, profile.ThumbnailPath}

	profile.AvatarPath = ""
	profile.AvatarURL = ""
	profile.ThumbnailPath = ""
	profile.ThumbnailURL = ""
	if err := s.profileRepo.Update(tx, profile); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.uploadService.DeleteRecords(tx, oldPaths...); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	s.uploadService.DeleteObjects(ctx, oldPaths...)
	return nil
}

func (s *profileService) UploadVerificationDocument(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.VerificationDocumentResponse, error) {
	rules := s.cfg.DocumentRules()

	validated, err := s.uploadService.Validate(rules, file)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindByUserID(tx, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if profile.VerificationStatus == models.VerificationVerified {
		return nil, apperrors.ErrInvalidStatus("profile", "Profile is already verified")
	}
	oldPath := profile.VerificationDocPath

	upload, err := s.uploadService.Store(ctx, tx, &StoreRequest{
		UserID:     userID,
		Rules:      rules,
		Dir:        userID,
		EntityType: EntityProfile,
		EntityID:   profile.ID,
		Usage:      UsageVerificationDoc,
		File:       validated,
	})
	if err != nil {
		return nil, err
	}

	profile.VerificationDocPath = upload.Path
	profile.VerificationDocMime = upload.MimeType
	profile.VerificationStatus = models.VerificationPending
	profile.VerificationNote = ""
	if err := s.profileRepo.Update(tx, profile); err != nil {
		s.uploadService.DeleteObjects(ctx, upload.Path)
		return nil, apperrors.InternalError(err)
	}
	if err := s.uploadService.DeleteRecords(tx, oldPath); err != nil {
		s.uploadService.DeleteObjects(ctx, upload.Path)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		s.uploadService.DeleteObjects(ctx, upload.Path)
		return nil, apperrors.InternalError(err)
	}
	s.uploadService.DeleteObjects(ctx, oldPath)

	return &dto.VerificationDocumentResponse{Status: profile.VerificationStatus}, nil
}

func (s *profileService) GetVerificationDocumentURL(ctx context.Context, db *gorm.DB, requesterID string, isAdmin bool, userID string) (*dto.VerificationDocumentResponse, error) {
	if requesterID != userID && !isAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if profile.VerificationDocPath == "" {
		return nil, apperrors.ErrNotFound(errors.New("verification document not uploaded"))
	}

	doc := &models.Upload{Path: profile.VerificationDocPath, IsPublic: false}
	url, err := s.uploadService.URL(ctx, doc)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	expires := nowUTC().Add(s.cfg.SignedURLTTL())

	return &dto.VerificationDocumentResponse{
		Status:    profile.VerificationStatus,
		URL:       url,
		ExpiresAt: &expires,
	}, nil
}

func (s *profileService) ListPendingVerifications(ctx context.Context, db *gorm.DB, page, pageSize int) (*dto.PageResponse[*dto.ProfileResponse], error) {
	p := newPage(page, pageSize)
	profiles, total, err := s.profileRepo.ListByVerificationStatus(db, models.VerificationPending, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, dto.NewProfileResponse(&profiles[i]))
	}
	return dto.NewPageResponse(items, total, p.Page, p.PageSize), nil
}

func (s *profileService) ReviewVerification(ctx context.Context, db *gorm.DB, adminID, userID string, req *dto.ReviewVerificationRequest) (*dto.ProfileResponse, error) {
	if req.Approve == nil {
		return nil, apperrors.FieldError("approve", "This field is required")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindByUserID(tx, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if profile.VerificationStatus != models.VerificationPending {
		return nil, apperrors.ErrInvalidStatus("profile", "Verification is not pending review")
	}

	status := models.VerificationRejected
	title := "Verification rejected"
	if *req.Approve {
		status = models.VerificationVerified
		title = "Company verified"
	}
	profile.VerificationStatus = status
	profile.VerificationNote = req.Note

	if err := s.profileRepo.Update(tx, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	notifySafe(ctx, s.notificationService, tx, userID, models.NotificationTypeVerification, title, req.Note,
		map[string]interface{}{"status": status, "reviewed_by": adminID})

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Verification reviewed", "user_id", userID, "admin_id", adminID, "status", status)
	return dto.NewProfileResponse(profile), nil
}

func processedFile(original string, r *imageprocessor.Result) *ValidatedFile {
	return &ValidatedFile{
		FileName: original,
		MimeType: r.ContentType,
		Ext:      r.Ext,
		Size:     int64(len(r.Data)),
		Data:     r.Data,
	}
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func isTaxID(v string) bool {
	if len(v) < 10 || len(v) > 11 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func handleProfileError(err error) error {
	if isNotFound(err, repositories.ErrProfileNotFound, repositories.ErrUserNotFound) {
		return apperrors.ErrProfileNotFound.WithError(err)
	}
	return apperrors.InternalError(err)
}
