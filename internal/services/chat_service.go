package services

import (
	"context"
	"mime/multipart"

	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	EntityMessage   = "message"
	UsageAttachment = "attachment"
)

type ChatService interface {
	// StartConversation возвращает существующий диалог пары по тому же объявлению
	StartConversation(ctx context.Context, db *gorm.DB, userID string, req *dto.StartConversationRequest) (*dto.ConversationResponse, error)
	ListConversations(ctx context.Context, db *gorm.DB, userID string, page, pageSize int) (*dto.PageResponse[*dto.ConversationResponse], error)
	ListMessages(ctx context.Context, db *gorm.DB, userID, conversationID string, page, pageSize int) (*dto.PageResponse[*dto.MessageResponse], error)
	SendMessage(ctx context.Context, db *gorm.DB, userID, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)

	// Вложения
	UploadAttachment(ctx context.Context, db *gorm.DB, userID, messageID string, file *multipart.FileHeader) (*dto.AttachmentResponse, error)
	ListAttachments(ctx context.Context, db *gorm.DB, userID, messageID string) ([]*dto.AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, db *gorm.DB, userID, attachmentID string) error
}

type chatService struct {
	chatRepo            repositories.ChatRepository
	userRepo            repositories.UserRepository
	listingRepo         repositories.ListingRepository
	uploadService       UploadService
	notificationService NotificationService
	realtime            RealtimeNotifier
	cfg                 *config.Config
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	userRepo repositories.UserRepository,
	listingRepo repositories.ListingRepository,
	uploadService UploadService,
	notificationService NotificationService,
	realtime RealtimeNotifier,
	cfg *config.Config,
) ChatService {
	if realtime == nil {
		realtime = noopNotifier{}
	}
	return &chatService{
		chatRepo:            chatRepo,
		userRepo:            userRepo,
		listingRepo:         listingRepo,
		uploadService:       uploadService,
		notificationService: notificationService,
		realtime:            realtime,
		cfg:                 cfg,
	}
}

func (s *chatService) StartConversation(ctx context.Context, db *gorm.DB, userID string, req *dto.StartConversationRequest) (*dto.ConversationResponse, error) {
	if req.WithUserID == userID {
		return nil, apperrors.ErrCannotMessageSelf
	}
	if _, err := s.userRepo.FindByID(db, req.WithUserID); err != nil {
		return nil, handleChatError(err)
	}
	if req.ListingID != nil {
		listing, err := s.listingRepo.FindByID(db, *req.ListingID)
		if err != nil {
			return nil, handleChatError(err)
		}
		if !listing.IsVisibleTo(userID) {
			return nil, apperrors.ErrNotFound(repositories.ErrListingNotFound)
		}
	}

	existing, err := s.chatRepo.FindConversationBetween(db, userID, req.WithUserID, req.ListingID)
	if err == nil {
		return dto.NewConversationResponse(existing, userID), nil
	}
	if !isNotFound(err, repositories.ErrConversationNotFound) {
		return nil, apperrors.InternalError(err)
	}

	conv := &models.Conversation{
		ParticipantA: userID,
		ParticipantB: req.WithUserID,
		ListingID:    req.ListingID,
	}
	if err := s.chatRepo.CreateConversation(db, conv); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Conversation started", "conversation_id", conv.ID)
	return dto.NewConversationResponse(conv, userID), nil
}

func (s *chatService) ListConversations(ctx context.Context, db *gorm.DB, userID string, page, pageSize int) (*dto.PageResponse[*dto.ConversationResponse], error) {
	p := newPage(page, pageSize)
	convs, total, err := s.chatRepo.ListUserConversations(db, userID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		items = append(items, dto.NewConversationResponse(&convs[i], userID))
	}
	return dto.NewPageResponse(items, total, p.Page, p.PageSize), nil
}

func (s *chatService) ListMessages(ctx context.Context, db *gorm.DB, userID, conversationID string, page, pageSize int) (*dto.PageResponse[*dto.MessageResponse], error) {
	if _, err := s.participantConversation(db, userID, conversationID); err != nil {
		return nil, err
	}

	p := newPage(page, pageSize)
	msgs, total, err := s.chatRepo.ListMessages(db, conversationID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.NewMessageResponse(&msgs[i]))
	}
	return dto.NewPageResponse(items, total, p.Page, p.PageSize), nil
}

func (s *chatService) SendMessage(ctx context.Context, db *gorm.DB, userID, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	conv, err := s.participantConversation(tx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		Body:           req.Body,
	}
	if err := s.chatRepo.CreateMessage(tx, msg); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.chatRepo.TouchConversation(tx, conv.ID, msg.CreatedAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	recipient := conv.Other(userID)
	notifySafe(ctx, s.notificationService, tx, recipient, models.NotificationTypeNewMessage,
		"New message", preview(req.Body, 120),
		map[string]interface{}{"conversation_id": conv.ID, "message_id": msg.ID})

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewMessageResponse(msg)
	s.realtime.SendToUser(recipient, EventMessageNew, resp)
	return resp, nil
}

func (s *chatService) UploadAttachment(ctx context.Context, db *gorm.DB, userID, messageID string, file *multipart.FileHeader) (*dto.AttachmentResponse, error) {
	msg, err := s.chatRepo.FindMessageByID(db, messageID)
	if err != nil {
		return nil, handleChatError(err)
	}
	conv, err := s.participantConversation(db, userID, msg.ConversationID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, apperrors.NewForbiddenError("Only the sender can attach files to a message")
	}

	rules := s.cfg.AttachmentRules()
	validated, err := s.uploadService.Validate(rules, file)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	upload, err := s.uploadService.Store(ctx, tx, &StoreRequest{
		UserID:     userID,
		Rules:      rules,
		Dir:        conv.ID,
		EntityType: EntityMessage,
		EntityID:   msg.ID,
		Usage:      UsageAttachment,
		File:       validated,
	})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			s.uploadService.DeleteObjects(ctx, upload.Path)
		}
	}()

	url, err := s.uploadService.URL(ctx, upload)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	att := &models.MessageAttachment{
		MessageID:  msg.ID,
		UploaderID: userID,
		FileName:   validated.FileName,
		FileType:   classifyFileType(validated.MimeType),
		MimeType:   validated.MimeType,
		Size:       validated.Size,
		Path:       upload.Path,
		URL:        url,
	}
	if err := s.chatRepo.CreateAttachment(tx, att); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	committed = true

	resp := dto.NewAttachmentResponse(att)
	s.realtime.SendToUser(conv.Other(userID), EventAttachmentNew, resp)

	logger.CtxInfo(ctx, "Attachment uploaded", "attachment_id", att.ID, "message_id", msg.ID, "size", att.Size)
	return resp, nil
}

func (s *chatService) ListAttachments(ctx context.Context, db *gorm.DB, userID, messageID string) ([]*dto.AttachmentResponse, error) {
	msg, err := s.chatRepo.FindMessageByID(db, messageID)
	if err != nil {
		return nil, handleChatError(err)
	}
	if _, err := s.participantConversation(db, userID, msg.ConversationID); err != nil {
		return nil, err
	}

	atts, err := s.chatRepo.ListAttachments(db, msg.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := make([]*dto.AttachmentResponse, 0, len(atts))
	for i := range atts {
		resp = append(resp, dto.NewAttachmentResponse(&atts[i]))
	}
	return resp, nil
}

// DeleteAttachment - сначала объект в хранилище, затем строка
func (s *chatService) DeleteAttachment(ctx context.Context, db *gorm.DB, userID, attachmentID string) error {
	att, err := s.chatRepo.FindAttachmentByID(db, attachmentID)
	if err != nil {
		return handleChatError(err)
	}
	if att.UploaderID != userID {
		return apperrors.NewForbiddenError("Only the uploader can delete this attachment")
	}
	msg, err := s.chatRepo.FindMessageByID(db, att.MessageID)
	if err != nil {
		return handleChatError(err)
	}
	conv, err := s.chatRepo.FindConversationByID(db, msg.ConversationID)
	if err != nil {
		return handleChatError(err)
	}

	s.uploadService.DeleteObjects(ctx, att.Path)

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.chatRepo.DeleteAttachment(tx, att.ID); err != nil {
		return handleChatError(err)
	}
	if err := s.uploadService.DeleteRecords(tx, att.Path); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	s.realtime.SendToUser(conv.Other(userID), EventAttachmentDeleted, map[string]string{
		"id":         att.ID,
		"message_id": att.MessageID,
	})
	return nil
}

func (s *chatService) participantConversation(db *gorm.DB, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.chatRepo.FindConversationByID(db, conversationID)
	if err != nil {
		return nil, handleChatError(err)
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.ErrConversationAccessDenied
	}
	return conv, nil
}

func preview(body string, n int) string {
	runes := []rune(body)
	if len(runes) <= n {
		return body
	}
	return string(runes[:n]) + "..."
}

func handleChatError(err error) error {
	if isNotFound(err,
		repositories.ErrConversationNotFound,
		repositories.ErrMessageNotFound,
		repositories.ErrAttachmentNotFound,
		repositories.ErrUserNotFound,
		repositories.ErrListingNotFound,
	) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
