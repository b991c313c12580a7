package dto

import (
	"time"

	"cargomarket_backend/internal/models"
)

type StartConversationRequest struct {
	WithUserID string  `json:"with_user_id" validate:"required"`
	ListingID  *string `json:"listing_id" validate:"omitempty"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

type ConversationResponse struct {
	ID            string     `json:"id"`
	OtherUserID   string     `json:"other_user_id"`
	ListingID     *string    `json:"listing_id,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewConversationResponse(c *models.Conversation, viewerID string) *ConversationResponse {
	return &ConversationResponse{
		ID:            c.ID,
		OtherUserID:   c.Other(viewerID),
		ListingID:     c.ListingID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}

type AttachmentResponse struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	UploaderID string    `json:"uploader_id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewAttachmentResponse(a *models.MessageAttachment) *AttachmentResponse {
	return &AttachmentResponse{
		ID:         a.ID,
		MessageID:  a.MessageID,
		UploaderID: a.UploaderID,
		FileName:   a.FileName,
		FileType:   a.FileType,
		MimeType:   a.MimeType,
		Size:       a.Size,
		URL:        a.URL,
		CreatedAt:  a.CreatedAt,
	}
}

type MessageResponse struct {
	ID             string                `json:"id"`
	ConversationID string                `json:"conversation_id"`
	SenderID       string                `json:"sender_id"`
	Body           string                `json:"body"`
	Attachments    []*AttachmentResponse `json:"attachments"`
	CreatedAt      time.Time             `json:"created_at"`
}

func NewMessageResponse(m *models.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		Attachments:    make([]*AttachmentResponse, 0, len(m.Attachments)),
		CreatedAt:      m.CreatedAt,
	}
	for i := range m.Attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(&m.Attachments[i]))
	}
	return resp
}
