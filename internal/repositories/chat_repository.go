package repositories

import (
	"errors"
	"time"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrAttachmentNotFound   = errors.New("attachment not found")
)

type ChatRepository interface {
	// Conversations
	CreateConversation(db *gorm.DB, conv *models.Conversation) error
	FindConversationByID(db *gorm.DB, id string) (*models.Conversation, error)
	FindConversationBetween(db *gorm.DB, userA, userB string, listingID *string) (*models.Conversation, error)
	ListUserConversations(db *gorm.DB, userID string, page models.Page) ([]models.Conversation, int64, error)
	TouchConversation(db *gorm.DB, id string, at time.Time) error

	// Messages
	CreateMessage(db *gorm.DB, msg *models.Message) error
	FindMessageByID(db *gorm.DB, id string) (*models.Message, error)
	ListMessages(db *gorm.DB, conversationID string, page models.Page) ([]models.Message, int64, error)

	// Attachments
	CreateAttachment(db *gorm.DB, att *models.MessageAttachment) error
	FindAttachmentByID(db *gorm.DB, id string) (*models.MessageAttachment, error)
	ListAttachments(db *gorm.DB, messageID string) ([]models.MessageAttachment, error)
	DeleteAttachment(db *gorm.DB, id string) error
}

type chatRepository struct{}

func NewChatRepository() ChatRepository {
	return &chatRepository{}
}

func (r *chatRepository) CreateConversation(db *gorm.DB, conv *models.Conversation) error {
	return db.Create(conv).Error
}

func (r *chatRepository) FindConversationByID(db *gorm.DB, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := db.First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// FindConversationBetween ищет диалог пары в любом порядке участников
func (r *chatRepository) FindConversationBetween(db *gorm.DB, userA, userB string, listingID *string) (*models.Conversation, error) {
	var conv models.Conversation

	query := db.Where("((participant_a = ? AND participant_b = ?) OR (participant_a = ? AND participant_b = ?))",
		userA, userB, userB, userA)
	if listingID != nil {
		query = query.Where("listing_id = ?", *listingID)
	} else {
		query = query.Where("listing_id IS NULL")
	}

	if err := query.First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepository) ListUserConversations(db *gorm.DB, userID string, page models.Page) ([]models.Conversation, int64, error) {
	var (
		convs []models.Conversation
		total int64
	)

	query := db.Model(&models.Conversation{}).Where("participant_a = ? OR participant_b = ?", userID, userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("last_message_at IS NULL").
		Order("last_message_at DESC").
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&convs).Error
	return convs, total, err
}

func (r *chatRepository) TouchConversation(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Conversation{}).Where("id = ?", id).Update("last_message_at", at).Error
}

func (r *chatRepository) CreateMessage(db *gorm.DB, msg *models.Message) error {
	return db.Create(msg).Error
}

func (r *chatRepository) FindMessageByID(db *gorm.DB, id string) (*models.Message, error) {
	var msg models.Message
	if err := db.Preload("Attachments").First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepository) ListMessages(db *gorm.DB, conversationID string, page models.Page) ([]models.Message, int64, error) {
	var (
		msgs  []models.Message
		total int64
	)

	query := db.Model(&models.Message{}).Where("conversation_id = ?", conversationID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Attachments").
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&msgs).Error
	return msgs, total, err
}

func (r *chatRepository) CreateAttachment(db *gorm.DB, att *models.MessageAttachment) error {
	return db.Create(att).Error
}

func (r *chatRepository) FindAttachmentByID(db *gorm.DB, id string) (*models.MessageAttachment, error) {
	var att models.MessageAttachment
	if err := db.First(&att, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (r *chatRepository) ListAttachments(db *gorm.DB, messageID string) ([]models.MessageAttachment, error) {
	var atts []models.MessageAttachment
	err := db.Where("message_id = ?", messageID).Order("created_at ASC").Find(&atts).Error
	return atts, err
}

func (r *chatRepository) DeleteAttachment(db *gorm.DB, id string) error {
	result := db.Delete(&models.MessageAttachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
