package models

import "time"

// Conversation - диалог двух пользователей (опционально по объявлению)
type Conversation struct {
	BaseModel
	ParticipantA  string     `gorm:"type:varchar(36);not null;index" json:"participant_a"`
	ParticipantB  string     `gorm:"type:varchar(36);not null;index" json:"participant_b"`
	ListingID     *string    `gorm:"type:varchar(36);index" json:"listing_id,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other возвращает второго участника
func (c *Conversation) Other(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

type Message struct {
	BaseModel
	ConversationID string `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	SenderID       string `gorm:"type:varchar(36);not null;index" json:"sender_id"`
	Body           string `gorm:"type:text" json:"body"`

	Attachments []MessageAttachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
}

// MessageAttachment - файл, прикрепленный к сообщению (бакет message-attachments)
type MessageAttachment struct {
	BaseModel
	MessageID  string `gorm:"type:varchar(36);not null;index" json:"message_id"`
	UploaderID string `gorm:"type:varchar(36);not null;index" json:"uploader_id"`
	FileName   string `gorm:"size:255;not null" json:"file_name"`
	FileType   string `gorm:"size:20" json:"file_type"` // image, document, archive, file
	MimeType   string `gorm:"size:127" json:"mime_type"`
	Size       int64  `json:"size"`
	Path       string `gorm:"not null" json:"-"`
	URL        string `json:"url"`
}
