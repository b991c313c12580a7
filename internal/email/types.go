package email

import "errors"

const (
	TemplateOfferReceived = "offer_received"
	TemplateOfferAccepted = "offer_accepted"
	TemplateGeneric       = "generic"
)

var (
	ErrNoRecipients     = errors.New("no recipients specified")
	ErrEmptySubject     = errors.New("subject is empty")
	ErrTemplateNotFound = errors.New("template not found")
)

type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

type Email struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

// Validate проверяет обязательные поля письма
func (e *Email) Validate() error {
	if len(e.To) == 0 {
		return ErrNoRecipients
	}
	if e.Subject == "" {
		return ErrEmptySubject
	}
	return nil
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}
