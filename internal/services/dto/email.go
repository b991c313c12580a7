package dto

// SendEmailRequest - тело функции send-email: шаблон или произвольный текст
type SendEmailRequest struct {
	To       []string               `json:"to" validate:"required,min=1,max=10,dive,email"`
	Subject  string                 `json:"subject" validate:"required,max=200"`
	Template string                 `json:"template" validate:"omitempty,oneof=offer_received offer_accepted generic"`
	Body     string                 `json:"body" validate:"required_without=Template,max=20000"`
	Data     map[string]interface{} `json:"data"`
}

type SendEmailResponse struct {
	Sent       bool     `json:"sent"`
	Recipients []string `json:"recipients"`
	Template   string   `json:"template,omitempty"`
}
