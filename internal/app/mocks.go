package app

import (
	"sync"

	"cargomarket_backend/internal/email"
	"cargomarket_backend/internal/logger"
)

// SentEmail - запись об отправленном письме
type SentEmail struct {
	To       []string
	Subject  string
	Template string
	Data     email.TemplateData
}

// MockEmailProvider используется для тестов и локальной разработки,
// когда SMTP не настроен: письма только логируются и запоминаются.
type MockEmailProvider struct {
	mu   sync.Mutex
	sent []SentEmail
	Err  error
}

func (m *MockEmailProvider) record(e SentEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, e)
	logger.Debug("Mock email sent", "to", e.To, "subject", e.Subject, "template", e.Template)
	return nil
}

func (m *MockEmailProvider) Send(msg *email.Email) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return m.record(SentEmail{To: msg.To, Subject: msg.Subject})
}

func (m *MockEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, msg *email.Email) error {
	return m.record(SentEmail{To: msg.To, Subject: msg.Subject, Template: templateName, Data: data})
}

func (m *MockEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	return m.record(SentEmail{To: to, Subject: subject, Template: templateName, Data: data})
}

func (m *MockEmailProvider) Validate() error { return nil }
func (m *MockEmailProvider) Close() error    { return nil }

// Sent - копия отправленных писем
func (m *MockEmailProvider) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
