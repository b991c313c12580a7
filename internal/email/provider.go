package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет готовое сообщение
	Send(email *Email) error

	// SendWithTemplate рендерит шаблон в HTMLBody и отправляет
	SendWithTemplate(templateName string, data TemplateData, email *Email) error

	// SendTemplate - короткая форма SendWithTemplate
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	Validate() error
	Close() error
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
	LoadTemplates(dirPath string) error
	Has(name string) bool
}
