package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPProvider отправляет письма через gomail
type SMTPProvider struct {
	config   *SMTPConfig
	renderer TemplateRenderer
	dialer   *gomail.Dialer
}

func NewSMTPProvider(config *SMTPConfig, renderer TemplateRenderer) *SMTPProvider {
	if renderer == nil {
		renderer = NewTemplateManager()
	}

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	// 465 - неявный TLS, остальные порты через STARTTLS
	d.SSL = config.UseTLS && config.Port == 465
	d.TLSConfig = &tls.Config{ServerName: config.Host}

	return &SMTPProvider{
		config:   config,
		renderer: renderer,
		dialer:   d,
	}
}

func (p *SMTPProvider) Send(email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := email.Validate(); err != nil {
		return err
	}

	return p.dialer.DialAndSend(p.buildMessage(email))
}

func (p *SMTPProvider) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	body, err := p.renderer.Render(templateName, data)
	if err != nil {
		return err
	}
	email.HTMLBody = body
	return p.Send(email)
}

func (p *SMTPProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return p.SendWithTemplate(templateName, data, &Email{To: to, Subject: subject})
}

func (p *SMTPProvider) Validate() error {
	if !p.config.IsConfigured() {
		return fmt.Errorf("smtp provider is not configured (host=%q port=%d from=%q)",
			p.config.Host, p.config.Port, p.config.FromEmail)
	}
	return nil
}

// Close - gomail открывает соединение на каждую отправку
func (p *SMTPProvider) Close() error {
	return nil
}

func (p *SMTPProvider) buildMessage(email *Email) *gomail.Message {
	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = p.config.FromHeader()
	}
	m.SetHeader("From", from)
	m.SetHeader("To", email.To...)
	if len(email.Cc) > 0 {
		m.SetHeader("Cc", email.Cc...)
	}
	if len(email.Bcc) > 0 {
		m.SetHeader("Bcc", email.Bcc...)
	}
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "" && email.Body != "":
		m.SetBody("text/plain", email.Body)
		m.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		m.SetBody("text/html", email.HTMLBody)
	default:
		m.SetBody("text/plain", email.Body)
	}

	for _, a := range email.Attachments {
		content := a.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(content))
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		m.Attach(a.Name, settings...)
	}

	return m
}
