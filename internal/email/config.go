package email

import (
	"fmt"
	"time"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:    "localhost",
		Port:    587,
		UseTLS:  true,
		Timeout: 30 * time.Second,
	}
}

// IsConfigured - хватает ли данных для реальной отправки
func (c *SMTPConfig) IsConfigured() bool {
	return c != nil && c.Host != "" && c.Port > 0 && c.FromEmail != ""
}

// FromHeader - "Имя <адрес>" или просто адрес
func (c *SMTPConfig) FromHeader() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}
