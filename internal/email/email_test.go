package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateManager_Builtins(t *testing.T) {
	tm := NewTemplateManager()

	for _, name := range []string{TemplateOfferReceived, TemplateOfferAccepted, TemplateGeneric} {
		assert.True(t, tm.Has(name), name)
	}

	html, err := tm.Render(TemplateOfferAccepted, TemplateData{
		"ListingTitle": "Almaty -> Istanbul",
		"Amount":       "1200",
		"Currency":     "USD",
		"Link":         "https://example.test/offers/1",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Almaty -&gt; Istanbul")
	assert.Contains(t, html, "1200 USD")
}

func TestTemplateManager_Unknown(t *testing.T) {
	_, err := NewTemplateManager().Render("missing", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestSMTPProvider_ValidateConfig(t *testing.T) {
	p := NewSMTPProvider(&SMTPConfig{}, nil)
	assert.Error(t, p.Validate())

	p = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.test", Port: 587, FromEmail: "no-reply@example.test"}, nil)
	assert.NoError(t, p.Validate())
}

func TestSMTPProvider_BuildMessage(t *testing.T) {
	p := NewSMTPProvider(&SMTPConfig{Host: "h", Port: 25, FromEmail: "a@b.c", FromName: "Cargo"}, nil)
	m := p.buildMessage(&Email{To: []string{"x@y.z"}, Subject: "Hi", Body: "plain"})

	assert.Equal(t, []string{"Cargo <a@b.c>"}, m.GetHeader("From"))
	assert.Equal(t, []string{"x@y.z"}, m.GetHeader("To"))
}

func TestEmail_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Email{Subject: "s"}).Validate(), ErrNoRecipients)
	assert.ErrorIs(t, (&Email{To: []string{"a@b.c"}}).Validate(), ErrEmptySubject)
}
