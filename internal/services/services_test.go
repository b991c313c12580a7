package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"cargomarket_backend/internal/cache"
	"cargomarket_backend/internal/email"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Freight Rates Climb in Q3":   "freight-rates-climb-in-q3",
		"  Gümrük kuralları değişiyor ": "gumruk-kurallari-degisiyor",
		"Straße & Schiene":            "strasse-schiene",
		"--- !!! ---":                 "",
		"Новости":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), "slugify(%q)", in)
	}

	long := slugify(strings.Repeat("a-", 400))
	assert.LessOrEqual(t, len(long), maxSlugLen)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestOfferActionTable(t *testing.T) {
	all := models.OfferStatuses
	allowed := map[string][]models.OfferStatus{
		actionAccept.name:        {models.OfferStatusPending},
		actionReject.name:        {models.OfferStatusPending, models.OfferStatusCountered},
		actionCounter.name:       {models.OfferStatusPending},
		actionAcceptCounter.name: {models.OfferStatusCountered},
		actionWithdraw.name:      {models.OfferStatusPending, models.OfferStatusCountered},
	}

	for _, action := range []offerAction{actionAccept, actionReject, actionCounter, actionAcceptCounter, actionWithdraw} {
		for _, status := range all {
			want := false
			for _, s := range allowed[action.name] {
				if s == status {
					want = true
				}
			}
			assert.Equal(t, want, action.allows(status), "%s from %s", action.name, status)
		}
	}

	// Финальные статусы никуда не ведут
	for _, action := range []offerAction{actionAccept, actionReject, actionCounter, actionAcceptCounter, actionWithdraw} {
		assert.False(t, action.allows(models.OfferStatusAccepted))
		assert.False(t, action.allows(models.OfferStatusRejected))
		assert.False(t, action.allows(models.OfferStatusWithdrawn))
	}
}

func TestCanTransitionListing(t *testing.T) {
	assert.True(t, canTransitionListing(models.ListingStatusActive, models.ListingStatusPaused))
	assert.True(t, canTransitionListing(models.ListingStatusPaused, models.ListingStatusActive))
	assert.True(t, canTransitionListing(models.ListingStatusPending, models.ListingStatusCompleted))
	assert.False(t, canTransitionListing(models.ListingStatusCompleted, models.ListingStatusActive))
	assert.False(t, canTransitionListing(models.ListingStatusActive, models.ListingStatusActive))
	assert.False(t, canTransitionListing(models.ListingStatusDeleted, models.ListingStatusActive))
}

type recordingProvider struct {
	sent      []*email.Email
	templates []string
	err       error
}

func (p *recordingProvider) Send(e *email.Email) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, e)
	return nil
}

func (p *recordingProvider) SendWithTemplate(name string, data email.TemplateData, e *email.Email) error {
	if p.err != nil {
		return p.err
	}
	p.templates = append(p.templates, name)
	p.sent = append(p.sent, e)
	return nil
}

func (p *recordingProvider) SendTemplate(to []string, subject, name string, data email.TemplateData) error {
	return p.SendWithTemplate(name, data, &email.Email{To: to, Subject: subject})
}

func (p *recordingProvider) Validate() error { return nil }
func (p *recordingProvider) Close() error    { return nil }

func httpCode(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "ожидалась AppError, получено %v", err)
	return appErr.HTTPCode
}

func TestEmailService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Plain body", func(t *testing.T) {
		p := &recordingProvider{}
		svc := NewEmailService(p, cache.NewMemoryCache(), 0, time.Hour)

		resp, err := svc.Send(ctx, "u1", &dto.SendEmailRequest{
			To:      []string{"ops@example.com"},
			Subject: "Пломба на прицепе",
			Body:    "Номер пломбы 448812",
		})
		require.NoError(t, err)
		assert.True(t, resp.Sent)
		require.Len(t, p.sent, 1)
		assert.Equal(t, "Номер пломбы 448812", p.sent[0].Body)
	})

	t.Run("Generic template gets body and title", func(t *testing.T) {
		p := &recordingProvider{}
		svc := NewEmailService(p, nil, 0, time.Hour)

		_, err := svc.Send(ctx, "u1", &dto.SendEmailRequest{
			To:       []string{"ops@example.com"},
			Subject:  "Статус рейса",
			Template: email.TemplateGeneric,
			Body:     "Груз на границе",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{email.TemplateGeneric}, p.templates)
	})

	t.Run("Neither body nor template", func(t *testing.T) {
		svc := NewEmailService(&recordingProvider{}, nil, 0, time.Hour)
		_, err := svc.Send(ctx, "u1", &dto.SendEmailRequest{To: []string{"a@example.com"}, Subject: "x", Body: "   "})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	})

	t.Run("Provider failure", func(t *testing.T) {
		svc := NewEmailService(&recordingProvider{err: errors.New("smtp down")}, nil, 0, time.Hour)
		_, err := svc.Send(ctx, "u1", &dto.SendEmailRequest{To: []string{"a@example.com"}, Subject: "x", Body: "y"})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, httpCode(t, err))
	})

	t.Run("Rate limit per user", func(t *testing.T) {
		p := &recordingProvider{}
		svc := NewEmailService(p, cache.NewMemoryCache(), 2, time.Hour)
		req := &dto.SendEmailRequest{To: []string{"a@example.com"}, Subject: "x", Body: "y"}

		for i := 0; i < 2; i++ {
			_, err := svc.Send(ctx, "u1", req)
			require.NoError(t, err)
		}
		_, err := svc.Send(ctx, "u1", req)
		require.Error(t, err)
		assert.Equal(t, http.StatusTooManyRequests, httpCode(t, err))

		// Счетчик у каждого пользователя свой
		_, err = svc.Send(ctx, "u2", req)
		assert.NoError(t, err)
		assert.Len(t, p.sent, 3)
	})
}

func TestSanitizeFileName(t *testing.T) {
	longExt := "a." + strings.Repeat("x", 300)
	cyrillic := strings.Repeat("ж", 200) + ".pdf"

	tests := []struct {
		name string
		in   string
		want string
		ext  string
	}{
		{name: "empty", in: "", want: "file"},
		{name: "traversal", in: "../../etc/passwd", want: "passwd"},
		{name: "windows path", in: `C:\docs\накладная.pdf`, want: "накладная.pdf"},
		{name: "invalid utf8", in: "\xffphoto.png", want: "photo.png"},
		{name: "long extension is dropped", in: longExt, want: longExt[:maxFileNameLen]},
		{name: "multibyte name keeps extension", in: cyrillic, ext: ".pdf"},
		{name: "long ascii name", in: strings.Repeat("b", 400) + ".jpeg", ext: ".jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeFileName(tt.in)
			assert.LessOrEqual(t, len(got), maxFileNameLen)
			assert.True(t, utf8.ValidString(got), got)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			}
			if tt.ext != "" {
				assert.True(t, strings.HasSuffix(got, tt.ext), got)
			}
		})
	}
}
