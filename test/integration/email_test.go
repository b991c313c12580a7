package integration_test

import (
	"net/http"
	"testing"

	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmailFunction(t *testing.T) {
	ts := helpers.NewTestServer(t)
	_, token := ts.NewUser(t, "dispatcher")

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/functions/send-email", "", map[string]interface{}{
		"to": []string{"ops@example.com"}, "subject": "x", "body": "y",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	t.Run("Plain body", func(t *testing.T) {
		before := len(ts.Email.Sent())
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/functions/send-email", token, map[string]interface{}{
			"to":      []string{"ops@example.com", "broker@example.com"},
			"subject": "Машина на погрузке",
			"body":    "Водитель прибыл на склад",
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var resp dto.SendEmailResponse
		helpers.DecodeJSON(t, body, &resp)
		assert.True(t, resp.Sent)
		assert.Len(t, resp.Recipients, 2)

		sent := ts.Email.Sent()
		require.Len(t, sent, before+1)
		assert.Equal(t, "Машина на погрузке", sent[len(sent)-1].Subject)
	})

	t.Run("Template", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/functions/send-email", token, map[string]interface{}{
			"to":       []string{"ops@example.com"},
			"subject":  "Статус",
			"template": "generic",
			"data":     map[string]string{"Body": "Груз прошел таможню"},
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		sent := ts.Email.Sent()
		assert.Equal(t, "generic", sent[len(sent)-1].Template)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := []map[string]interface{}{
			{"to": []string{"ops@example.com"}, "subject": "Без тела"},
			{"to": []string{"not-an-email"}, "subject": "x", "body": "y"},
			{"to": []string{}, "subject": "x", "body": "y"},
			{"to": []string{"ops@example.com"}, "subject": "x", "template": "unknown"},
		}
		before := len(ts.Email.Sent())
		for _, payload := range cases {
			res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/functions/send-email", token, payload)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
		}
		assert.Len(t, ts.Email.Sent(), before)
	})
}
