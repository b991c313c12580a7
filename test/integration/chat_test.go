package integration_test

import (
	"net/http"
	"strings"
	"testing"

	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatAttachments(t *testing.T) {
	ts := helpers.NewTestServer(t)
	alice, aliceToken := ts.NewUser(t, "alice")
	bob, bobToken := ts.NewUser(t, "bob")
	_, eveToken := ts.NewUser(t, "eve")

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]string{
		"with_user_id": alice.ID,
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode, "диалог с самим собой запрещен")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/conversations", aliceToken, map[string]string{
		"with_user_id": bob.ID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var conv dto.ConversationResponse
	helpers.DecodeJSON(t, body, &conv)
	assert.Equal(t, bob.ID, conv.OtherUserID)

	// Повторный старт возвращает тот же диалог
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/conversations", bobToken, map[string]string{
		"with_user_id": alice.ID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var again dto.ConversationResponse
	helpers.DecodeJSON(t, body, &again)
	assert.Equal(t, conv.ID, again.ID)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", aliceToken, map[string]string{
		"body": "Накладная во вложении",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var msg dto.MessageResponse
	helpers.DecodeJSON(t, body, &msg)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", eveToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	attachPath := "/api/v1/messages/" + msg.ID + "/attachments"
	content := []byte("CMR 0012345\nIstanbul -> Almaty\n")

	t.Run("Only sender can attach", func(t *testing.T) {
		before := ts.Storage.Saves()
		res, _ := ts.SendFile(t, http.MethodPost, attachPath, bobToken, "file", "waybill.txt", content)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, _ = ts.SendFile(t, http.MethodPost, attachPath, eveToken, "file", "waybill.txt", content)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, before, ts.Storage.Saves())
	})

	var att dto.AttachmentResponse
	t.Run("Upload", func(t *testing.T) {
		before := ts.Storage.Saves()
		res, body := ts.SendFile(t, http.MethodPost, attachPath, aliceToken, "file", "waybill.txt", content)
		require.Equal(t, http.StatusCreated, res.StatusCode, body)
		helpers.DecodeJSON(t, body, &att)

		assert.Equal(t, msg.ID, att.MessageID)
		assert.Equal(t, alice.ID, att.UploaderID)
		assert.Equal(t, "waybill.txt", att.FileName)
		assert.Equal(t, int64(len(content)), att.Size)
		assert.True(t, strings.HasPrefix(att.MimeType, "text/plain"), att.MimeType)
		assert.True(t, strings.HasPrefix(att.URL, "/api/v1/files/message-attachments/"), att.URL)
		assert.Equal(t, before+1, ts.Storage.Saves())
	})

	t.Run("List and download", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, attachPath, bobToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var list struct {
			Attachments []dto.AttachmentResponse `json:"attachments"`
		}
		helpers.DecodeJSON(t, body, &list)
		require.Len(t, list.Attachments, 1)
		assert.Equal(t, att.ID, list.Attachments[0].ID)

		res, body = ts.SendRequest(t, http.MethodGet, att.URL, "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, string(content), body)

		res, _ = ts.SendRequest(t, http.MethodGet, attachPath, eveToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("Messages include attachments", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", bobToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var page dto.PageResponse[dto.MessageResponse]
		helpers.DecodeJSON(t, body, &page)
		require.Len(t, page.Items, 1)
		assert.Len(t, page.Items[0].Attachments, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/attachments/"+att.ID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		before := ts.Storage.Deletes()
		res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/attachments/"+att.ID, aliceToken, nil)
		require.Equal(t, http.StatusNoContent, res.StatusCode)
		assert.Equal(t, before+1, ts.Storage.Deletes())

		res, _ = ts.SendRequest(t, http.MethodGet, att.URL, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/attachments/"+att.ID, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}
