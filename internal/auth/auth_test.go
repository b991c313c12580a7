package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	Init("test-secret", time.Hour)

	token, err := GenerateToken("user-1", RoleAdmin)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseToken_WrongSecret(t *testing.T) {
	Init("secret-a", time.Hour)
	token, err := GenerateToken("user-1", RoleUser)
	require.NoError(t, err)

	Init("secret-b", time.Hour)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	Init("test-secret", time.Hour)
	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct-horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("long-enough"))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, "news:write"))
	assert.False(t, HasPermission(RoleUser, "news:write"))
	assert.False(t, HasPermission("ghost", "news:write"))
	assert.Error(t, ValidateRole("moderator"))
}
