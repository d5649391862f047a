package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freefromtrial/backend/internal/models"
)

func testUser() models.User {
	return models.User{
		UID:   "user-123",
		Email: "user@example.com",
		Name:  "Test User",
	}
}

func TestIssueAndParse(t *testing.T) {
	maker := NewMaker("secret-key", time.Hour, false)

	token, err := maker.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserUID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestParseRejectsWrongKey(t *testing.T) {
	maker := NewMaker("secret-key", time.Hour, false)
	other := NewMaker("another-key", time.Hour, false)

	token, err := maker.Issue(testUser())
	require.NoError(t, err)

	_, err = other.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	maker := NewMaker("secret-key", -time.Minute, false)

	token, err := maker.Issue(testUser())
	require.NoError(t, err)

	_, err = maker.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	maker := NewMaker("secret-key", time.Hour, false)

	_, err := maker.Parse("not.a.token")
	require.Error(t, err)
}

func TestCookie(t *testing.T) {
	maker := NewMaker("secret-key", time.Hour, true)

	cookie := maker.Cookie("token-value")

	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestExpiredCookie(t *testing.T) {
	cookie := ExpiredCookie()

	assert.Equal(t, CookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
}
