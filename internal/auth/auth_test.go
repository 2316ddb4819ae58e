package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))

	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long enough"))
}

func TestPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermApplicantsModerate))
	assert.True(t, HasPermission(RoleModerator, PermApplicantsModerate))
	assert.False(t, HasPermission(RoleModerator, PermApplicantsEdit))
	assert.False(t, HasPermission("user", PermApplicantsRead))
	assert.False(t, CanPerformAction(nil, PermApplicantsRead))
	assert.NoError(t, ValidateRole(RoleModerator))
	assert.Error(t, ValidateRole("user"))
}

func TestSessionTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, time.Hour)

	token, exp, err := m.GenerateToken("u-1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = NewTokenManager("other", time.Hour, time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenExpires(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Minute)
	token, _, err := m.GenerateToken("u-1", "a@example.com", RoleAdmin)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActionTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, time.Hour)

	formToken, err := m.IssueActionToken(ActionSubmitApplication, "")
	require.NoError(t, err)
	assert.NoError(t, m.VerifyActionToken(formToken, ActionSubmitApplication, ""))
	assert.ErrorIs(t, m.VerifyActionToken(formToken, ActionAdmin, ""), ErrWrongAction)

	adminToken, err := m.IssueActionToken(ActionAdmin, "u-1")
	require.NoError(t, err)
	assert.NoError(t, m.VerifyActionToken(adminToken, ActionAdmin, "u-1"))
	assert.ErrorIs(t, m.VerifyActionToken(adminToken, ActionAdmin, "u-2"), ErrWrongAction)

	// токен сессии не подходит как токен действия и наоборот
	session, _, err := m.GenerateToken("u-1", "a@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.ErrorIs(t, m.VerifyActionToken(session, ActionAdmin, "u-1"), ErrInvalidToken)
	_, err = m.ParseToken(adminToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
