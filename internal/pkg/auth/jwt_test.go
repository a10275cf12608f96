package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email:   "admin@cafe.test",
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	s, err := token.SignedString([]byte("any-secret-the-api-owns"))
	require.NoError(t, err)
	return s
}

func TestCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inspector := NewTokenInspector(30 * time.Second)
	inspector.now = func() time.Time { return now }

	assert.ErrorIs(t, inspector.Check(""), ErrMissingToken)
	assert.ErrorIs(t, inspector.Check("   "), ErrMissingToken)
	assert.NoError(t, inspector.Check("opaque-session-token"))
	assert.NoError(t, inspector.Check(signed(t, now.Add(time.Hour))))
	assert.NoError(t, inspector.Check(signed(t, now.Add(-10*time.Second))))
	assert.ErrorIs(t, inspector.Check(signed(t, now.Add(-time.Hour))), ErrTokenExpired)
}

func TestInspectReadsClaims(t *testing.T) {
	inspector := NewTokenInspector(0)

	claims, ok := inspector.Inspect(signed(t, time.Now().Add(time.Hour)))
	require.True(t, ok)
	assert.Equal(t, "admin@cafe.test", claims.Email)
	assert.True(t, claims.IsAdmin)

	_, ok = inspector.Inspect("a.b.c")
	assert.False(t, ok)
}
