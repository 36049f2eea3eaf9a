package supabase

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signKey(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := keyClaims{
		Role: role,
		Ref:  "abcdefgh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "supabase",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("project-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	info, err := InspectKey(signKey(t, "anon", now.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "anon", info.Role)
	assert.Equal(t, "abcdefgh", info.Ref)
	assert.Empty(t, info.Problems(now))

	info, err = InspectKey(signKey(t, "service_role", now.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Len(t, info.Problems(now), 2)
}

func TestInspectKeyRejectsGarbage(t *testing.T) {
	_, err := InspectKey("not-a-jwt")
	assert.Error(t, err)
}
