package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

const testKey = "test-signing-key"

func TestGenerateAndParseToken(t *testing.T) {
	user := domain.User{ID: 7, Role: domain.RoleScanner}

	token, err := GenerateToken(testKey, user)
	require.NoError(t, err)

	claims, err := ParseToken(testKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "scanner", claims.Role)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, err := GenerateToken(testKey, domain.User{ID: 7, Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = ParseToken("another-key", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testKey, "nonsense")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
