package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", "ecommerce", 1)

	token, err := m.Generate(42, "alice", []string{"customer", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"customer", "admin"}, claims.Roles)
	assert.Equal(t, "ecommerce", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", "ecommerce", 1).Generate(1, "bob", nil)
	require.NoError(t, err)

	_, err = NewManager("secret-b", "ecommerce", 1).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", "ecommerce", 1).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
