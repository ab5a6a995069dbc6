package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyTokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokens, err := IssueNewTokens(key, "user-1", "alice")
	require.NoError(t, err)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
	assert.NotEqual(t, tokens.AccessJti, tokens.RefreshJti)

	claims, err := ParseAndVerifySign(tokens.AccessToken, &key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, tokens.AccessJti, claims.Jti)
}

func TestParseRejectsWrongKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokens, err := IssueNewTokens(key, "user-1", "alice")
	require.NoError(t, err)

	_, err = ParseAndVerifySign(tokens.AccessToken, &otherKey.PublicKey)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = ParseAndVerifySign("definitely.not.ajwt", &key.PublicKey)
	assert.Error(t, err)
}
