package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueDecodeRoundTrip(t *testing.T) {
	tokens, err := NewTokens("test-secret", "HS256")
	require.NoError(t, err)

	tok, err := tokens.Issue("a@b.com")
	require.NoError(t, err)

	subject, err := tokens.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", subject)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokens("secret-one", "HS256")
	require.NoError(t, err)
	verifier, err := NewTokens("secret-two", "HS256")
	require.NoError(t, err)

	tok, err := issuer.Issue("a@b.com")
	require.NoError(t, err)

	_, err = verifier.Decode(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsExpired(t *testing.T) {
	tokens, err := NewTokens("test-secret", "HS256")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "a@b.com",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.Decode(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tokens, err := NewTokens("test-secret", "HS256")
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := tokens.Decode(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestDecodeRejectsForeignAlgorithm(t *testing.T) {
	tokens, err := NewTokens("test-secret", "HS256")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "a@b.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.Decode(other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokensRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewTokens("s", "none")
	assert.Error(t, err)
	_, err = NewTokens("s", "RS256")
	assert.Error(t, err)
}
