package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed tokens, signature mismatches and expired
// tokens alike; callers get no hint which check failed.
var ErrInvalidToken = errors.New("invalid token")

// tokenLifetime is fixed: there is no refresh, an expired token means a new
// login.
const tokenLifetime = 24 * time.Hour

// Tokens issues and decodes bearer tokens whose subject is a normalized
// email. Tokens are never persisted; the signature is the only state.
type Tokens struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokens builds a token signer for the given HMAC algorithm name
// (HS256, HS384 or HS512).
func NewTokens(secret, algorithm string) (*Tokens, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not HMAC", algorithm)
	}
	return &Tokens{secret: []byte(secret), method: method}, nil
}

// Issue signs a token for email with the fixed 24h lifetime.
func (t *Tokens) Issue(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	return jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
}

// Decode verifies the signature and expiry and returns the subject email.
func (t *Tokens) Decode(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{t.method.Alg()}))
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
