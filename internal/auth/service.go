package auth

import (
	"context"
	"errors"

	"github.com/lumeno/accounts/internal/store"
)

// ErrDuplicateEmail is returned when signing up with an email that already
// has an account record.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so a caller cannot probe which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountRepo is the slice of the account repository the auth service
// needs. PasswordHash reports found=false when no record exists.
type AccountRepo interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, firstName, lastName, passwordHash string) error
	PasswordHash(ctx context.Context, email string) (hash string, found bool, err error)
}

type Service struct {
	repo   AccountRepo
	tokens *Tokens
}

func NewService(repo AccountRepo, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Signup creates an account record and returns a bearer token for it. The
// exists check and the create are two round trips with no lock between
// them; a concurrent signup for the same email can race, which this design
// accepts.
func (s *Service) Signup(ctx context.Context, email, firstName, lastName, password string) (string, error) {
	email = store.Normalize(email)
	exists, err := s.repo.Exists(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrDuplicateEmail
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	if err := s.repo.Create(ctx, email, firstName, lastName, hash); err != nil {
		return "", err
	}
	return s.tokens.Issue(email)
}

// Login verifies the password against the stored digest and returns a
// fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = store.Normalize(email)
	hash, found, err := s.repo.PasswordHash(ctx, email)
	if err != nil {
		return "", err
	}
	if !found || !CheckPassword(password, hash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(email)
}
