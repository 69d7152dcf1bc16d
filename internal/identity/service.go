package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"facesense/internal/apperr"
	"facesense/internal/auth"
	"facesense/internal/password"
)

// UserStore is the persistence surface the registry needs. Lookups return
// (nil, nil) when no account matches; Insert reports uniqueness violations
// as apperr.ErrConflict.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, u *User) error
}

// TokenConfig carries the signing parameters for issued tokens.
type TokenConfig struct {
	Issuer string
	Key    string
	TTL    time.Duration
}

// Service enforces identity uniqueness and issues tokens on successful
// registration or login.
type Service struct {
	users  UserStore
	tokens TokenConfig
}

// NewService creates the identity registry.
func NewService(users UserStore, tokens TokenConfig) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account and returns a token for immediate use.
// Username and email uniqueness is arbitrated by the store's unique
// indexes; a violation surfaces as a conflict.
func (s *Service) Register(ctx context.Context, username, plainPassword, email, role string) (string, error) {
	if username == "" || plainPassword == "" {
		return "", apperr.Invalidf("username and password are required")
	}
	hashed, err := password.Hash(plainPassword)
	if err != nil {
		return "", err
	}
	if role == "" {
		role = DefaultRole
	}
	u := &User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return "", err
	}
	token, _, err := auth.Issue(username, u.Role, s.tokens.Issuer, s.tokens.Key, s.tokens.TTL)
	return token, err
}

// Login verifies credentials and returns a token keyed on the username.
// Unknown user and wrong password fail identically.
func (s *Service) Login(ctx context.Context, username, plainPassword string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil || !password.Verify(plainPassword, u.HashedPassword) {
		return "", apperr.ErrUnauthorized
	}
	token, _, err := auth.Issue(username, u.Role, s.tokens.Issuer, s.tokens.Key, s.tokens.TTL)
	return token, err
}

// FederatedLogin resolves an externally verified email to a local account,
// creating a password-less teacher account on first login. Repeated calls
// with the same email never create duplicates. The token subject is the
// email.
func (s *Service) FederatedLogin(ctx context.Context, email, fullName, pictureURL string) (string, error) {
	if email == "" {
		return "", apperr.Invalidf("email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		u, err = s.createFederated(ctx, email, fullName, pictureURL)
		if err != nil {
			return "", err
		}
	}
	token, _, err := auth.Issue(email, u.Role, s.tokens.Issuer, s.tokens.Key, s.tokens.TTL)
	return token, err
}

func (s *Service) createFederated(ctx context.Context, email, fullName, pictureURL string) (*User, error) {
	u := &User{
		Username:   localPart(email),
		Email:      email,
		Role:       DefaultRole,
		FullName:   fullName,
		PictureURL: pictureURL,
	}
	err := s.users.Insert(ctx, u)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return nil, err
	}

	// Lost a race on the email index: another request created the account.
	existing, ferr := s.users.FindByEmail(ctx, email)
	if ferr != nil {
		return nil, ferr
	}
	if existing != nil {
		return existing, nil
	}

	// The conflict was on the derived username, held by a different email.
	// Retry once with a random suffix.
	u.Username = u.Username + "-" + randomSuffix()
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func randomSuffix() string {
	b := make([]byte, 2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
