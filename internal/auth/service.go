package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidInput       = errors.New("invalid input")
)

type UserStore interface {
	Create(ctx context.Context, u *User) error
	ByEmail(ctx context.Context, email string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
	EnsureAdmin(ctx context.Context, u *User) error
}

type Service struct {
	Store    UserStore
	Sessions Sessions
	Secret   []byte
	TokenTTL time.Duration
	Log      zerolog.Logger
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

func (s *Service) Register(ctx context.Context, name, email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password too short", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         displayName(strings.TrimSpace(name), email),
		PasswordHash: string(hash),
	}
	if err := s.Store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Log.Info().Str("user_id", u.ID).Msg("user registered")
	return NewIdentity(u.ID, u.Email, u.Name, false), nil
}

// Login verifies the password and issues a signed access token whose ID is
// tracked as a live session.
func (s *Service) Login(ctx context.Context, email, password string) (string, Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Store.ByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	tokenID := uuid.NewString()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		Name:  u.Name,
		Admin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	})
	signed, err := tok.SignedString(s.Secret)
	if err != nil {
		return "", nil, err
	}
	if err := s.Sessions.Put(ctx, tokenID, u.ID, s.TokenTTL); err != nil {
		return "", nil, err
	}
	s.Log.Info().Str("user_id", u.ID).Bool("admin", u.IsAdmin).Msg("login")
	return signed, NewIdentity(u.ID, u.Email, u.Name, u.IsAdmin), nil
}

func (s *Service) Logout(ctx context.Context, tokenID string) error {
	return s.Sessions.Delete(ctx, tokenID)
}

// Authenticate verifies a raw bearer token and returns the identity plus the
// token id (needed for logout). Tokens of ended sessions are rejected even
// before JWT expiry.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (Identity, string, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(rawToken, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, "", ErrUnauthenticated
	}
	live, err := s.Sessions.Exists(ctx, c.ID)
	if err != nil {
		return nil, "", err
	}
	if !live {
		return nil, "", ErrUnauthenticated
	}
	return NewIdentity(c.Subject, c.Email, c.Name, c.Admin), c.ID, nil
}

// EnsureAdmin provisions the configured administrative account. A blank
// password skips bootstrap (useful outside production).
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Store.EnsureAdmin(ctx, &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		Name:         displayName(name, email),
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
}
