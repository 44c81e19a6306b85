package auth

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the capability view of an authenticated principal. Handlers
// and services check IsAdmin() instead of inspecting emails or roles.
type Identity interface {
	ID() string
	Email() string
	Name() string
	IsAdmin() bool
}

type identity struct {
	id    string
	email string
	name  string
	admin bool
}

func (i identity) ID() string    { return i.id }
func (i identity) Email() string { return i.email }
func (i identity) Name() string  { return i.name }
func (i identity) IsAdmin() bool { return i.admin }

func NewIdentity(id, email, name string, admin bool) Identity {
	return identity{id: id, email: email, name: displayName(name, email), admin: admin}
}

// displayName falls back to the local part of the email when no name is set.
func displayName(name, email string) string {
	if name != "" {
		return name
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
