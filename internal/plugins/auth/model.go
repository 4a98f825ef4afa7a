// Package auth is the login gate. An account is provisioned the first time
// an email signs in; later sign-ins must present the same password, checked
// against an argon2id hash. Sessions live in Redis and are referenced by an
// HttpOnly cookie.
package auth

import (
	"strings"
	"time"
)

// User is a Reverie account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// LoginRequest is bound from the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginInput is what the service authenticates.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the JSON value stored under session:<token> in Redis.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GreetingName is the local part of an email ("ana" for ana@example.com),
// or "User" when there is nothing usable.
func GreetingName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return "User"
	}
	return local
}
