package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload carried by a signed session token. The
// subject registered claim holds the user ID; email is duplicated for
// logging convenience only.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *SessionClaims) UserID() string {
	return c.Subject
}
