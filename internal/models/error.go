package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login outcome errors
	ErrEmailNotRegistered = errors.New("email is not registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountLockedError reports a lockout rejection along with how long the
// caller must wait before the account unlocks.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds rounds the remaining wait up to whole seconds for
// user-facing messages.
func (e *AccountLockedError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
