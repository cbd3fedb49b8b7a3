package models

import (
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Gravatar     string // Derived avatar URL, set once at registration
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
