package models

import (
	"time"
)

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Done        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
