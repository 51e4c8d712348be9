package domain

import "time"

// User represents a registered account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	FullName     string
	Phone        string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
