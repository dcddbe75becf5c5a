package auth

import "time"

// User represents an admin account able to log in.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MinPasswordLength is the shortest password accepted on register and update.
const MinPasswordLength = 8
