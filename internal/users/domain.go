package users

import (
	"strconv"
	"time"
)

// Admin is an application account as exposed by the admin management screen.
type Admin struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key mirrors the id as a string for table widgets that key rows by string.
func (a Admin) Key() string {
	return strconv.FormatInt(a.ID, 10)
}

// AdminRow is the list representation.
type AdminRow struct {
	Key string `json:"key"`
	Admin
}

// UpdateInput captures the editable fields. PasswordHash is empty when the
// password is left unchanged.
type UpdateInput struct {
	Username     string
	PasswordHash string
}
