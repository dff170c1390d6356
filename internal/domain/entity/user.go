package entity

import (
	"strings"
	"time"
)

// User is the identity record payments and subscriptions belong to.
type User struct {
	ID        string    `json:"id"`
	Email     *string   `json:"email,omitempty"`
	AuthID    *string   `json:"auth_id,omitempty"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEmail reports whether the user has a non-blank email.
func (u *User) HasEmail() bool {
	return u.Email != nil && strings.TrimSpace(*u.Email) != ""
}

// NormalizeEmail trims and lower-cases an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
