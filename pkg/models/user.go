package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int        `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time  `json:"date_joined"`
	UpdatedAt    time.Time  `json:"-"`
	Username     string     `bun:",nullzero" json:"username"`
	Email        string     `bun:",nullzero" json:"email"`
	PasswordHash string     `json:"-"` // Never expose password hash
	IsActive     bool       `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Is reports whether both values refer to the same persisted user.
func (u *User) Is(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID == other.ID
}
