package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminUser is an operator account for the admin panel. Operators manage
// merchant onboarding and watch the push activity feed; they have no access
// to merchant vendor tokens, which never reach storage.
type AdminUser struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// CheckPassword compares a candidate password against the stored bcrypt hash.
func (u *AdminUser) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
