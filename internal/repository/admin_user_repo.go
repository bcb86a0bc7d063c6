package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/LapakSync/lapaksync_api/internal/models"
)

// AdminUserRepository is the data access layer for admin panel accounts.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByEmail looks up an admin account for login.
func (r *AdminUserRepository) GetByEmail(email string) (*models.AdminUser, error) {
	const q = `
        SELECT id, email, password_hash, name, is_active, created_at, updated_at
        FROM admin_users
        WHERE email = $1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var user models.AdminUser
	if err := stmt.Get(&user, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts an admin account and fills in the generated row identity
// and timestamps.
func (r *AdminUserRepository) Create(user *models.AdminUser) error {
	const q = `
        INSERT INTO admin_users (email, password_hash, name, is_active)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q, user.Email, user.PasswordHash, user.Name, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}
