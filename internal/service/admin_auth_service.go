package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/repository"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// ErrBadCredentials is returned for any login failure. Callers must not
// reveal whether the email or the password was wrong.
var ErrBadCredentials = errors.New("invalid credentials")

// AdminAuthService authenticates admin panel users and mints their JWTs.
type AdminAuthService struct {
	adminRepo *repository.AdminUserRepository
}

func NewAdminAuthService(adminRepo *repository.AdminUserRepository) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo}
}

// Login verifies an admin's credentials and returns a signed JWT.
func (s *AdminAuthService) Login(email, password string) (string, error) {
	user, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		log.Warn().Str("email", email).Msg("admin login for unknown email")
		return "", ErrBadCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("admin login on inactive account")
		return "", ErrBadCredentials
	}

	if err := user.CheckPassword(password); err != nil {
		log.Warn().Str("email", email).Msg("admin login with wrong password")
		return "", ErrBadCredentials
	}

	log.Info().Int("admin_id", user.ID).Str("email", email).Msg("admin logged in")

	return utils.GenerateJWT(user.ID, user.Email)
}

// CreateAdmin registers a new active admin account with a bcrypt-hashed
// password. Not exposed over HTTP; accounts are provisioned out of band.
func (s *AdminAuthService) CreateAdmin(email, password, name string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.adminRepo.Create(&models.AdminUser{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		IsActive:     true,
	})
}
