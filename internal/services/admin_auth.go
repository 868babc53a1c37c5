package services

import (
	"fmt"

	"media-gallery-platform/internal/config"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/utils"
)

// AdminAuthService authenticates the single configured admin account.
// There is no admin user table; the credential lives in configuration as
// an Argon2id hash.
type AdminAuthService struct {
	cfg config.AdminConfig
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(cfg config.AdminConfig) *AdminAuthService {
	return &AdminAuthService{cfg: cfg}
}

// Authenticate checks the supplied credentials. Every failure mode maps
// to the same ErrUnauthorized so responses don't reveal which part was
// wrong.
func (s *AdminAuthService) Authenticate(username, password string) error {
	if s.cfg.PasswordHash == "" {
		return fmt.Errorf("%w: admin login is not configured", models.ErrUnauthorized)
	}
	if username != s.cfg.Username {
		return models.ErrUnauthorized
	}

	ok, err := utils.VerifyPassword(password, s.cfg.PasswordHash)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !ok {
		return models.ErrUnauthorized
	}
	return nil
}
