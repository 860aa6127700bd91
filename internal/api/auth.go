package api

import (
	domainerrors "github.com/levelupapp/levelup-server/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// requireAdminKey checks the X-Admin-Key header against the configured
// bcrypt hash. With no hash configured, every admin endpoint is disabled.
func (s *Server) requireAdminKey(key string) error {
	if s.adminKeyHash == "" {
		return domainerrors.Unauthorized("admin endpoints are disabled")
	}
	if key == "" {
		return domainerrors.Unauthorized("missing admin key")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(key)); err != nil {
		return domainerrors.Unauthorized("invalid admin key")
	}
	return nil
}
