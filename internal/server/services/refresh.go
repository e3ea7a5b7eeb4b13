package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// RefreshService re-authenticates a device from the ciphertext it holds.
// CCXP has no session extension call, so a refresh is a full login with the
// decrypted password.
type RefreshService struct {
	cipher CredentialCipher
	login  *LoginService
}

func NewRefreshService(cipher CredentialCipher, login *LoginService) *RefreshService {
	return &RefreshService{cipher: cipher, login: login}
}

// Refresh decrypts enc and logs in as studentID with it.
func (s *RefreshService) Refresh(ctx context.Context, studentID string, enc models.EncryptedCredential) (*models.AuthResult, error) {
	return s.refresh(ctx, s.login.logger, studentID, enc, nil)
}

func (s *RefreshService) refresh(ctx context.Context, l logging.Logger, studentID string, enc models.EncryptedCredential, tr *trace) (*models.AuthResult, error) {
	if studentID == "" || enc.Empty() {
		return nil, common.ErrInvalidRequest
	}
	password, err := s.cipher.Decrypt(enc.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return s.login.login(ctx, l, models.Credential{StudentID: studentID, Password: password}, tr)
}
