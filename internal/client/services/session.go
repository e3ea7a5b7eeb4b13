// Package services implements the CLI's use cases on top of the gRPC client
// and the local credential store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/client/client"
	"github.com/dmitrijs2005/ccxpauth/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/ccxpauth/internal/common"
)

var ErrNotSignedIn = errors.New("no stored credential, sign in first")

// Remote is the part of the proxy API the CLI uses.
type Remote interface {
	SignIn(ctx context.Context, studentID, password string) (*client.Session, error)
	RefreshSession(ctx context.Context, studentID, encryptedPassword string) (*client.Session, error)
}

type SessionService interface {
	SignIn(ctx context.Context, studentID string, password []byte) (*client.Session, error)
	Refresh(ctx context.Context, studentID string) (*client.Session, error)
}

type sessionService struct {
	remote Remote
	repo   credentials.Repository
	now    func() time.Time
}

func NewSessionService(remote Remote, repo credentials.Repository) SessionService {
	return &sessionService{remote: remote, repo: repo, now: time.Now}
}

// SignIn authenticates with the raw password and stores only the
// ciphertext returned by the proxy. password is wiped before returning.
func (s *sessionService) SignIn(ctx context.Context, studentID string, password []byte) (*client.Session, error) {
	defer common.WipeByteArray(password)

	sess, err := s.remote.SignIn(ctx, studentID, string(password))
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, studentID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Refresh signs in again with the stored ciphertext and keeps the new one.
// A ciphertext the proxy cannot decrypt is forgotten.
func (s *sessionService) Refresh(ctx context.Context, studentID string) (*client.Session, error) {
	stored, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotSignedIn
	}

	sess, err := s.remote.RefreshSession(ctx, studentID, stored.EncryptedPassword)
	if err != nil {
		if errors.Is(err, common.ErrDecryption) {
			if derr := s.repo.Delete(ctx, studentID); derr != nil {
				return nil, errors.Join(err, derr)
			}
		}
		return nil, err
	}
	if err := s.store(ctx, studentID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) store(ctx context.Context, studentID string, sess *client.Session) error {
	err := s.repo.Save(ctx, credentials.Credential{
		StudentID:         studentID,
		EncryptedPassword: sess.EncryptedPassword,
		UpdatedAt:         s.now(),
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}
