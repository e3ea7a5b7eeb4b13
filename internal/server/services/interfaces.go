// Package services implements the CCXP login pipeline: the bounded
// fetch/solve/submit loop, session refresh from a stored ciphertext and the
// SignIn/RefreshSession entry points the transports call.
package services

import (
	"context"

	"github.com/dmitrijs2005/ccxpauth/internal/server/ccxp"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// CCXP is the subset of the browser emulation the pipeline drives.
type CCXP interface {
	FetchChallenge(ctx context.Context) (string, error)
	Submit(ctx context.Context, cred models.Credential, answer, challengeID string) (ccxp.Outcome, error)
	ExtractSession(ctx context.Context, redirectPath string) (*models.SessionToken, error)
	ProfileFetcher
}

// ProfileFetcher returns nil, nil for accounts without a student record.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token models.SessionToken) (*models.Profile, error)
}

type CaptchaSolver interface {
	Solve(ctx context.Context, challengeID string) (string, error)
}

type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TokenMinter signs the downstream access token for a profile.
type TokenMinter interface {
	Mint(ctx context.Context, p models.Profile) (string, error)
}

// AuditSink persists one event per SignIn/RefreshSession call.
type AuditSink interface {
	Record(ctx context.Context, e *models.LoginEvent) error
}

// SampleArchive stores OCR guesses with their verdicts.
type SampleArchive interface {
	Archive(ctx context.Context, s models.CaptchaSample) error
}

type SubjectHasher interface {
	Hash(studentID string) string
}
