package credentials

import (
	"context"
	"time"
)

// Credential is what the CLI keeps per student: the ciphertext issued by the
// proxy, never the password itself.
type Credential struct {
	StudentID         string
	EncryptedPassword string
	UpdatedAt         time.Time
}

type Repository interface {
	Save(ctx context.Context, c Credential) error
	Get(ctx context.Context, studentID string) (*Credential, error)
	Delete(ctx context.Context, studentID string) error
}
