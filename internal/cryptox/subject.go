package cryptox

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// SubjectHasher derives a stable pseudonym for a student id so audit rows can
// be correlated per account without storing the id itself.
type SubjectHasher struct {
	key []byte
}

// NewSubjectHasher keys the hash with secret. blake2b accepts keys up to 64
// bytes; longer secrets are truncated.
func NewSubjectHasher(secret []byte) *SubjectHasher {
	k := secret
	if len(k) > blake2b.Size {
		k = k[:blake2b.Size]
	}
	return &SubjectHasher{key: append([]byte(nil), k...)}
}

// Hash returns the hex keyed BLAKE2b-256 digest of studentID.
func (h *SubjectHasher) Hash(studentID string) string {
	m, err := blake2b.New256(h.key)
	if err != nil {
		// only reachable with an oversized key, which the constructor prevents
		panic(err)
	}
	m.Write([]byte(studentID))
	return hex.EncodeToString(m.Sum(nil))
}
