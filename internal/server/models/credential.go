// Package models holds the value types that flow through the login pipeline.
package models

import (
	"fmt"
	"log/slog"
)

const redacted = "[REDACTED]"

// Credential is what the user typed. It lives only for the duration of one
// login call and renders its password as [REDACTED] in every textual form.
type Credential struct {
	StudentID string
	Password  string
}

func (c Credential) String() string {
	return fmt.Sprintf("Credential{StudentID:%s Password:%s}", c.StudentID, redacted)
}

func (c Credential) GoString() string { return c.String() }

func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("student_id", c.StudentID),
		slog.String("password", redacted),
	)
}

// Valid reports whether both fields are present.
func (c Credential) Valid() bool {
	return c.StudentID != "" && c.Password != ""
}

// EncryptedCredential is the device-held ciphertext of a password, as handed
// back to the proxy on refresh.
type EncryptedCredential struct {
	Ciphertext string
}

func (e EncryptedCredential) Empty() bool { return e.Ciphertext == "" }
