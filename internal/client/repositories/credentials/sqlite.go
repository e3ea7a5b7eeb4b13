// Package credentials stores encrypted credentials in the CLI's sqlite file.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ccxpauth/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save inserts c or replaces the stored ciphertext of the same student.
func (r *SQLiteRepository) Save(ctx context.Context, c Credential) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (student_id, encrypted_password, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			encrypted_password = excluded.encrypted_password,
			updated_at = excluded.updated_at
	`, c.StudentID, c.EncryptedPassword, c.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save credential[%s]: %w", c.StudentID, err)
	}
	return nil
}

// Get returns (nil, nil) when nothing is stored for studentID.
func (r *SQLiteRepository) Get(ctx context.Context, studentID string) (*Credential, error) {
	c := &Credential{StudentID: studentID}
	err := r.db.QueryRowContext(ctx,
		`SELECT encrypted_password, updated_at FROM credentials WHERE student_id = ?`, studentID,
	).Scan(&c.EncryptedPassword, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", studentID, err)
	}
	return c, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, studentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE student_id = ?`, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete credential[%s]: %w", studentID, err)
	}
	return nil
}
