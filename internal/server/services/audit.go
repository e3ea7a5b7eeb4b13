package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/ccxpauth/internal/dbx"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/dmitrijs2005/ccxpauth/internal/server/repositories/repomanager"
)

// AuditRecorder writes login events to the database, the event row and its
// attempt rows in one transaction.
type AuditRecorder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAuditRecorder(db *sql.DB, m repomanager.RepositoryManager) *AuditRecorder {
	return &AuditRecorder{db: db, repomanager: m}
}

func (r *AuditRecorder) Record(ctx context.Context, e *models.LoginEvent) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.repomanager.LoginEvents(tx)
		if err := repo.CreateEvent(ctx, e); err != nil {
			return fmt.Errorf("error creating login event: %w", err)
		}
		if err := repo.CreateAttempts(ctx, e.ID, e.Attempts); err != nil {
			return fmt.Errorf("error creating login attempts: %w", err)
		}
		return nil
	})
}
