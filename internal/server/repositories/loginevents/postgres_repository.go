package loginevents

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ccxpauth/internal/dbx"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, e *models.LoginEvent) error {
	query :=
		`INSERT INTO login_events (id, operation, outcome, subject_hash, attempts, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Operation, e.Outcome, e.SubjectHash, len(e.Attempts), e.Duration.Milliseconds(), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) CreateAttempts(ctx context.Context, eventID string, attempts []models.LoginAttempt) error {
	query :=
		`INSERT INTO login_attempts (event_id, number, outcome)
		 VALUES ($1, $2, $3)`

	for _, a := range attempts {
		if _, err := r.db.ExecContext(ctx, query, eventID, a.Number, a.Outcome); err != nil {
			return fmt.Errorf("error performing sql request: %v", err)
		}
	}
	return nil
}
