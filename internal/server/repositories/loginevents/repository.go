// Package loginevents declares the repository contract for the login audit
// trail.
package loginevents

import (
	"context"

	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// Repository stores audit rows. Implementations never receive the student
// id in clear; events carry only the subject hash.
type Repository interface {
	// CreateEvent inserts the summary row for one SignIn or RefreshSession.
	CreateEvent(ctx context.Context, e *models.LoginEvent) error

	// CreateAttempts inserts one row per fetch/solve/submit cycle of eventID.
	CreateAttempts(ctx context.Context, eventID string, attempts []models.LoginAttempt) error
}
