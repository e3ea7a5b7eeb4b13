// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ccxpauth/internal/dbx"
	"github.com/dmitrijs2005/ccxpauth/internal/server/migrations"
	"github.com/dmitrijs2005/ccxpauth/internal/server/repositories/loginevents"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends the audit trail repositories and runs the
// embedded schema migrations.
type PostgresRepositoryManager struct{}

// LoginEvents returns a loginevents.Repository bound to db, which may be a
// transaction.
func (m *PostgresRepositoryManager) LoginEvents(db dbx.DBTX) loginevents.Repository {
	return loginevents.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
