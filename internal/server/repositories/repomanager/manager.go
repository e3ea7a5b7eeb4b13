package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ccxpauth/internal/dbx"
	"github.com/dmitrijs2005/ccxpauth/internal/server/repositories/loginevents"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	LoginEvents(db dbx.DBTX) loginevents.Repository
}
