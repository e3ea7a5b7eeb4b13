// Package cli implements the ccxpctl commands.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/ccxpauth/internal/client/client"
	"github.com/dmitrijs2005/ccxpauth/internal/client/config"
	"github.com/dmitrijs2005/ccxpauth/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/ccxpauth/internal/client/services"
)

var ErrUsage = errors.New("usage: ccxpctl [-a addr] [-f db] [-t seconds] signin|refresh -u <student id>")

type App struct {
	config  *config.Config
	session services.SessionService
	out     io.Writer
	closers []io.Closer
}

// NewApp opens the local database and the connection to the proxy.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, apiClient, db, os.Stdout), nil
}

func newApp(c *config.Config, remote interface {
	services.Remote
	io.Closer
}, db *sql.DB, out io.Writer) *App {
	ss := services.NewSessionService(remote, credentials.NewSQLiteRepository(db))
	return &App{config: c, session: ss, out: out, closers: []io.Closer{remote, db}}
}

// Run executes the command in args (os.Args[1:] without the program name)
// and releases the app's resources.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.close()

	cmd, rest := command(args)
	switch cmd {
	case "signin":
		return a.signIn(ctx, rest)
	case "refresh":
		return a.refresh(ctx, rest)
	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	case "":
		return ErrUsage
	}
	return fmt.Errorf("unknown command %q\n%w", cmd, ErrUsage)
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}
