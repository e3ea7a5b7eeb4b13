// Package server wires the login pipeline to its transports and optional
// audit and archive backends, and runs it until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/ccxpauth/internal/cryptox"
	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	"github.com/dmitrijs2005/ccxpauth/internal/server/auth"
	"github.com/dmitrijs2005/ccxpauth/internal/server/captchaarchive"
	"github.com/dmitrijs2005/ccxpauth/internal/server/ccxp"
	"github.com/dmitrijs2005/ccxpauth/internal/server/config"
	"github.com/dmitrijs2005/ccxpauth/internal/server/httpapi"
	"github.com/dmitrijs2005/ccxpauth/internal/server/ocr"
	"github.com/dmitrijs2005/ccxpauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ccxpauth/internal/server/services"

	gs "github.com/dmitrijs2005/ccxpauth/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	auth   *services.AuthService
	db     *sql.DB
}

// seams for tests
var (
	openDB        = sql.Open
	runMigrations = func(ctx context.Context, m repomanager.RepositoryManager, db *sql.DB) error {
		return m.RunMigrations(ctx, db)
	}
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	key, err := c.CipherKey()
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	httpClient := &http.Client{}
	client, err := ccxp.NewClient(c.CCXPBaseURL, c.UpstreamTimeout, httpClient, logger)
	if err != nil {
		return nil, err
	}
	solver, err := ocr.NewSolver(c.OCRBaseURL, client.CaptchaImageURL, c.UpstreamTimeout, httpClient)
	if err != nil {
		return nil, err
	}

	deps := services.LoginDeps{
		CCXP:   client,
		Solver: solver,
		Cipher: cipher,
		Minter: auth.NewJWTMinter([]byte(c.TokenSecret), c.TokenIssuer, c.TokenTTL),
	}
	if c.S3Bucket != "" {
		archive, err := captchaarchive.New(ctx, captchaarchive.Settings{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
		}, client)
		if err != nil {
			return nil, err
		}
		deps.Archive = archive
		logger.Info(ctx, "captcha archive enabled", "bucket", c.S3Bucket)
	}

	app := &App{config: c, logger: logger}

	var (
		audit  services.AuditSink
		hasher services.SubjectHasher
	)
	if c.DatabaseDSN != "" {
		db, err := openDB("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := runMigrations(ctx, rm, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		app.db = db
		audit = services.NewAuditRecorder(db, rm)
		hasher = cryptox.NewSubjectHasher([]byte(c.TokenSecret))
		logger.Info(ctx, "login audit trail enabled")
	}

	login := services.NewLoginService(deps, c.MaxAttempts, c.ArchiveTimeout, logger)
	app.auth = services.NewAuthService(login, services.NewRefreshService(cipher, login), audit, hasher, logger)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.auth)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.auth, []byte(app.config.TokenSecret))
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves the configured surfaces until ctx is canceled, a signal
// arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}
	if app.config.HTTPAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}
	app.logger.Info(ctx, "App stopped")
}
