// Package httpapi serves the AuthService as JSON over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	"github.com/dmitrijs2005/ccxpauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	maxRequestBytes = 16 << 10
	shutdownTimeout = 5 * time.Second
)

// Authenticator is the pipeline surface the transport exposes.
type Authenticator interface {
	SignIn(ctx context.Context, studentID, password string) services.Response
	RefreshSession(ctx context.Context, studentID, encryptedPassword string) services.Response
}

type Server struct {
	address     string
	auth        Authenticator
	tokenSecret []byte
	logger      logging.Logger
}

func NewServer(address string, l logging.Logger, auth Authenticator, tokenSecret []byte) *Server {
	return &Server{
		address:     address,
		auth:        auth,
		tokenSecret: tokenSecret,
		logger:      l.With("module", "http_server"),
	}
}

// Router builds the chi routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Post("/signin", s.signIn)
		r.Post("/refresh", s.refresh)
		r.Get("/whoami", s.whoAmI)
	})

	return r
}

// Run serves until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logRequests logs method, route and status; bodies are never logged.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "http", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}
