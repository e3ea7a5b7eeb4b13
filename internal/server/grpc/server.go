// Package grpc serves the AuthService over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	pb "github.com/dmitrijs2005/ccxpauth/internal/proto"
	"github.com/dmitrijs2005/ccxpauth/internal/server/services"
	"google.golang.org/grpc"
)

// Authenticator is the pipeline surface the transport exposes.
type Authenticator interface {
	SignIn(ctx context.Context, studentID, password string) services.Response
	RefreshSession(ctx context.Context, studentID, encryptedPassword string) services.Response
}

type GRPCServer struct {
	address string
	auth    Authenticator
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, auth Authenticator) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    auth,
	}
}

// newServer builds the grpc.Server with the service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.logInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
