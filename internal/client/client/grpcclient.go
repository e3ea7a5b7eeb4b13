package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	pb "github.com/dmitrijs2005/ccxpauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type authClient interface {
	SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// Session is a successful SignIn or RefreshSession result.
type Session struct {
	SessionToken      string
	EncryptedPassword string
	PasswordExpired   bool
	AccessToken       string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authClient
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) SignIn(ctx context.Context, studentID, password string) (*Session, error) {
	resp, err := s.client.SignIn(ctx, pb.NewSignInRequest(studentID, password))
	if err != nil {
		return nil, s.mapError(err)
	}
	return sessionFrom(resp)
}

func (s *GRPCClient) RefreshSession(ctx context.Context, studentID, encryptedPassword string) (*Session, error) {
	resp, err := s.client.RefreshSession(ctx, pb.NewRefreshSessionRequest(studentID, encryptedPassword))
	if err != nil {
		return nil, s.mapError(err)
	}
	return sessionFrom(resp)
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func sessionFrom(resp *structpb.Struct) (*Session, error) {
	r := pb.DecodeReply(resp)
	if r.Failed() {
		return nil, &RemoteError{Kind: r.ErrorKind, Message: r.ErrorMessage}
	}
	if r.SessionToken == "" || r.EncryptedPassword == "" {
		return nil, ErrBadReply
	}
	return &Session{
		SessionToken:      r.SessionToken,
		EncryptedPassword: r.EncryptedPassword,
		PasswordExpired:   r.PasswordExpired,
		AccessToken:       r.AccessToken,
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, s.endpointURL)
	case codes.Canceled, codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w", st.Message(), contextErr(st.Code()))
	case codes.InvalidArgument:
		return &RemoteError{Kind: common.KindInvalidRequest, Message: st.Message()}
	}
	return err
}

func contextErr(c codes.Code) error {
	if c == codes.Canceled {
		return context.Canceled
	}
	return context.DeadlineExceeded
}
