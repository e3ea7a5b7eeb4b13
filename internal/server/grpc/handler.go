package grpc

import (
	"context"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	pb "github.com/dmitrijs2005/ccxpauth/internal/proto"
	"github.com/dmitrijs2005/ccxpauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	studentID, password := pb.String(req, pb.FieldStudentID), pb.String(req, pb.FieldPassword)
	if studentID == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "studentId and password are required")
	}
	return reply(ctx, s.auth.SignIn(ctx, studentID, password))
}

func (s *GRPCServer) RefreshSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	studentID, encrypted := pb.String(req, pb.FieldStudentID), pb.String(req, pb.FieldEncryptedPassword)
	if studentID == "" || encrypted == "" {
		return nil, status.Error(codes.InvalidArgument, "studentId and encryptedPassword are required")
	}
	return reply(ctx, s.auth.RefreshSession(ctx, studentID, encrypted))
}

// reply encodes resp. Domain failures travel in the body; only a canceled
// call becomes a gRPC status.
func reply(ctx context.Context, resp services.Response) (*structpb.Struct, error) {
	if resp.Error != nil {
		if resp.Error.Kind == common.KindCanceled && ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return pb.EncodeReply(pb.Reply{ErrorKind: resp.Error.Kind, ErrorMessage: resp.Error.Message}), nil
	}
	if resp.Result == nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	r := resp.Result
	return pb.EncodeReply(pb.Reply{
		SessionToken:      r.SessionToken,
		EncryptedPassword: r.EncryptedPassword,
		PasswordExpired:   r.PasswordExpired,
		AccessToken:       r.AccessToken,
	}), nil
}
