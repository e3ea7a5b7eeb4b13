package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	pb "github.com/dmitrijs2005/ccxpauth/internal/proto"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/dmitrijs2005/ccxpauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeAuth struct {
	resp    services.Response
	panics  bool
	gotID   string
	gotPass string
}

func (f *fakeAuth) SignIn(ctx context.Context, studentID, password string) services.Response {
	if f.panics {
		panic("boom")
	}
	f.gotID, f.gotPass = studentID, password
	return f.resp
}

func (f *fakeAuth) RefreshSession(ctx context.Context, studentID, encryptedPassword string) services.Response {
	f.gotID, f.gotPass = studentID, encryptedPassword
	return f.resp
}

// dial starts the server on an in-memory listener and returns a client.
func dial(t *testing.T, auth Authenticator) *pb.AuthServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewGRPCServer("bufnet", logging.Nop(), auth).Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return pb.NewAuthServiceClient(conn)
}

func TestSignIn_ReturnsResult(t *testing.T) {
	auth := &fakeAuth{resp: services.Response{Result: &models.AuthResult{
		SessionToken: "sess", EncryptedPassword: "enc", PasswordExpired: true, AccessToken: "jwt",
	}}}
	c := dial(t, auth)

	out, err := c.SignIn(context.Background(), pb.NewSignInRequest("107012345", "pw"))
	require.NoError(t, err)
	assert.Equal(t, pb.Reply{SessionToken: "sess", EncryptedPassword: "enc", PasswordExpired: true, AccessToken: "jwt"}, pb.DecodeReply(out))
	assert.Equal(t, "107012345", auth.gotID)
	assert.Equal(t, "pw", auth.gotPass)
}

func TestSignIn_DomainErrorInBody(t *testing.T) {
	c := dial(t, &fakeAuth{resp: services.Response{Error: &services.ErrorBody{
		Kind: common.KindRateLimited, Message: "try again in 15 minutes",
	}}})

	out, err := c.SignIn(context.Background(), pb.NewSignInRequest("107012345", "pw"))
	require.NoError(t, err)
	r := pb.DecodeReply(out)
	assert.Equal(t, common.KindRateLimited, r.ErrorKind)
	assert.Equal(t, "try again in 15 minutes", r.ErrorMessage)
}

func TestSignIn_MissingFields(t *testing.T) {
	c := dial(t, &fakeAuth{})

	_, err := c.SignIn(context.Background(), pb.NewSignInRequest("107012345", ""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRefreshSession_PassesCiphertext(t *testing.T) {
	auth := &fakeAuth{resp: services.Response{Result: &models.AuthResult{SessionToken: "s2"}}}
	c := dial(t, auth)

	out, err := c.RefreshSession(context.Background(), pb.NewRefreshSessionRequest("107012345", "ciphertext"))
	require.NoError(t, err)
	assert.Equal(t, "s2", pb.DecodeReply(out).SessionToken)
	assert.Equal(t, "ciphertext", auth.gotPass)

	_, err = c.RefreshSession(context.Background(), pb.NewRefreshSessionRequest("", "ciphertext"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSignIn_PanicBecomesInternal(t *testing.T) {
	c := dial(t, &fakeAuth{panics: true})

	_, err := c.SignIn(context.Background(), pb.NewSignInRequest("107012345", "pw"))
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestReply_EmptyResponseIsInternal(t *testing.T) {
	_, err := reply(context.Background(), services.Response{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestReply_CanceledBecomesStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reply(ctx, services.Response{Error: &services.ErrorBody{Kind: common.KindCanceled}})
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), &fakeAuth{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeAuth{})
	assert.Error(t, srv.Run(context.Background()))
}
