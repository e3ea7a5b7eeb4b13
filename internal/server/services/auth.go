package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/google/uuid"
)

const auditTimeout = 2 * time.Second

// ErrorBody is the structured failure returned instead of a Go error.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response carries exactly one of Result and Error.
type Response struct {
	Result *models.AuthResult `json:"result,omitempty"`
	Error  *ErrorBody         `json:"error,omitempty"`
}

// OK reports whether the call succeeded.
func (r Response) OK() bool { return r.Error == nil && r.Result != nil }

func failure(err error) Response {
	return Response{Error: &ErrorBody{Kind: common.Kind(err), Message: common.Message(err)}}
}

// AuthService is the public surface of the pipeline. Audit and Hasher are
// optional; without them no audit rows are written.
type AuthService struct {
	login   *LoginService
	refresh *RefreshService
	audit   AuditSink
	hasher  SubjectHasher
	logger  logging.Logger
	now     func() time.Time
	newID   func() string
}

func NewAuthService(login *LoginService, refresh *RefreshService, audit AuditSink, hasher SubjectHasher, l logging.Logger) *AuthService {
	if hasher == nil {
		audit = nil
	}
	return &AuthService{
		login:   login,
		refresh: refresh,
		audit:   audit,
		hasher:  hasher,
		logger:  l.With("module", "auth"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SignIn logs studentID in with password.
func (s *AuthService) SignIn(ctx context.Context, studentID, password string) Response {
	return s.run(ctx, common.OperationSignIn, studentID, func(ctx context.Context, l logging.Logger, tr *trace) (*models.AuthResult, error) {
		return s.login.login(ctx, l, models.Credential{StudentID: studentID, Password: password}, tr)
	})
}

// RefreshSession logs studentID in again from a ciphertext previously
// returned by SignIn or RefreshSession.
func (s *AuthService) RefreshSession(ctx context.Context, studentID, encryptedPassword string) Response {
	return s.run(ctx, common.OperationRefresh, studentID, func(ctx context.Context, l logging.Logger, tr *trace) (*models.AuthResult, error) {
		return s.refresh.refresh(ctx, l, studentID, models.EncryptedCredential{Ciphertext: encryptedPassword}, tr)
	})
}

type pipeline func(ctx context.Context, l logging.Logger, tr *trace) (*models.AuthResult, error)

func (s *AuthService) run(ctx context.Context, op, studentID string, fn pipeline) Response {
	id := s.newID()
	l := s.logger.With("request_id", id, "operation", op)
	start := s.now()
	l.Info(ctx, "started")

	tr := &trace{}
	result, err := fn(ctx, l, tr)
	elapsed := s.now().Sub(start)

	outcome := outcomeSuccess
	if err != nil {
		outcome = common.Kind(err)
	}
	if err != nil && outcome == common.KindInternal {
		l.Error(ctx, "finished", "outcome", outcome, "attempts", len(tr.attempts), "duration", elapsed, "error", err.Error())
	} else {
		l.Info(ctx, "finished", "outcome", outcome, "attempts", len(tr.attempts), "duration", elapsed)
	}

	s.record(ctx, l, &models.LoginEvent{
		ID:        id,
		Operation: op,
		Outcome:   outcome,
		Duration:  elapsed,
		Attempts:  tr.attempts,
		CreatedAt: start.UTC(),
	}, studentID)

	if err != nil {
		return failure(err)
	}
	return Response{Result: result}
}

func (s *AuthService) record(ctx context.Context, l logging.Logger, e *models.LoginEvent, studentID string) {
	if s.audit == nil || studentID == "" {
		return
	}
	e.SubjectHash = s.hasher.Hash(studentID)

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.audit.Record(actx, e); err != nil {
		l.Warn(ctx, "audit event not recorded", "error", err.Error())
	}
}
