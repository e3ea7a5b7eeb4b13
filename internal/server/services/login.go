package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	"github.com/dmitrijs2005/ccxpauth/internal/server/ccxp"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/dmitrijs2005/ccxpauth/internal/server/ocr"
)

// DefaultMaxAttempts bounds the fetch/solve/submit cycles of one login.
const DefaultMaxAttempts = 3

// DefaultArchiveTimeout bounds one CAPTCHA sample upload.
const DefaultArchiveTimeout = 2 * time.Second

// outcomeSuccess labels a cycle that produced a session.
const outcomeSuccess = "Success"

// LoginDeps are the collaborators of LoginService. Archive may be nil.
type LoginDeps struct {
	CCXP    CCXP
	Solver  CaptchaSolver
	Cipher  CredentialCipher
	Minter  TokenMinter
	Archive SampleArchive
}

// LoginService runs the CCXP login state machine. It keeps no per-call state
// and is safe for concurrent use.
type LoginService struct {
	ccxp           CCXP
	solver         CaptchaSolver
	cipher         CredentialCipher
	minter         TokenMinter
	archive        SampleArchive
	maxAttempts    int
	archiveTimeout time.Duration
	logger         logging.Logger
}

func NewLoginService(deps LoginDeps, maxAttempts int, archiveTimeout time.Duration, l logging.Logger) *LoginService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if archiveTimeout <= 0 {
		archiveTimeout = DefaultArchiveTimeout
	}
	return &LoginService{
		ccxp:           deps.CCXP,
		solver:         deps.Solver,
		cipher:         deps.Cipher,
		minter:         deps.Minter,
		archive:        deps.Archive,
		maxAttempts:    maxAttempts,
		archiveTimeout: archiveTimeout,
		logger:         l.With("module", "login"),
	}
}

// Login authenticates cred against CCXP and returns the composed result.
// Retryable failures stay inside the attempt budget; the returned error is
// terminal and matches one of the common sentinels.
func (s *LoginService) Login(ctx context.Context, cred models.Credential) (*models.AuthResult, error) {
	return s.login(ctx, s.logger, cred, nil)
}

// trace collects per-cycle outcomes for the audit trail.
type trace struct {
	attempts []models.LoginAttempt
}

func (t *trace) add(ch models.CaptchaChallenge, outcome string) {
	if t != nil {
		t.attempts = append(t.attempts, models.LoginAttempt{Number: ch.AttemptsUsed, Outcome: outcome})
	}
}

func (s *LoginService) login(ctx context.Context, l logging.Logger, cred models.Credential, tr *trace) (*models.AuthResult, error) {
	if !cred.Valid() {
		return nil, common.ErrInvalidRequest
	}

	var (
		token   *models.SessionToken
		lastErr error
	)
	for n := 1; n <= s.maxAttempts; n++ {
		start := time.Now()
		ch := models.CaptchaChallenge{AttemptsUsed: n}
		t, err := s.attempt(ctx, cred, &ch)
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		outcome := outcomeSuccess
		if err != nil {
			outcome = common.Kind(err)
		}
		tr.add(ch, outcome)
		l.Debug(ctx, "login attempt", "attempt", ch.AttemptsUsed, "challenge", ch.ChallengeID,
			"outcome", outcome, "duration", time.Since(start))

		if err == nil {
			token = t
			break
		}
		if terminal(err) {
			return nil, err
		}
		lastErr = err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: %d attempts exhausted, last: %v", common.ErrUnknownProtocolDrift, s.maxAttempts, lastErr)
	}

	return s.complete(ctx, l, cred, *token)
}

// attempt is one fetch/solve/submit cycle, followed by session extraction
// when CCXP accepts the login. It records the fetched challenge id in ch.
func (s *LoginService) attempt(ctx context.Context, cred models.Credential, ch *models.CaptchaChallenge) (*models.SessionToken, error) {
	challengeID, err := s.ccxp.FetchChallenge(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch challenge: %w", err)
	}
	ch.ChallengeID = challengeID

	answer, err := s.solver.Solve(ctx, ch.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("solve captcha: %w", err)
	}
	if !ocr.Valid(answer) {
		return nil, fmt.Errorf("%w: ocr answer has %d characters", common.ErrCaptchaMismatch, len([]rune(answer)))
	}

	out, err := s.ccxp.Submit(ctx, cred, answer, ch.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	s.archiveSample(ctx, *ch, answer, out.Kind)

	switch out.Kind {
	case ccxp.OutcomeWrongCaptcha:
		return nil, common.ErrCaptchaMismatch
	case ccxp.OutcomeLockedOut:
		return nil, common.ErrRateLimited
	case ccxp.OutcomeInvalidCredentials:
		return nil, common.ErrInvalidCredentials
	case ccxp.OutcomeSuccess:
		token, err := s.ccxp.ExtractSession(ctx, out.RedirectPath)
		if err != nil {
			return nil, fmt.Errorf("extract session: %w", err)
		}
		return token, nil
	}
	return nil, fmt.Errorf("%w: unrecognised submit response", common.ErrUnknownProtocolDrift)
}

// terminal reports whether err must end the login without another cycle.
func terminal(err error) bool {
	return errors.Is(err, common.ErrRateLimited) ||
		errors.Is(err, common.ErrInvalidCredentials) ||
		errors.Is(err, common.ErrInvalidRequest)
}

// complete runs the post-session steps: profile, encryption, token minting.
func (s *LoginService) complete(ctx context.Context, l logging.Logger, cred models.Credential, token models.SessionToken) (*models.AuthResult, error) {
	fetched, err := s.ccxp.FetchProfile(ctx, token)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		l.Warn(ctx, "profile fetch failed, using synthetic profile", "error", common.Kind(err))
		fetched = nil
	}
	strategy := ProfileStrategyFor(fetched)
	l.Debug(ctx, "profile resolved", "strategy", strategy.Name())

	encrypted, err := s.cipher.Encrypt(cred.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt credential: %v", common.ErrorInternal, err)
	}

	access, err := s.minter.Mint(ctx, strategy.Claims(cred.StudentID))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: mint token: %v", common.ErrorInternal, err)
	}

	return &models.AuthResult{
		SessionToken:      token.ACIXSTORE,
		EncryptedPassword: encrypted,
		PasswordExpired:   token.PasswordExpired,
		AccessToken:       access,
	}, nil
}

// archiveSample hands the OCR guess and CCXP's verdict to the archive. The
// lockout and unknown pages say nothing about the CAPTCHA and are skipped.
func (s *LoginService) archiveSample(ctx context.Context, ch models.CaptchaChallenge, answer string, kind ccxp.OutcomeKind) {
	if s.archive == nil {
		return
	}
	var verdict string
	switch kind {
	case ccxp.OutcomeWrongCaptcha:
		verdict = models.CaptchaRejected
	case ccxp.OutcomeSuccess, ccxp.OutcomeInvalidCredentials:
		verdict = models.CaptchaAccepted
	default:
		return
	}

	actx, cancel := context.WithTimeout(ctx, s.archiveTimeout)
	defer cancel()
	err := s.archive.Archive(actx, models.CaptchaSample{
		ChallengeID: ch.ChallengeID,
		Answer:      answer,
		Verdict:     verdict,
		CapturedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn(ctx, "captcha sample not archived", "attempt", ch.AttemptsUsed, "verdict", verdict, "error", err.Error())
	}
}
