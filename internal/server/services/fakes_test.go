package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/ccxpauth/internal/server/ccxp"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// --- hand-written fakes ---

type submitStep struct {
	out ccxp.Outcome
	err error
}

type fakeCCXP struct {
	challengeErr []error
	submits      []submitStep
	sessionErr   error
	session      models.SessionToken
	profile      *models.Profile
	profileErr   error
	onChallenge  func()

	challengeCalls int
	submitCalls    int
	extractCalls   int
	profileCalls   int
}

func (f *fakeCCXP) FetchChallenge(ctx context.Context) (string, error) {
	f.challengeCalls++
	if f.onChallenge != nil {
		f.onChallenge()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if i := f.challengeCalls - 1; i < len(f.challengeErr) && f.challengeErr[i] != nil {
		return "", f.challengeErr[i]
	}
	return fmt.Sprintf("chal-%d", f.challengeCalls), nil
}

func (f *fakeCCXP) Submit(ctx context.Context, cred models.Credential, answer, challengeID string) (ccxp.Outcome, error) {
	f.submitCalls++
	if i := f.submitCalls - 1; i < len(f.submits) {
		return f.submits[i].out, f.submits[i].err
	}
	return ccxp.Outcome{Kind: ccxp.OutcomeSuccess, RedirectPath: "select_entry.php?ACIXSTORE=s"}, nil
}

func (f *fakeCCXP) ExtractSession(ctx context.Context, redirectPath string) (*models.SessionToken, error) {
	f.extractCalls++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	t := f.session
	return &t, nil
}

func (f *fakeCCXP) FetchProfile(ctx context.Context, token models.SessionToken) (*models.Profile, error) {
	f.profileCalls++
	return f.profile, f.profileErr
}

type fakeSolver struct {
	answers []string
	err     error
	calls   int
}

func (f *fakeSolver) Solve(ctx context.Context, challengeID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if i := f.calls - 1; i < len(f.answers) {
		return f.answers[i], nil
	}
	return "123456", nil
}

// reverseCipher is a transparent stand-in for the AES cipher.
type reverseCipher struct {
	encryptErr error
	encrypted  []string
}

func (c *reverseCipher) Encrypt(p string) (string, error) {
	if c.encryptErr != nil {
		return "", c.encryptErr
	}
	c.encrypted = append(c.encrypted, p)
	return "enc:" + p, nil
}

func (c *reverseCipher) Decrypt(s string) (string, error) {
	p, ok := strings.CutPrefix(s, "enc:")
	if !ok {
		return "", errors.New("not ours")
	}
	return p, nil
}

type fakeMinter struct {
	err    error
	minted []models.Profile
}

func (m *fakeMinter) Mint(ctx context.Context, p models.Profile) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.minted = append(m.minted, p)
	return "token-for-" + p.StudentID, nil
}

type fakeAudit struct {
	mu     sync.Mutex
	err    error
	events []models.LoginEvent
}

func (a *fakeAudit) Record(ctx context.Context, e *models.LoginEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, *e)
	return a.err
}

type fakeArchive struct {
	mu      sync.Mutex
	err     error
	samples []models.CaptchaSample
}

func (a *fakeArchive) Archive(ctx context.Context, s models.CaptchaSample) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples = append(a.samples, s)
	return a.err
}

type stubHasher struct{}

func (stubHasher) Hash(id string) string { return "h(" + id + ")" }
