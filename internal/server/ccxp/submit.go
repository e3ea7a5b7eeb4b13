package ccxp

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// OutcomeKind classifies the page CCXP returns for a login POST.
type OutcomeKind int

const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeWrongCaptcha
	OutcomeLockedOut
	OutcomeInvalidCredentials
	OutcomeSuccess
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWrongCaptcha:
		return "wrong_captcha"
	case OutcomeLockedOut:
		return "locked_out"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeSuccess:
		return "success"
	}
	return "unknown"
}

// Outcome is the classified submit response. RedirectPath is set only for
// OutcomeSuccess.
type Outcome struct {
	Kind         OutcomeKind
	RedirectPath string
}

// submitLabel is the Big5 form value of the "登入" button.
var submitLabel = encodeBig5("登入")

// Submit posts the login form and classifies the response. Transport errors
// are returned as errors; every page CCXP serves is an Outcome.
func (c *Client) Submit(ctx context.Context, cred models.Credential, answer, challengeID string) (Outcome, error) {
	form := url.Values{}
	form.Set("account", cred.StudentID)
	form.Set("passwd", cred.Password)
	form.Set("passwd2", answer)
	form.Set("Submit", submitLabel)
	form.Set("fnstr", challengeID)

	req, err := http.NewRequest(http.MethodPost, c.entryURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out Outcome
	err = c.do(ctx, req, func(resp *http.Response) error {
		page, rerr := readBig5(resp.Body)
		if rerr != nil {
			return rerr
		}
		out = Classify(page)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Classify inspects a decoded submit response. The lockout check runs first
// because the lockout page may also repeat the credential error text.
func Classify(page string) Outcome {
	switch {
	case lockedOutPattern.MatchString(page):
		return Outcome{Kind: OutcomeLockedOut}
	case strings.Contains(page, wrongCaptchaMarker):
		return Outcome{Kind: OutcomeWrongCaptcha}
	case strings.Contains(page, invalidCredentialsMarker):
		return Outcome{Kind: OutcomeInvalidCredentials}
	}
	if m := redirectPattern.FindStringSubmatch(page); m != nil {
		return Outcome{Kind: OutcomeSuccess, RedirectPath: m[1]}
	}
	return Outcome{Kind: OutcomeUnknown}
}
