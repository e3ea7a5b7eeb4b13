// Package ccxp emulates a browser against the CCXP INQUIRE login flow: it
// fetches the CAPTCHA challenge, submits the login form, follows the
// success redirect and reads the student profile. Every response is Big5.
package ccxp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/logging"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Paths relative to the INQUIRE base URL.
const (
	loginPath       = ""
	captchaPath     = "auth_img.php"
	entryPath       = "pre_select_entry.php"
	profilePath     = "JH/8/8.3/8.3.1/JH83101.php"
	maxBodyBytes    = 1 << 20
	maxImageBytes   = 512 << 10
	streamChunkSize = 2048
)

// Markers in decoded CCXP pages.
const (
	wrongCaptchaMarker       = "驗證碼輸入錯誤"
	invalidCredentialsMarker = "帳號或密碼錯誤"
	passwordExpiredMarker    = "密碼已過期"
)

var (
	challengePattern = regexp.MustCompile(`auth_img\.php\?pwdstr=([a-zA-Z0-9_-]+)`)
	lockedOutPattern = regexp.MustCompile(`15\s*分鐘`)
	redirectPattern  = regexp.MustCompile(`(select_entry\.php\?ACIXSTORE=[a-zA-Z0-9_-]+[^"'\s>]*)`)
	sessionPattern   = regexp.MustCompile(`ACIXSTORE=([a-zA-Z0-9_-]+)`)
)

// Client talks to one CCXP deployment. It keeps no per-login state and is
// safe for concurrent use.
type Client struct {
	http    *http.Client
	base    *url.URL
	timeout time.Duration
	logger  logging.Logger

	loginURL, captchaURL, entryURL, profileURL *url.URL
}

// NewClient builds a Client for the INQUIRE tree at baseURL. timeout bounds
// each individual request. httpClient may be nil.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client, l logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse ccxp base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ccxp base url must be absolute: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{http: httpClient, base: u, timeout: timeout, logger: l.With("module", "ccxp")}

	if c.loginURL, err = c.resolve(loginPath); err != nil {
		return nil, err
	}
	if c.captchaURL, err = c.resolve(captchaPath); err != nil {
		return nil, err
	}
	if c.entryURL, err = c.resolve(entryPath); err != nil {
		return nil, err
	}
	if c.profileURL, err = c.resolve(profilePath); err != nil {
		return nil, err
	}
	return c, nil
}

// CaptchaImageURL is the absolute URL of the CAPTCHA image for challengeID.
func (c *Client) CaptchaImageURL(challengeID string) string {
	u := clone(c.captchaURL)
	u.RawQuery = url.Values{"pwdstr": {challengeID}}.Encode()
	return u.String()
}

func (c *Client) resolve(ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse ccxp path %q: %w", ref, err)
	}
	return c.base.ResolveReference(r), nil
}

func clone(u *url.URL) *url.URL {
	v := *u
	return &v
}

// do sends req under the per-call timeout and hands the open response to fn.
func (c *Client) do(ctx context.Context, req *http.Request, fn func(*http.Response) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.Do(req.WithContext(callCtx))
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", common.ErrUnknownProtocolDrift, req.URL.Path, resp.Status)
	}
	if err := fn(resp); err != nil {
		return classifyTransport(ctx, err)
	}
	return nil
}

// classifyTransport turns network failures into the error taxonomy. A
// canceled parent context is returned as is.
func classifyTransport(parent context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	if errors.Is(err, common.ErrUnknownProtocolDrift) || errors.Is(err, common.ErrInvalidCredentials) ||
		errors.Is(err, common.ErrRateLimited) || errors.Is(err, common.ErrUpstreamTimeout) {
		return err
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", common.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", common.ErrUnknownProtocolDrift, err)
}

// readBig5 decodes at most maxBodyBytes of r into UTF-8.
func readBig5(r io.Reader) (string, error) {
	b, err := io.ReadAll(transform.NewReader(io.LimitReader(r, maxBodyBytes), traditionalchinese.Big5.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encodeBig5 converts s for form submission, leaving s unchanged when it
// is not representable.
func encodeBig5(s string) string {
	b, err := traditionalchinese.Big5.NewEncoder().String(s)
	if err != nil {
		return s
	}
	return b
}
