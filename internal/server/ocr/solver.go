// Package ocr calls the external CAPTCHA recognition service.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
)

// AnswerLen is the length of a CCXP CAPTCHA answer.
const AnswerLen = 6

const maxAnswerBytes = 256

// ImageURLFunc resolves a challenge id to the CAPTCHA image URL the OCR
// service should fetch.
type ImageURLFunc func(challengeID string) string

// Solver asks the OCR service to read one CAPTCHA image.
type Solver struct {
	http     *http.Client
	base     *url.URL
	imageURL ImageURLFunc
	timeout  time.Duration
}

func NewSolver(baseURL string, imageURL ImageURLFunc, timeout time.Duration, httpClient *http.Client) (*Solver, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ocr url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ocr url must be absolute: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Solver{http: httpClient, base: u, imageURL: imageURL, timeout: timeout}, nil
}

// Solve returns the OCR text for challengeID with surrounding whitespace
// removed. It does not check the answer length; see Valid.
func (s *Solver) Solve(ctx context.Context, challengeID string) (string, error) {
	u := *s.base
	q := u.Query()
	q.Set("url", s.imageURL(challengeID))
	u.RawQuery = q.Encode()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ocr returned %s", common.ErrCaptchaMismatch, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAnswerBytes))
	if err != nil {
		return "", classify(ctx, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// Valid reports whether answer has the shape of a CAPTCHA answer.
func Valid(answer string) bool {
	return len([]rune(answer)) == AnswerLen
}

func classify(parent context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: ocr: %v", common.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: ocr: %v", common.ErrCaptchaMismatch, err)
}
