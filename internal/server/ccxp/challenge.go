package ccxp

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
)

// FetchChallenge loads the login page and returns the pwdstr embedded in the
// CAPTCHA image URL. The body is scanned as it streams in and the
// connection is released as soon as the marker is seen.
func (c *Client) FetchChallenge(ctx context.Context) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.loginURL.String(), nil)
	if err != nil {
		return "", err
	}

	var id string
	err = c.do(ctx, req, func(resp *http.Response) error {
		s := NewScanner(challengePattern)
		buf := make([]byte, streamChunkSize)
		for {
			n, rerr := resp.Body.Read(buf)
			if n > 0 {
				if v, ok := s.Feed(buf[:n]); ok {
					id = v
					return nil
				}
			}
			if rerr == io.EOF {
				if v, ok := s.Close(); ok {
					id = v
					return nil
				}
				return fmt.Errorf("%w: challenge marker not found", common.ErrUnknownProtocolDrift)
			}
			if rerr != nil {
				return rerr
			}
		}
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// FetchCaptchaImage downloads the CAPTCHA image for challengeID.
func (c *Client) FetchCaptchaImage(ctx context.Context, challengeID string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.CaptchaImageURL(challengeID), nil)
	if err != nil {
		return nil, err
	}
	var img []byte
	err = c.do(ctx, req, func(resp *http.Response) error {
		var rerr error
		img, rerr = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		return rerr
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}
