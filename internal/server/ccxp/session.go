package ccxp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// ExtractSession follows the success redirect and reads the ACIXSTORE from
// the resulting page, or from the final URL when CCXP redirected further and
// the page omits it. A page
// carrying the credential error marker yields common.ErrInvalidCredentials.
func (c *Client) ExtractSession(ctx context.Context, redirectPath string) (*models.SessionToken, error) {
	u, err := c.resolve(redirectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect %q", common.ErrUnknownProtocolDrift, redirectPath)
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect %q", common.ErrUnknownProtocolDrift, redirectPath)
	}

	var token *models.SessionToken
	err = c.do(ctx, req, func(resp *http.Response) error {
		page, rerr := readBig5(resp.Body)
		if rerr != nil {
			return rerr
		}
		if strings.Contains(page, invalidCredentialsMarker) {
			return common.ErrInvalidCredentials
		}

		m := sessionPattern.FindStringSubmatch(page)
		if m == nil && redirected(req, resp) {
			m = sessionPattern.FindStringSubmatch(resp.Request.URL.RawQuery)
		}
		if m == nil {
			return fmt.Errorf("%w: session id missing after redirect", common.ErrUnknownProtocolDrift)
		}

		token = &models.SessionToken{
			ACIXSTORE:       m[1],
			PasswordExpired: strings.Contains(page, passwordExpiredMarker),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func redirected(req *http.Request, resp *http.Response) bool {
	return resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.String() != req.URL.String()
}
