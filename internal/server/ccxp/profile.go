package ccxp

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// profileLabels maps the CCXP row labels to profile fields.
var profileLabels = map[string]func(*models.Profile, string){
	"學號":     func(p *models.Profile, v string) { p.StudentID = v },
	"姓名":     func(p *models.Profile, v string) { p.NameZH = v },
	"中文姓名":   func(p *models.Profile, v string) { p.NameZH = v },
	"英文姓名":   func(p *models.Profile, v string) { p.NameEN = v },
	"系所":     func(p *models.Profile, v string) { p.Department = v },
	"系所班別":   func(p *models.Profile, v string) { p.Department = v },
	"年級":     func(p *models.Profile, v string) { p.Grade = v },
	"E-mail": func(p *models.Profile, v string) { p.Email = v },
	"電子郵件":   func(p *models.Profile, v string) { p.Email = v },
}

// FetchProfile reads the student record page for token. It returns nil,
// without error, when the page carries no student record, which is what
// CCXP serves to exchange-student accounts.
func (c *Client) FetchProfile(ctx context.Context, token models.SessionToken) (*models.Profile, error) {
	u := clone(c.profileURL)
	u.RawQuery = url.Values{"ACIXSTORE": {token.ACIXSTORE}}.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var profile *models.Profile
	err = c.do(ctx, req, func(resp *http.Response) error {
		page, rerr := readBig5(resp.Body)
		if rerr != nil {
			return rerr
		}
		var perr error
		profile, perr = ParseProfile(page)
		return perr
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ParseProfile extracts label/value cell pairs from a decoded profile page.
func ParseProfile(page string) (*models.Profile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	p := &models.Profile{}
	doc.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		label := normalizeLabel(cell.Text())
		set, ok := profileLabels[label]
		if !ok {
			return
		}
		value := strings.TrimSpace(cell.Next().Text())
		if value != "" {
			set(p, value)
		}
	})

	if p.StudentID == "" {
		return nil, nil
	}
	return p, nil
}

func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ":：")
	return strings.TrimSpace(s)
}
