package ccxptest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// Guess decides what the fake OCR answers on its n-th call (1-based) given
// the correct text.
type Guess func(n int, correct string) string

// Correct always reads the CAPTCHA right.
func Correct(_ int, correct string) string { return correct }

// WrongFirst misreads the first k CAPTCHAs with a same-length wrong answer.
func WrongFirst(k int) Guess {
	return func(n int, correct string) string {
		if n <= k {
			return "XXXXXX"
		}
		return correct
	}
}

// OCR is a fake OCR service bound to a fake CCXP.
type OCR struct {
	*httptest.Server

	mu    sync.Mutex
	calls int
}

// NewOCR answers GET /?url=<captcha image url> using guess.
func NewOCR(site *CCXP, guess Guess) *OCR {
	o := &OCR{}
	o.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img, err := url.Parse(r.URL.Query().Get("url"))
		if err != nil {
			http.Error(w, "bad url", http.StatusBadRequest)
			return
		}
		o.mu.Lock()
		o.calls++
		n := o.calls
		o.mu.Unlock()

		correct := site.AnswerFor(img.Query().Get("pwdstr"))
		_, _ = w.Write([]byte(guess(n, correct) + "\n"))
	}))
	return o
}

// Calls reports how many answers were served.
func (o *OCR) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}
