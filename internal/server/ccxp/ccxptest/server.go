// Package ccxptest provides in-process fakes of the CCXP INQUIRE site and of
// the OCR service, serving Big5 pages like the real system.
package ccxptest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/traditionalchinese"
)

// Page fragments, UTF-8; the server encodes them to Big5.
const (
	WrongCaptchaPage = `<html><body><script>alert("驗證碼輸入錯誤!")</script></body></html>`
	LockedOutPage    = `<html><body>登入錯誤次數過多，請15分鐘後再登入</body></html>`
	InvalidPage      = `<html><body>帳號或密碼錯誤，請重新登入</body></html>`
	MaintenancePage  = `<html><body>系統維護中</body></html>`
	ProfilePath      = "/JH/8/8.3/8.3.1/JH83101.php"
)

// CCXP is a scripted fake of the INQUIRE tree.
type CCXP struct {
	*httptest.Server

	StudentID string
	Password  string

	// Behaviour switches; set before use.
	LockOut         bool
	PasswordExpired bool
	Exchange        bool
	DriftOnSubmit   bool
	DropSessionID   bool
	NoChallenge     bool
	ChallengeDelay  time.Duration
	SlowChallenges  int

	mu             sync.Mutex
	challengeCalls int
	submitCalls    int
	redirectCalls  int
	profileCalls   int
	imageCalls     int
	answers        map[string]string
	badSessions    map[string]bool
	lastForm       url.Values
}

// NewCCXP starts a fake that accepts studentID/password.
func NewCCXP(studentID, password string) *CCXP {
	f := &CCXP{
		StudentID:   studentID,
		Password:    password,
		answers:     map[string]string{},
		badSessions: map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/INQUIRE/", f.handleLogin)
	mux.HandleFunc("/INQUIRE/auth_img.php", f.handleImage)
	mux.HandleFunc("/INQUIRE/pre_select_entry.php", f.handleSubmit)
	mux.HandleFunc("/INQUIRE/select_entry.php", f.handleRedirect)
	mux.HandleFunc("/INQUIRE"+ProfilePath, f.handleProfile)
	f.Server = httptest.NewServer(mux)
	return f
}

// BaseURL is the INQUIRE base to configure clients with.
func (f *CCXP) BaseURL() string { return f.URL + "/INQUIRE" }

// AnswerFor returns the CAPTCHA text for a challenge id.
func (f *CCXP) AnswerFor(challengeID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answers[challengeID]
}

// SessionFor is the ACIXSTORE the fake grants on the n-th submit.
func SessionFor(n int) string { return fmt.Sprintf("sess%04d", n) }

func (f *CCXP) ChallengeCalls() int { f.mu.Lock(); defer f.mu.Unlock(); return f.challengeCalls }
func (f *CCXP) SubmitCalls() int    { f.mu.Lock(); defer f.mu.Unlock(); return f.submitCalls }
func (f *CCXP) RedirectCalls() int  { f.mu.Lock(); defer f.mu.Unlock(); return f.redirectCalls }
func (f *CCXP) ProfileCalls() int   { f.mu.Lock(); defer f.mu.Unlock(); return f.profileCalls }
func (f *CCXP) ImageCalls() int     { f.mu.Lock(); defer f.mu.Unlock(); return f.imageCalls }

// LastForm returns the most recent submitted form.
func (f *CCXP) LastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm
}

func writeBig5(w http.ResponseWriter, page string) {
	b, err := traditionalchinese.Big5.NewEncoder().String(page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=big5")
	_, _ = w.Write([]byte(b))
}

func (f *CCXP) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/INQUIRE/" {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	f.challengeCalls++
	n := f.challengeCalls
	id := fmt.Sprintf("chal-%d", n)
	f.answers[id] = fmt.Sprintf("%06d", 100000+n)
	slow := n <= f.SlowChallenges
	delay := f.ChallengeDelay
	noChallenge := f.NoChallenge
	f.mu.Unlock()

	if slow {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if noChallenge {
		writeBig5(w, MaintenancePage)
		return
	}

	filler := strings.Repeat("<!-- 國立清華大學校務資訊系統 -->\n", 50)
	writeBig5(w, `<html><head><title>校務資訊系統</title></head><body>`+filler+
		`<form action="pre_select_entry.php" method="post">`+
		`<img src="auth_img.php?pwdstr=`+id+`">`+
		`<input name="account"><input name="passwd" type="password"><input name="passwd2">`+
		`<input type="hidden" name="fnstr" value="`+id+`"></form>`+filler+`</body></html>`)
}

func (f *CCXP) handleImage(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.imageCalls++
	f.mu.Unlock()
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n" + r.URL.Query().Get("pwdstr")))
}

func (f *CCXP) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.submitCalls++
	n := f.submitCalls
	f.lastForm = r.PostForm
	want := f.answers[r.PostForm.Get("fnstr")]
	good := r.PostForm.Get("account") == f.StudentID && r.PostForm.Get("passwd") == f.Password
	session := SessionFor(n)
	if !good {
		f.badSessions[session] = true
	}
	lockOut, drift := f.LockOut, f.DriftOnSubmit
	f.mu.Unlock()

	switch {
	case lockOut:
		writeBig5(w, LockedOutPage)
	case want == "" || r.PostForm.Get("passwd2") != want:
		writeBig5(w, WrongCaptchaPage)
	case drift:
		writeBig5(w, MaintenancePage)
	default:
		writeBig5(w, `<html><head><meta http-equiv="refresh" content="0; url=select_entry.php?ACIXSTORE=`+
			session+`&hint=`+url.QueryEscape(r.PostForm.Get("account"))+`"></head></html>`)
	}
}

func (f *CCXP) handleRedirect(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("ACIXSTORE")

	f.mu.Lock()
	f.redirectCalls++
	bad := f.badSessions[session]
	expired, drop := f.PasswordExpired, f.DropSessionID
	f.mu.Unlock()

	if bad {
		writeBig5(w, InvalidPage)
		return
	}
	if drop {
		writeBig5(w, `<html><frameset><frame src="top.php"></frameset></html>`)
		return
	}
	notice := ""
	if expired {
		notice = `<script>alert("您的密碼已過期，請儘速更改")</script>`
	}
	writeBig5(w, `<html>`+notice+`<frameset><frame src="top.php?ACIXSTORE=`+session+`">`+
		`<frame src="IN_INQ_STU.php?ACIXSTORE=`+session+`"></frameset></html>`)
}

func (f *CCXP) handleProfile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.profileCalls++
	exchange := f.Exchange
	id := f.StudentID
	f.mu.Unlock()

	if exchange {
		writeBig5(w, `<html><body>本功能不適用</body></html>`)
		return
	}
	writeBig5(w, `<html><body><table>`+
		`<tr><td>學號：</td><td>`+id+`</td></tr>`+
		`<tr><td>姓名</td><td>王小明</td></tr>`+
		`<tr><td>英文姓名</td><td>WANG, HSIAO-MING</td></tr>`+
		`<tr><td>系所班別</td><td>資訊工程學系</td></tr>`+
		`<tr><td>年級</td><td>3</td></tr>`+
		`<tr><th>E-mail</th><td>s107012345@m107.nthu.edu.tw</td></tr>`+
		`</table></body></html>`)
}
