package models

import "time"

// LoginAttempt is one fetch→solve→submit cycle.
type LoginAttempt struct {
	Number  int
	Outcome string
}

// LoginEvent summarises one SignIn or RefreshSession call for the audit
// trail. SubjectHash is a keyed pseudonym, never the student id.
type LoginEvent struct {
	ID          string
	Operation   string
	Outcome     string
	SubjectHash string
	Duration    time.Duration
	Attempts    []LoginAttempt
	CreatedAt   time.Time
}

// Captcha verdicts.
const (
	CaptchaAccepted = "accepted"
	CaptchaRejected = "rejected"
)

// CaptchaSample is one OCR guess together with CCXP's verdict on it.
type CaptchaSample struct {
	ChallengeID string
	Answer      string
	Verdict     string
	CapturedAt  time.Time
}
