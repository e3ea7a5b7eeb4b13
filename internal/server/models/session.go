package models

// CaptchaChallenge ties one displayed CAPTCHA image (pwdstr) to a login
// attempt.
type CaptchaChallenge struct {
	ChallengeID  string
	AttemptsUsed int
}

// SessionToken is the ACIXSTORE value granted by CCXP.
type SessionToken struct {
	ACIXSTORE       string
	PasswordExpired bool
}

// Profile is the subset of the CCXP student record used for token claims.
type Profile struct {
	StudentID  string `json:"studentId"`
	NameZH     string `json:"nameZh"`
	NameEN     string `json:"nameEn"`
	Department string `json:"department"`
	Grade      string `json:"grade"`
	Email      string `json:"email"`
}

// AuthResult is returned to the client. It never carries the raw password.
type AuthResult struct {
	SessionToken      string `json:"sessionToken"`
	EncryptedPassword string `json:"encryptedPassword"`
	PasswordExpired   bool   `json:"passwordExpired"`
	AccessToken       string `json:"accessToken"`
}
