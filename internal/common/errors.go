// Package common defines the error taxonomy shared by the proxy's layers.
// Callers should use errors.Is to match these values.
package common

import (
	"context"
	"errors"
)

var (
	// Retryable inside the login attempt budget.
	ErrCaptchaMismatch      = errors.New("captcha mismatch")
	ErrUnknownProtocolDrift = errors.New("unknown error")
	ErrUpstreamTimeout      = errors.New("upstream timeout")

	// Terminal.
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDecryption         = errors.New("decryption error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidRequest = errors.New("invalid request")
)

// Kind codes carried in error results.
const (
	KindCaptchaMismatch    = "CaptchaMismatch"
	KindRateLimited        = "RateLimited"
	KindInvalidCredentials = "InvalidCredentials"
	KindUnknown            = "UnknownError"
	KindDecryption         = "DecryptionError"
	KindUpstreamTimeout    = "UpstreamTimeout"
	KindInvalidRequest     = "InvalidRequest"
	KindCanceled           = "Canceled"
	KindInvalidToken       = "InvalidToken"
	KindInternal           = "InternalError"
)

// Kind maps err onto a stable kind code.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrDecryption):
		return KindDecryption
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, ErrCaptchaMismatch):
		return KindCaptchaMismatch
	case errors.Is(err, ErrUpstreamTimeout):
		return KindUpstreamTimeout
	case errors.Is(err, ErrUnknownProtocolDrift):
		return KindUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindInternal
}

// Message returns the user-facing text for err.
func Message(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case KindRateLimited:
		return "too many failed sign-in attempts, try again in 15 minutes"
	case KindInvalidCredentials:
		return "wrong student id or password"
	case KindDecryption:
		return "stored credential is invalid, please sign in again"
	case KindInvalidRequest:
		return "student id and password are required"
	case KindCaptchaMismatch, KindUpstreamTimeout, KindUnknown:
		return "the campus system did not respond as expected, please try again later"
	case KindCanceled:
		return "request canceled"
	case KindInvalidToken:
		return "invalid token"
	}
	return "internal error"
}
