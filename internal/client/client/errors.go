package client

import (
	"errors"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrBadReply    = errors.New("malformed server reply")
)

// RemoteError is an error result returned by the proxy. It unwraps to the
// matching sentinel from internal/common so callers can use errors.Is.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Kind + ": " + e.Message
}

func (e *RemoteError) Unwrap() error {
	switch e.Kind {
	case common.KindCaptchaMismatch:
		return common.ErrCaptchaMismatch
	case common.KindRateLimited:
		return common.ErrRateLimited
	case common.KindInvalidCredentials:
		return common.ErrInvalidCredentials
	case common.KindUnknown:
		return common.ErrUnknownProtocolDrift
	case common.KindDecryption:
		return common.ErrDecryption
	case common.KindUpstreamTimeout:
		return common.ErrUpstreamTimeout
	case common.KindInvalidRequest:
		return common.ErrInvalidRequest
	case common.KindInvalidToken:
		return common.ErrInvalidToken
	}
	return common.ErrorInternal
}
