package firewall

import (
	"errors"
	"fmt"
)

// Kind classifies a failed user action. Every failure is terminal for the
// action that produced it; nothing is retried automatically and nothing is
// converted into a Blocked verdict. A transport failure means safety could
// not be determined, not that the page is unsafe.
type Kind string

const (
	KindPayloadTooLarge    Kind = "payload_too_large"
	KindDomainNotAllowed   Kind = "domain_not_allowed"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindRateLimited        Kind = "rate_limited"
	KindTimeout            Kind = "timeout"
	KindBackendUnreachable Kind = "backend_unreachable"
	KindRemoteFailure      Kind = "remote_failure"
	KindMalformedResponse  Kind = "malformed_response"
)

// Error carries the taxonomy kind plus a human-readable message. Status and
// Body are populated for HTTP-level failures so the remote diagnostic text
// survives to the caller.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Body    string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, wrapped: err}
}

// KindOf extracts the taxonomy kind from err, or "" when err is not a
// firewall error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given taxonomy kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
