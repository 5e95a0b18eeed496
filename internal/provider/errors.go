package provider

import "errors"

// ErrorKind classifies provider failures. The planner never surfaces these
// to callers; they only pick the log message and the fallback path.
type ErrorKind string

const (
	ErrTimeout           ErrorKind = "timeout"
	ErrAuthMissing       ErrorKind = "auth_missing"
	ErrMalformedResponse ErrorKind = "malformed_response"
	ErrUnavailable       ErrorKind = "unavailable"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return "provider " + string(e.Kind) + ": " + e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// IsKind reports whether err is a provider error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
