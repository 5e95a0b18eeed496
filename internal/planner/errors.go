package planner

import "errors"

// ErrorKind classifies core errors so the transport layer can map them to
// responses without string matching.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindEmptyTaskSet ErrorKind = "empty_task_set"
	KindProvider     ErrorKind = "provider"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return string(e.Kind) + ": " + e.Field + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message
}

func NewValidation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Field: field}
}

func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewEmptyTaskSet() *Error {
	return &Error{Kind: KindEmptyTaskSet, Message: "cannot generate a plan for an empty task set"}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
