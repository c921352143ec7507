package retrieval

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes terminal failure categories so callers can render
// actionable messages without string matching.
type ErrorKind string

const (
	ErrKindInvalidInput                   ErrorKind = "InvalidInput"
	ErrKindRateLimitExceeded              ErrorKind = "RateLimitExceeded"
	ErrKindModelNotExist                  ErrorKind = "ModelNotExist"
	ErrKindModelCredentialsNotInitialized ErrorKind = "ModelCredentialsNotInitialized"
	ErrKindModelNotSupported              ErrorKind = "ModelNotSupported"
	ErrKindModelQuotaExceeded             ErrorKind = "ModelQuotaExceeded"
	ErrKindRetrievalFailed                ErrorKind = "RetrievalFailed"
)

// Error is the terminal failure type produced by the retrieval pipeline.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the failure kind from an error chain, defaulting to
// RetrievalFailed for errors raised by collaborators.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrKindRetrievalFailed
}
