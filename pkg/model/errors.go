package model

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ErrorKindBadRequest ErrorKind = iota + 1
	ErrorKindUnauthenticated
	ErrorKindForbidden
	ErrorKindTooManyRequests
)

// RequestError is an error whose message is safe to return to API callers.
// Any other error is reported as an internal error with a generic message.
type RequestError struct {
	Kind    ErrorKind
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func BadRequest(format string, args ...any) error {
	return &RequestError{Kind: ErrorKindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(msg string) error {
	return &RequestError{Kind: ErrorKindUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	return &RequestError{Kind: ErrorKindForbidden, Message: msg}
}

func TooManyRequests(msg string) error {
	return &RequestError{Kind: ErrorKindTooManyRequests, Message: msg}
}

// AsRequestError extracts a RequestError from err's chain
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
