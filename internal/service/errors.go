package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies failures the same way for every backend.
type ErrorCode string

const (
	CodeMissingSession ErrorCode = "MISSING_SESSION"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeMalformed      ErrorCode = "MALFORMED"
	CodeUnavailable    ErrorCode = "UNAVAILABLE"
	CodeBackend        ErrorCode = "BACKEND"
	CodeNetwork        ErrorCode = "NETWORK"
	CodeInvalid        ErrorCode = "INVALID"
)

// Error is a classified backend failure.
// Message holds the server's own message when it sent one.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Status != 0 {
		msg = fmt.Sprintf("request failed with status %d", e.Status)
	}
	if msg == "" {
		msg = strings.ToLower(string(e.Code))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a classified error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError classifies an existing error.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Common errors.
var (
	ErrMissingSession = NewError(CodeMissingSession, "not logged in")
	ErrUnauthorized   = NewError(CodeUnauthorized, "session expired")
	ErrNotFound       = NewError(CodeBackend, "not found")
)

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// ServerMessage returns the message the server attached to err, if any.
func ServerMessage(err error) (string, bool) {
	var sErr *Error
	if errors.As(err, &sErr) && sErr.Code == CodeBackend && sErr.Status != 0 && sErr.Message != "" {
		return sErr.Message, true
	}
	return "", false
}
