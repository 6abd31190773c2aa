package portal

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrValidation
	ErrNotAuthenticated
	ErrTimeout
	ErrHTTPStatus
	ErrRemoteFailure
	ErrFeatureDisabled
	ErrNetwork
	ErrParsing
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "none"
	case ErrValidation:
		return "validation"
	case ErrNotAuthenticated:
		return "not authenticated"
	case ErrTimeout:
		return "timeout"
	case ErrHTTPStatus:
		return "http status"
	case ErrRemoteFailure:
		return "remote failure"
	case ErrFeatureDisabled:
		return "feature disabled"
	case ErrNetwork:
		return "network"
	case ErrParsing:
		return "parsing"
	default:
		return "unknown"
	}
}

// Error implements error so a bare code can be used as an errors.Is target:
//
//	errors.Is(err, portal.ErrTimeout)
func (c ErrorCode) Error() string {
	return c.String()
}

// Error is the single error type returned by the portal package. Status is
// only set for ErrHTTPStatus.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func newError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	switch {
	case e.Code == ErrHTTPStatus:
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Code.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

// CodeOf returns the portal error code carried by err, ErrNone for nil and
// ErrNetwork for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrNetwork
}

// messageOf is the short human-readable form of err used in status lines.
func messageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" && e.Code != ErrHTTPStatus {
		return e.Message
	}
	return err.Error()
}
