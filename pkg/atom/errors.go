package atom

import (
	"errors"
	"fmt"
)

// Error is an atom failure carrying a stable code.
//
// Errors compare equal under errors.Is when their codes match, so callers
// test against the sentinels below regardless of key or cause.
type Error struct {
	Code    string // e.g. "ATOM-4220"
	Message string
	Key     string // atom key, if known
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// with returns a copy of e bound to key, details and cause.
func (e *Error) with(key, details string, cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Key:     key,
		Details: details,
		Cause:   cause,
	}
}

var (
	// ErrEmptyKey indicates an atom was created without a key.
	ErrEmptyKey = &Error{Code: "ATOM-4000", Message: "key is required"}

	// ErrNoStorage indicates an atom was created without a storage adapter.
	ErrNoStorage = &Error{Code: "ATOM-4001", Message: "storage adapter is required"}

	// ErrDecode indicates the stored string could not be decoded.
	ErrDecode = &Error{Code: "ATOM-4220", Message: "decode stored value"}

	// ErrEncode indicates the value could not be encoded for storage.
	ErrEncode = &Error{Code: "ATOM-4221", Message: "encode value"}

	// ErrMiddleware indicates a middleware callback rejected the value.
	ErrMiddleware = &Error{Code: "ATOM-4222", Message: "middleware rejected value"}

	// ErrStorage indicates the storage adapter failed.
	ErrStorage = &Error{Code: "ATOM-5030", Message: "storage adapter failed"}
)

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
