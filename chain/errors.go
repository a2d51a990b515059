// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package chain

import "fmt"

// ErrorKind classifies a chain storage failure.
type ErrorKind int

const (
	// KindAccess indicates the storage backend could not be accessed or
	// failed while serving the request.
	KindAccess ErrorKind = iota + 1
	// KindValueNotFound indicates the requested value does not exist.
	KindValueNotFound
	// KindInvalidOperation indicates the operation conflicts with stored state.
	KindInvalidOperation
	// KindValidation indicates the value failed validation before storage.
	KindValidation
	// KindInvalidArguments indicates a malformed argument.
	KindInvalidArguments
)

func (k ErrorKind) String() string {
	switch k {
	case KindAccess:
		return "access error"
	case KindValueNotFound:
		return "value not found"
	case KindInvalidOperation:
		return "invalid operation"
	case KindValidation:
		return "validation error"
	case KindInvalidArguments:
		return "invalid arguments"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// Error is the failure type returned by every HeaderStore implementation.
//
// Msg carries the human readable detail. Err, when set, is the underlying
// cause and is reachable through errors.As; it is not repeated in Error()
// because backends embed its text in Msg already.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "chain: " + e.Kind.String()
	}
	return "chain: " + e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	// ErrAccess matches any KindAccess error.
	ErrAccess = &Error{Kind: KindAccess}

	// ErrValueNotFound matches any KindValueNotFound error.
	ErrValueNotFound = &Error{Kind: KindValueNotFound}

	// ErrInvalidOperation matches any KindInvalidOperation error.
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}

	// ErrValidation matches any KindValidation error.
	ErrValidation = &Error{Kind: KindValidation}

	// ErrInvalidArguments matches any KindInvalidArguments error.
	ErrInvalidArguments = &Error{Kind: KindInvalidArguments}
)

// AccessError reports a backend access failure.
func AccessError(msg string, cause error) *Error {
	return &Error{Kind: KindAccess, Msg: msg, Err: cause}
}

// ValueNotFound reports a missing entity, e.g. ValueNotFound("header", "height 10").
func ValueNotFound(entity, field string) *Error {
	return &Error{Kind: KindValueNotFound, Msg: entity + " not found by " + field}
}

// InvalidOperation reports an operation rejected due to stored state.
func InvalidOperation(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidOperation, Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports a value that failed validation.
func ValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArguments reports a malformed argument.
func InvalidArguments(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArguments, Msg: fmt.Sprintf(format, args...)}
}
