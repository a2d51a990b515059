// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import (
	"errors"
	"fmt"
)

// Kind identifies one variant of the storage error taxonomy.
type Kind int

const (
	// KindNotFound: the requested record is absent. Built by call sites only.
	KindNotFound Kind = iota + 1
	// KindCouldNotAdd: an insert was rejected. Built by call sites only.
	KindCouldNotAdd
	// KindCouldNotDelete: a delete was rejected. Built by call sites only.
	KindCouldNotDelete
	// KindOther: an unclassified backend failure.
	KindOther
	// KindHexEncoding: a hex-encoded payload is malformed.
	KindHexEncoding
	// KindByteArrayEncoding: a fixed-width byte payload is malformed.
	KindByteArrayEncoding
	// KindJSONEncoding: a JSON payload is malformed.
	KindJSONEncoding
	// KindConnection: the database is unreachable or misconfigured.
	KindConnection
	// KindChainStorage: a chain storage failure passed through this layer.
	KindChainStorage
	// KindQuery: the database rejected or failed to execute a statement.
	KindQuery
)

var kindNames = map[Kind]string{
	KindNotFound:          "not found",
	KindCouldNotAdd:       "could not add",
	KindCouldNotDelete:    "could not delete",
	KindOther:             "other",
	KindHexEncoding:       "hex encoding",
	KindByteArrayEncoding: "byte array encoding",
	KindJSONEncoding:      "json encoding",
	KindConnection:        "connection",
	KindChainStorage:      "chain storage",
	KindQuery:             "query",
}

// templates holds the fixed message of each kind.
var templates = map[Kind]string{
	KindNotFound:          "postgres: requested value was not found in the database",
	KindCouldNotAdd:       "postgres: value could not be added to the database",
	KindCouldNotDelete:    "postgres: value could not be deleted from the database",
	KindOther:             "postgres: an error occurred in the database",
	KindHexEncoding:       "postgres: could not decode hex data",
	KindByteArrayEncoding: "postgres: could not decode byte array data",
	KindJSONEncoding:      "postgres: could not decode json data",
	KindConnection:        "postgres: could not connect to the database",
	KindChainStorage:      "postgres: chain storage error",
	KindQuery:             "postgres: database query failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Template returns the fixed message of the kind.
func (k Kind) Template() string {
	if t, ok := templates[k]; ok {
		return t
	}
	return "postgres: unknown error"
}

// carriesDescription reports whether the kind is built from a description
// rather than from a cause.
func (k Kind) carriesDescription() bool {
	switch k {
	case KindNotFound, KindCouldNotAdd, KindCouldNotDelete, KindOther:
		return true
	}
	return false
}

// Error is a classified storage failure.
//
// Description kinds (NotFound, CouldNotAdd, CouldNotDelete, Other) format as
// "<template>: <Description>". Cause kinds format as "<template>: <Err>".
// Err is always reachable through Unwrap; an Other built from an
// unrecognised error keeps that error in Err as well.
type Error struct {
	Kind        Kind
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Kind.carriesDescription() {
		return e.Kind.Template() + ": " + e.Description
	}
	if e.Err == nil {
		return e.Kind.Template()
	}
	return e.Kind.Template() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func describe(kind Kind, desc string) *Error {
	if desc == "" {
		desc = "unspecified " + kind.String() + " failure"
	}
	return &Error{Kind: kind, Description: desc}
}

// NotFound reports that the record identified by desc is absent,
// e.g. NotFound("block height 1000").
func NotFound(desc string) *Error { return describe(KindNotFound, desc) }

// CouldNotAdd reports that inserting the value identified by desc was rejected.
func CouldNotAdd(desc string) *Error { return describe(KindCouldNotAdd, desc) }

// CouldNotDelete reports that deleting the value identified by desc was rejected.
func CouldNotDelete(desc string) *Error { return describe(KindCouldNotDelete, desc) }

// Other reports a backend failure that fits no other kind.
func Other(desc string) *Error { return describe(KindOther, desc) }

// NotFoundf is NotFound with a formatted description.
func NotFoundf(format string, args ...any) *Error {
	return NotFound(fmt.Sprintf(format, args...))
}

// CouldNotAddf is CouldNotAdd with a formatted description.
func CouldNotAddf(format string, args ...any) *Error {
	return CouldNotAdd(fmt.Sprintf(format, args...))
}

// CouldNotDeletef is CouldNotDelete with a formatted description.
func CouldNotDeletef(format string, args ...any) *Error {
	return CouldNotDelete(fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err's chain holds an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
