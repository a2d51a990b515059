// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/bitfsorg/chainstore-go/chain"
	"github.com/bitfsorg/chainstore-go/codec"
)

// The From* functions wrap err as the cause of the matching kind without
// looking at its content. They return nil for a nil err.

func wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// FromHexError classifies a hex decoding failure.
func FromHexError(err error) *Error { return wrap(KindHexEncoding, err) }

// FromByteArrayError classifies a fixed-width byte array validation failure.
func FromByteArrayError(err error) *Error { return wrap(KindByteArrayEncoding, err) }

// FromJSONError classifies a JSON decoding failure.
func FromJSONError(err error) *Error { return wrap(KindJSONEncoding, err) }

// FromConnectError classifies a failure to establish a database connection,
// whatever its reason (network, authentication, configuration).
func FromConnectError(err error) *Error { return wrap(KindConnection, err) }

// FromQueryError classifies a statement that did not succeed, including
// pgx.ErrNoRows. Call sites that need NotFound must check for it first.
func FromQueryError(err error) *Error { return wrap(KindQuery, err) }

// fromDriverError classifies an error returned by Exec, QueryRow or Scan.
// Connection failures surfaced by a statement keep KindConnection; anything
// not recognised otherwise is a failed query.
func fromDriverError(err error) *Error {
	e := Classify(err)
	if e != nil && e.Kind == KindOther {
		return FromQueryError(err)
	}
	return e
}

// isType reports whether err's chain holds a value of type T.
func isType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

type rule struct {
	kind  Kind
	match func(error) bool
}

// rules are tried in order. Chain errors come first so a domain failure
// that wraps a storage failure keeps its domain classification; connection
// errors precede query errors because pgconn.ConnectError may wrap a PgError.
var rules = []rule{
	{KindChainStorage, isType[*chain.Error]},
	{KindConnection, func(err error) bool {
		return isType[*pgconn.ConnectError](err) || isType[*pgconn.ParseConfigError](err)
	}},
	{KindQuery, func(err error) bool {
		return isType[*pgconn.PgError](err) ||
			isType[*pq.Error](err) ||
			errors.Is(err, pgx.ErrNoRows) ||
			errors.Is(err, pgx.ErrTooManyRows)
	}},
	{KindHexEncoding, func(err error) bool {
		return isType[*codec.HexError](err) ||
			isType[hex.InvalidByteError](err) ||
			errors.Is(err, hex.ErrLength) ||
			errors.Is(err, chainhash.ErrHashStrSize)
	}},
	{KindByteArrayEncoding, isType[*codec.ByteArrayError]},
	{KindJSONEncoding, func(err error) bool {
		return isType[*json.SyntaxError](err) ||
			isType[*json.UnmarshalTypeError](err) ||
			isType[*json.InvalidUnmarshalError](err)
	}},
}

// Classify converts any error into the taxonomy. An *Error is returned
// unchanged. Otherwise the error's type decides the kind and the whole
// error becomes the cause. Errors of an unknown type become KindOther with
// a description naming the type. Classify returns nil only for a nil err.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	for _, r := range rules {
		if r.match(err) {
			return &Error{Kind: r.kind, Err: err}
		}
	}
	return &Error{
		Kind:        KindOther,
		Description: fmt.Sprintf("unclassified %T: %v", err, err),
		Err:         err,
	}
}
