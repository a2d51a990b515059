// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import "github.com/bitfsorg/chainstore-go/chain"

// FromChainError wraps a chain storage failure, e.g. a header that failed
// validation before reaching the database, so it can travel through this
// layer with its own classification intact.
func FromChainError(err error) *Error { return wrap(KindChainStorage, err) }

// ToChainError re-exports a storage failure as a chain access error. The
// kind is not carried over but the full message, causes included, is; the
// original *Error stays reachable through errors.As.
func ToChainError(err *Error) *chain.Error {
	if err == nil {
		return nil
	}
	return chain.AccessError("postgres error: "+err.Error(), err)
}

// Export classifies any error and re-exports it as a chain error. A nil
// err stays an untyped nil.
func Export(err error) error {
	if e := Classify(err); e != nil {
		return ToChainError(e)
	}
	return nil
}
