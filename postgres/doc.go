// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package postgres stores block headers in PostgreSQL and defines the error
// taxonomy of that backend.
//
// Failures from the driver and the row codecs are classified by where they
// came from (Classify, From*). Failures that depend on meaning, such as a
// missing row, are built by the store itself (NotFound, CouldNotAdd,
// CouldNotDelete). Everything leaves the package as a *chain.Error through
// ToChainError, with the *Error still reachable via errors.As.
package postgres
