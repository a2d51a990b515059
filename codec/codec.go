// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package codec decodes the hex and fixed-width byte fields stored by the
// relational backends. Every failure is reported as a typed error so callers
// can classify it by type alone.
package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// HexError reports a field whose hex encoding is malformed.
type HexError struct {
	Field string
	Err   error // hex.InvalidByteError or hex.ErrLength
}

func (e *HexError) Error() string {
	return fmt.Sprintf("codec: field %q: %v", e.Field, e.Err)
}

func (e *HexError) Unwrap() error { return e.Err }

// ByteArrayError reports a field whose decoded length is not the required
// fixed width.
type ByteArrayError struct {
	Field string
	Want  int
	Got   int
}

func (e *ByteArrayError) Error() string {
	return fmt.Sprintf("codec: field %q must be %d bytes, got %d", e.Field, e.Want, e.Got)
}

// DecodeHex decodes a hex string.
func DecodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &HexError{Field: field, Err: err}
	}
	return b, nil
}

// EncodeHex is the inverse of DecodeHex.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FixedBytes checks that b is exactly n bytes long.
func FixedBytes(field string, b []byte, n int) ([]byte, error) {
	if len(b) != n {
		return nil, &ByteArrayError{Field: field, Want: n, Got: len(b)}
	}
	return b, nil
}

// DecodeFixedHex decodes a hex string that must hold exactly n bytes.
func DecodeFixedHex(field, s string, n int) ([]byte, error) {
	b, err := DecodeHex(field, s)
	if err != nil {
		return nil, err
	}
	return FixedBytes(field, b, n)
}

// DecodeHash decodes a hex encoded 32-byte hash in storage byte order.
func DecodeHash(field, s string) (*chainhash.Hash, error) {
	b, err := DecodeFixedHex(field, s, chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	return chainhash.NewHash(b)
}
