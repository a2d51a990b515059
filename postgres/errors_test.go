// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/chainstore-go/chain"
	"github.com/bitfsorg/chainstore-go/codec"
)

// --- Taxonomy ---

func TestKind_StringAndTemplate(t *testing.T) {
	kinds := []Kind{
		KindNotFound, KindCouldNotAdd, KindCouldNotDelete, KindOther,
		KindHexEncoding, KindByteArrayEncoding, KindJSONEncoding,
		KindConnection, KindChainStorage, KindQuery,
	}
	seen := make(map[string]Kind)
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			assert.NotContains(t, k.String(), "kind(")
			assert.Contains(t, k.Template(), "postgres: ")
			if prev, dup := seen[k.Template()]; dup {
				t.Errorf("%v and %v share template %q", prev, k, k.Template())
			}
			seen[k.Template()] = k
		})
	}

	assert.Equal(t, "kind(99)", Kind(99).String())
	assert.Equal(t, "postgres: unknown error", Kind(99).Template())
}

func TestNotFound_Description(t *testing.T) {
	err := NotFound("block height 1000")

	assert.Equal(t, KindNotFound, err.Kind)
	assert.Contains(t, err.Error(), KindNotFound.Template())
	assert.Contains(t, err.Error(), "1000")
	assert.Nil(t, err.Unwrap())
}

func TestDescriptionConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		desc string
	}{
		{"not found", NotFoundf("header %s", "00ff"), KindNotFound, "header 00ff"},
		{"could not add", CouldNotAdd("duplicate tip"), KindCouldNotAdd, "duplicate tip"},
		{"could not addf", CouldNotAddf("height %d", 7), KindCouldNotAdd, "height 7"},
		{"could not delete", CouldNotDelete("row gone"), KindCouldNotDelete, "row gone"},
		{"could not deletef", CouldNotDeletef("hash %x", []byte{0xab}), KindCouldNotDelete, "hash ab"},
		{"other", Other("disk full"), KindOther, "disk full"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.err.Kind)
			assert.Equal(t, tc.kind.Template()+": "+tc.desc, tc.err.Error())
		})
	}
}

func TestDescriptionConstructors_EmptyDescription(t *testing.T) {
	err := CouldNotAdd("")
	assert.Equal(t, "unspecified could not add failure", err.Description)
	assert.Equal(t, KindCouldNotAdd.Template()+": unspecified could not add failure", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading tip: %w", NotFound("tip"))

	k, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, k)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindQuery))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KindOther))
}

// --- Factories ---

func TestFactories_NilInNilOut(t *testing.T) {
	factories := map[string]func(error) *Error{
		"hex":        FromHexError,
		"byte array": FromByteArrayError,
		"json":       FromJSONError,
		"connect":    FromConnectError,
		"query":      FromQueryError,
		"chain":      FromChainError,
		"classify":   Classify,
	}
	for name, f := range factories {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, f(nil))
		})
	}
	assert.Nil(t, ToChainError(nil))
	assert.NoError(t, Export(nil))
	assert.True(t, Export((*Error)(nil)) == nil, "typed nil must export as untyped nil")
}

func TestFromHexError_KeepsCause(t *testing.T) {
	cause := errors.New("invalid hex digit at position 3")

	err := FromHexError(cause)

	assert.Equal(t, KindHexEncoding, err.Kind)
	assert.Same(t, cause, err.Err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindHexEncoding.Template()+": invalid hex digit at position 3", err.Error())
}

func TestFromConnectError_ReExport(t *testing.T) {
	cause := errors.New("password authentication failed")

	err := FromConnectError(cause)
	require.Equal(t, KindConnection, err.Kind)

	exported := ToChainError(err)
	assert.Equal(t, chain.KindAccess, exported.Kind)
	assert.Contains(t, exported.Error(), "password authentication failed")
	assert.ErrorIs(t, exported, chain.ErrAccess)
	assert.ErrorIs(t, exported, cause)

	var pgErr *Error
	require.ErrorAs(t, exported, &pgErr)
	assert.Same(t, err, pgErr)
}

func TestFromChainError_RecoversOriginal(t *testing.T) {
	original := chain.ValidationError("header at height %d: prev block does not match %s", 5, "abcd")

	err := FromChainError(original)
	assert.Equal(t, KindChainStorage, err.Kind)
	assert.Contains(t, err.Error(), original.Error())

	var got *chain.Error
	require.ErrorAs(t, err, &got)
	assert.Same(t, original, got)
	assert.Equal(t, original.Msg, got.Msg)

	// Re-exported, the outer chain error is an access error but the original
	// kind is still found deeper in the chain.
	exported := ToChainError(err)
	assert.ErrorIs(t, exported, chain.ErrAccess)
	assert.ErrorIs(t, exported, chain.ErrValidation)
	assert.Contains(t, exported.Error(), original.Error())
}

// --- Classify ---

func jsonSyntaxError(t *testing.T) error {
	t.Helper()
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	require.Error(t, err)
	return err
}

func jsonTypeError(t *testing.T) error {
	t.Helper()
	var d headerDoc
	err := json.Unmarshal([]byte(`{"version":"one"}`), &d)
	require.Error(t, err)
	return err
}

func parseConfigError(t *testing.T) error {
	t.Helper()
	_, err := pgconn.ParseConfig("host=localhost port=notaport")
	require.Error(t, err)
	var pce *pgconn.ParseConfigError
	require.ErrorAs(t, err, &pce)
	return err
}

func TestClassify(t *testing.T) {
	_, hexErr := codec.DecodeHex("hash", "zz")
	_, lenErr := codec.DecodeFixedHex("hash", "abcd", chain.HashSize)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"codec hex", hexErr, KindHexEncoding},
		{"hex invalid byte", hex.InvalidByteError('z'), KindHexEncoding},
		{"hex odd length", hex.ErrLength, KindHexEncoding},
		{"hash string size", chainhash.ErrHashStrSize, KindHexEncoding},
		{"codec byte array", lenErr, KindByteArrayEncoding},
		{"json syntax", jsonSyntaxError(t), KindJSONEncoding},
		{"json type", jsonTypeError(t), KindJSONEncoding},
		{"json invalid target", &json.InvalidUnmarshalError{}, KindJSONEncoding},
		{"parse config", parseConfigError(t), KindConnection},
		{"pg error", &pgconn.PgError{Severity: "ERROR", Code: "42P01", Message: `relation "block_headers" does not exist`}, KindQuery},
		{"pq error", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}, KindQuery},
		{"no rows", pgx.ErrNoRows, KindQuery},
		{"too many rows", pgx.ErrTooManyRows, KindQuery},
		{"chain error", chain.ValueNotFound("header", "height 3"), KindChainStorage},
		{"wrapped pg error", fmt.Errorf("select tip: %w", &pgconn.PgError{Message: "canceling statement"}), KindQuery},
		{"unknown", errors.New("disk on fire"), KindOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got *Error
			require.NotPanics(t, func() { got = Classify(tc.err) })
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Kind)
			assert.ErrorIs(t, got, tc.err)

			msg := got.Error()
			assert.Contains(t, msg, tc.want.Template())
			assert.Contains(t, msg, tc.err.Error())

			exported := ToChainError(got)
			assert.Contains(t, exported.Error(), msg)
		})
	}
}

func TestClassify_ConnectError(t *testing.T) {
	// ConnectError cannot format itself without a live config, so only the
	// kind is checked here.
	err := &pgconn.ConnectError{Config: &pgconn.Config{}}
	got := Classify(err)
	assert.Equal(t, KindConnection, got.Kind)
	assert.Same(t, err, got.Err)
}

func TestClassify_ChainErrorWins(t *testing.T) {
	// A chain error that wraps a query failure keeps its chain classification.
	err := chain.AccessError("tip lookup", &pgconn.PgError{Message: "timeout"})
	assert.Equal(t, KindChainStorage, Classify(err).Kind)
}

func TestClassify_ErrorPassesThrough(t *testing.T) {
	orig := NotFound("block height 9")
	assert.Same(t, orig, Classify(orig))
}

func TestClassify_OtherDescription(t *testing.T) {
	cause := errors.New("disk on fire")

	got := Classify(cause)

	assert.Equal(t, KindOther, got.Kind)
	assert.Equal(t, "unclassified *errors.errorString: disk on fire", got.Description)
	assert.Same(t, cause, got.Err)
}

func TestExport(t *testing.T) {
	err := Export(hex.ErrLength)

	var ce *chain.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, chain.KindAccess, ce.Kind)
	assert.True(t, IsKind(err, KindHexEncoding))
	assert.ErrorIs(t, err, hex.ErrLength)
}
