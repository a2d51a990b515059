// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/bitfsorg/chainstore-go/chain"
	"github.com/bitfsorg/chainstore-go/codec"
	"github.com/bitfsorg/chainstore-go/config"
)

// DB is the part of *pgxpool.Pool used by HeaderStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HeaderStore is a chain.HeaderStore backed by PostgreSQL.
//
// Internally every failure is a *Error; at the method boundary it is
// re-exported with ToChainError.
type HeaderStore struct {
	db     DB
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// Compile-time interface check.
var _ chain.HeaderStore = (*HeaderStore)(nil)

// NewHeaderStore wraps an existing connection. table is quoted before use.
// A nil logger discards output.
func NewHeaderStore(db DB, table string, logger *slog.Logger) *HeaderStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HeaderStore{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: logger.With("component", "postgres", "table", table),
	}
}

// Open connects a pool using cfg and verifies it with a ping. An invalid
// cfg is a KindChainStorage error wrapping chain.ErrInvalidArguments; any
// failure to establish the connection is a KindConnection error.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*HeaderStore, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, ToChainError(FromChainError(&chain.Error{
			Kind: chain.KindInvalidArguments,
			Msg:  "invalid store config: " + err.Error(),
			Err:  err,
		}))
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, ToChainError(FromConnectError(err))
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, ToChainError(FromConnectError(err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, ToChainError(FromConnectError(err))
	}

	s := NewHeaderStore(pool, cfg.HeaderTable, logger)
	s.pool = pool
	return s, nil
}

// Close releases the pool opened by Open. It is a no-op for stores built
// with NewHeaderStore.
func (s *HeaderStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// fail logs a classified failure and re-exports it.
func (s *HeaderStore) fail(op string, e *Error) error {
	level := slog.LevelDebug
	switch e.Kind {
	case KindConnection, KindQuery, KindOther:
		level = slog.LevelWarn
	case KindHexEncoding, KindByteArrayEncoding, KindJSONEncoding:
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "header store failure",
		"op", op, "kind", e.Kind.String(), "error", e.Error())
	return ToChainError(e)
}

// InitSchema creates the header table and its height index if missing.
func (s *HeaderStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(schemaSQL, s.table)); err != nil {
		return s.fail("init schema", fromDriverError(err))
	}
	return nil
}

// PutHeader validates a header, checks that it links to the stored parent
// and inserts it.
func (s *HeaderStore) PutHeader(ctx context.Context, header *chain.BlockHeader) error {
	if e := s.putHeader(ctx, header); e != nil {
		return s.fail("put header", e)
	}
	return nil
}

func (s *HeaderStore) putHeader(ctx context.Context, header *chain.BlockHeader) *Error {
	if err := chain.ValidateHeader(header); err != nil {
		return FromChainError(err)
	}

	if header.Height > 0 {
		parent, e := s.scanHeader(s.db.QueryRow(ctx, s.query(selectByHeightSQL), int64(header.Height-1)))
		switch {
		case e == nil:
			if err := chain.ValidateLink(parent, header); err != nil {
				return FromChainError(err)
			}
		case !errors.Is(e, pgx.ErrNoRows):
			return e
		}
	}

	doc, err := json.Marshal(newHeaderDoc(header))
	if err != nil {
		return FromJSONError(err)
	}

	tag, err := s.db.Exec(ctx, s.query(insertSQL), codec.EncodeHex(header.Hash), int64(header.Height), doc)
	if err != nil {
		return fromDriverError(err)
	}
	if tag.RowsAffected() == 0 {
		return CouldNotAddf("header %s at height %d: hash or height already stored",
			chain.HashString(header.Hash), header.Height)
	}
	return nil
}

// GetHeader retrieves a header by block hash.
func (s *HeaderStore) GetHeader(ctx context.Context, blockHash []byte) (*chain.BlockHeader, error) {
	if len(blockHash) != chain.HashSize {
		return nil, s.fail("get header", FromChainError(
			chain.InvalidArguments("block hash must be %d bytes, got %d", chain.HashSize, len(blockHash))))
	}

	h, e := s.scanHeader(s.db.QueryRow(ctx, s.query(selectByHashSQL), codec.EncodeHex(blockHash)))
	if e != nil {
		return nil, s.fail("get header", notFoundOr(e, "header "+chain.HashString(blockHash)))
	}
	return h, nil
}

// GetHeaderByHeight retrieves a header by block height.
func (s *HeaderStore) GetHeaderByHeight(ctx context.Context, height uint32) (*chain.BlockHeader, error) {
	h, e := s.scanHeader(s.db.QueryRow(ctx, s.query(selectByHeightSQL), int64(height)))
	if e != nil {
		return nil, s.fail("get header by height", notFoundOr(e, fmt.Sprintf("block height %d", height)))
	}
	return h, nil
}

// GetTip returns the header with the greatest height.
func (s *HeaderStore) GetTip(ctx context.Context) (*chain.BlockHeader, error) {
	h, e := s.scanHeader(s.db.QueryRow(ctx, s.query(selectTipSQL)))
	if e != nil {
		return nil, s.fail("get tip", notFoundOr(e, "chain tip: no headers stored"))
	}
	return h, nil
}

// GetHeaderCount returns the total number of stored headers.
func (s *HeaderStore) GetHeaderCount(ctx context.Context) (uint64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, s.query(countSQL)).Scan(&n); err != nil {
		return 0, s.fail("count headers", fromDriverError(err))
	}
	return uint64(n), nil
}

// DeleteHeader removes a header by block hash.
func (s *HeaderStore) DeleteHeader(ctx context.Context, blockHash []byte) error {
	if len(blockHash) != chain.HashSize {
		return s.fail("delete header", FromChainError(
			chain.InvalidArguments("block hash must be %d bytes, got %d", chain.HashSize, len(blockHash))))
	}

	tag, err := s.db.Exec(ctx, s.query(deleteByHashSQL), codec.EncodeHex(blockHash))
	if err != nil {
		return s.fail("delete header", fromDriverError(err))
	}
	if tag.RowsAffected() == 0 {
		return s.fail("delete header", CouldNotDeletef("header %s: no such row", chain.HashString(blockHash)))
	}
	return nil
}

// notFoundOr turns a query error wrapping pgx.ErrNoRows into NotFound(desc)
// and returns every other error unchanged.
func notFoundOr(e *Error, desc string) *Error {
	if e.Kind == KindQuery && errors.Is(e, pgx.ErrNoRows) {
		return NotFound(desc)
	}
	return e
}

// scanHeader reads one header row. Row decoding failures are classified by
// the codec that produced them.
func (s *HeaderStore) scanHeader(row pgx.Row) (*chain.BlockHeader, *Error) {
	var (
		hashHex string
		height  int64
		doc     []byte
	)
	if err := row.Scan(&hashHex, &height, &doc); err != nil {
		return nil, fromDriverError(err)
	}

	hash, err := codec.DecodeHash("hash", hashHex)
	if err != nil {
		return nil, Classify(err)
	}

	var d headerDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, FromJSONError(err)
	}

	h, err := d.toHeader(uint32(height))
	if err != nil {
		return nil, Classify(err)
	}
	h.Hash = hash[:]

	// A row whose contents no longer hash to its key is corrupt.
	if err := chain.ValidateHeader(h); err != nil {
		return nil, FromChainError(err)
	}
	return h, nil
}
