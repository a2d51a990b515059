// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import (
	"fmt"

	"github.com/bitfsorg/chainstore-go/chain"
	"github.com/bitfsorg/chainstore-go/codec"
)

// schemaSQL takes the quoted table name. Hashes are stored as hex of the
// raw (not byte-reversed) digest.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    hash       TEXT PRIMARY KEY,
    height     BIGINT NOT NULL UNIQUE,
    header     JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const (
	insertSQL = `INSERT INTO %s (hash, height, header) VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`
	selectByHashSQL   = `SELECT hash, height, header FROM %s WHERE hash = $1`
	selectByHeightSQL = `SELECT hash, height, header FROM %s WHERE height = $1`
	selectTipSQL      = `SELECT hash, height, header FROM %s ORDER BY height DESC LIMIT 1`
	countSQL          = `SELECT COUNT(*) FROM %s`
	deleteByHashSQL   = `DELETE FROM %s WHERE hash = $1`
)

func (s *HeaderStore) query(tmpl string) string {
	return fmt.Sprintf(tmpl, s.table)
}

// headerDoc is the JSON form of a header in the header column.
type headerDoc struct {
	Version    int32  `json:"version"`
	PrevBlock  string `json:"prev_block"`
	MerkleRoot string `json:"merkle_root"`
	Timestamp  uint32 `json:"timestamp"`
	Bits       uint32 `json:"bits"`
	Nonce      uint32 `json:"nonce"`
}

func newHeaderDoc(h *chain.BlockHeader) headerDoc {
	return headerDoc{
		Version:    h.Version,
		PrevBlock:  codec.EncodeHex(h.PrevBlock),
		MerkleRoot: codec.EncodeHex(h.MerkleRoot),
		Timestamp:  h.Timestamp,
		Bits:       h.Bits,
		Nonce:      h.Nonce,
	}
}

// toHeader decodes the hex fields. Errors are *codec.HexError or
// *codec.ByteArrayError.
func (d headerDoc) toHeader(height uint32) (*chain.BlockHeader, error) {
	prev, err := codec.DecodeFixedHex("prev_block", d.PrevBlock, chain.HashSize)
	if err != nil {
		return nil, err
	}
	root, err := codec.DecodeFixedHex("merkle_root", d.MerkleRoot, chain.HashSize)
	if err != nil {
		return nil, err
	}
	return &chain.BlockHeader{
		Version:    d.Version,
		PrevBlock:  prev,
		MerkleRoot: root,
		Timestamp:  d.Timestamp,
		Bits:       d.Bits,
		Nonce:      d.Nonce,
		Height:     height,
	}, nil
}
