// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package chain

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

const (
	// BlockHeaderSize is the size of a serialized block header in bytes.
	BlockHeaderSize = 80

	// HashSize is the size of a block hash in bytes.
	HashSize = chainhash.HashSize
)

// BlockHeader represents a block header (80 bytes serialized).
type BlockHeader struct {
	Version    int32  // 4 bytes, little-endian
	PrevBlock  []byte // 32 bytes
	MerkleRoot []byte // 32 bytes
	Timestamp  uint32 // 4 bytes, little-endian (Unix timestamp)
	Bits       uint32 // 4 bytes, little-endian (compact target)
	Nonce      uint32 // 4 bytes, little-endian
	Height     uint32 // Not in raw header; tracked separately
	Hash       []byte // Computed: double-SHA256 of 80-byte header
}

// SerializeHeader serializes a BlockHeader to 80 bytes in wire format.
//
// Layout: version(4) | prevBlock(32) | merkleRoot(32) | timestamp(4) | bits(4) | nonce(4)
func SerializeHeader(h *BlockHeader) []byte {
	if h == nil {
		return nil
	}

	buf := make([]byte, BlockHeaderSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevBlock)
	copy(buf[36:68], h.MerkleRoot)
	binary.LittleEndian.PutUint32(buf[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)

	return buf
}

// DeserializeHeader deserializes 80 bytes into a BlockHeader.
// The Hash field is computed from the serialized data.
func DeserializeHeader(data []byte) (*BlockHeader, error) {
	if len(data) != BlockHeaderSize {
		return nil, InvalidArguments("header must be %d bytes, got %d", BlockHeaderSize, len(data))
	}

	h := &BlockHeader{
		Version:    int32(binary.LittleEndian.Uint32(data[0:4])),
		PrevBlock:  make([]byte, HashSize),
		MerkleRoot: make([]byte, HashSize),
		Timestamp:  binary.LittleEndian.Uint32(data[68:72]),
		Bits:       binary.LittleEndian.Uint32(data[72:76]),
		Nonce:      binary.LittleEndian.Uint32(data[76:80]),
	}

	copy(h.PrevBlock, data[4:36])
	copy(h.MerkleRoot, data[36:68])

	h.Hash = chainhash.DoubleHashB(data)

	return h, nil
}

// ComputeHeaderHash computes the double-SHA256 hash of a block header.
func ComputeHeaderHash(h *BlockHeader) []byte {
	raw := SerializeHeader(h)
	if raw == nil {
		return nil
	}
	return chainhash.DoubleHashB(raw)
}

// HashString renders a block hash in the conventional byte-reversed hex
// form. Values of the wrong length are rendered as plain hex.
func HashString(hash []byte) string {
	h, err := chainhash.NewHash(hash)
	if err != nil {
		return hex.EncodeToString(hash)
	}
	return h.String()
}
