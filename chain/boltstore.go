// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketHeaders       = []byte("headers")
	bucketHeadersHeight = []byte("headers_height")
)

// BoltHeaderStore persists block headers in bbolt.
type BoltHeaderStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ HeaderStore = (*BoltHeaderStore)(nil)

// OpenBoltHeaderStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltHeaderStore(dbPath string) (*BoltHeaderStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, AccessError("create directory: "+err.Error(), err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, AccessError("open bolt db: "+err.Error(), err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketHeaders, bucketHeadersHeight} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, AccessError("create buckets: "+err.Error(), err)
	}

	return &BoltHeaderStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltHeaderStore) Close() error { return s.db.Close() }

// heightKey encodes a block height as a 4-byte big-endian key for sorted storage.
func heightKey(h uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, h)
	return k
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// boltErr passes *Error values through and turns anything else into an
// access error.
func boltErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return AccessError(op+": "+err.Error(), err)
}

// PutHeader stores a block header keyed by block hash and height.
func (s *BoltHeaderStore) PutHeader(_ context.Context, header *BlockHeader) error {
	if err := ValidateHeader(header); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		hb := tx.Bucket(bucketHeaders)
		ib := tx.Bucket(bucketHeadersHeight)
		if hb.Get(header.Hash) != nil {
			return InvalidOperation("header %s already stored", HashString(header.Hash))
		}
		if ib.Get(heightKey(header.Height)) != nil {
			return InvalidOperation("header at height %d already stored", header.Height)
		}
		if header.Height > 0 {
			if parentHash := ib.Get(heightKey(header.Height - 1)); parentHash != nil {
				var parent BlockHeader
				if err := decodeGob(hb.Get(parentHash), &parent); err != nil {
					return err
				}
				if err := ValidateLink(&parent, header); err != nil {
					return err
				}
			}
		}

		data, err := encodeGob(header)
		if err != nil {
			return err
		}
		if err := hb.Put(header.Hash, data); err != nil {
			return err
		}
		return ib.Put(heightKey(header.Height), header.Hash)
	})
	return boltErr("put header", err)
}

// GetHeader retrieves a header by block hash.
func (s *BoltHeaderStore) GetHeader(_ context.Context, blockHash []byte) (*BlockHeader, error) {
	if err := checkHash(blockHash); err != nil {
		return nil, err
	}

	var header BlockHeader
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketHeaders).Get(blockHash)
		if data == nil {
			return ValueNotFound("header", "hash "+HashString(blockHash))
		}
		return decodeGob(data, &header)
	})
	if err != nil {
		return nil, boltErr("decode header", err)
	}
	return &header, nil
}

// GetHeaderByHeight retrieves a header by block height.
func (s *BoltHeaderStore) GetHeaderByHeight(_ context.Context, height uint32) (*BlockHeader, error) {
	var header BlockHeader
	err := s.db.View(func(tx *bbolt.Tx) error {
		hash := tx.Bucket(bucketHeadersHeight).Get(heightKey(height))
		if hash == nil {
			return heightNotFound(height)
		}
		data := tx.Bucket(bucketHeaders).Get(hash)
		if data == nil {
			return heightNotFound(height)
		}
		return decodeGob(data, &header)
	})
	if err != nil {
		return nil, boltErr("decode header by height", err)
	}
	return &header, nil
}

// GetTip returns the header with the greatest height.
func (s *BoltHeaderStore) GetTip(_ context.Context) (*BlockHeader, error) {
	var header BlockHeader
	err := s.db.View(func(tx *bbolt.Tx) error {
		k, v := tx.Bucket(bucketHeadersHeight).Cursor().Last()
		if k == nil {
			return ValueNotFound("header", "tip")
		}
		data := tx.Bucket(bucketHeaders).Get(v)
		if data == nil {
			return ValueNotFound("header", "tip")
		}
		return decodeGob(data, &header)
	})
	if err != nil {
		return nil, boltErr("decode tip header", err)
	}
	return &header, nil
}

// GetHeaderCount returns the total number of stored headers.
func (s *BoltHeaderStore) GetHeaderCount(_ context.Context) (uint64, error) {
	var count uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = uint64(tx.Bucket(bucketHeaders).Stats().KeyN)
		return nil
	})
	return count, boltErr("count headers", err)
}

// DeleteHeader removes a header and its height index entry.
func (s *BoltHeaderStore) DeleteHeader(_ context.Context, blockHash []byte) error {
	if err := checkHash(blockHash); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		hb := tx.Bucket(bucketHeaders)
		data := hb.Get(blockHash)
		if data == nil {
			return ValueNotFound("header", "hash "+HashString(blockHash))
		}
		var header BlockHeader
		if err := decodeGob(data, &header); err != nil {
			return err
		}
		if err := hb.Delete(blockHash); err != nil {
			return err
		}
		return tx.Bucket(bucketHeadersHeight).Delete(heightKey(header.Height))
	})
	return boltErr("delete header", err)
}
