// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package chain defines block headers, their validation and the header
// stores that persist them.
package chain

import (
	"context"
	"strconv"
	"sync"
)

// HeaderStore persists block headers for chain verification.
//
// Every method returns either nil or a *Error. The memory and bbolt stores
// report a missing header as KindValueNotFound. The postgres store reports
// every failure as KindAccess and keeps its own classification in the
// cause; use postgres.IsKind(err, postgres.KindNotFound) there.
type HeaderStore interface {
	// PutHeader validates and stores a block header. If the header at
	// Height-1 is stored, the new header must link to it.
	PutHeader(ctx context.Context, header *BlockHeader) error

	// GetHeader retrieves a header by block hash.
	GetHeader(ctx context.Context, blockHash []byte) (*BlockHeader, error)

	// GetHeaderByHeight retrieves a header by block height.
	GetHeaderByHeight(ctx context.Context, height uint32) (*BlockHeader, error)

	// GetTip returns the header with the greatest height.
	GetTip(ctx context.Context) (*BlockHeader, error)

	// GetHeaderCount returns the total number of stored headers.
	GetHeaderCount(ctx context.Context) (uint64, error)

	// DeleteHeader removes a header by block hash.
	DeleteHeader(ctx context.Context, blockHash []byte) error
}

func checkHash(blockHash []byte) error {
	if len(blockHash) != HashSize {
		return InvalidArguments("block hash must be %d bytes, got %d", HashSize, len(blockHash))
	}
	return nil
}

// MemHeaderStore is an in-memory implementation of HeaderStore for testing.
type MemHeaderStore struct {
	mu       sync.RWMutex
	byHash   map[string]*BlockHeader
	byHeight map[uint32]*BlockHeader
}

// Compile-time interface check.
var _ HeaderStore = (*MemHeaderStore)(nil)

// NewMemHeaderStore creates a new in-memory header store.
func NewMemHeaderStore() *MemHeaderStore {
	return &MemHeaderStore{
		byHash:   make(map[string]*BlockHeader),
		byHeight: make(map[uint32]*BlockHeader),
	}
}

// PutHeader stores a block header.
func (s *MemHeaderStore) PutHeader(_ context.Context, header *BlockHeader) error {
	if err := ValidateHeader(header); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := string(header.Hash)
	if _, exists := s.byHash[key]; exists {
		return InvalidOperation("header %s already stored", HashString(header.Hash))
	}
	if _, exists := s.byHeight[header.Height]; exists {
		return InvalidOperation("header at height %d already stored", header.Height)
	}
	if header.Height > 0 {
		if parent, ok := s.byHeight[header.Height-1]; ok {
			if err := ValidateLink(parent, header); err != nil {
				return err
			}
		}
	}

	s.byHash[key] = header
	s.byHeight[header.Height] = header
	return nil
}

// GetHeader retrieves a header by block hash.
func (s *MemHeaderStore) GetHeader(_ context.Context, blockHash []byte) (*BlockHeader, error) {
	if err := checkHash(blockHash); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.byHash[string(blockHash)]
	if !ok {
		return nil, ValueNotFound("header", "hash "+HashString(blockHash))
	}
	return h, nil
}

// GetHeaderByHeight retrieves a header by block height.
func (s *MemHeaderStore) GetHeaderByHeight(_ context.Context, height uint32) (*BlockHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.byHeight[height]
	if !ok {
		return nil, heightNotFound(height)
	}
	return h, nil
}

// GetTip returns the header with the greatest height.
func (s *MemHeaderStore) GetTip(_ context.Context) (*BlockHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tip *BlockHeader
	for height, h := range s.byHeight {
		if tip == nil || height > tip.Height {
			tip = h
		}
	}
	if tip == nil {
		return nil, ValueNotFound("header", "tip")
	}
	return tip, nil
}

// GetHeaderCount returns the total number of stored headers.
func (s *MemHeaderStore) GetHeaderCount(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.byHash)), nil
}

// DeleteHeader removes a header by block hash.
func (s *MemHeaderStore) DeleteHeader(_ context.Context, blockHash []byte) error {
	if err := checkHash(blockHash); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.byHash[string(blockHash)]
	if !ok {
		return ValueNotFound("header", "hash "+HashString(blockHash))
	}
	delete(s.byHash, string(blockHash))
	delete(s.byHeight, h.Height)
	return nil
}

func heightNotFound(height uint32) *Error {
	return ValueNotFound("header", "height "+strconv.FormatUint(uint64(height), 10))
}
