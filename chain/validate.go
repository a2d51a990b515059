// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package chain

import "bytes"

// ValidateHeader checks the structural invariants a header must satisfy
// before any store accepts it. A missing Hash is computed in place.
func ValidateHeader(h *BlockHeader) error {
	if h == nil {
		return InvalidArguments("header is nil")
	}
	if len(h.PrevBlock) != HashSize {
		return ValidationError("header at height %d: prev block must be %d bytes, got %d", h.Height, HashSize, len(h.PrevBlock))
	}
	if len(h.MerkleRoot) != HashSize {
		return ValidationError("header at height %d: merkle root must be %d bytes, got %d", h.Height, HashSize, len(h.MerkleRoot))
	}

	computed := ComputeHeaderHash(h)
	if len(h.Hash) == 0 {
		h.Hash = computed
		return nil
	}
	if !bytes.Equal(h.Hash, computed) {
		return ValidationError("header at height %d: hash %s does not match contents", h.Height, HashString(h.Hash))
	}
	return nil
}

// ValidateLink checks that curr extends prev: consecutive heights and
// curr.PrevBlock equal to prev's hash.
func ValidateLink(prev, curr *BlockHeader) error {
	if prev == nil || curr == nil {
		return InvalidArguments("header is nil")
	}
	if curr.Height != prev.Height+1 {
		return ValidationError("header at height %d does not follow height %d", curr.Height, prev.Height)
	}

	prevHash := prev.Hash
	if len(prevHash) == 0 {
		prevHash = ComputeHeaderHash(prev)
	}
	if !bytes.Equal(curr.PrevBlock, prevHash) {
		return ValidationError("header at height %d: prev block does not match %s", curr.Height, HashString(prevHash))
	}
	return nil
}

// VerifyHeaderChain checks that a sequence of headers forms a valid chain.
// Headers must be provided in ascending order (index 0 is earliest).
func VerifyHeaderChain(headers []*BlockHeader) error {
	for i, h := range headers {
		if err := ValidateHeader(h); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		if err := ValidateLink(headers[i-1], h); err != nil {
			return err
		}
	}
	return nil
}
