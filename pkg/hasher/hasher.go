/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package hasher derives storage key material.
package hasher

import (
	"encoding/binary"

	"github.com/pierrec/xxHash/xxHash64"
	"golang.org/x/crypto/blake2b"
)

// Hasher is the per-dimension hashing choice of a storage map.
type Hasher uint8

// The numbering follows the StorageHasher enum of the metadata.
const (
	Blake2_128 Hasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

func (h Hasher) String() string {
	switch h {
	case Blake2_128:
		return "Blake2_128"
	case Blake2_256:
		return "Blake2_256"
	case Blake2_128Concat:
		return "Blake2_128Concat"
	case Twox128:
		return "Twox128"
	case Twox256:
		return "Twox256"
	case Twox64Concat:
		return "Twox64Concat"
	case Identity:
		return "Identity"
	}
	return "Unknown"
}

// Hash returns the key segment for the encoded key.
func (h Hasher) Hash(key []byte) []byte {
	switch h {
	case Blake2_128:
		return Blake2b128(key)
	case Blake2_256:
		s := blake2b.Sum256(key)
		return s[:]
	case Blake2_128Concat:
		return append(Blake2b128(key), key...)
	case Twox128:
		return TwoxHash(key, 16)
	case Twox256:
		return TwoxHash(key, 32)
	case Twox64Concat:
		return append(TwoxHash(key, 8), key...)
	case Identity:
		return append([]byte(nil), key...)
	}
	return nil
}

// PrefixLen is the number of hash bytes placed before the raw key by a
// concat hasher, or the full output length of a pure hasher.
func (h Hasher) PrefixLen() int {
	switch h {
	case Blake2_128, Blake2_128Concat, Twox128:
		return 16
	case Blake2_256, Twox256:
		return 32
	case Twox64Concat:
		return 8
	}
	return 0
}

// Transparent reports whether the raw key can be read back from the
// hashed segment.
func (h Hasher) Transparent() bool {
	return h == Blake2_128Concat || h == Twox64Concat || h == Identity
}

// Blake2b128 is the 16-byte blake2b digest.
func Blake2b128(data []byte) []byte {
	hs, _ := blake2b.New(16, nil)
	hs.Write(data)
	return hs.Sum(nil)
}

// Blake2b256 is the 32-byte blake2b digest.
func Blake2b256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// TwoxHash concatenates little-endian xxhash64 digests with seeds
// 0, 1, ... until size bytes are produced. size must be a multiple of 8.
func TwoxHash(data []byte, size int) []byte {
	out := make([]byte, 0, size)
	for seed := 0; len(out) < size; seed++ {
		out = binary.LittleEndian.AppendUint64(out, xxHash64.Checksum(data, uint64(seed)))
	}
	return out
}

// Twox128String is the fixed pallet and entry prefix hasher.
func Twox128String(name string) []byte {
	return TwoxHash([]byte(name), 16)
}
