/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package storage builds and splits flat storage keys.
package storage

import (
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

// PrefixLen is the length of twox128(pallet) ‖ twox128(entry).
const PrefixLen = 32

var (
	ErrTooManyKeys  = errors.New("more keys than hashers")
	ErrShortKey     = errors.New("key shorter than its prefix")
	ErrOpaqueLength = errors.New("key length not recoverable")
)

// Prefix returns twox128(pallet) ‖ twox128(entry).
func Prefix(pallet, entry string) []byte {
	out := make([]byte, 0, PrefixLen)
	out = append(out, hasher.Twox128String(pallet)...)
	return append(out, hasher.Twox128String(entry)...)
}

// Key hashes each encoded key with its hasher and appends the segments
// to the entry prefix. Fewer keys than hashers yields a partial key
// suitable for range scans.
func Key(pallet, entry string, hashers []hasher.Hasher, keys ...[]byte) ([]byte, error) {
	if len(keys) > len(hashers) {
		return nil, errors.Wrapf(ErrTooManyKeys, "%s.%s: %d > %d", pallet, entry, len(keys), len(hashers))
	}
	out := Prefix(pallet, entry)
	for i, k := range keys {
		out = append(out, hashers[i].Hash(k)...)
	}
	return out, nil
}

// EntryKey is Key for a metadata storage entry.
func EntryKey(p *metadata.Pallet, s *metadata.StorageEntry, keys ...[]byte) ([]byte, error) {
	return Key(p.StoragePrefix, s.Name, s.Hashers, keys...)
}

// Segment is one key dimension cut out of a flat key.
type Segment struct {
	Hasher hasher.Hasher
	// Hash is the hash output, empty for Identity.
	Hash []byte
	// Key is the encoded raw key, nil when the hasher hides it.
	Key []byte
}

// Split cuts the dimensions of a full flat key back apart. Transparent
// dimensions need their key type to know where the raw key ends; the last
// dimension may omit it and takes the remainder.
func Split(types *scale.Types, flat []byte, hashers []hasher.Hasher, keys []scale.TypeID) ([]Segment, error) {
	if len(flat) < PrefixLen {
		return nil, ErrShortKey
	}
	rest := flat[PrefixLen:]
	segs := make([]Segment, 0, len(hashers))
	for i, h := range hashers {
		n := h.PrefixLen()
		if len(rest) < n {
			return nil, errors.Wrapf(scale.ErrNotEnoughBytes, "[Split] dimension %d", i)
		}
		seg := Segment{Hasher: h, Hash: rest[:n]}
		rest = rest[n:]
		if h.Transparent() {
			var size int
			switch {
			case types != nil && i < len(keys):
				d := scale.NewDecoder(rest)
				if err := scale.Skip(d, types, keys[i]); err != nil {
					return nil, errors.Wrapf(err, "[Split] dimension %d", i)
				}
				size = d.Offset()
			case i == len(hashers)-1:
				size = len(rest)
			default:
				return nil, errors.Wrapf(ErrOpaqueLength, "dimension %d", i)
			}
			seg.Key = rest[:size]
			rest = rest[size:]
		}
		segs = append(segs, seg)
	}
	if len(rest) != 0 {
		return nil, errors.Errorf("[Split] %d trailing bytes", len(rest))
	}
	return segs, nil
}

// SplitEntry is Split for a metadata storage entry.
func SplitEntry(types *scale.Types, s *metadata.StorageEntry, flat []byte) ([]Segment, error) {
	return Split(types, flat, s.Hashers, s.Keys)
}
