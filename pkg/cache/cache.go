/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package cache keeps immutable chain data on disk: storage values read
// at a pinned block and the last metadata blob seen.
package cache

import (
	"encoding/binary"
	"io"
	"sort"
	"time"

	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/pkg/errors"
)

type Reader interface {
	// Has returns true if the given key exists in the key-value data store.
	Has(key []byte) (bool, error)

	// Get fetch the given key if it's present in the key-value data store.
	Get(key []byte) ([]byte, error)

	// QueryPrefixKeyList queries the collection of all keys that start with
	// prefix but do not contain prefix
	QueryPrefixKeyList(prefix string) ([]string, error)
}

type Writer interface {
	// Put store the given key-value in the key-value data store
	Put(key []byte, value []byte) error

	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

type Cache interface {
	Reader
	Writer
	io.Closer
}

// Pruner is a cache that can drop every read made at one block.
type Pruner interface {
	Cache
	PrunePinned(at primitives.Hash) (int, error)
}

const (
	pinnedPrefix = "state:"
	absentPrefix = "absent:"
	blockPrefix  = "block:"
	// MetadataKey holds the last metadata fetched from the node.
	MetadataKey = "metadata"
)

// PinnedKey is the cache key of a storage value read at block at.
func PinnedKey(at primitives.Hash, key []byte) []byte {
	out := make([]byte, 0, len(pinnedPrefix)+len(at)+len(key))
	out = append(out, pinnedPrefix...)
	out = append(out, at[:]...)
	return append(out, key...)
}

// AbsentKey marks a storage key known to be empty at block at.
func AbsentKey(at primitives.Hash, key []byte) []byte {
	out := make([]byte, 0, len(absentPrefix)+len(at)+len(key))
	out = append(out, absentPrefix...)
	out = append(out, at[:]...)
	return append(out, key...)
}

// blockKey holds the last time a read at block at was stored.
func blockKey(at primitives.Hash) []byte {
	return append([]byte(blockPrefix), at[:]...)
}

// LoadPinned returns a cached read at block at. known is false when the
// read was never cached; ok is false when the value is known absent.
func LoadPinned(c Reader, at primitives.Hash, key []byte) (value []byte, ok bool, known bool) {
	if v, err := c.Get(PinnedKey(at, key)); err == nil {
		return v, true, true
	}
	if has, err := c.Has(AbsentKey(at, key)); err == nil && has {
		return nil, false, true
	}
	return nil, false, false
}

// StorePinned records a read at block at and marks the block used.
func StorePinned(c Writer, at primitives.Hash, key, value []byte, ok bool) error {
	var err error
	if ok {
		err = c.Put(PinnedKey(at, key), value)
	} else {
		err = c.Put(AbsentKey(at, key), nil)
	}
	if err != nil {
		return err
	}
	return c.Put(blockKey(at), binary.BigEndian.AppendUint64(nil, uint64(time.Now().UnixNano())))
}

type pinnedBlock struct {
	at   primitives.Hash
	used uint64
}

// ExpirePinned keeps the reads of the keep most recently used blocks
// and prunes the others. It returns the number of blocks pruned.
func ExpirePinned(c Pruner, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	ids, err := c.QueryPrefixKeyList(blockPrefix)
	if err != nil {
		return 0, errors.Wrap(err, "[QueryPrefixKeyList]")
	}
	blocks := make([]pinnedBlock, 0, len(ids))
	for _, id := range ids {
		var b pinnedBlock
		if len(id) != len(b.at) {
			continue
		}
		copy(b.at[:], id)
		v, err := c.Get(blockKey(b.at))
		if err != nil {
			return 0, errors.Wrapf(err, "[Get] block %s", b.at)
		}
		if len(v) == 8 {
			b.used = binary.BigEndian.Uint64(v)
		}
		blocks = append(blocks, b)
	}
	if len(blocks) <= keep {
		return 0, nil
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].used > blocks[j].used })
	for _, b := range blocks[keep:] {
		if _, err := c.PrunePinned(b.at); err != nil {
			return 0, errors.Wrapf(err, "[PrunePinned] block %s", b.at)
		}
		if err := c.Delete(blockKey(b.at)); err != nil {
			return 0, errors.Wrapf(err, "[Delete] block %s", b.at)
		}
	}
	return len(blocks) - keep, nil
}
