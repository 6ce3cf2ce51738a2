/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"fmt"

	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/storage"
	"github.com/pkg/errors"
)

// StorageKey checks s and returns its flat key. Each key is SCALE
// encoded before hashing; fewer keys than the entry's arity yield a
// partial key.
func StorageKey[V any](c *Client, s *Storage[V], keys ...any) ([]byte, error) {
	op := "StorageKey " + s.pallet + "." + s.name
	if err := c.Check(s); err != nil {
		return nil, err
	}
	p, entry, err := c.registry.Storage(s.pallet, s.name)
	if err != nil {
		return nil, newError(KindIncompatibleMetadata, op, err)
	}
	encoded := make([][]byte, len(keys))
	for i, k := range keys {
		if b, ok := k.([]byte); ok {
			encoded[i], err = rawKey(c.registry, entry, i, b)
		} else {
			encoded[i], err = scale.Marshal(k)
		}
		if err != nil {
			return nil, newError(KindCodec, op, errors.Wrapf(err, "key %d", i))
		}
	}
	key, err := storage.EntryKey(p, entry, encoded...)
	if err != nil {
		return nil, newError(KindCodec, op, err)
	}
	return key, nil
}

// rawKey encodes a []byte key. Keys of fixed encoded size, such as
// account ids, take the bytes as their encoding and must match that
// size; other keys encode them as Vec<u8>.
func rawKey(reg *metadata.Registry, entry *metadata.StorageEntry, i int, b []byte) ([]byte, error) {
	if i >= len(entry.Keys) {
		return scale.Marshal(b)
	}
	n, fixed := scale.FixedSize(reg.Types, entry.Keys[i])
	if !fixed {
		return scale.Marshal(b)
	}
	if n != len(b) {
		return nil, errors.Errorf("%d bytes given for a %d byte key", len(b), n)
	}
	return b, nil
}

// Fetch reads one entry. ok is false when the node holds no value.
func Fetch[V any](ctx context.Context, c *Client, s *Storage[V], at *primitives.Hash, keys ...any) (V, bool, error) {
	var v V
	op := "Fetch " + s.pallet + "." + s.name
	key, err := StorageKey(c, s, keys...)
	if err != nil {
		return v, false, err
	}
	raw, ok, err := c.query(ctx, op, key, at)
	if err != nil || !ok {
		return v, false, err
	}
	if err := scale.UnmarshalExact(raw, &v); err != nil {
		return v, false, newError(KindCodec, op, err)
	}
	c.log.Query("info", fmt.Sprintf("%s %x (%d bytes)", op, key, len(raw)))
	return v, true, nil
}

// FetchOrDefault reads one entry and falls back to the default the
// runtime declares for it.
func FetchOrDefault[V any](ctx context.Context, c *Client, s *Storage[V], at *primitives.Hash, keys ...any) (V, error) {
	v, ok, err := Fetch(ctx, c, s, at, keys...)
	if err != nil || ok {
		return v, err
	}
	return Default(c, s)
}

// Default decodes the entry's default value from the node's metadata.
// Optional entries default to the zero value.
func Default[V any](c *Client, s *Storage[V]) (V, error) {
	var v V
	op := "Default " + s.pallet + "." + s.name
	if err := c.Check(s); err != nil {
		return v, err
	}
	_, entry, err := c.registry.Storage(s.pallet, s.name)
	if err != nil {
		return v, newError(KindIncompatibleMetadata, op, err)
	}
	if entry.Modifier == metadata.Optional || len(entry.Default) == 0 {
		return v, nil
	}
	if err := scale.UnmarshalExact(entry.Default, &v); err != nil {
		return v, newError(KindCodec, op, err)
	}
	return v, nil
}

// FetchDynamic reads any entry by name and decodes it with the node's
// own type registry. Keys are already SCALE encoded. Unlike Fetch it
// checks no fingerprint; the value follows whatever shape the node
// reports.
func (c *Client) FetchDynamic(ctx context.Context, pallet, name string, at *primitives.Hash, keys ...[]byte) (scale.Value, bool, error) {
	op := "FetchDynamic " + pallet + "." + name
	p, entry, err := c.registry.Storage(pallet, name)
	if err != nil {
		return nil, false, newError(KindIncompatibleMetadata, op, err)
	}
	key, err := storage.EntryKey(p, entry, keys...)
	if err != nil {
		return nil, false, newError(KindCodec, op, err)
	}
	raw, ok, err := c.query(ctx, op, key, at)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if entry.Modifier == metadata.Optional || len(entry.Default) == 0 {
			return nil, false, nil
		}
		raw = entry.Default
	}
	v, _, err := scale.DecodeValueBytes(raw, c.registry.Types, entry.Value)
	if err != nil {
		return nil, false, newError(KindCodec, op, err)
	}
	return v, ok, nil
}

// Entry is one pair produced by an Iterator.
type Entry[V any] struct {
	Key []byte
	// Keys holds one segment per key dimension. Segment.Key is nil for
	// dimensions whose hasher hides the raw key.
	Keys  []storage.Segment
	Value V
}

// Iterator walks a map entry page by page. It is not safe for
// concurrent use.
type Iterator[V any] struct {
	c      *Client
	op     string
	prefix []byte
	at     *primitives.Hash
	entry  *metadata.StorageEntry

	page  []Entry[V]
	pos   int
	start []byte
	done  bool
	pages int
	cur   Entry[V]
	err   error
}

// Iter returns an iterator over every pair under the partial key built
// from keys. No I/O happens until the first call to Next.
func Iter[V any](c *Client, s *Storage[V], at *primitives.Hash, keys ...any) (*Iterator[V], error) {
	op := "Iter " + s.pallet + "." + s.name
	if s.Arity() == 0 {
		return nil, newError(KindCodec, op, errors.New("plain entries cannot be iterated"))
	}
	if len(keys) >= s.Arity() {
		return nil, newError(KindCodec, op, errors.Errorf("%d keys leave nothing to iterate", len(keys)))
	}
	prefix, err := StorageKey(c, s, keys...)
	if err != nil {
		return nil, err
	}
	_, entry, err := c.registry.Storage(s.pallet, s.name)
	if err != nil {
		return nil, newError(KindIncompatibleMetadata, op, err)
	}
	return &Iterator[V]{c: c, op: op, prefix: prefix, at: at, entry: entry}, nil
}

// Next advances to the next pair, fetching a page when needed.
func (it *Iterator[V]) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for it.pos >= len(it.page) {
		if it.done {
			return false
		}
		if !it.fetch(ctx) {
			return false
		}
	}
	it.cur = it.page[it.pos]
	it.pos++
	return true
}

func (it *Iterator[V]) fetch(ctx context.Context) bool {
	kvs, next, err := it.c.transport.StorageRange(ctx, it.prefix, it.start, it.c.pageSize, it.at)
	if err != nil {
		it.err = newError(KindTransport, it.op, err)
		return false
	}
	it.pages++
	it.page = it.page[:0]
	it.pos = 0
	for _, kv := range kvs {
		e := Entry[V]{Key: kv.Key}
		if e.Keys, err = storage.SplitEntry(it.c.registry.Types, it.entry, kv.Key); err != nil {
			it.err = newError(KindCodec, it.op, err)
			return false
		}
		if err = scale.UnmarshalExact(kv.Value, &e.Value); err != nil {
			it.err = newError(KindCodec, it.op, errors.Wrapf(err, "key %x", kv.Key))
			return false
		}
		it.page = append(it.page, e)
	}
	// A page may be short when keys vanish mid-read; only a nil cursor
	// ends the range.
	if next == nil {
		it.done = true
	}
	it.start = next
	it.c.log.Query("info", fmt.Sprintf("%s page %d: %d pairs", it.op, it.pages, len(kvs)))
	return true
}

// Entry returns the pair Next moved to.
func (it *Iterator[V]) Entry() Entry[V] {
	return it.cur
}

func (it *Iterator[V]) Err() error {
	return it.err
}

// Pages is the number of range requests issued so far.
func (it *Iterator[V]) Pages() int {
	return it.pages
}

// Collect drains the iterator.
func (it *Iterator[V]) Collect(ctx context.Context) ([]Entry[V], error) {
	var out []Entry[V]
	for it.Next(ctx) {
		out = append(out, it.Entry())
	}
	return out, it.Err()
}
