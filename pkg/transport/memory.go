/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
)

// Method names recorded by Memory.
const (
	MethodFetchMetadata  = "fetch_metadata"
	MethodStorageQuery   = "storage_query"
	MethodStorageRange   = "storage_range"
	MethodSubmitAndWatch = "submit_and_watch"
)

// Request is one call observed by Memory.
type Request struct {
	Method string
	Key    []byte
	At     *primitives.Hash
}

// SubmitFunc scripts the status stream of a submitted extrinsic.
type SubmitFunc func(ext []byte) []extrinsic.Status

// Memory is an in-process node: sorted key-value state, optional
// per-block snapshots, scripted submissions. Every call is recorded.
type Memory struct {
	lock      sync.Mutex
	metadata  []byte
	state     map[string][]byte
	blocks    map[primitives.Hash]map[string][]byte
	head      primitives.Hash
	requests  []Request
	submitted [][]byte
	script    SubmitFunc
	failures  map[string]error
	vanish    map[string]bool
}

func NewMemory(metadata []byte) *Memory {
	return &Memory{
		metadata: metadata,
		state:    make(map[string][]byte),
		blocks:   make(map[primitives.Hash]map[string][]byte),
		failures: make(map[string]error),
		vanish:   make(map[string]bool),
	}
}

// Put sets a value in the best state.
func (m *Memory) Put(key, value []byte) {
	m.lock.Lock()
	m.state[string(key)] = append([]byte(nil), value...)
	m.lock.Unlock()
}

func (m *Memory) Delete(key []byte) {
	m.lock.Lock()
	delete(m.state, string(key))
	m.lock.Unlock()
}

// Vanish makes the next range read that lists key drop it from the
// page and from the state, as a node does when the key is removed
// between listing keys and reading their values.
func (m *Memory) Vanish(key []byte) {
	m.lock.Lock()
	m.vanish[string(key)] = true
	m.lock.Unlock()
}

// PutAt sets a value in the state of block at. Reads at a block with no
// snapshot fall through to the best state.
func (m *Memory) PutAt(at primitives.Hash, key, value []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	s, ok := m.blocks[at]
	if !ok {
		s = make(map[string][]byte)
		m.blocks[at] = s
	}
	s[string(key)] = append([]byte(nil), value...)
}

// SetHead is the block reported by the default submission script.
func (m *Memory) SetHead(h primitives.Hash) {
	m.lock.Lock()
	m.head = h
	m.lock.Unlock()
}

func (m *Memory) OnSubmit(fn SubmitFunc) {
	m.lock.Lock()
	m.script = fn
	m.lock.Unlock()
}

// FailNext makes the next call of method return err.
func (m *Memory) FailNext(method string, err error) {
	m.lock.Lock()
	m.failures[method] = err
	m.lock.Unlock()
}

func (m *Memory) Requests() []Request {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]Request(nil), m.requests...)
}

// Count returns how many calls of method were made; "" counts all.
func (m *Memory) Count(method string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	if method == "" {
		return len(m.requests)
	}
	n := 0
	for _, r := range m.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (m *Memory) Submitted() [][]byte {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([][]byte(nil), m.submitted...)
}

func (m *Memory) record(method string, key []byte, at *primitives.Hash) error {
	var pin *primitives.Hash
	if at != nil {
		h := *at
		pin = &h
	}
	m.requests = append(m.requests, Request{Method: method, Key: append([]byte(nil), key...), At: pin})
	if err, ok := m.failures[method]; ok {
		delete(m.failures, method)
		return err
	}
	return nil
}

func (m *Memory) view(at *primitives.Hash) map[string][]byte {
	if at != nil {
		if s, ok := m.blocks[*at]; ok {
			return s
		}
	}
	return m.state
}

func (m *Memory) FetchMetadata(ctx context.Context) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.record(MethodFetchMetadata, nil, nil); err != nil {
		return nil, err
	}
	return append([]byte(nil), m.metadata...), ctx.Err()
}

func (m *Memory) StorageQuery(ctx context.Context, key []byte, at *primitives.Hash) ([]byte, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.record(MethodStorageQuery, key, at); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok := m.view(at)[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) StorageRange(ctx context.Context, prefix, start []byte, pageSize int, at *primitives.Hash) ([]KV, []byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.record(MethodStorageRange, prefix, at); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	state := m.view(at)
	keys := make([]string, 0)
	for k := range state {
		kb := []byte(k)
		if bytes.HasPrefix(kb, prefix) && (start == nil || bytes.Compare(kb, start) > 0) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	more := len(keys) > pageSize
	if more {
		keys = keys[:pageSize]
	}
	kvs := make([]KV, 0, len(keys))
	for _, k := range keys {
		if m.vanish[k] {
			delete(m.vanish, k)
			delete(state, k)
			continue
		}
		kvs = append(kvs, KV{Key: []byte(k), Value: append([]byte(nil), state[k]...)})
	}
	var next []byte
	if more {
		next = []byte(keys[len(keys)-1])
	}
	return kvs, next, nil
}

func (m *Memory) SubmitAndWatch(ctx context.Context, ext []byte) (Subscription, error) {
	m.lock.Lock()
	if err := m.record(MethodSubmitAndWatch, nil, nil); err != nil {
		m.lock.Unlock()
		return nil, err
	}
	m.submitted = append(m.submitted, append([]byte(nil), ext...))
	script := m.script
	index := len(m.submitted) - 1
	head := m.head
	m.lock.Unlock()

	var updates []extrinsic.Status
	if script != nil {
		updates = script(ext)
	} else {
		updates = []extrinsic.Status{
			{Kind: extrinsic.Ready, Index: -1},
			{Kind: extrinsic.InBlock, Block: head, Index: index},
			{Kind: extrinsic.Finalized, Block: head, Index: index},
		}
	}

	out := newSubscription(nil)
	go func() {
		defer close(out.updates)
		for _, st := range updates {
			select {
			case <-ctx.Done():
				out.fail(ctx.Err())
				return
			default:
			}
			if !out.send(st) {
				return
			}
		}
	}()
	return out, nil
}
