/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package transport is the node connection consumed by the client:
// metadata, point reads, paged range reads and transaction submission.
package transport

import (
	"context"

	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
)

// KV is one storage pair returned by a range read.
type KV struct {
	Key   []byte
	Value []byte
}

// Transport is everything the client needs from a node. A nil at
// means the node's best block.
type Transport interface {
	FetchMetadata(ctx context.Context) ([]byte, error)
	StorageQuery(ctx context.Context, key []byte, at *primitives.Hash) ([]byte, bool, error)
	// StorageRange returns up to pageSize pairs under prefix with keys
	// strictly after start, in key order. next is the start of the
	// following page, or nil when the range is exhausted.
	StorageRange(ctx context.Context, prefix, start []byte, pageSize int, at *primitives.Hash) (kvs []KV, next []byte, err error)
	SubmitAndWatch(ctx context.Context, ext []byte) (Subscription, error)
}

// Subscription delivers status updates of one submitted transaction.
// Updates is closed after a terminal status, an error, or Unsubscribe.
type Subscription interface {
	Updates() <-chan extrinsic.Status
	Err() <-chan error
	Unsubscribe()
}

// subscription is the channel pair shared by the implementations.
type subscription struct {
	updates chan extrinsic.Status
	errs    chan error
	done    chan struct{}
	cancel  func()
}

func newSubscription(cancel func()) *subscription {
	return &subscription{
		updates: make(chan extrinsic.Status, 16),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
}

func (s *subscription) Updates() <-chan extrinsic.Status {
	return s.updates
}

func (s *subscription) Err() <-chan error {
	return s.errs
}

func (s *subscription) Unsubscribe() {
	select {
	case <-s.done:
	default:
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	}
}

// send delivers st unless the subscriber has gone away.
func (s *subscription) send(st extrinsic.Status) bool {
	select {
	case s.updates <- st:
		return true
	case <-s.done:
		return false
	}
}

func (s *subscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}
