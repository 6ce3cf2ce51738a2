/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package client binds typed descriptors to a node: every operation
// first checks the descriptor's fingerprint against the node's
// metadata, then talks to the node through a transport.
package client

import (
	"context"
	"sync"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/pkg/cache"
	"github.com/ComposableFi/composable-sub002/pkg/logger"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/pkg/errors"
)

type Client struct {
	registry  *metadata.Registry
	transport transport.Transport
	cache     cache.Cache
	log       logger.Logger
	pageSize  int

	genesisLock sync.Mutex
	genesis     *primitives.Hash

	nonceLock sync.Mutex
	nonces    map[primitives.AccountID]*accountNonce
}

type Option func(*Client)

// WithCache keeps metadata and reads pinned to a block hash in c.
func WithCache(c cache.Cache) Option {
	return func(cli *Client) { cli.cache = c }
}

// WithLogger traces reads and transaction progress.
func WithLogger(l logger.Logger) Option {
	return func(cli *Client) { cli.log = l }
}

// WithPageSize sets the number of pairs fetched per iteration page.
func WithPageSize(n int) Option {
	return func(cli *Client) {
		if n > 0 {
			cli.pageSize = n
		}
	}
}

// New fetches the node's metadata and returns a client bound to it.
func New(ctx context.Context, t transport.Transport, opts ...Option) (*Client, error) {
	cli := newClient(nil, t, opts)
	raw, err := t.FetchMetadata(ctx)
	if err != nil {
		return nil, newError(KindTransport, "FetchMetadata", err)
	}
	reg, err := metadata.Decode(raw)
	if err != nil {
		return nil, newError(KindCodec, "FetchMetadata", err)
	}
	cli.registry = reg
	if cli.cache != nil {
		if err := cli.cache.Put([]byte(cache.MetadataKey), raw); err != nil {
			cli.log.Query("err", "cache metadata: "+err.Error())
		}
	}
	return cli, nil
}

// NewWithRegistry binds t to a registry that is already loaded.
func NewWithRegistry(reg *metadata.Registry, t transport.Transport, opts ...Option) *Client {
	return newClient(reg, t, opts)
}

// Offline loads the metadata last cached by New, for fingerprint
// checks without a node.
func Offline(c cache.Reader) (*metadata.Registry, error) {
	raw, err := c.Get([]byte(cache.MetadataKey))
	if err != nil {
		return nil, errors.Wrap(err, "[Offline] no cached metadata")
	}
	return metadata.Decode(raw)
}

func newClient(reg *metadata.Registry, t transport.Transport, opts []Option) *Client {
	cli := &Client{
		registry:  reg,
		transport: t,
		log:       logger.Nop(),
		pageSize:  configs.DefaultPageSize,
		nonces:    make(map[primitives.AccountID]*accountNonce),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

func (c *Client) Registry() *metadata.Registry {
	return c.registry
}

func (c *Client) Transport() transport.Transport {
	return c.transport
}

// Check runs the fingerprint gate for d without any I/O.
func (c *Client) Check(d Descriptor) error {
	return check(c.registry, d)
}

func check(reg *metadata.Registry, d Descriptor) error {
	live, err := d.Live(reg)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return newError(KindIncompatibleMetadata, d.Pallet()+"."+d.Name(), &IncompatibleMetadataError{
				Item:     d.Kind(),
				Pallet:   d.Pallet(),
				Name:     d.Name(),
				Expected: d.Expected(),
				Missing:  true,
			})
		}
		return newError(KindIncompatibleMetadata, d.Pallet()+"."+d.Name(), err)
	}
	if live != d.Expected() {
		return newError(KindIncompatibleMetadata, d.Pallet()+"."+d.Name(), &IncompatibleMetadataError{
			Item:     d.Kind(),
			Pallet:   d.Pallet(),
			Name:     d.Name(),
			Expected: d.Expected(),
			Actual:   live,
		})
	}
	return nil
}

// query reads one flat key, going through the pinned cache when at is
// set.
func (c *Client) query(ctx context.Context, op string, key []byte, at *primitives.Hash) ([]byte, bool, error) {
	if at != nil && c.cache != nil {
		if v, ok, known := cache.LoadPinned(c.cache, *at, key); known {
			return v, ok, nil
		}
	}
	v, ok, err := c.transport.StorageQuery(ctx, key, at)
	if err != nil {
		return nil, false, newError(KindTransport, op, err)
	}
	if at != nil && c.cache != nil {
		if err := cache.StorePinned(c.cache, *at, key, v, ok); err != nil {
			c.log.Query("err", "cache "+op+": "+err.Error())
		}
	}
	return v, ok, nil
}
