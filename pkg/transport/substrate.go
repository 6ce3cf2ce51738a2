/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"

	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/pkg/errors"
)

// Substrate talks JSON-RPC to a node over websocket.
type Substrate struct {
	api *gsrpc.SubstrateAPI
	url string
}

// Dial connects to the first reachable endpoint.
func Dial(urls ...string) (*Substrate, error) {
	lastErr := errors.New("no rpc endpoint configured")
	for _, u := range urls {
		api, err := gsrpc.NewSubstrateAPI(u)
		if err != nil {
			lastErr = errors.Wrapf(err, "[NewSubstrateAPI] %s", u)
			continue
		}
		return &Substrate{api: api, url: u}, nil
	}
	return nil, lastErr
}

func (s *Substrate) URL() string {
	return s.url
}

// call runs one request. A cancelled ctx abandons the response; the
// request itself still completes at the node.
func (s *Substrate) call(ctx context.Context, result any, method string, args ...any) error {
	done := make(chan error, 1)
	go func() {
		done <- s.api.Client.Call(result, method, args...)
	}()
	select {
	case err := <-done:
		return errors.Wrapf(err, "[%s]", method)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func atArg(at *primitives.Hash) []any {
	if at == nil {
		return nil
	}
	return []any{at.String()}
}

func (s *Substrate) FetchMetadata(ctx context.Context) ([]byte, error) {
	var res string
	if err := s.call(ctx, &res, "state_getMetadata"); err != nil {
		return nil, err
	}
	return codec.HexDecodeString(res)
}

func (s *Substrate) StorageQuery(ctx context.Context, key []byte, at *primitives.Hash) ([]byte, bool, error) {
	var res *string
	args := append([]any{codec.HexEncodeToString(key)}, atArg(at)...)
	if err := s.call(ctx, &res, "state_getStorage", args...); err != nil {
		return nil, false, err
	}
	if res == nil {
		return nil, false, nil
	}
	b, err := codec.HexDecodeString(*res)
	if err != nil {
		return nil, false, errors.Wrap(err, "[HexDecodeString]")
	}
	return b, true, nil
}

// StorageRange lists keys with state_getKeysPaged, then reads their
// values in one state_queryStorageAt. A key removed between the two
// requests is left out of the page; next still follows the listed keys.
func (s *Substrate) StorageRange(ctx context.Context, prefix, start []byte, pageSize int, at *primitives.Hash) ([]KV, []byte, error) {
	var startArg any
	if start != nil {
		startArg = codec.HexEncodeToString(start)
	}
	var listed []string
	args := append([]any{codec.HexEncodeToString(prefix), pageSize, startArg}, atArg(at)...)
	if err := s.call(ctx, &listed, "state_getKeysPaged", args...); err != nil {
		return nil, nil, err
	}
	if len(listed) == 0 {
		return nil, nil, nil
	}
	keys := make([]types.StorageKey, 0, len(listed))
	for _, k := range listed {
		kb, err := codec.HexDecodeString(k)
		if err != nil {
			return nil, nil, errors.Wrap(err, "[HexDecodeString]")
		}
		keys = append(keys, types.NewStorageKey(kb))
	}

	var sets []types.StorageChangeSet
	if err := s.call(ctx, &sets, "state_queryStorageAt", append([]any{listed}, atArg(at)...)...); err != nil {
		return nil, nil, err
	}
	values := changedValues(sets)

	kvs := make([]KV, 0, len(keys))
	for _, k := range keys {
		v, ok := values[k.Hex()]
		if !ok {
			continue
		}
		kvs = append(kvs, KV{Key: k, Value: v})
	}

	var next []byte
	if len(keys) == pageSize {
		next = keys[len(keys)-1]
	}
	return kvs, next, nil
}

type signedBlock struct {
	Block struct {
		Extrinsics []string `json:"extrinsics"`
	} `json:"block"`
}

// extrinsicIndex finds the position of the extrinsic hashing to want in
// block.
func (s *Substrate) extrinsicIndex(ctx context.Context, block, want primitives.Hash) (int, error) {
	var res signedBlock
	if err := s.call(ctx, &res, "chain_getBlock", block.String()); err != nil {
		return -1, err
	}
	for i, x := range res.Block.Extrinsics {
		b, err := codec.HexDecodeString(x)
		if err != nil {
			return -1, errors.Wrap(err, "[HexDecodeString]")
		}
		if primitives.Hash(hasher.Blake2b256(b)) == want {
			return i, nil
		}
	}
	return -1, errors.Errorf("extrinsic %s not found in block %s", want, block)
}

// SubmitAndWatch submits ext and follows its status. ctx bounds the
// whole subscription, including the block lookups that resolve the
// transaction's index.
func (s *Substrate) SubmitAndWatch(ctx context.Context, ext []byte) (Subscription, error) {
	ch := make(chan types.ExtrinsicStatus, 16)
	sub, err := s.api.Client.Subscribe(ctx, "author", "submitAndWatchExtrinsic", "unwatchExtrinsic", "extrinsicUpdate", ch, codec.HexEncodeToString(ext))
	if err != nil {
		return nil, errors.Wrap(err, "[author_submitAndWatchExtrinsic]")
	}
	hash := primitives.Hash(hasher.Blake2b256(ext))

	watch, cancel := context.WithCancel(ctx)
	out := newSubscription(func() {
		cancel()
		sub.Unsubscribe()
	})
	go func() {
		defer close(out.updates)
		defer cancel()
		for {
			select {
			case status := <-ch:
				st, err := FromExtrinsicStatus(status)
				if err != nil {
					out.fail(err)
					return
				}
				if st.Kind == extrinsic.InBlock || st.Kind == extrinsic.Finalized {
					idx, err := s.extrinsicIndex(watch, st.Block, hash)
					if err != nil {
						out.fail(err)
						return
					}
					st.Index = idx
				}
				if !out.send(st) || st.IsTerminal() {
					out.Unsubscribe()
					return
				}
			case err := <-sub.Err():
				if err != nil {
					out.fail(errors.Wrap(err, "[author_extrinsicUpdate]"))
				}
				return
			case <-watch.Done():
				out.fail(watch.Err())
				out.Unsubscribe()
				return
			case <-out.done:
				return
			}
		}
	}()
	return out, nil
}
