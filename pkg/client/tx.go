/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/signer"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/pkg/errors"
)

// ErrStreamClosed is wrapped in the KindTransport error TxProgress.Next
// returns once the status stream has ended.
var ErrStreamClosed = errors.New("status stream closed")

// Submittable is an encoded call. Building it performs no I/O.
type Submittable struct {
	c      *Client
	pallet string
	name   string
	call   []byte
}

// BuildCall checks call and encodes pallet index ‖ call index ‖ args.
// The fields of A must follow the declared argument order.
func BuildCall[A any](c *Client, call *Call[A], args A) (*Submittable, error) {
	op := "BuildCall " + call.pallet + "." + call.name
	if err := c.Check(call); err != nil {
		return nil, err
	}
	p, m, err := c.registry.Call(call.pallet, call.name)
	if err != nil {
		return nil, newError(KindIncompatibleMetadata, op, err)
	}
	enc := scale.NewEncoder()
	enc.PushByte(p.Index)
	enc.PushByte(m.Index)
	if err := enc.Encode(args); err != nil {
		return nil, newError(KindCodec, op, err)
	}
	return &Submittable{c: c, pallet: call.pallet, name: call.name, call: enc.Bytes()}, nil
}

func (s *Submittable) CallBytes() []byte {
	return s.call
}

func (s *Submittable) String() string {
	return s.pallet + "." + s.name
}

// TxOptions controls the signed extensions. A nil Nonce reads the
// account's nonce from chain; Mortality 0 gives an immortal era.
type TxOptions struct {
	Nonce     *uint32
	Tip       *big.Int
	Mortality uint64
}

// SignedTx is a signed extrinsic ready for submission.
type SignedTx struct {
	c       *Client
	name    string
	account primitives.AccountID
	auto    bool

	Payload []byte
	Bytes   []byte
	Hash    primitives.Hash
	Nonce   uint32
	Era     extrinsic.Era
}

type accountNonce struct {
	mu    sync.Mutex
	next  uint32
	known bool
}

func (c *Client) accountNonce(id primitives.AccountID) *accountNonce {
	c.nonceLock.Lock()
	defer c.nonceLock.Unlock()
	st, ok := c.nonces[id]
	if !ok {
		st = &accountNonce{}
		c.nonces[id] = st
	}
	return st
}

// ResetNonce forgets the nonces handed out for id, so the next
// automatic nonce is read from chain only.
func (c *Client) ResetNonce(id primitives.AccountID) {
	c.nonceLock.Lock()
	defer c.nonceLock.Unlock()
	delete(c.nonces, id)
}

// release returns an automatic nonce that never reached the node.
func (c *Client) release(id primitives.AccountID, nonce uint32) {
	st := c.accountNonce(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.known && st.next == nonce+1 {
		st.next = nonce
	}
}

// Params gathers the extension values for account.
func (c *Client) Params(ctx context.Context, opts TxOptions) (extrinsic.Params, error) {
	var p extrinsic.Params
	ver, err := c.RuntimeVersion()
	if err != nil {
		return p, err
	}
	p.SpecVersion, p.TxVersion = ver.SpecVersion, ver.TransactionVersion
	if p.Genesis, err = c.GenesisHash(ctx); err != nil {
		return p, err
	}
	p.Era = extrinsic.Immortal()
	if opts.Mortality > 0 {
		number, err := c.BlockNumber(ctx, nil)
		if err != nil {
			return p, err
		}
		// the best block's own hash is stored only once its child exists
		anchor := uint64(number)
		if anchor > 0 {
			anchor--
		}
		p.Era = extrinsic.Mortal(opts.Mortality, anchor)
		birth := p.Era.Birth(anchor)
		if p.Checkpoint, err = FetchOrDefault(ctx, c, SystemBlockHash, nil, uint32(birth)); err != nil {
			return p, err
		}
	}
	if opts.Tip != nil {
		if p.Tip, err = extrinsic.Tip(opts.Tip); err != nil {
			return p, newError(KindCodec, "Params", err)
		}
	}
	return p, nil
}

// Sign builds the signer payload, has s sign it and wraps the
// envelope. Automatic nonces of one account are handed out one at a
// time.
func (s *Submittable) Sign(ctx context.Context, sg signer.Signer, opts TxOptions) (*SignedTx, error) {
	op := "Sign " + s.String()
	c := s.c
	p, err := c.Params(ctx, opts)
	if err != nil {
		return nil, err
	}
	id := sg.AccountID()
	tx := &SignedTx{c: c, name: s.String(), account: id, Era: p.Era}

	if opts.Nonce != nil {
		p.Nonce = *opts.Nonce
	} else {
		st := c.accountNonce(id)
		st.mu.Lock()
		defer st.mu.Unlock()
		info, err := c.Account(ctx, id, nil)
		if err != nil {
			return nil, err
		}
		p.Nonce = info.Nonce
		if st.known && st.next > p.Nonce {
			p.Nonce = st.next
		}
		tx.auto = true
	}
	tx.Nonce = p.Nonce

	ext, err := extrinsic.BuildExtensions(c.registry.Types, c.registry.Extrinsic.SignedExtensions, p)
	if err != nil {
		if errors.Is(err, extrinsic.ErrUnknownExtension) {
			return nil, newError(KindIncompatibleMetadata, op, err)
		}
		return nil, newError(KindCodec, op, err)
	}
	tx.Payload = extrinsic.Payload(s.call, ext)
	sig, err := sg.Sign(tx.Payload)
	if err != nil {
		return nil, newError(KindSigner, op, err)
	}
	if len(sig) != sg.Scheme().Len() {
		return nil, newError(KindSigner, op, errors.Errorf("signature is %d bytes, want %d", len(sig), sg.Scheme().Len()))
	}
	x := extrinsic.NewSigned(s.call, extrinsic.NewAddressId(id),
		extrinsic.MultiSignature{Scheme: sg.Scheme(), Bytes: sig}, ext)
	if tx.Bytes, err = x.Bytes(); err != nil {
		return nil, newError(KindCodec, op, err)
	}
	if tx.Hash, err = x.Hash(); err != nil {
		return nil, newError(KindCodec, op, err)
	}
	if tx.auto {
		st := c.accountNonce(id)
		st.next, st.known = tx.Nonce+1, true
	}
	c.log.Tx("info", fmt.Sprintf("%s signed by %s nonce %d hash %s", tx.name, id, tx.Nonce, tx.Hash))
	return tx, nil
}

// SignAndSubmit signs and submits in one step.
func (s *Submittable) SignAndSubmit(ctx context.Context, sg signer.Signer, opts TxOptions) (*TxProgress, error) {
	tx, err := s.Sign(ctx, sg, opts)
	if err != nil {
		return nil, err
	}
	return tx.Submit(ctx)
}

// Submit sends the extrinsic and opens its status stream.
func (tx *SignedTx) Submit(ctx context.Context) (*TxProgress, error) {
	sub, err := tx.c.transport.SubmitAndWatch(ctx, tx.Bytes)
	if err != nil {
		if tx.auto {
			tx.c.release(tx.account, tx.Nonce)
		}
		tx.c.log.Tx("err", fmt.Sprintf("%s submit: %v", tx.name, err))
		return nil, newError(KindTransport, "Submit "+tx.name, err)
	}
	tx.c.log.Tx("info", fmt.Sprintf("%s submitted %s", tx.name, tx.Hash))
	return &TxProgress{c: tx.c, tx: tx, sub: sub}, nil
}

// TxProgress follows one submitted transaction. Cancelling it stops
// the updates; the transaction stays with the node.
type TxProgress struct {
	c    *Client
	tx   *SignedTx
	sub  transport.Subscription
	last *extrinsic.Status
}

func (p *TxProgress) Hash() primitives.Hash {
	return p.tx.Hash
}

// Next waits for the following status update. Every error it returns
// is a *Error of KindTransport; errors.Is still matches ErrStreamClosed
// and the context's error.
func (p *TxProgress) Next(ctx context.Context) (extrinsic.Status, error) {
	op := "Watch " + p.tx.name
	if p.last != nil && p.last.IsTerminal() {
		return *p.last, newError(KindTransport, op, ErrStreamClosed)
	}
	select {
	case st, ok := <-p.sub.Updates():
		if !ok {
			select {
			case err := <-p.sub.Err():
				if err != nil {
					return extrinsic.Status{}, newError(KindTransport, op, err)
				}
			default:
			}
			return extrinsic.Status{}, newError(KindTransport, op, ErrStreamClosed)
		}
		p.last = &st
		p.c.log.Tx("info", fmt.Sprintf("%s %s: %s", p.tx.name, p.tx.Hash, st.Kind))
		return st, nil
	case err := <-p.sub.Err():
		return extrinsic.Status{}, newError(KindTransport, op, err)
	case <-ctx.Done():
		return extrinsic.Status{}, newError(KindTransport, op, ctx.Err())
	}
}

// Cancel stops consuming updates.
func (p *TxProgress) Cancel() {
	p.sub.Unsubscribe()
}

// WaitInBlock returns once the transaction is in a block.
func (p *TxProgress) WaitInBlock(ctx context.Context) (*TxResult, error) {
	return p.wait(ctx, false)
}

// WaitFinalized returns once the block holding the transaction is
// finalized.
func (p *TxProgress) WaitFinalized(ctx context.Context) (*TxResult, error) {
	return p.wait(ctx, true)
}

func (p *TxProgress) wait(ctx context.Context, final bool) (*TxResult, error) {
	defer p.sub.Unsubscribe()
	op := "Wait " + p.tx.name
	for {
		st, err := p.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrStreamClosed) {
				return nil, newError(KindTransport, op, errors.Wrapf(ErrStreamClosed, "last status %s", p.lastKind()))
			}
			return nil, err
		}
		switch {
		case st.IsFailure():
			p.c.log.Tx("err", fmt.Sprintf("%s %s rejected: %s %s", p.tx.name, p.tx.Hash, st.Kind, st.Reason))
			return nil, newError(KindSubmissionRejected, op, &RejectedError{Status: st})
		case st.Kind == extrinsic.FinalityTimeout:
			return nil, newError(KindSubmissionRejected, op, &RejectedError{Status: st})
		case st.Kind == extrinsic.Finalized, st.Kind == extrinsic.InBlock && !final:
			return p.result(ctx, st)
		}
	}
}

func (p *TxProgress) lastKind() string {
	if p.last == nil {
		return "none"
	}
	return p.last.Kind.String()
}

func (p *TxProgress) result(ctx context.Context, st extrinsic.Status) (*TxResult, error) {
	op := "Result " + p.tx.name
	if st.Index < 0 {
		return nil, newError(KindTransport, op, errors.Errorf("index of %s in block %s unknown", p.tx.Hash, st.Block))
	}
	block := st.Block
	recs, err := p.c.Events(ctx, &block)
	if err != nil {
		return nil, err
	}
	res := &TxResult{
		Block:     block,
		Index:     uint32(st.Index),
		Hash:      p.tx.Hash,
		Finalized: st.Kind == extrinsic.Finalized,
		Events:    FilterPhase(recs, ApplyExtrinsic(uint32(st.Index))),
	}
	for i := range res.Events {
		rec := &res.Events[i]
		if rec.Pallet != "System" {
			continue
		}
		switch rec.Name {
		case "ExtrinsicSuccess":
			res.Success = true
		case "ExtrinsicFailed":
			if len(rec.Fields) == 0 {
				return nil, newError(KindCodec, op, errors.New("ExtrinsicFailed without fields"))
			}
			de, err := dispatchErrorFromValue(rec.Fields[0].Value)
			if err != nil {
				return nil, newError(KindCodec, op, err)
			}
			de.Resolve(p.c.registry)
			res.DispatchError = &de
		}
	}
	if res.DispatchError != nil {
		p.c.log.Tx("err", fmt.Sprintf("%s %s failed in %s: %s", p.tx.name, p.tx.Hash, block, res.DispatchError))
	} else {
		p.c.log.Tx("info", fmt.Sprintf("%s %s included in %s #%d", p.tx.name, p.tx.Hash, block, st.Index))
	}
	return res, nil
}

// TxResult is the outcome of an included transaction. A failed
// dispatch is reported in DispatchError; the transaction itself was
// still included.
type TxResult struct {
	Block         primitives.Hash
	Index         uint32
	Hash          primitives.Hash
	Finalized     bool
	Events        []EventRecord
	Success       bool
	DispatchError *DispatchError
}

// Has reports whether the transaction emitted pallet.name.
func (r *TxResult) Has(pallet, name string) bool {
	for _, e := range r.Events {
		if e.Pallet == pallet && e.Name == name {
			return true
		}
	}
	return false
}

// dispatchErrorFromValue reads a DispatchError decoded through the
// node's registry.
func dispatchErrorFromValue(v scale.Value) (DispatchError, error) {
	vv, ok := v.(scale.VariantValue)
	if !ok {
		return DispatchError{}, errors.Errorf("dispatch error is %T", v)
	}
	de := DispatchError{Kind: vv.Name}
	if len(vv.Fields) == 0 {
		return de, nil
	}
	inner := vv.Fields[0].Value
	if vv.Name != "Module" {
		if iv, ok := inner.(scale.VariantValue); ok {
			de.Detail = iv.Name
		}
		return de, nil
	}
	fields, ok := inner.(scale.Composite)
	if !ok {
		return de, errors.Errorf("module error is %T", inner)
	}
	m := &ModuleError{}
	if idx, ok := fields.Field("index"); ok {
		m.Index, _ = idx.(uint8)
	}
	if e, ok := fields.Field("error"); ok {
		switch e := e.(type) {
		case []byte:
			copy(m.Error[:], e)
		case uint8:
			m.Error[0] = e
		}
	}
	de.Module = m
	return de, nil
}
