/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package extrinsic builds the signer payload and the outer envelope of
// a transaction.
package extrinsic

import (
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

const (
	// Version is the extrinsic format version written in the low bits
	// of the envelope's first byte.
	Version    = 4
	signedFlag = 0x80

	// payloads longer than this are signed by their blake2-256 digest
	maxRawPayload = 256
)

// Payload returns the bytes the signer signs:
// call ‖ extra ‖ additional, hashed when longer than 256 bytes.
func Payload(call []byte, ext Extensions) []byte {
	n := len(call) + len(ext.Extra) + len(ext.Additional)
	b := make([]byte, 0, n)
	b = append(b, call...)
	b = append(b, ext.Extra...)
	b = append(b, ext.Additional...)
	if n > maxRawPayload {
		h := hasher.Blake2b256(b)
		return h[:]
	}
	return b
}

// Extrinsic is a transaction before length-prefixing.
type Extrinsic struct {
	Signed    bool
	Address   MultiAddress
	Signature MultiSignature
	Extra     []byte
	Call      []byte
}

// NewUnsigned wraps call without signature or extensions.
func NewUnsigned(call []byte) *Extrinsic {
	return &Extrinsic{Call: call}
}

// NewSigned assembles a signed extrinsic.
func NewSigned(call []byte, addr MultiAddress, sig MultiSignature, ext Extensions) *Extrinsic {
	return &Extrinsic{
		Signed:    true,
		Address:   addr,
		Signature: sig,
		Extra:     ext.Extra,
		Call:      call,
	}
}

// Bytes returns the compact-length-prefixed envelope submitted to the
// node.
func (x *Extrinsic) Bytes() ([]byte, error) {
	body := scale.NewEncoder()
	if x.Signed {
		body.PushByte(Version | signedFlag)
		if err := x.Address.EncodeTo(body); err != nil {
			return nil, errors.Wrap(err, "[Address]")
		}
		if err := x.Signature.EncodeTo(body); err != nil {
			return nil, errors.Wrap(err, "[Signature]")
		}
		body.Write(x.Extra)
	} else {
		body.PushByte(Version)
	}
	body.Write(x.Call)

	out := scale.NewEncoder()
	out.EncodeBytes(body.Bytes())
	return out.Bytes(), nil
}

// Hash is the blake2-256 digest of the envelope, as the node reports it.
func (x *Extrinsic) Hash() (primitives.Hash, error) {
	b, err := x.Bytes()
	if err != nil {
		return primitives.Hash{}, err
	}
	return primitives.Hash(hasher.Blake2b256(b)), nil
}

// Decode parses an envelope. The extension bytes are cut out using the
// declared extension types; the call is the remainder.
func Decode(b []byte, types *scale.Types, declared []metadata.SignedExtension) (*Extrinsic, error) {
	outer := scale.NewDecoder(b)
	body, err := outer.DecodeBytes()
	if err != nil {
		return nil, errors.Wrap(err, "[Envelope]")
	}
	if outer.Remaining() != 0 {
		return nil, errors.Errorf("[Envelope] %d trailing bytes", outer.Remaining())
	}
	d := scale.NewDecoder(body)
	head, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if head&^signedFlag != Version {
		return nil, errors.Errorf("unsupported extrinsic version %d", head&^signedFlag)
	}
	x := &Extrinsic{Signed: head&signedFlag != 0}
	if x.Signed {
		if err = x.Address.DecodeFrom(d); err != nil {
			return nil, errors.Wrap(err, "[Address]")
		}
		if err = x.Signature.DecodeFrom(d); err != nil {
			return nil, errors.Wrap(err, "[Signature]")
		}
		start := d.Offset()
		for _, ext := range declared {
			if err = scale.Skip(d, types, ext.Type); err != nil {
				return nil, errors.Wrapf(err, "[%s]", ext.Identifier)
			}
		}
		x.Extra = body[start:d.Offset()]
	}
	x.Call = body[d.Offset():]
	return x, nil
}
