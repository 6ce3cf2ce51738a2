/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package extrinsic

import (
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

type AddressKind uint8

const (
	AddressId AddressKind = iota
	AddressIndex
	AddressRaw
	AddressAddress32
	AddressAddress20
)

// MultiAddress is the runtime's lookup source. Only the member matching
// Kind is meaningful.
type MultiAddress struct {
	Kind      AddressKind
	Id        primitives.AccountID
	Index     uint32
	Raw       []byte
	Address32 [32]byte
	Address20 [20]byte
}

func NewAddressId(acc primitives.AccountID) MultiAddress {
	return MultiAddress{Kind: AddressId, Id: acc}
}

func (m MultiAddress) EncodeTo(e *scale.Encoder) error {
	e.PushByte(byte(m.Kind))
	switch m.Kind {
	case AddressId:
		e.Write(m.Id[:])
	case AddressIndex:
		e.EncodeCompactUint(uint64(m.Index))
	case AddressRaw:
		e.EncodeBytes(m.Raw)
	case AddressAddress32:
		e.Write(m.Address32[:])
	case AddressAddress20:
		e.Write(m.Address20[:])
	default:
		return errors.Wrapf(scale.ErrInvalidDiscriminant, "address kind %d", m.Kind)
	}
	return nil
}

func (m *MultiAddress) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.ReadByte()
	if err != nil {
		return err
	}
	m.Kind = AddressKind(tag)
	switch m.Kind {
	case AddressId:
		return readFixed(d, m.Id[:])
	case AddressIndex:
		v, err := d.DecodeCompactUint()
		if err != nil {
			return err
		}
		if v > uint64(^uint32(0)) {
			return errors.Wrapf(scale.ErrOverflow, "address index %d", v)
		}
		m.Index = uint32(v)
	case AddressRaw:
		m.Raw, err = d.DecodeBytes()
		return err
	case AddressAddress32:
		return readFixed(d, m.Address32[:])
	case AddressAddress20:
		return readFixed(d, m.Address20[:])
	default:
		return errors.Wrapf(scale.ErrInvalidDiscriminant, "address kind %d", tag)
	}
	return nil
}

type SignatureScheme uint8

const (
	Ed25519 SignatureScheme = iota
	Sr25519
	Ecdsa
)

func (s SignatureScheme) Len() int {
	if s == Ecdsa {
		return 65
	}
	return 64
}

// MultiSignature is a scheme tag followed by the raw signature.
type MultiSignature struct {
	Scheme SignatureScheme
	Bytes  []byte
}

func (s MultiSignature) EncodeTo(e *scale.Encoder) error {
	if s.Scheme > Ecdsa {
		return errors.Wrapf(scale.ErrInvalidDiscriminant, "signature scheme %d", s.Scheme)
	}
	if len(s.Bytes) != s.Scheme.Len() {
		return errors.Errorf("signature length %d, scheme wants %d", len(s.Bytes), s.Scheme.Len())
	}
	e.PushByte(byte(s.Scheme))
	e.Write(s.Bytes)
	return nil
}

func (s *MultiSignature) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.ReadByte()
	if err != nil {
		return err
	}
	s.Scheme = SignatureScheme(tag)
	if s.Scheme > Ecdsa {
		return errors.Wrapf(scale.ErrInvalidDiscriminant, "signature scheme %d", tag)
	}
	s.Bytes = make([]byte, s.Scheme.Len())
	return readFixed(d, s.Bytes)
}

func readFixed(d *scale.Decoder, dst []byte) error {
	b, err := d.Read(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}
