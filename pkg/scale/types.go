/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import (
	"math/big"

	"github.com/pkg/errors"
)

// U128 is an unsigned 128-bit integer, little-endian on the wire.
type U128 struct {
	Lo uint64
	Hi uint64
}

func NewU128(v uint64) U128 {
	return U128{Lo: v}
}

// U128FromBig converts a non-negative integer below 2^128.
func U128FromBig(v *big.Int) (U128, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return U128{}, errors.Wrapf(ErrOverflow, "u128 %s", v)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)
	return U128{Lo: lo.Uint64(), Hi: hi.Uint64()}, nil
}

func (u U128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u U128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

func (u U128) String() string {
	return u.Big().String()
}

func (u U128) EncodeTo(e *Encoder) error {
	e.EncodeU128(u)
	return nil
}

func (u *U128) DecodeFrom(d *Decoder) error {
	v, err := d.DecodeU128()
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Option is the SCALE optional: 0x00 for absent, 0x01 followed by the
// payload when present. Option[bool] uses the single-byte form
// 0 = None, 1 = Some(true), 2 = Some(false).
type Option[T any] struct {
	HasValue bool
	Value    T
}

func Some[T any](v T) Option[T] {
	return Option[T]{HasValue: true, Value: v}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the payload and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.HasValue
}

func (o Option[T]) EncodeTo(e *Encoder) error {
	if b, ok := any(o.Value).(bool); ok {
		switch {
		case !o.HasValue:
			e.PushByte(0)
		case b:
			e.PushByte(1)
		default:
			e.PushByte(2)
		}
		return nil
	}
	if !o.HasValue {
		e.PushByte(0)
		return nil
	}
	e.PushByte(1)
	return e.Encode(o.Value)
}

func (o *Option[T]) DecodeFrom(d *Decoder) error {
	tag, err := d.ReadByte()
	if err != nil {
		return err
	}
	var zero T
	if p, ok := any(&o.Value).(*bool); ok {
		switch tag {
		case 0:
			*o = Option[T]{}
		case 1, 2:
			o.HasValue = true
			*p = tag == 1
		default:
			return errors.Wrapf(ErrInvalidDiscriminant, "option<bool> %#x", tag)
		}
		return nil
	}
	switch tag {
	case 0:
		o.HasValue = false
		o.Value = zero
		return nil
	case 1:
		o.HasValue = true
		return d.Decode(&o.Value)
	}
	return errors.Wrapf(ErrInvalidDiscriminant, "option %#x", tag)
}

// Result is the result-shaped union: 0x00 Ok(T), 0x01 Err(E).
type Result[T, E any] struct {
	IsErr bool
	Ok    T
	Err   E
}

func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{Ok: v}
}

func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{IsErr: true, Err: e}
}

func (r Result[T, E]) EncodeTo(e *Encoder) error {
	if r.IsErr {
		e.PushByte(1)
		return e.Encode(r.Err)
	}
	e.PushByte(0)
	return e.Encode(r.Ok)
}

func (r *Result[T, E]) DecodeFrom(d *Decoder) error {
	tag, err := d.ReadByte()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		r.IsErr = false
		return d.Decode(&r.Ok)
	case 1:
		r.IsErr = true
		return d.Decode(&r.Err)
	}
	return errors.Wrapf(ErrInvalidDiscriminant, "result %#x", tag)
}

// Unit is the empty tuple.
type Unit struct{}

// Raw is a pre-encoded value written verbatim. It cannot be decoded
// without a shape, so DecodeFrom consumes the remaining input.
type Raw []byte

func (r Raw) EncodeTo(e *Encoder) error {
	e.Write(r)
	return nil
}

func (r *Raw) DecodeFrom(d *Decoder) error {
	b, err := d.Read(d.Remaining())
	if err != nil {
		return err
	}
	*r = append((*r)[:0], b...)
	return nil
}
