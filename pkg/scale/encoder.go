/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
)

// Encodeable is implemented by types with a hand-written SCALE form,
// typically tagged unions.
type Encodeable interface {
	EncodeTo(e *Encoder) error
}

// Encoder appends SCALE bytes to an internal buffer. Top-level values
// carry no length prefix.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 64)}
}

// Bytes returns the encoded buffer. The slice aliases the encoder.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) PushByte(b byte) {
	e.buf = append(e.buf, b)
}

// Write appends raw bytes without a length prefix.
func (e *Encoder) Write(b []byte) {
	e.buf = append(e.buf, b...)
}

func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.PushByte(1)
		return
	}
	e.PushByte(0)
}

func (e *Encoder) EncodeUint8(v uint8) {
	e.PushByte(v)
}

func (e *Encoder) EncodeUint16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *Encoder) EncodeUint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) EncodeUint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) EncodeU128(v U128) {
	e.EncodeUint64(v.Lo)
	e.EncodeUint64(v.Hi)
}

// EncodeCompactUint writes v in the smallest compact mode that holds it.
func (e *Encoder) EncodeCompactUint(v uint64) {
	switch {
	case v < 1<<6:
		e.PushByte(byte(v) << 2)
	case v < 1<<14:
		e.EncodeUint16(uint16(v<<2) | 0b01)
	case v < 1<<30:
		e.EncodeUint32(uint32(v<<2) | 0b10)
	default:
		n := 4
		for n < 8 && v>>(8*n) != 0 {
			n++
		}
		e.PushByte(byte(n-4)<<2 | 0b11)
		for i := 0; i < n; i++ {
			e.PushByte(byte(v >> (8 * i)))
		}
	}
}

// EncodeCompact writes a non-negative big integer in compact form. Values
// wider than 536 bits have no compact representation.
func (e *Encoder) EncodeCompact(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return errors.Wrap(ErrUnsupported, "negative compact")
	}
	if v.IsUint64() {
		e.EncodeCompactUint(v.Uint64())
		return nil
	}
	be := v.Bytes()
	n := len(be)
	if n > 67 {
		return errors.Wrapf(ErrOverflow, "compact of %d bytes", n)
	}
	e.PushByte(byte(n-4)<<2 | 0b11)
	for i := n - 1; i >= 0; i-- {
		e.PushByte(be[i])
	}
	return nil
}

// EncodeBytes writes a compact length followed by the bytes.
func (e *Encoder) EncodeBytes(b []byte) {
	e.EncodeCompactUint(uint64(len(b)))
	e.Write(b)
}

func (e *Encoder) EncodeString(s string) {
	e.EncodeBytes([]byte(s))
}

// Encode writes any supported Go value, see Marshal.
func (e *Encoder) Encode(v any) error {
	return encodeValue(e, v)
}
