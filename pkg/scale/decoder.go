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

// MaxZeroSizedItems bounds the length of a sequence whose items occupy
// no input, such as a list of empty tuples.
const MaxZeroSizedItems = 1 << 16

// Decodeable is implemented by pointer receivers that read their own
// SCALE form.
type Decodeable interface {
	DecodeFrom(d *Decoder) error
}

// Decoder reads SCALE values from a byte slice. Trailing input is left
// untouched; Offset reports how much was consumed.
type Decoder struct {
	data []byte
	off  int
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{data: b}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

func (d *Decoder) ReadByte() (byte, error) {
	if d.off >= len(d.data) {
		return 0, ErrNotEnoughBytes
	}
	b := d.data[d.off]
	d.off++
	return b, nil
}

// Read returns the next n bytes. The slice aliases the input.
func (d *Decoder) Read(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, errors.Wrapf(ErrNotEnoughBytes, "want %d, have %d", n, d.Remaining())
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.Wrapf(ErrInvalidDiscriminant, "bool %#x", b)
}

func (d *Decoder) DecodeUint8() (uint8, error) {
	return d.ReadByte()
}

func (d *Decoder) DecodeUint16() (uint16, error) {
	b, err := d.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) DecodeUint32() (uint32, error) {
	b, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) DecodeUint64() (uint64, error) {
	b, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) DecodeU128() (U128, error) {
	lo, err := d.DecodeUint64()
	if err != nil {
		return U128{}, err
	}
	hi, err := d.DecodeUint64()
	if err != nil {
		return U128{}, err
	}
	return U128{Lo: lo, Hi: hi}, nil
}

// DecodeCompact reads a compact integer of any mode. Non-minimal
// encodings are accepted.
func (d *Decoder) DecodeCompact() (*big.Int, error) {
	b0, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch b0 & 0b11 {
	case 0b00:
		return new(big.Int).SetUint64(uint64(b0 >> 2)), nil
	case 0b01:
		b1, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		v := uint64(b0) | uint64(b1)<<8
		return new(big.Int).SetUint64(v >> 2), nil
	case 0b10:
		rest, err := d.Read(3)
		if err != nil {
			return nil, err
		}
		v := uint64(b0) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24
		return new(big.Int).SetUint64(v >> 2), nil
	}
	n := int(b0>>2) + 4
	le, err := d.Read(n)
	if err != nil {
		return nil, err
	}
	be := make([]byte, n)
	for i := range le {
		be[n-1-i] = le[i]
	}
	return new(big.Int).SetBytes(be), nil
}

// DecodeCompactUint reads a compact integer that must fit 64 bits.
func (d *Decoder) DecodeCompactUint() (uint64, error) {
	v, err := d.DecodeCompact()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Wrapf(ErrOverflow, "compact %s", v)
	}
	return v.Uint64(), nil
}

// DecodeLength reads a compact length prefix and checks it against the
// remaining input when each item occupies at least minItem bytes. With
// minItem 0 the length is capped at MaxZeroSizedItems.
func (d *Decoder) DecodeLength(minItem int) (int, error) {
	n, err := d.DecodeCompactUint()
	if err != nil {
		return 0, err
	}
	if minItem > 0 && n > uint64(d.Remaining()/minItem) {
		return 0, errors.Wrapf(ErrNotEnoughBytes, "length %d", n)
	}
	if minItem <= 0 && n > MaxZeroSizedItems {
		return 0, errors.Wrapf(ErrOverflow, "length %d of zero-sized items", n)
	}
	if n > uint64(^uint(0)>>1) {
		return 0, errors.Wrapf(ErrOverflow, "length %d", n)
	}
	return int(n), nil
}

func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.DecodeLength(1)
	if err != nil {
		return nil, err
	}
	b, err := d.Read(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode reads into the value pointed to by v, see Unmarshal.
func (d *Decoder) Decode(v any) error {
	return decodeValue(d, v)
}
