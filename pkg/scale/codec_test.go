/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compactBytes(v uint64) []byte {
	e := NewEncoder()
	e.EncodeCompactUint(v)
	return e.Bytes()
}

func TestCompactModes(t *testing.T) {
	assert.Equal(t, []byte{0xfc}, compactBytes(63))
	assert.Equal(t, []byte{0x01, 0x01}, compactBytes(64))
	assert.Equal(t, []byte{0x02, 0x00, 0x01, 0x00}, compactBytes(16384))
	assert.Equal(t, []byte{0x00}, compactBytes(0))
	assert.Equal(t, []byte{0xfd, 0xff}, compactBytes(16383))
	assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, compactBytes(1<<30-1))
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 0x40}, compactBytes(1<<30))
	assert.Equal(t, []byte{0x13, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, compactBytes(^uint64(0)))

	for _, v := range []uint64{0, 1, 63, 64, 16383, 16384, 1<<30 - 1, 1 << 30, 1 << 40, ^uint64(0)} {
		d := NewDecoder(compactBytes(v))
		got, err := d.DecodeCompactUint()
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, 0, d.Remaining())
	}
}

func TestCompactBig(t *testing.T) {
	v, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.True(t, ok)
	e := NewEncoder()
	require.NoError(t, e.EncodeCompact(v))
	assert.Equal(t, byte((16-4)<<2|3), e.Bytes()[0])
	assert.Len(t, e.Bytes(), 17)

	got, err := NewDecoder(e.Bytes()).DecodeCompact()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(got))

	_, err = NewDecoder(e.Bytes()).DecodeCompactUint()
	assert.True(t, errors.Is(err, ErrOverflow))

	assert.Error(t, e.EncodeCompact(big.NewInt(-1)))
}

func TestCompactNonMinimalAccepted(t *testing.T) {
	// 1 written in four-byte mode
	got, err := NewDecoder([]byte{0x06, 0x00, 0x00, 0x00}).DecodeCompactUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)
}

type accountData struct {
	Free       U128
	Reserved   U128
	MiscFrozen U128
	FeeFrozen  U128
}

type accountInfo struct {
	Nonce       uint32
	Consumers   uint32
	Providers   uint32
	Sufficients uint32
	Data        accountData
}

type withCompact struct {
	Value  U128   `scale:"compact"`
	Count  uint32 `scale:"compact"`
	Ignore string `scale:"-"`
	Memo   []byte
	Tags   []uint16
	Hash   [4]byte
	Signed int16
	Maybe  Option[uint32]
	Flag   Option[bool]
	Result Result[Unit, uint8]
}

func TestStructRoundTrip(t *testing.T) {
	in := accountInfo{
		Nonce:     5,
		Providers: 1,
		Data:      accountData{Free: NewU128(1000), Reserved: U128{Lo: 1, Hi: 2}},
	}
	b, err := Marshal(in)
	require.NoError(t, err)
	assert.Len(t, b, 16+64)
	assert.Equal(t, []byte{5, 0, 0, 0}, b[:4])

	var out accountInfo
	n, err := Unmarshal(append(b, 0xaa, 0xbb), &out)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, in, out)

	w := withCompact{
		Value:  NewU128(64),
		Count:  16384,
		Ignore: "skipped",
		Memo:   []byte("hi"),
		Tags:   []uint16{1, 2},
		Hash:   [4]byte{9, 8, 7, 6},
		Signed: -2,
		Maybe:  Some[uint32](7),
		Flag:   Some(false),
		Result: Err[Unit, uint8](3),
	}
	b, err = Marshal(w)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01}, b[:2])

	var wout withCompact
	require.NoError(t, UnmarshalExact(b, &wout))
	w.Ignore = ""
	assert.Equal(t, w, wout)
}

func TestOptionBoolSingleByte(t *testing.T) {
	for tag, o := range map[byte]Option[bool]{0: None[bool](), 1: Some(true), 2: Some(false)} {
		b, err := Marshal(o)
		require.NoError(t, err)
		assert.Equal(t, []byte{tag}, b)
		var out Option[bool]
		require.NoError(t, UnmarshalExact(b, &out))
		assert.Equal(t, o, out)
	}
	var out Option[bool]
	_, err := Unmarshal([]byte{3}, &out)
	assert.True(t, errors.Is(err, ErrInvalidDiscriminant))
}

func TestDecodeErrors(t *testing.T) {
	var v uint32
	_, err := Unmarshal([]byte{1, 2}, &v)
	assert.True(t, errors.Is(err, ErrNotEnoughBytes))

	var o Option[uint8]
	_, err = Unmarshal([]byte{7, 1}, &o)
	assert.True(t, errors.Is(err, ErrInvalidDiscriminant))

	var b bool
	_, err = Unmarshal([]byte{2}, &b)
	assert.True(t, errors.Is(err, ErrInvalidDiscriminant))

	// length prefix larger than the input
	var s []uint32
	_, err = Unmarshal([]byte{0x10, 1, 0, 0, 0}, &s)
	assert.True(t, errors.Is(err, ErrNotEnoughBytes))

	var small struct {
		N uint8 `scale:"compact"`
	}
	_, err = Unmarshal(compactBytes(300), &small)
	assert.True(t, errors.Is(err, ErrOverflow))

	assert.Error(t, UnmarshalExact([]byte{1, 0, 0, 0, 9}, &v))
}

func TestHugeLengthOfEmptyItems(t *testing.T) {
	huge := compactBytes(1 << 62)
	require.Len(t, huge, 9)

	var units []Unit
	_, err := Unmarshal(huge, &units)
	assert.True(t, errors.Is(err, ErrOverflow))

	var words []uint32
	_, err = Unmarshal(huge, &words)
	assert.True(t, errors.Is(err, ErrNotEnoughBytes))

	n, err := Unmarshal(compactBytes(3), &units)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, units, 3)
}

func TestU128(t *testing.T) {
	v, ok := new(big.Int).SetString("18446744073709551616", 10)
	require.True(t, ok)
	u, err := U128FromBig(v)
	require.NoError(t, err)
	assert.Equal(t, U128{Lo: 0, Hi: 1}, u)
	assert.Equal(t, "18446744073709551616", u.String())

	_, err = U128FromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestUnsupported(t *testing.T) {
	_, err := Marshal(map[string]int{})
	assert.True(t, errors.Is(err, ErrUnsupported))
	_, err = Marshal(nil)
	assert.Error(t, err)
}
