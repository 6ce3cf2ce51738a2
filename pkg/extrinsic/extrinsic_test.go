/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package extrinsic

import (
	"bytes"
	"testing"

	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraEncoding(t *testing.T) {
	b, err := scale.Marshal(Immortal())
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, b)

	e := Mortal(64, 42)
	assert.Equal(t, Era{Period: 64, Phase: 42}, e)
	b, err = scale.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa5, 0x02}, b)

	e = Mortal(32768, 20000)
	b, err = scale.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, []byte{14 + 2500%16*16, 2500 / 16}, b)

	var back Era
	_, err = scale.Unmarshal(b, &back)
	require.NoError(t, err)
	assert.Equal(t, e, back)

	// period is rounded up and clamped
	assert.Equal(t, uint64(4), Mortal(1, 0).Period)
	assert.Equal(t, uint64(128), Mortal(100, 0).Period)
	assert.Equal(t, uint64(65536), Mortal(1<<20, 0).Period)
}

func TestEraBirth(t *testing.T) {
	e := Mortal(64, 1000)
	assert.Equal(t, uint64(1000%64), e.Phase)
	assert.Equal(t, uint64(1000), e.Birth(1000))
	assert.Equal(t, uint64(1000), e.Birth(1010))
	assert.Equal(t, uint64(1064), e.Death(1010))
	assert.Equal(t, uint64(0), Immortal().Birth(1000))
}

func TestAddressAndSignature(t *testing.T) {
	acc := primitives.AccountID{1, 2, 3}
	for _, a := range []MultiAddress{
		NewAddressId(acc),
		{Kind: AddressIndex, Index: 70000},
		{Kind: AddressRaw, Raw: []byte{9, 9}},
		{Kind: AddressAddress20, Address20: [20]byte{7}},
	} {
		b, err := scale.Marshal(a)
		require.NoError(t, err)
		assert.Equal(t, byte(a.Kind), b[0])
		var back MultiAddress
		require.NoError(t, scale.UnmarshalExact(b, &back))
		assert.Equal(t, a, back)
	}

	sig := MultiSignature{Scheme: Sr25519, Bytes: bytes.Repeat([]byte{0xee}, 64)}
	b, err := scale.Marshal(sig)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b[0])
	assert.Len(t, b, 65)

	_, err = scale.Marshal(MultiSignature{Scheme: Ecdsa, Bytes: make([]byte, 64)})
	assert.Error(t, err)

	var bad MultiAddress
	_, err = scale.Unmarshal([]byte{9}, &bad)
	assert.True(t, errors.Is(err, scale.ErrInvalidDiscriminant))
}

func testParams() Params {
	return Params{
		SpecVersion: 10020,
		TxVersion:   2,
		Genesis:     primitives.Hash{0xaa},
		Nonce:       5,
		Tip:         scale.NewU128(1),
	}
}

func TestBuildExtensions(t *testing.T) {
	ts := scale.NewTypes()
	declared := DeclareExtensions(ts)

	ext, err := BuildExtensions(ts, declared, testParams())
	require.NoError(t, err)
	// era immortal, nonce 5, tip 1, native fee asset
	assert.Equal(t, []byte{0x00, 5 << 2, 1 << 2, 0x00}, ext.Extra)

	want := []byte{0x24, 0x27, 0, 0, 2, 0, 0, 0}
	want = append(want, bytes.Repeat(append([]byte{0xaa}, make([]byte, 31)...), 2)...)
	assert.Equal(t, want, ext.Additional)

	p := testParams()
	p.Era = Mortal(64, 42)
	p.Checkpoint = primitives.Hash{0xbb}
	ext, err = BuildExtensions(ts, declared, p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa5, 0x02, 5 << 2, 1 << 2, 0x00}, ext.Extra)
	assert.Equal(t, byte(0xbb), ext.Additional[8+32])

	// an extension without data is tolerated, one with data is not
	empty := append(declared, metadata.SignedExtension{Identifier: "CheckFoo", Type: ts.Tuple(), AdditionalSigned: ts.Tuple()})
	_, err = BuildExtensions(ts, empty, testParams())
	assert.NoError(t, err)
	withData := append(declared, metadata.SignedExtension{Identifier: "CheckBar", Type: ts.Prim(scale.U8), AdditionalSigned: ts.Tuple()})
	_, err = BuildExtensions(ts, withData, testParams())
	assert.True(t, errors.Is(err, ErrUnknownExtension))
}

func TestPayloadHashing(t *testing.T) {
	ext := Extensions{Extra: []byte{1}, Additional: []byte{2}}
	short := Payload([]byte{0x06, 0x00}, ext)
	assert.Equal(t, []byte{0x06, 0x00, 1, 2}, short)

	call := bytes.Repeat([]byte{0x11}, 255)
	long := Payload(call, ext)
	raw := append(append(append([]byte{}, call...), 1), 2)
	h := hasher.Blake2b256(raw)
	assert.Equal(t, h[:], long)

	// exactly 256 bytes is signed raw
	assert.Len(t, Payload(call[:254], ext), 256)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	ts := scale.NewTypes()
	declared := DeclareExtensions(ts)
	p := testParams()
	p.Era = Mortal(64, 42)
	ext, err := BuildExtensions(ts, declared, p)
	require.NoError(t, err)

	call := []byte{0x06, 0x00, 0x01, 0x02}
	sig := MultiSignature{Scheme: Sr25519, Bytes: bytes.Repeat([]byte{0x5a}, 64)}
	x := NewSigned(call, NewAddressId(primitives.AccountID{0x01}), sig, ext)
	b, err := x.Bytes()
	require.NoError(t, err)

	d := scale.NewDecoder(b)
	n, err := d.DecodeCompactUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(d.Remaining()), n)
	assert.Equal(t, byte(0x84), b[d.Offset()])

	back, err := Decode(b, ts, declared)
	require.NoError(t, err)
	assert.Equal(t, x, back)

	h1, err := x.Hash()
	require.NoError(t, err)
	assert.Equal(t, primitives.Hash(hasher.Blake2b256(b)), h1)

	u, err := NewUnsigned(call).Bytes()
	require.NoError(t, err)
	assert.Equal(t, append([]byte{5 << 2, 0x04}, call...), u)
	back, err = Decode(u, ts, declared)
	require.NoError(t, err)
	assert.False(t, back.Signed)
	assert.Equal(t, call, back.Call)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, Status{Kind: InBlock}.IsTerminal())
	assert.False(t, Status{Kind: Retracted}.IsTerminal())
	assert.True(t, Status{Kind: Finalized}.IsTerminal())
	assert.False(t, Status{Kind: Finalized}.IsFailure())
	assert.True(t, Status{Kind: Invalid}.IsFailure())
	assert.Equal(t, "inBlock", InBlock.String())
}
