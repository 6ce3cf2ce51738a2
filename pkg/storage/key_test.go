/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainKey(t *testing.T) {
	key, err := Key("System", "Events", nil)
	require.NoError(t, err)
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef780d41e5e16056765bc8461851072c9d7", hex.EncodeToString(key))
}

func TestAccountKey(t *testing.T) {
	acc := bytes.Repeat([]byte{0x01}, 32)
	key, err := Key("System", "Account", []hasher.Hasher{hasher.Blake2_128Concat}, acc)
	require.NoError(t, err)

	want := "26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9"
	assert.Equal(t, want, hex.EncodeToString(key[:PrefixLen]))
	assert.Equal(t, hasher.Blake2b128(acc), key[PrefixLen:PrefixLen+16])
	assert.Equal(t, acc, key[PrefixLen+16:])
	assert.Len(t, key, PrefixLen+16+32)
}

func TestPartialKeyIsPrefix(t *testing.T) {
	hs := []hasher.Hasher{hasher.Blake2_128Concat, hasher.Twox64Concat}
	acc := bytes.Repeat([]byte{0x02}, 32)
	cur := make([]byte, 16)
	cur[0] = 130

	partial, err := Key("Tokens", "Accounts", hs, acc)
	require.NoError(t, err)
	full, err := Key("Tokens", "Accounts", hs, acc, cur)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(full, partial))
	assert.True(t, bytes.HasPrefix(partial, Prefix("Tokens", "Accounts")))

	_, err = Key("Tokens", "Accounts", hs, acc, cur, cur)
	assert.True(t, errors.Is(err, ErrTooManyKeys))
}

func TestSplitDoubleMap(t *testing.T) {
	ts := scale.NewTypes()
	accT := ts.Array(32, ts.Prim(scale.U8))
	curT := ts.Prim(scale.U128Prim)
	hs := []hasher.Hasher{hasher.Blake2_128Concat, hasher.Twox64Concat}

	acc := bytes.Repeat([]byte{0x03}, 32)
	cur, err := scale.Marshal(scale.NewU128(4))
	require.NoError(t, err)
	full, err := Key("Tokens", "Accounts", hs, acc, cur)
	require.NoError(t, err)

	segs, err := Split(ts, full, hs, []scale.TypeID{accT, curT})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, acc, segs[0].Key)
	assert.Equal(t, cur, segs[1].Key)
	assert.Len(t, segs[1].Hash, 8)

	// a middle transparent dimension needs its type
	_, err = Split(nil, full, hs, nil)
	assert.True(t, errors.Is(err, ErrOpaqueLength))

	// the last dimension can be recovered without one
	single, err := Key("System", "Account", hs[:1], acc)
	require.NoError(t, err)
	segs, err = Split(nil, single, hs[:1], nil)
	require.NoError(t, err)
	assert.Equal(t, acc, segs[0].Key)
}

func TestSplitOpaqueHasher(t *testing.T) {
	hs := []hasher.Hasher{hasher.Twox256, hasher.Identity}
	ts := scale.NewTypes()
	u32 := ts.Prim(scale.U32)
	a := []byte{1, 2, 3, 4}
	b := []byte{5, 6, 7, 8}
	full, err := Key("P", "E", hs, a, b)
	require.NoError(t, err)

	segs, err := Split(ts, full, hs, []scale.TypeID{u32, u32})
	require.NoError(t, err)
	assert.Nil(t, segs[0].Key)
	assert.Len(t, segs[0].Hash, 32)
	assert.Equal(t, b, segs[1].Key)
	assert.Empty(t, segs[1].Hash)

	_, err = Split(ts, full[:40], hs, []scale.TypeID{u32, u32})
	assert.Error(t, err)
	_, err = Split(ts, full[:10], hs, nil)
	assert.True(t, errors.Is(err, ErrShortKey))
}
