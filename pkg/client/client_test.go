/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/ComposableFi/composable-sub002/pkg/cache"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainStorageRead(t *testing.T) {
	n := newTestNode(t)
	n.mem.Put(n.key(t, "System", "Number"), []byte{0x10, 0x27, 0x00, 0x00})

	v, ok, err := Fetch(context.Background(), n.cli, SystemNumber, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(10000), v)
}

func TestMapStorageRead(t *testing.T) {
	n := newTestNode(t)
	a := account(0x01)

	key, err := StorageKey(n.cli, SystemAccount, a)
	require.NoError(t, err)
	want := append(append(append(hasher.Twox128String("System"), hasher.Twox128String("Account")...),
		hasher.Blake2b128(a[:])...), a[:]...)
	assert.Equal(t, want, key)

	n.putAccount(t, a, AccountInfo{Nonce: 5, Providers: 1, Data: AccountData{Free: scale.NewU128(7)}})
	info, ok, err := Fetch(context.Background(), n.cli, SystemAccount, nil, a)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(5), info.Nonce)
	assert.Equal(t, uint32(1), info.Providers)
	assert.Equal(t, "7", info.Data.Free.String())
}

func TestByteKeys(t *testing.T) {
	n := newTestNode(t)
	who := account(0x11)

	want, err := StorageKey(n.cli, SystemAccount, who)
	require.NoError(t, err)
	got, err := StorageKey(n.cli, SystemAccount, who[:])
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = StorageKey(n.cli, SystemAccount, who[:31])
	assert.Equal(t, KindCodec, KindOf(err))

	want, err = StorageKey(n.cli, SystemBlockHash, uint32(7))
	require.NoError(t, err)
	got, err = StorageKey(n.cli, SystemBlockHash, []byte{7, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFetchOrDefault(t *testing.T) {
	n := newTestNode(t)
	ctx := context.Background()

	_, ok, err := Fetch(ctx, n.cli, SystemAccount, nil, account(0x02))
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := FetchOrDefault(ctx, n.cli, SystemAccount, nil, account(0x02))
	require.NoError(t, err)
	assert.Equal(t, AccountInfo{}, info)

	number, err := n.cli.BlockNumber(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, number)
}

func TestMismatchPerformsNoIO(t *testing.T) {
	n := newTestNode(t)

	types := scale.NewTypes()
	shapes := DeclareSystemShapes(types)
	// the node takes a compact u128, these bindings a compact u64
	stale := DeclareCall[struct {
		Dest  [33]byte
		Value uint64 `scale:"compact"`
	}](types, "Balances", "transfer",
		scale.F("dest", shapes.MultiAddress),
		scale.F("value", types.Compact(shapes.U64)))

	_, err := BuildCall(n.cli, stale, struct {
		Dest  [33]byte
		Value uint64 `scale:"compact"`
	}{Value: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatibleMetadata))
	assert.Equal(t, KindIncompatibleMetadata, KindOf(err))

	var mismatch *IncompatibleMetadataError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, metadata.ItemCall, mismatch.Item)
	assert.Equal(t, stale.Expected(), mismatch.Expected)
	assert.NotEqual(t, mismatch.Expected, mismatch.Actual)
	assert.False(t, mismatch.Missing)

	staleNumber := DeclarePlain[uint64](types, "System", "Number", metadata.Default, shapes.U64)
	_, _, err = Fetch(context.Background(), n.cli, staleNumber, nil)
	assert.True(t, errors.Is(err, ErrIncompatibleMetadata))

	missing := DeclarePlain[uint32](types, "Vesting", "Schedules", metadata.Default, shapes.U32)
	err = n.cli.Check(missing)
	require.True(t, errors.As(err, &mismatch))
	assert.True(t, mismatch.Missing)

	assert.Equal(t, 0, n.mem.Count(""))
}

func TestCompatReport(t *testing.T) {
	n := newTestNode(t)
	types := scale.NewTypes()
	shapes := DeclareSystemShapes(types)
	stale := DeclarePlain[uint64](types, "System", "Number", metadata.Default, shapes.U64)
	missing := DeclarePlain[uint32](types, "Vesting", "Schedules", metadata.Default, shapes.U32)

	report := Compat(n.reg, append(SystemDescriptors(), stale, missing)...)
	require.Len(t, report, 9)
	for _, e := range report[:7] {
		assert.True(t, e.Compatible, "%s %s.%s", e.Item, e.Pallet, e.Name)
	}
	assert.False(t, report[7].Compatible)
	assert.NotEmpty(t, report[7].Actual)
	assert.True(t, report[8].Missing)
	assert.Equal(t, 0, n.mem.Count(""))
}

func TestIterationPages(t *testing.T) {
	n := newTestNode(t, WithPageSize(100))
	for i := uint32(0); i < 1000; i++ {
		var h primitives.Hash
		binary.LittleEndian.PutUint32(h[:], i)
		n.putBlockHash(t, i, h)
	}

	it, err := Iter(n.cli, SystemBlockHash, nil)
	require.NoError(t, err)
	ctx := context.Background()

	seen := make(map[uint32]bool)
	var last []byte
	for it.Next(ctx) {
		e := it.Entry()
		if last != nil {
			assert.Equal(t, 1, bytes.Compare(e.Key, last), "keys out of order")
		}
		last = e.Key
		require.Len(t, e.Keys, 1)
		number := binary.LittleEndian.Uint32(e.Keys[0].Key)
		assert.False(t, seen[number], "block %d visited twice", number)
		seen[number] = true
		assert.Equal(t, number, binary.LittleEndian.Uint32(e.Value[:4]))
	}
	require.NoError(t, it.Err())
	assert.Len(t, seen, 1000)
	assert.Equal(t, 10, it.Pages())
	assert.Equal(t, 10, n.mem.Count(transport.MethodStorageRange))
}

func TestIterationShortPage(t *testing.T) {
	n := newTestNode(t, WithPageSize(4))
	for i := uint32(0); i < 10; i++ {
		var h primitives.Hash
		binary.LittleEndian.PutUint32(h[:], i)
		n.putBlockHash(t, i, h)
	}
	gone, err := StorageKey(n.cli, SystemBlockHash, uint32(1))
	require.NoError(t, err)
	n.mem.Vanish(gone)

	it, err := Iter(n.cli, SystemBlockHash, nil)
	require.NoError(t, err)
	ctx := context.Background()
	seen := make(map[uint32]bool)
	for it.Next(ctx) {
		seen[binary.LittleEndian.Uint32(it.Entry().Keys[0].Key)] = true
	}
	require.NoError(t, it.Err())
	assert.Len(t, seen, 9)
	assert.False(t, seen[1])
	assert.Equal(t, 3, it.Pages())
}

func TestIterationErrors(t *testing.T) {
	n := newTestNode(t)
	_, err := Iter(n.cli, SystemNumber, nil)
	assert.Equal(t, KindCodec, KindOf(err))

	_, err = Iter(n.cli, SystemAccount, nil, account(1))
	assert.Equal(t, KindCodec, KindOf(err))

	it, err := Iter(n.cli, SystemAccount, nil)
	require.NoError(t, err)
	n.mem.FailNext(transport.MethodStorageRange, errors.New("connection reset"))
	assert.False(t, it.Next(context.Background()))
	assert.True(t, errors.Is(it.Err(), ErrTransport))
}

func TestPinnedReadsAreCached(t *testing.T) {
	db, err := cache.NewCache(t.TempDir(), 16, 16)
	require.NoError(t, err)
	defer db.Close()

	n := newTestNode(t, WithCache(db))
	block := primitives.Hash{0xbb}
	n.mem.PutAt(block, n.key(t, "System", "Number"), []byte{0x2a, 0, 0, 0})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := n.cli.BlockNumber(ctx, &block)
		require.NoError(t, err)
		assert.Equal(t, uint32(42), v)
	}
	assert.Equal(t, 1, n.mem.Count(transport.MethodStorageQuery))

	_, ok, err := Fetch(ctx, n.cli, SystemAccount, &block, account(9))
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = Fetch(ctx, n.cli, SystemAccount, &block, account(9))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, n.mem.Count(transport.MethodStorageQuery))

	_, err = n.cli.BlockNumber(ctx, nil)
	require.NoError(t, err)
	_, err = n.cli.BlockNumber(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n.mem.Count(transport.MethodStorageQuery))
}

func TestNewErrors(t *testing.T) {
	mem := transport.NewMemory([]byte{0x01, 0x02})
	_, err := New(context.Background(), mem)
	assert.Equal(t, KindCodec, KindOf(err))

	mem.FailNext(transport.MethodFetchMetadata, errors.New("dial tcp: refused"))
	_, err = New(context.Background(), mem)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestRuntimeConstants(t *testing.T) {
	n := newTestNode(t)
	v, err := n.cli.RuntimeVersion()
	require.NoError(t, err)
	assert.Equal(t, testVersion, v)

	types := scale.NewTypes()
	u32 := types.Prim(scale.U32)
	pinned := DeclareConstant[RuntimeVersion](types, "System", "Version", u32, []byte{1, 0, 0, 0})
	assert.True(t, errors.Is(n.cli.Check(pinned), ErrIncompatibleMetadata))

	genesis, err := n.cli.GenesisHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testGenesis, genesis)
	_, err = n.cli.GenesisHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n.mem.Count(transport.MethodStorageQuery))
}

func TestFetchDynamic(t *testing.T) {
	n := newTestNode(t)
	a := account(3)
	n.putAccount(t, a, AccountInfo{Nonce: 11, Data: AccountData{Reserved: scale.NewU128(4)}})

	v, ok, err := n.cli.FetchDynamic(context.Background(), "System", "Account", nil, a[:])
	require.NoError(t, err)
	require.True(t, ok)
	c, isComposite := v.(scale.Composite)
	require.True(t, isComposite)
	nonce, _ := c.Field("nonce")
	assert.Equal(t, uint32(11), nonce)

	_, _, err = n.cli.FetchDynamic(context.Background(), "System", "Nope", nil)
	assert.Equal(t, KindIncompatibleMetadata, KindOf(err))
}
