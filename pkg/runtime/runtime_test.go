/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package runtime_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/ComposableFi/composable-sub002/pkg/runtime/runtimetest"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, opts ...client.Option) *runtimetest.Node {
	t.Helper()
	n, err := runtimetest.NewNode(opts...)
	require.NoError(t, err)
	return n
}

func acc(b byte) primitives.AccountID {
	var a primitives.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}

func TestCatalogMatchesRuntime(t *testing.T) {
	n := node(t)
	require.NoError(t, runtime.Compatible(n.Client))
	for _, e := range runtime.Report(n.Client) {
		assert.True(t, e.Compatible, "%s %s.%s", e.Item, e.Pallet, e.Name)
	}
	assert.Equal(t, 0, n.Memory.Count(""))
}

func TestCatalogDetectsUpgrade(t *testing.T) {
	n := node(t)
	// a runtime whose Tokens.transfer takes the amount uncompacted
	p, err := n.Registry.Pallet("Tokens")
	require.NoError(t, err)
	ts := n.Registry.Types
	s := runtime.DeclareShapes(ts)
	require.NoError(t, n.Registry.SetCalls(p, ts.Variant("Tokens::Call",
		scale.V("transfer", 0,
			scale.F("dest", s.MultiAddress),
			scale.F("currency_id", s.CurrencyID),
			scale.F("amount", s.Balance)),
	)))
	c := client.NewWithRegistry(n.Registry, n.Memory)

	_, err = runtime.TransferToken(c, acc(2), runtime.USDT, big.NewInt(5))
	assert.True(t, errors.Is(err, client.ErrIncompatibleMetadata))
	assert.Error(t, runtime.Compatible(c))

	var stale int
	for _, e := range runtime.Report(c) {
		if !e.Compatible {
			stale++
			assert.Equal(t, "Tokens", e.Pallet)
			assert.Equal(t, "transfer", e.Name)
		}
	}
	assert.Equal(t, 1, stale)
	assert.Equal(t, 0, n.Memory.Count(""))
}

func TestTransferCalls(t *testing.T) {
	n := node(t)
	to := acc(0x22)

	s, err := runtime.Transfer(n.Client, to, big.NewInt(1000), false)
	require.NoError(t, err)
	want := append([]byte{runtimetest.BalancesIndex, 0, 0}, to[:]...)
	assert.Equal(t, append(want, 0xa1, 0x0f), s.CallBytes())

	s, err = runtime.Transfer(n.Client, to, big.NewInt(1000), true)
	require.NoError(t, err)
	assert.Equal(t, byte(3), s.CallBytes()[1])

	s, err = runtime.TransferAll(n.Client, to, true)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{runtimetest.BalancesIndex, 4, 0}, to[:]...), 1), s.CallBytes())

	s, err = runtime.TransferToken(n.Client, to, runtime.KSM, big.NewInt(1))
	require.NoError(t, err)
	b := s.CallBytes()
	assert.Equal(t, []byte{runtimetest.TokensIndex, 0, 0}, b[:3])
	assert.Equal(t, append([]byte{4}, make([]byte, 15)...), b[35:51])
	assert.Equal(t, []byte{0x04}, b[51:])

	_, err = runtime.Transfer(n.Client, to, new(big.Int).Lsh(big.NewInt(1), 128), false)
	assert.Equal(t, client.KindCodec, client.KindOf(err))
}

func TestSudoWrapsCall(t *testing.T) {
	n := node(t)
	inner, err := runtime.Remark(n.Client, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 8, 'h', 'i'}, inner.CallBytes())

	s, err := runtime.Sudo(n.Client, inner)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{runtimetest.SudoIndex, 0}, inner.CallBytes()...), s.CallBytes())

	_, ok, err := runtime.SudoAccount(context.Background(), n.Client, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, n.Put("Sudo", "Key", acc(9)))
	key, ok, err := runtime.SudoAccount(context.Background(), n.Client, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, acc(9), key)
}

func TestPabloCalls(t *testing.T) {
	n := node(t)
	pair := runtime.CurrencyPair{Base: runtime.PICA, Quote: runtime.USDT}
	s, err := runtime.Swap(n.Client, 1, pair, big.NewInt(100), nil, false)
	require.NoError(t, err)
	b := s.CallBytes()
	require.Len(t, b, 2+16*5+1)
	assert.Equal(t, []byte{runtimetest.PabloIndex, 3}, b[:2])
	assert.Equal(t, byte(1), b[2])
	assert.Equal(t, byte(130), b[2+16*2])

	for _, build := range []func() (*client.Submittable, error){
		func() (*client.Submittable, error) { return runtime.Buy(n.Client, 1, runtime.PICA, big.NewInt(5), true) },
		func() (*client.Submittable, error) { return runtime.Sell(n.Client, 1, runtime.PICA, big.NewInt(5), true) },
		func() (*client.Submittable, error) {
			return runtime.AddLiquidity(n.Client, 1, big.NewInt(1), big.NewInt(2), big.NewInt(0), false)
		},
		func() (*client.Submittable, error) {
			return runtime.RemoveLiquidity(n.Client, 1, big.NewInt(1), nil, nil)
		},
	} {
		s, err := build()
		require.NoError(t, err)
		assert.Equal(t, byte(runtimetest.PabloIndex), s.CallBytes()[0])
	}
}

func TestTokensDoubleMap(t *testing.T) {
	n := node(t, client.WithPageSize(2))
	ctx := context.Background()
	who, other := acc(1), acc(2)
	require.NoError(t, n.SetTokens(who, runtime.PICA, runtime.TokenAccount{Free: scale.NewU128(10)}))
	require.NoError(t, n.SetTokens(who, runtime.KSM, runtime.TokenAccount{Free: scale.NewU128(20)}))
	require.NoError(t, n.SetTokens(who, runtime.USDT, runtime.TokenAccount{Free: scale.NewU128(30), Frozen: scale.NewU128(1)}))
	require.NoError(t, n.SetTokens(other, runtime.PICA, runtime.TokenAccount{Free: scale.NewU128(99)}))

	key, err := client.StorageKey(n.Client, runtime.TokensAccounts, who, runtime.KSM)
	require.NoError(t, err)
	ksm, _ := scale.Marshal(runtime.KSM)
	assert.True(t, bytes.HasSuffix(key, hasher.Twox64Concat.Hash(ksm)))

	bal, err := runtime.TokenBalance(ctx, n.Client, who, runtime.USDT, nil)
	require.NoError(t, err)
	assert.Equal(t, "30", bal.Free.String())
	assert.Equal(t, "1", bal.Frozen.String())

	none, err := runtime.TokenBalance(ctx, n.Client, other, runtime.USDT, nil)
	require.NoError(t, err)
	assert.True(t, none.Free.IsZero())

	holdings, err := runtime.Holdings(ctx, n.Client, who, nil)
	require.NoError(t, err)
	require.Len(t, holdings, 3)
	total := map[string]string{}
	for _, h := range holdings {
		total[h.Currency.String()] = h.Account.Free.String()
	}
	assert.Equal(t, map[string]string{"1": "10", "4": "20", "130": "30"}, total)
	assert.Equal(t, 2, n.Memory.Count(transport.MethodStorageRange))
}

func TestConstantsAndTime(t *testing.T) {
	n := node(t)
	ed, err := runtime.ExistentialDeposit(n.Client)
	require.NoError(t, err)
	assert.Equal(t, "100000000000", ed.String())

	bt, err := runtime.BlockTime(n.Client)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, bt)

	require.NoError(t, n.Put("Timestamp", "Now", uint64(1_700_000_000_000)))
	now, err := runtime.Now(context.Background(), n.Client, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), now.Unix())

	issued, err := runtime.TotalIssuance(context.Background(), n.Client, nil)
	require.NoError(t, err)
	assert.Zero(t, issued.Sign())
}

func TestConstantValueChange(t *testing.T) {
	n := node(t)
	// same type, different literal
	_, k, err := n.Registry.Constant("Balances", "ExistentialDeposit")
	require.NoError(t, err)
	k.Value, err = scale.Marshal(scale.NewU128(1))
	require.NoError(t, err)
	c := client.NewWithRegistry(n.Registry, n.Memory)

	_, err = runtime.ExistentialDeposit(c)
	assert.Equal(t, client.KindIncompatibleMetadata, client.KindOf(err))
	assert.Error(t, runtime.Compatible(c))

	var stale []string
	for _, e := range runtime.Report(c) {
		if !e.Compatible {
			stale = append(stale, e.Pallet+"."+e.Name)
		}
	}
	assert.Equal(t, []string{"Balances.ExistentialDeposit"}, stale)

	bt, err := runtime.BlockTime(c)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, bt)
}

type signer struct{ id primitives.AccountID }

func (s signer) AccountID() primitives.AccountID { return s.id }

func (s signer) Scheme() extrinsic.SignatureScheme { return extrinsic.Sr25519 }

func (s signer) Sign(payload []byte) ([]byte, error) {
	d := hasher.Blake2b256(payload)
	return append(d[:], d[:]...), nil
}

func TestTransferWithEvents(t *testing.T) {
	n := node(t)
	ctx := context.Background()
	from, to := signer{id: acc(0xaa)}, acc(0xbb)
	head := primitives.Hash{0x01}
	n.Memory.SetHead(head)
	require.NoError(t, n.SetNumber(10))
	require.NoError(t, n.SetBlockHash(9, primitives.Hash{0x09}))
	require.NoError(t, n.SetAccount(from.id, client.AccountInfo{Nonce: 3, Providers: 1}))
	require.NoError(t, n.SetEvents(head,
		runtimetest.Event{Phase: client.ApplyExtrinsic(0), Pallet: runtimetest.BalancesIndex, Index: 2,
			Fields: []any{from.id, to, scale.NewU128(500)}},
		runtimetest.Success(0),
	))

	call, err := runtime.Transfer(n.Client, to, big.NewInt(500), false)
	require.NoError(t, err)
	progress, err := call.SignAndSubmit(ctx, from, client.TxOptions{})
	require.NoError(t, err)
	res, err := progress.WaitFinalized(ctx)
	require.NoError(t, err)
	assert.True(t, res.Success)

	transfers, err := client.Find(n.Client, runtime.BalancesTransferEvent, res.Events)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, runtime.BalancesTransfer{From: from.id, To: to, Amount: scale.NewU128(500)}, transfers[0])
}
