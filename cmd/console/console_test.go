/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ComposableFi/composable-sub002/pkg/cache"
	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/logger"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/ComposableFi/composable-sub002/pkg/runtime/runtimetest"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, args ...string) (*request, *runtimetest.Node, *bytes.Buffer) {
	t.Helper()
	n, err := runtimetest.NewNode()
	require.NoError(t, err)
	w := new(bytes.Buffer)
	return &request{
		ctx:     context.Background(),
		w:       w,
		cli:     n.Client,
		network: utils.PicassoPrefix,
		args:    args,
	}, n, w
}

func id(b byte) primitives.AccountID {
	var a primitives.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}

func ss58(t *testing.T, a primitives.AccountID) string {
	s, err := utils.EncodeAddress(a[:], utils.PicassoPrefix)
	require.NoError(t, err)
	return s
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "0", formatUnits(nil))
	assert.Equal(t, "3", formatUnits(big.NewInt(3_000_000_000_000)))
	assert.Equal(t, "1.5", formatUnits(big.NewInt(1_500_000_000_000)))
	assert.Equal(t, "0.000000000001", formatUnits(big.NewInt(1)))
}

func TestPrintCompat(t *testing.T) {
	w := new(bytes.Buffer)
	report := []client.CompatEntry{
		{Item: "call", Pallet: "Balances", Name: "transfer", Expected: "0x01", Actual: "0x01", Compatible: true},
		{Item: "storage", Pallet: "Tokens", Name: "Accounts", Expected: "0x02", Actual: "0x03"},
		{Item: "event", Pallet: "Pablo", Name: "Swapped", Expected: "0x04", Missing: true},
	}
	err := printCompat(w, report, false)
	assert.True(t, errors.Is(err, client.ErrIncompatibleMetadata))
	assert.Contains(t, w.String(), "Tokens.Accounts")
	assert.Contains(t, w.String(), "missing")
	assert.NotContains(t, w.String(), "Balances.transfer")

	w.Reset()
	require.NoError(t, printCompat(w, report[:1], true))
	assert.Contains(t, w.String(), "Balances.transfer")
	assert.Contains(t, w.String(), "all 1 items compatible")

	r, _, w := newRequest(t)
	require.NoError(t, printCompat(w, runtime.Report(r.cli), false))
}

func TestQueries(t *testing.T) {
	who := id(3)
	r, n, w := newRequest(t, ss58(t, who))
	require.NoError(t, n.SetNumber(77))
	require.NoError(t, n.SetAccount(who, client.AccountInfo{
		Nonce: 2,
		Data:  client.AccountData{Free: scale.NewU128(2_500_000_000_000)},
	}))
	require.NoError(t, n.SetTokens(who, runtime.PBLO, runtime.TokenAccount{Free: scale.NewU128(5)}))

	require.NoError(t, queryNumber(r))
	assert.Equal(t, "77\n", w.String())

	w.Reset()
	require.NoError(t, queryBalance(r))
	assert.Equal(t, "2.5 PICA\n", w.String())

	w.Reset()
	require.NoError(t, queryAccount(r))
	assert.Contains(t, w.String(), ss58(t, who))
	assert.Contains(t, w.String(), "2.5")

	w.Reset()
	require.NoError(t, queryTokens(r))
	assert.Contains(t, w.String(), "5")

	r.args = []string{"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}
	assert.True(t, errors.Is(queryBalance(r), utils.ErrWrongNetwork))
}

func TestQueryStorageAndConstants(t *testing.T) {
	r, _, w := newRequest(t, "System", "BlockHash", "0x00000000")
	require.NoError(t, queryStorage(r))
	assert.Contains(t, w.String(), runtimetest.Genesis.String())

	w.Reset()
	r.args = []string{"Sudo", "Key"}
	require.NoError(t, queryStorage(r))
	assert.Equal(t, "<none>\n", w.String())

	w.Reset()
	require.NoError(t, printConstants(r))
	assert.Contains(t, w.String(), "0.1 PICA")
	assert.Contains(t, w.String(), "12s")
}

func TestPrintPallet(t *testing.T) {
	r, _, w := newRequest(t, "System")
	require.NoError(t, printPallet(r))
	listing := w.String()
	account := strings.Index(listing, "Account")
	number := strings.Index(listing, "Number")
	require.True(t, account >= 0 && number >= 0)
	assert.Less(t, account, number)
	assert.Contains(t, listing, "Blake2_128Concat")
	assert.Contains(t, listing, "Version")

	r.args = []string{"Nope"}
	assert.Error(t, printPallet(r))
}

func TestExpirePinnedLoop(t *testing.T) {
	db, err := cache.NewCache(t.TempDir(), 0, 0)
	require.NoError(t, err)
	defer db.Close()
	blocks := []primitives.Hash{{1}, {2}, {3}}
	for _, b := range blocks {
		require.NoError(t, cache.StorePinned(db, b, []byte("k"), []byte("v"), true))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		expirePinned(ctx, db, 1, time.Millisecond, logger.Nop())
		close(done)
	}()
	assert.Eventually(t, func() bool {
		cached := 0
		for _, b := range blocks {
			if _, _, known := cache.LoadPinned(db, b, []byte("k")); known {
				cached++
			}
		}
		return cached == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

type devSigner struct{ id primitives.AccountID }

func (s devSigner) AccountID() primitives.AccountID { return s.id }

func (s devSigner) Scheme() extrinsic.SignatureScheme { return extrinsic.Sr25519 }

func (s devSigner) Sign(payload []byte) ([]byte, error) {
	d := hasher.Blake2b256(payload)
	return append(d[:], d[:]...), nil
}

func TestTransfer(t *testing.T) {
	r, n, w := newRequest(t)
	from, to := devSigner{id: id(0x10)}, id(0x20)
	head := primitives.Hash{0xbe}
	n.Memory.SetHead(head)
	require.NoError(t, n.SetEvents(head,
		runtimetest.Event{Phase: client.ApplyExtrinsic(0), Pallet: runtimetest.TokensIndex, Index: 2,
			Fields: []any{runtime.USDT, from.id, to, scale.NewU128(40)}},
		runtimetest.Success(0),
	))

	o := transferOrder{dest: to, amount: big.NewInt(40), token: 130, finalized: true}
	require.NoError(t, transfer(r.ctx, w, r.cli, from, o, client.TxOptions{}))
	assert.Contains(t, w.String(), "Tokens.Transfer")
	assert.Contains(t, w.String(), "success")
	require.Len(t, n.Memory.Submitted(), 1)

	bad := transferOrder{dest: to, amount: new(big.Int).Lsh(big.NewInt(1), 130)}
	err := transfer(r.ctx, w, r.cli, from, bad, client.TxOptions{})
	assert.Equal(t, client.KindCodec, client.KindOf(err))
}
