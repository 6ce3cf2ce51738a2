/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"testing"

	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/storage"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/stretchr/testify/require"
)

// Shapes and descriptors declared on the client side of the tests.
var (
	testTypes  = scale.NewTypes()
	testShapes = DeclareSystemShapes(testTypes)

	balancesTransfer = DeclareCall[transferArgs](testTypes, "Balances", "transfer",
		scale.F("dest", testShapes.MultiAddress),
		scale.F("value", testTypes.Compact(testShapes.U128)))

	balancesTransferEvent = DeclareEvent[transferEvent](testTypes, "Balances", "Transfer",
		scale.F("from", testShapes.AccountID),
		scale.F("to", testShapes.AccountID),
		scale.F("amount", testShapes.U128))
)

type transferArgs struct {
	Dest  extrinsic.MultiAddress
	Value scale.U128 `scale:"compact"`
}

type transferEvent struct {
	From   primitives.AccountID
	To     primitives.AccountID
	Amount scale.U128
}

var (
	testGenesis = primitives.Hash{0x9a}
	testVersion = RuntimeVersion{
		SpecName:           "picasso",
		ImplName:           "picasso",
		AuthoringVersion:   1,
		SpecVersion:        1402,
		ImplVersion:        0,
		TransactionVersion: 2,
	}
)

// testNode is a Picasso-like runtime served from memory.
type testNode struct {
	reg *metadata.Registry
	mem *transport.Memory
	cli *Client
}

func newTestNode(t *testing.T, opts ...Option) *testNode {
	t.Helper()
	reg := metadata.NewRegistry(nil)
	ts := reg.Types
	s := DeclareSystemShapes(ts)

	version, err := scale.Marshal(testVersion)
	require.NoError(t, err)

	sys := reg.AddPallet("System", 0)
	require.NoError(t, reg.SetEvents(sys, ts.Variant("frame_system::pallet::Event",
		scale.V("ExtrinsicSuccess", 0, scale.F("dispatch_info", s.DispatchInfo)),
		scale.V("ExtrinsicFailed", 1, scale.F("dispatch_error", s.DispatchError), scale.F("dispatch_info", s.DispatchInfo)),
		scale.V("CodeUpdated", 2),
	)))
	require.NoError(t, reg.SetErrors(sys, ts.Variant("frame_system::pallet::Error",
		scale.V("InvalidSpecName", 0),
	)))
	reg.AddStorage(sys, &metadata.StorageEntry{
		Name: "Number", Modifier: metadata.Default, Value: s.U32, Default: make([]byte, 4),
	})
	reg.AddStorage(sys, &metadata.StorageEntry{
		Name: "Account", Modifier: metadata.Default,
		Hashers: []hasher.Hasher{hasher.Blake2_128Concat}, Keys: []scale.TypeID{s.AccountID},
		Value: s.AccountInfo, Default: make([]byte, 80),
	})
	reg.AddStorage(sys, &metadata.StorageEntry{
		Name: "BlockHash", Modifier: metadata.Default,
		Hashers: []hasher.Hasher{hasher.Twox64Concat}, Keys: []scale.TypeID{s.U32},
		Value: s.H256, Default: make([]byte, 32),
	})
	reg.AddStorage(sys, &metadata.StorageEntry{
		Name: "Events", Modifier: metadata.Default,
		Value: ts.Sequence(s.EventRecord), Default: []byte{0},
	})
	reg.AddConstant(sys, &metadata.Constant{Name: "Version", Type: s.RuntimeVersion, Value: version})

	bal := reg.AddPallet("Balances", 6)
	require.NoError(t, reg.SetCalls(bal, ts.Variant("pallet_balances::pallet::Call",
		scale.V("transfer", 0, scale.F("dest", s.MultiAddress), scale.F("value", ts.Compact(s.U128))),
	)))
	require.NoError(t, reg.SetEvents(bal, ts.Variant("pallet_balances::pallet::Event",
		scale.V("Endowed", 0, scale.F("account", s.AccountID), scale.F("free_balance", s.U128)),
		scale.V("Transfer", 2, scale.F("from", s.AccountID), scale.F("to", s.AccountID), scale.F("amount", s.U128)),
	)))
	require.NoError(t, reg.SetErrors(bal, ts.Variant("pallet_balances::pallet::Error",
		scale.V("VestingBalance", 0),
		scale.V("LiquidityRestrictions", 1),
		scale.V("InsufficientBalance", 2),
	)))

	reg.Extrinsic = metadata.ExtrinsicInfo{Version: 4, SignedExtensions: extrinsic.DeclareExtensions(ts)}

	mem := transport.NewMemory(nil)
	n := &testNode{reg: reg, mem: mem, cli: NewWithRegistry(reg, mem, opts...)}
	n.putBlockHash(t, 0, testGenesis)
	return n
}

func (n *testNode) key(t *testing.T, pallet, entry string, keys ...[]byte) []byte {
	t.Helper()
	p, s, err := n.reg.Storage(pallet, entry)
	require.NoError(t, err)
	k, err := storage.EntryKey(p, s, keys...)
	require.NoError(t, err)
	return k
}

func (n *testNode) putBlockHash(t *testing.T, number uint32, h primitives.Hash) {
	t.Helper()
	k, err := scale.Marshal(number)
	require.NoError(t, err)
	n.mem.Put(n.key(t, "System", "BlockHash", k), h[:])
}

func (n *testNode) putNumber(t *testing.T, number uint32) {
	t.Helper()
	v, err := scale.Marshal(number)
	require.NoError(t, err)
	n.mem.Put(n.key(t, "System", "Number"), v)
}

func (n *testNode) putAccount(t *testing.T, id primitives.AccountID, info AccountInfo) {
	t.Helper()
	v, err := scale.Marshal(info)
	require.NoError(t, err)
	n.mem.Put(n.key(t, "System", "Account", id[:]), v)
}

// eventBytes encodes one event record.
type eventBytes struct {
	phase  Phase
	pallet uint8
	index  uint8
	fields []any
}

func (n *testNode) putEvents(t *testing.T, at primitives.Hash, evs ...eventBytes) {
	t.Helper()
	e := scale.NewEncoder()
	e.EncodeCompactUint(uint64(len(evs)))
	for _, ev := range evs {
		require.NoError(t, e.Encode(ev.phase))
		e.PushByte(ev.pallet)
		e.PushByte(ev.index)
		for _, f := range ev.fields {
			require.NoError(t, e.Encode(f))
		}
		e.EncodeCompactUint(0)
	}
	n.mem.PutAt(at, n.key(t, "System", "Events"), e.Bytes())
}

func success() eventBytes {
	return eventBytes{pallet: 0, index: 0, fields: []any{DispatchInfo{Weight: Weight{RefTime: 1000, ProofSize: 10}}}}
}

// fakeSigner signs with the payload digest so results are reproducible.
type fakeSigner struct {
	id primitives.AccountID
}

func (f fakeSigner) AccountID() primitives.AccountID {
	return f.id
}

func (f fakeSigner) Scheme() extrinsic.SignatureScheme {
	return extrinsic.Sr25519
}

func (f fakeSigner) Sign(payload []byte) ([]byte, error) {
	d := hasher.Blake2b256(payload)
	sig := make([]byte, 64)
	copy(sig, d[:])
	copy(sig[32:], d[:])
	return sig, nil
}

func account(b byte) primitives.AccountID {
	var a primitives.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}
