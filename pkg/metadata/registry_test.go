/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"testing"

	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T, amount scale.Primitive) *Registry {
	reg := NewRegistry(nil)
	ts := reg.Types
	acc := ts.Composite("sp_core::crypto::AccountId32", scale.F("", ts.Array(32, ts.Prim(scale.U8))))
	bal := ts.Prim(amount)

	p := reg.AddPallet("Balances", 6)
	require.NoError(t, reg.SetCalls(p, ts.Variant("pallet_balances::pallet::Call",
		scale.V("transfer", 0, scale.F("dest", acc), scale.F("value", ts.Compact(bal))),
		scale.V("transfer_all", 4, scale.F("dest", acc), scale.F("keep_alive", ts.Prim(scale.Bool))),
	)))
	require.NoError(t, reg.SetEvents(p, ts.Variant("pallet_balances::pallet::Event",
		scale.V("Endowed", 0, scale.F("account", acc), scale.F("free_balance", bal)),
		scale.V("Transfer", 2, scale.F("from", acc), scale.F("to", acc), scale.F("amount", bal)),
	)))
	require.NoError(t, reg.SetErrors(p, ts.Variant("pallet_balances::pallet::Error",
		scale.V("VestingBalance", 0),
		scale.V("InsufficientBalance", 2),
	)))
	reg.AddStorage(p, &StorageEntry{Name: "TotalIssuance", Modifier: Default, Value: bal, Default: make([]byte, 16)})
	reg.AddStorage(p, &StorageEntry{
		Name:     "Account",
		Modifier: Default,
		Hashers:  []hasher.Hasher{hasher.Blake2_128Concat},
		Keys:     []scale.TypeID{acc},
		Value:    ts.Composite("AccountData", scale.F("free", bal)),
	})
	reg.AddConstant(p, &Constant{Name: "ExistentialDeposit", Type: bal, Value: []byte{100, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}})
	return reg
}

func TestLookups(t *testing.T) {
	reg := testRegistry(t, scale.U128Prim)

	p, c, err := reg.Call("Balances", "transfer_all")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), p.Index)
	assert.Equal(t, uint8(4), c.Index)
	assert.Len(t, c.Args, 2)

	_, e, err := reg.EventByIndex(6, 2)
	require.NoError(t, err)
	assert.Equal(t, "Transfer", e.Name)

	_, s, err := reg.Storage("Balances", "Account")
	require.NoError(t, err)
	assert.True(t, s.IsMap())

	pallet, name, ok := reg.ModuleError(6, 2)
	assert.True(t, ok)
	assert.Equal(t, "Balances", pallet)
	assert.Equal(t, "InsufficientBalance", name)

	_, _, err = reg.Call("Balances", "burn")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = reg.Pallet("Nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, _, err = reg.EventByIndex(6, 9)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPalletListingsAreSorted(t *testing.T) {
	reg := testRegistry(t, scale.U128Prim)
	p, err := reg.Pallet("Balances")
	require.NoError(t, err)
	reg.AddStorage(p, &StorageEntry{Name: "Locks", Modifier: Default, Value: reg.Types.Bytes()})
	reg.AddConstant(p, &Constant{Name: "MaxLocks", Type: reg.Types.Prim(scale.U32), Value: []byte{50, 0, 0, 0}})
	reg.AddConstant(p, &Constant{Name: "MaxHolds", Type: reg.Types.Prim(scale.U32), Value: []byte{9, 0, 0, 0}})

	for i := 0; i < 5; i++ {
		var entries, constants []string
		for _, s := range p.StorageEntries() {
			entries = append(entries, s.Name)
		}
		for _, c := range p.Constants() {
			constants = append(constants, c.Name)
		}
		assert.Equal(t, []string{"Account", "Locks", "TotalIssuance"}, entries)
		assert.Equal(t, []string{"ExistentialDeposit", "MaxHolds", "MaxLocks"}, constants)
	}
}

func TestFingerprintStableAcrossRegistries(t *testing.T) {
	a := testRegistry(t, scale.U128Prim)
	b := testRegistry(t, scale.U128Prim)
	for _, item := range []struct {
		kind ItemKind
		name string
	}{
		{ItemCall, "transfer"},
		{ItemCall, "transfer_all"},
		{ItemStorage, "Account"},
		{ItemStorage, "TotalIssuance"},
		{ItemConstant, "ExistentialDeposit"},
		{ItemEvent, "Transfer"},
	} {
		fa, err := a.Fingerprint(item.kind, "Balances", item.name)
		require.NoError(t, err)
		fb, err := b.Fingerprint(item.kind, "Balances", item.name)
		require.NoError(t, err)
		assert.Equal(t, fa, fb, item.name)
	}
}

func TestFingerprintDetectsShapeChange(t *testing.T) {
	a := testRegistry(t, scale.U128Prim)
	b := testRegistry(t, scale.U64)

	fa, err := a.Fingerprint(ItemCall, "Balances", "transfer")
	require.NoError(t, err)
	fb, err := b.Fingerprint(ItemCall, "Balances", "transfer")
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)

	// distinct items in one registry do not collide
	seen := map[Fingerprint]string{}
	for _, name := range []string{"transfer", "transfer_all"} {
		fp, err := a.Fingerprint(ItemCall, "Balances", name)
		require.NoError(t, err)
		_, dup := seen[fp]
		assert.False(t, dup)
		seen[fp] = name
	}
	fs, err := a.Fingerprint(ItemStorage, "Balances", "TotalIssuance")
	require.NoError(t, err)
	fc, err := a.Fingerprint(ItemConstant, "Balances", "ExistentialDeposit")
	require.NoError(t, err)
	assert.NotEqual(t, fs, fc)

	// constant value is covered
	_, c, err := a.Constant("Balances", "ExistentialDeposit")
	require.NoError(t, err)
	assert.NotEqual(t, fc, HashConstant(a.Types, "Balances", "ExistentialDeposit", c.Type, make([]byte, 16)))
}

func TestFingerprintRecursiveAndOpaque(t *testing.T) {
	build := func(withExtra bool) Fingerprint {
		ts := scale.NewTypes()
		tree := ts.Reserve()
		vs := []scale.Variant{
			scale.V("Leaf", 0, scale.F("v", ts.Prim(scale.U8))),
			scale.V("Node", 1, scale.F("children", ts.Sequence(tree))),
		}
		if withExtra {
			vs = append(vs, scale.V("Empty", 2))
		}
		ts.Set(tree, scale.TypeDef{Path: []string{"Tree"}, Kind: scale.KindVariant, Variants: vs})
		return HashCall(ts, "P", "c", []scale.Field{scale.F("t", tree)})
	}
	assert.Equal(t, build(false), build(false))
	assert.NotEqual(t, build(false), build(true))

	// the outer call enum is hashed by name only
	live := scale.NewTypes()
	liveCall := live.Variant("picasso_runtime::RuntimeCall", scale.V("System", 0, scale.F("", live.Prim(scale.U8))))
	declared := scale.NewTypes()
	declaredCall := declared.Variant("RuntimeCall")
	assert.Equal(t,
		HashCall(live, "Sudo", "sudo", []scale.Field{scale.F("call", liveCall)}),
		HashCall(declared, "Sudo", "sudo", []scale.Field{scale.F("call", declaredCall)}),
	)
}
