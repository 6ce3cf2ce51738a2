/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package runtimetest serves a Picasso-shaped runtime from memory.
package runtimetest

import (
	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/storage"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/pkg/errors"
)

// Pallet indices of the Picasso runtime.
const (
	SystemIndex    = 0
	TimestampIndex = 1
	SudoIndex      = 2
	BalancesIndex  = 6
	TokensIndex    = 52
	PabloIndex     = 60
)

var Genesis = primitives.Hash{0x6a, 0x0f}

var Version = client.RuntimeVersion{
	SpecName:           "picasso",
	ImplName:           "picasso",
	AuthoringVersion:   1,
	SpecVersion:        1402,
	ImplVersion:        0,
	TransactionVersion: 1,
	StateVersion:       0,
}

// Registry builds node metadata matching the catalog.
func Registry() (*metadata.Registry, error) {
	reg := metadata.NewRegistry(nil)
	ts := reg.Types
	s := runtime.DeclareShapes(ts)

	version, err := scale.Marshal(Version)
	if err != nil {
		return nil, err
	}
	u64 := func(v uint64) []byte {
		b, _ := scale.Marshal(v)
		return b
	}
	u128 := func(v uint64) []byte {
		b, _ := scale.Marshal(scale.NewU128(v))
		return b
	}

	type pallet struct {
		name   string
		index  uint8
		calls  []scale.Variant
		events []scale.Variant
		errs   []scale.Variant
	}
	pallets := []pallet{
		{name: "System", index: SystemIndex,
			calls: []scale.Variant{
				scale.V("remark", 0, scale.F("remark", s.Bytes)),
			},
			events: []scale.Variant{
				scale.V("ExtrinsicSuccess", 0, scale.F("dispatch_info", s.DispatchInfo)),
				scale.V("ExtrinsicFailed", 1, scale.F("dispatch_error", s.DispatchError), scale.F("dispatch_info", s.DispatchInfo)),
				scale.V("CodeUpdated", 2),
				scale.V("NewAccount", 3, scale.F("account", s.AccountID)),
			},
			errs: []scale.Variant{scale.V("InvalidSpecName", 0), scale.V("SpecVersionNeedsToIncrease", 1)},
		},
		{name: "Timestamp", index: TimestampIndex,
			calls: []scale.Variant{scale.V("set", 0, scale.F("now", ts.Compact(s.Moment)))},
		},
		{name: "Sudo", index: SudoIndex,
			calls: []scale.Variant{
				scale.V("sudo", 0, scale.F("call", ts.Variant("picasso_runtime::RuntimeCall"))),
			},
			events: []scale.Variant{scale.V("Sudid", 0, scale.F("sudo_result", s.DispatchResult))},
			errs:   []scale.Variant{scale.V("RequireSudo", 0)},
		},
		{name: "Balances", index: BalancesIndex,
			calls: []scale.Variant{
				scale.V("transfer", 0, scale.F("dest", s.MultiAddress), scale.F("value", ts.Compact(s.Balance))),
				scale.V("transfer_keep_alive", 3, scale.F("dest", s.MultiAddress), scale.F("value", ts.Compact(s.Balance))),
				scale.V("transfer_all", 4, scale.F("dest", s.MultiAddress), scale.F("keep_alive", s.Bool)),
			},
			events: []scale.Variant{
				scale.V("Endowed", 0, scale.F("account", s.AccountID), scale.F("free_balance", s.Balance)),
				scale.V("Transfer", 2, scale.F("from", s.AccountID), scale.F("to", s.AccountID), scale.F("amount", s.Balance)),
			},
			errs: []scale.Variant{
				scale.V("VestingBalance", 0), scale.V("LiquidityRestrictions", 1),
				scale.V("InsufficientBalance", 2), scale.V("ExistentialDeposit", 3),
			},
		},
		{name: "Tokens", index: TokensIndex,
			calls: []scale.Variant{
				scale.V("transfer", 0,
					scale.F("dest", s.MultiAddress),
					scale.F("currency_id", s.CurrencyID),
					scale.F("amount", ts.Compact(s.Balance))),
			},
			events: []scale.Variant{
				scale.V("Endowed", 0, scale.F("currency_id", s.CurrencyID), scale.F("who", s.AccountID), scale.F("amount", s.Balance)),
				scale.V("Transfer", 2, scale.F("currency_id", s.CurrencyID), scale.F("from", s.AccountID),
					scale.F("to", s.AccountID), scale.F("amount", s.Balance)),
			},
			errs: []scale.Variant{scale.V("BalanceTooLow", 0), scale.V("AmountIntoBalanceFailed", 1)},
		},
		{name: "Pablo", index: PabloIndex,
			calls:  pabloCalls(s),
			events: pabloEvents(s),
			errs:   []scale.Variant{scale.V("PoolNotFound", 0), scale.V("PoolConfigurationNotSupported", 1), scale.V("PairMismatch", 2)},
		},
	}
	for _, p := range pallets {
		pl := reg.AddPallet(p.name, p.index)
		if len(p.calls) > 0 {
			if err := reg.SetCalls(pl, ts.Variant(p.name+"::Call", p.calls...)); err != nil {
				return nil, err
			}
		}
		if len(p.events) > 0 {
			if err := reg.SetEvents(pl, ts.Variant(p.name+"::Event", p.events...)); err != nil {
				return nil, err
			}
		}
		if len(p.errs) > 0 {
			if err := reg.SetErrors(pl, ts.Variant(p.name+"::Error", p.errs...)); err != nil {
				return nil, err
			}
		}
	}

	add := func(pallet string, e *metadata.StorageEntry) {
		p, _ := reg.Pallet(pallet)
		reg.AddStorage(p, e)
	}
	addConst := func(pallet string, k *metadata.Constant) {
		p, _ := reg.Pallet(pallet)
		reg.AddConstant(p, k)
	}
	blake := []hasher.Hasher{hasher.Blake2_128Concat}
	twox := []hasher.Hasher{hasher.Twox64Concat}

	add("System", &metadata.StorageEntry{Name: "Number", Modifier: metadata.Default, Value: s.U32, Default: make([]byte, 4)})
	add("System", &metadata.StorageEntry{Name: "Account", Modifier: metadata.Default, Hashers: blake,
		Keys: []scale.TypeID{s.AccountID}, Value: s.AccountInfo, Default: make([]byte, 80)})
	add("System", &metadata.StorageEntry{Name: "BlockHash", Modifier: metadata.Default, Hashers: twox,
		Keys: []scale.TypeID{s.U32}, Value: s.H256, Default: make([]byte, 32)})
	add("System", &metadata.StorageEntry{Name: "Events", Modifier: metadata.Default,
		Value: ts.Sequence(s.EventRecord), Default: []byte{0}})
	addConst("System", &metadata.Constant{Name: "Version", Type: s.RuntimeVersion, Value: version})

	add("Timestamp", &metadata.StorageEntry{Name: "Now", Modifier: metadata.Default, Value: s.Moment, Default: make([]byte, 8)})
	addConst("Timestamp", &metadata.Constant{Name: "MinimumPeriod", Type: s.Moment, Value: u64(runtime.MinimumPeriodValue)})

	add("Sudo", &metadata.StorageEntry{Name: "Key", Modifier: metadata.Optional, Value: s.AccountID})

	add("Balances", &metadata.StorageEntry{Name: "TotalIssuance", Modifier: metadata.Default, Value: s.Balance, Default: make([]byte, 16)})
	addConst("Balances", &metadata.Constant{Name: "ExistentialDeposit", Type: s.Balance, Value: u128(runtime.ExistentialDepositValue)})

	add("Tokens", &metadata.StorageEntry{Name: "Accounts", Modifier: metadata.Default,
		Hashers: []hasher.Hasher{hasher.Blake2_128Concat, hasher.Twox64Concat},
		Keys:    []scale.TypeID{s.AccountID, s.CurrencyID}, Value: s.Tokens, Default: make([]byte, 48)})
	add("Tokens", &metadata.StorageEntry{Name: "TotalIssuance", Modifier: metadata.Default, Hashers: twox,
		Keys: []scale.TypeID{s.CurrencyID}, Value: s.Balance, Default: make([]byte, 16)})

	add("Pablo", &metadata.StorageEntry{Name: "PoolCount", Modifier: metadata.Default, Value: s.U128, Default: make([]byte, 16)})

	reg.Extrinsic = metadata.ExtrinsicInfo{Version: extrinsic.Version, SignedExtensions: extrinsic.DeclareExtensions(ts)}
	return reg, nil
}

func pabloCalls(s *runtime.Shapes) []scale.Variant {
	order := func(name string, idx uint8) scale.Variant {
		return scale.V(name, idx,
			scale.F("pool_id", s.U128),
			scale.F("asset_id", s.CurrencyID),
			scale.F("amount", s.Balance),
			scale.F("keep_alive", s.Bool))
	}
	return []scale.Variant{
		order("buy", 1),
		order("sell", 2),
		scale.V("swap", 3,
			scale.F("pool_id", s.U128),
			scale.F("pair", s.Pair),
			scale.F("quote_amount", s.Balance),
			scale.F("min_receive", s.Balance),
			scale.F("keep_alive", s.Bool)),
		scale.V("add_liquidity", 4,
			scale.F("pool_id", s.U128),
			scale.F("base_amount", s.Balance),
			scale.F("quote_amount", s.Balance),
			scale.F("min_mint_amount", s.Balance),
			scale.F("keep_alive", s.Bool)),
		scale.V("remove_liquidity", 5,
			scale.F("pool_id", s.U128),
			scale.F("lp_amount", s.Balance),
			scale.F("min_base_amount", s.Balance),
			scale.F("min_quote_amount", s.Balance)),
	}
}

func pabloEvents(s *runtime.Shapes) []scale.Variant {
	return []scale.Variant{
		scale.V("PoolCreated", 0, scale.F("pool_id", s.U128), scale.F("owner", s.AccountID)),
		scale.V("PoolDeleted", 1, scale.F("pool_id", s.U128), scale.F("base_amount", s.Balance), scale.F("quote_amount", s.Balance)),
		scale.V("LiquidityAdded", 2,
			scale.F("who", s.AccountID),
			scale.F("pool_id", s.U128),
			scale.F("base_amount", s.Balance),
			scale.F("quote_amount", s.Balance),
			scale.F("minted_lp", s.Balance)),
		scale.V("LiquidityRemoved", 3,
			scale.F("who", s.AccountID),
			scale.F("pool_id", s.U128),
			scale.F("base_amount", s.Balance),
			scale.F("quote_amount", s.Balance),
			scale.F("total_issuance", s.Balance)),
		scale.V("Swapped", 4,
			scale.F("pool_id", s.U128),
			scale.F("who", s.AccountID),
			scale.F("base_asset", s.CurrencyID),
			scale.F("quote_asset", s.CurrencyID),
			scale.F("base_amount", s.Balance),
			scale.F("quote_amount", s.Balance),
			scale.F("fee", s.Balance)),
	}
}

// Node is an in-memory chain with its client.
type Node struct {
	Registry *metadata.Registry
	Memory   *transport.Memory
	Client   *client.Client
}

// NewNode starts a node at block 0 holding only the genesis hash.
func NewNode(opts ...client.Option) (*Node, error) {
	reg, err := Registry()
	if err != nil {
		return nil, err
	}
	mem := transport.NewMemory(nil)
	n := &Node{Registry: reg, Memory: mem, Client: client.NewWithRegistry(reg, mem, opts...)}
	return n, n.SetBlockHash(0, Genesis)
}

// Put stores value under pallet.entry with already encoded keys.
func (n *Node) Put(pallet, entry string, value any, keys ...[]byte) error {
	p, s, err := n.Registry.Storage(pallet, entry)
	if err != nil {
		return err
	}
	k, err := storage.EntryKey(p, s, keys...)
	if err != nil {
		return err
	}
	v, err := scale.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "%s.%s", pallet, entry)
	}
	n.Memory.Put(k, v)
	return nil
}

func (n *Node) SetBlockHash(number uint32, h primitives.Hash) error {
	k, _ := scale.Marshal(number)
	return n.Put("System", "BlockHash", h, k)
}

func (n *Node) SetNumber(number uint32) error {
	return n.Put("System", "Number", number)
}

func (n *Node) SetAccount(id primitives.AccountID, info client.AccountInfo) error {
	return n.Put("System", "Account", info, id[:])
}

func (n *Node) SetTokens(id primitives.AccountID, currency runtime.CurrencyID, acc runtime.TokenAccount) error {
	c, err := scale.Marshal(currency)
	if err != nil {
		return err
	}
	return n.Put("Tokens", "Accounts", acc, id[:], c)
}

// Event is one record for SetEvents. Fields are encoded in order.
type Event struct {
	Phase  client.Phase
	Pallet uint8
	Index  uint8
	Fields []any
}

// SetEvents stores the events of block at.
func (n *Node) SetEvents(at primitives.Hash, evs ...Event) error {
	p, s, err := n.Registry.Storage("System", "Events")
	if err != nil {
		return err
	}
	k, err := storage.EntryKey(p, s)
	if err != nil {
		return err
	}
	e := scale.NewEncoder()
	e.EncodeCompactUint(uint64(len(evs)))
	for _, ev := range evs {
		if err := e.Encode(ev.Phase); err != nil {
			return err
		}
		e.PushByte(ev.Pallet)
		e.PushByte(ev.Index)
		for _, f := range ev.Fields {
			if err := e.Encode(f); err != nil {
				return errors.Wrapf(err, "event %d.%d", ev.Pallet, ev.Index)
			}
		}
		e.EncodeCompactUint(0)
	}
	n.Memory.PutAt(at, k, e.Bytes())
	return nil
}

// Success is the ExtrinsicSuccess record of extrinsic i.
func Success(i uint32) Event {
	return Event{
		Phase:  client.ApplyExtrinsic(i),
		Pallet: SystemIndex,
		Index:  0,
		Fields: []any{client.DispatchInfo{Weight: client.Weight{RefTime: 150_000_000, ProofSize: 3593}}},
	}
}
