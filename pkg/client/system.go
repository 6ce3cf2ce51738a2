/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"

	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
)

// AccountData is the balances record kept in System.Account.
type AccountData struct {
	Free       scale.U128
	Reserved   scale.U128
	MiscFrozen scale.U128
	FeeFrozen  scale.U128
}

type AccountInfo struct {
	Nonce       uint32
	Consumers   uint32
	Providers   uint32
	Sufficients uint32
	Data        AccountData
}

type RuntimeAPI struct {
	ID      [8]byte
	Version uint32
}

type RuntimeVersion struct {
	SpecName           string
	ImplName           string
	AuthoringVersion   uint32
	SpecVersion        uint32
	ImplVersion        uint32
	APIs               []RuntimeAPI
	TransactionVersion uint32
	StateVersion       uint8
}

// SystemShapes are the frame_system types the pipeline depends on.
type SystemShapes struct {
	U8, U32, U64, U128 scale.TypeID
	AccountID          scale.TypeID
	MultiAddress       scale.TypeID
	H256               scale.TypeID
	AccountData        scale.TypeID
	AccountInfo        scale.TypeID
	Phase              scale.TypeID
	RuntimeEvent       scale.TypeID
	EventRecord        scale.TypeID
	RuntimeVersion     scale.TypeID
	DispatchInfo       scale.TypeID
	DispatchError      scale.TypeID
}

// DeclareSystemShapes adds the frame_system types to types.
func DeclareSystemShapes(types *scale.Types) *SystemShapes {
	s := &SystemShapes{
		U8:   types.Prim(scale.U8),
		U32:  types.Prim(scale.U32),
		U64:  types.Prim(scale.U64),
		U128: types.Prim(scale.U128Prim),
	}
	s.AccountID = types.Composite("sp_core::crypto::AccountId32", scale.F("", types.Array(32, s.U8)))
	s.H256 = types.Composite("primitive_types::H256", scale.F("", types.Array(32, s.U8)))
	s.MultiAddress = types.Variant("sp_runtime::multiaddress::MultiAddress",
		scale.V("Id", 0, scale.F("", s.AccountID)),
		scale.V("Index", 1, scale.F("", types.Compact(s.U32))),
		scale.V("Raw", 2, scale.F("", types.Bytes())),
		scale.V("Address32", 3, scale.F("", types.Array(32, s.U8))),
		scale.V("Address20", 4, scale.F("", types.Array(20, s.U8))),
	)
	s.AccountData = types.Composite("pallet_balances::AccountData",
		scale.F("free", s.U128),
		scale.F("reserved", s.U128),
		scale.F("misc_frozen", s.U128),
		scale.F("fee_frozen", s.U128),
	)
	s.AccountInfo = types.Composite("frame_system::AccountInfo",
		scale.F("nonce", s.U32),
		scale.F("consumers", s.U32),
		scale.F("providers", s.U32),
		scale.F("sufficients", s.U32),
		scale.F("data", s.AccountData),
	)
	s.Phase = types.Variant("frame_system::Phase",
		scale.V("ApplyExtrinsic", 0, scale.F("", s.U32)),
		scale.V("Finalization", 1),
		scale.V("Initialization", 2),
	)
	s.RuntimeEvent = types.Variant("picasso_runtime::RuntimeEvent")
	s.EventRecord = types.Composite("frame_system::EventRecord",
		scale.F("phase", s.Phase),
		scale.F("event", s.RuntimeEvent),
		scale.F("topics", types.Sequence(s.H256)),
	)
	cow := func(inner scale.TypeID) scale.TypeID {
		return types.Composite("Cow", scale.F("", inner))
	}
	str := types.Prim(scale.Str)
	s.RuntimeVersion = types.Composite("sp_version::RuntimeVersion",
		scale.F("spec_name", cow(str)),
		scale.F("impl_name", cow(str)),
		scale.F("authoring_version", s.U32),
		scale.F("spec_version", s.U32),
		scale.F("impl_version", s.U32),
		scale.F("apis", cow(types.Sequence(types.Tuple(types.Array(8, s.U8), s.U32)))),
		scale.F("transaction_version", s.U32),
		scale.F("state_version", s.U8),
	)
	weight := types.Composite("sp_weights::weight_v2::Weight",
		scale.F("ref_time", types.Compact(s.U64)),
		scale.F("proof_size", types.Compact(s.U64)),
	)
	s.DispatchInfo = types.Composite("frame_support::dispatch::DispatchInfo",
		scale.F("weight", weight),
		scale.F("class", types.Variant("frame_support::dispatch::DispatchClass",
			scale.V("Normal", 0), scale.V("Operational", 1), scale.V("Mandatory", 2))),
		scale.F("pays_fee", types.Variant("frame_support::dispatch::Pays",
			scale.V("Yes", 0), scale.V("No", 1))),
	)
	s.DispatchError = declareDispatchError(types, s)
	return s
}

func declareDispatchError(types *scale.Types, s *SystemShapes) scale.TypeID {
	module := types.Composite("sp_runtime::ModuleError",
		scale.F("index", s.U8),
		scale.F("error", types.Array(4, s.U8)),
	)
	token := types.Variant("sp_runtime::TokenError",
		scale.V("NoFunds", 0), scale.V("WouldDie", 1), scale.V("BelowMinimum", 2),
		scale.V("CannotCreate", 3), scale.V("UnknownAsset", 4), scale.V("Frozen", 5),
		scale.V("Unsupported", 6),
	)
	arithmetic := types.Variant("sp_arithmetic::ArithmeticError",
		scale.V("Underflow", 0), scale.V("Overflow", 1), scale.V("DivisionByZero", 2),
	)
	transactional := types.Variant("sp_runtime::TransactionalError",
		scale.V("LimitReached", 0), scale.V("NoLayer", 1),
	)
	return types.Variant("sp_runtime::DispatchError",
		scale.V("Other", 0),
		scale.V("CannotLookup", 1),
		scale.V("BadOrigin", 2),
		scale.V("Module", 3, scale.F("", module)),
		scale.V("ConsumerRemaining", 4),
		scale.V("NoProviders", 5),
		scale.V("TooManyConsumers", 6),
		scale.V("Token", 7, scale.F("", token)),
		scale.V("Arithmetic", 8, scale.F("", arithmetic)),
		scale.V("Transactional", 9, scale.F("", transactional)),
		scale.V("Exhausted", 10),
		scale.V("Corruption", 11),
		scale.V("Unavailable", 12),
	)
}

// System items the transaction pipeline reads.
var (
	systemTypes  = scale.NewTypes()
	SystemShape  = DeclareSystemShapes(systemTypes)
	SystemNumber = DeclarePlain[uint32](systemTypes, "System", "Number", metadata.Default, SystemShape.U32)

	SystemAccount = DeclareMap[AccountInfo](systemTypes, "System", "Account", metadata.Default,
		[]hasher.Hasher{hasher.Blake2_128Concat}, []scale.TypeID{SystemShape.AccountID}, SystemShape.AccountInfo)

	SystemBlockHash = DeclareMap[primitives.Hash](systemTypes, "System", "BlockHash", metadata.Default,
		[]hasher.Hasher{hasher.Twox64Concat}, []scale.TypeID{SystemShape.U32}, SystemShape.H256)

	SystemEvents = DeclarePlain[scale.Raw](systemTypes, "System", "Events", metadata.Default,
		systemTypes.Sequence(SystemShape.EventRecord))

	SystemVersion = DeclareConstantType[RuntimeVersion](systemTypes, "System", "Version", SystemShape.RuntimeVersion)

	SystemExtrinsicSuccess = DeclareEvent[ExtrinsicSuccess](systemTypes, "System", "ExtrinsicSuccess",
		scale.F("dispatch_info", SystemShape.DispatchInfo))

	SystemExtrinsicFailed = DeclareEvent[ExtrinsicFailed](systemTypes, "System", "ExtrinsicFailed",
		scale.F("dispatch_error", SystemShape.DispatchError),
		scale.F("dispatch_info", SystemShape.DispatchInfo))
)

type Weight struct {
	RefTime   uint64 `scale:"compact"`
	ProofSize uint64 `scale:"compact"`
}

type DispatchInfo struct {
	Weight  Weight
	Class   uint8
	PaysFee uint8
}

type ExtrinsicSuccess struct {
	DispatchInfo DispatchInfo
}

type ExtrinsicFailed struct {
	DispatchError DispatchError
	DispatchInfo  DispatchInfo
}

// ConstantValue decodes a runtime constant after checking k.
func ConstantValue[V any](c *Client, k *Constant[V]) (V, error) {
	var v V
	op := "Constant " + k.pallet + "." + k.name
	if err := c.Check(k); err != nil {
		return v, err
	}
	_, m, err := c.registry.Constant(k.pallet, k.name)
	if err != nil {
		return v, newError(KindIncompatibleMetadata, op, err)
	}
	if err := scale.UnmarshalExact(m.Value, &v); err != nil {
		return v, newError(KindCodec, op, err)
	}
	return v, nil
}

// RuntimeVersion reads System.Version from metadata.
func (c *Client) RuntimeVersion() (RuntimeVersion, error) {
	return ConstantValue(c, SystemVersion)
}

// GenesisHash reads the hash of block zero once and keeps it.
func (c *Client) GenesisHash(ctx context.Context) (primitives.Hash, error) {
	c.genesisLock.Lock()
	defer c.genesisLock.Unlock()
	if c.genesis != nil {
		return *c.genesis, nil
	}
	h, err := FetchOrDefault(ctx, c, SystemBlockHash, nil, uint32(0))
	if err != nil {
		return h, err
	}
	c.genesis = &h
	return h, nil
}

// BlockNumber reads System.Number at at.
func (c *Client) BlockNumber(ctx context.Context, at *primitives.Hash) (uint32, error) {
	return FetchOrDefault(ctx, c, SystemNumber, at)
}

// Account reads System.Account for id at at.
func (c *Client) Account(ctx context.Context, id primitives.AccountID, at *primitives.Hash) (AccountInfo, error) {
	return FetchOrDefault(ctx, c, SystemAccount, at, id)
}
