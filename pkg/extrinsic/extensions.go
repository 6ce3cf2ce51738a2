/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package extrinsic

import (
	"math/big"
	"strconv"

	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

// Signed extension identifiers as declared in metadata.
const (
	CheckSpecVersion         = "CheckSpecVersion"
	CheckTxVersion           = "CheckTxVersion"
	CheckGenesis             = "CheckGenesis"
	CheckMortality           = "CheckMortality"
	CheckEra                 = "CheckEra"
	CheckNonce               = "CheckNonce"
	CheckWeight              = "CheckWeight"
	CheckNonZeroSender       = "CheckNonZeroSender"
	ChargeTransactionPayment = "ChargeTransactionPayment"
	ChargeAssetTxPayment     = "ChargeAssetTxPayment"
)

// ErrUnknownExtension is returned when the runtime declares an
// extension that carries data this package cannot produce.
var ErrUnknownExtension = errors.New("unsupported signed extension")

// Params carries every value the extension set may need.
type Params struct {
	SpecVersion uint32
	TxVersion   uint32
	Genesis     primitives.Hash
	Era         Era
	// Checkpoint is the hash of the era's birth block; ignored for
	// immortal eras, which sign the genesis hash.
	Checkpoint primitives.Hash
	Nonce      uint32
	Tip        scale.U128
}

// Extensions is the encoded extension set: Extra goes into the
// envelope and the payload, Additional only into the payload.
type Extensions struct {
	Extra      []byte
	Additional []byte
}

// BuildExtensions encodes p following the runtime's declared extension
// list, in its order.
func BuildExtensions(types *scale.Types, declared []metadata.SignedExtension, p Params) (Extensions, error) {
	extra := scale.NewEncoder()
	add := scale.NewEncoder()
	for _, ext := range declared {
		switch ext.Identifier {
		case CheckSpecVersion:
			add.EncodeUint32(p.SpecVersion)
		case CheckTxVersion:
			add.EncodeUint32(p.TxVersion)
		case CheckGenesis:
			add.Write(p.Genesis[:])
		case CheckMortality, CheckEra:
			if err := p.Era.EncodeTo(extra); err != nil {
				return Extensions{}, errors.Wrap(err, "[BuildExtensions]")
			}
			if p.Era.IsImmortal() {
				add.Write(p.Genesis[:])
			} else {
				add.Write(p.Checkpoint[:])
			}
		case CheckNonce:
			extra.EncodeCompactUint(uint64(p.Nonce))
		case ChargeTransactionPayment:
			if err := extra.EncodeCompact(p.Tip.Big()); err != nil {
				return Extensions{}, err
			}
		case ChargeAssetTxPayment:
			if err := extra.EncodeCompact(p.Tip.Big()); err != nil {
				return Extensions{}, err
			}
			// fee asset: None, pay in the native token
			extra.PushByte(0)
		case CheckWeight, CheckNonZeroSender:
		default:
			if !zeroSized(types, ext.Type) || !zeroSized(types, ext.AdditionalSigned) {
				return Extensions{}, errors.Wrapf(ErrUnknownExtension, "%s", ext.Identifier)
			}
		}
	}
	return Extensions{Extra: extra.Bytes(), Additional: add.Bytes()}, nil
}

// zeroSized reports whether id always encodes to zero bytes.
func zeroSized(types *scale.Types, id scale.TypeID) bool {
	return zeroSizedDepth(types, id, 0)
}

func zeroSizedDepth(types *scale.Types, id scale.TypeID, depth int) bool {
	if types == nil || depth > 32 {
		return false
	}
	def, ok := types.Lookup(id)
	if !ok {
		return false
	}
	switch def.Kind {
	case scale.KindComposite:
		for _, f := range def.Fields {
			if !zeroSizedDepth(types, f.Type, depth+1) {
				return false
			}
		}
		return true
	case scale.KindTuple:
		for _, t := range def.Tuple {
			if !zeroSizedDepth(types, t, depth+1) {
				return false
			}
		}
		return true
	case scale.KindArray:
		return def.Len == 0 || zeroSizedDepth(types, def.Elem, depth+1)
	}
	return false
}

// Tip converts a big integer tip; nil means no tip.
func Tip(v *big.Int) (scale.U128, error) {
	if v == nil {
		return scale.U128{}, nil
	}
	return scale.U128FromBig(v)
}

// DeclareExtensions registers the extension list of the Picasso
// runtime in types and returns it in declaration order.
func DeclareExtensions(types *scale.Types) []metadata.SignedExtension {
	unit := types.Tuple()
	u8 := types.Prim(scale.U8)
	u32 := types.Prim(scale.U32)
	h256 := types.Composite("primitive_types::H256", scale.F("", types.Array(32, u8)))

	eras := make([]scale.Variant, 0, 256)
	eras = append(eras, scale.V("Immortal", 0))
	for i := 1; i < 256; i++ {
		eras = append(eras, scale.V(eraName(i), uint8(i), scale.F("", u8)))
	}
	era := types.Variant("sp_runtime::generic::era::Era", eras...)

	nonce := types.Composite("frame_system::extensions::check_nonce::CheckNonce", scale.F("", types.Compact(u32)))
	currency := types.Composite("primitives::currency::CurrencyId", scale.F("", types.Prim(scale.U128Prim)))
	payment := types.Composite("pallet_asset_tx_payment::ChargeAssetTxPayment",
		scale.F("tip", types.Compact(types.Prim(scale.U128Prim))),
		scale.F("asset_id", types.Option(currency)),
	)
	return []metadata.SignedExtension{
		{Identifier: CheckNonZeroSender, Type: unit, AdditionalSigned: unit},
		{Identifier: CheckSpecVersion, Type: unit, AdditionalSigned: u32},
		{Identifier: CheckTxVersion, Type: unit, AdditionalSigned: u32},
		{Identifier: CheckGenesis, Type: unit, AdditionalSigned: h256},
		{Identifier: CheckMortality, Type: era, AdditionalSigned: h256},
		{Identifier: CheckNonce, Type: nonce, AdditionalSigned: unit},
		{Identifier: CheckWeight, Type: unit, AdditionalSigned: unit},
		{Identifier: ChargeAssetTxPayment, Type: payment, AdditionalSigned: unit},
	}
}

func eraName(i int) string {
	return "Mortal" + strconv.Itoa(i)
}
