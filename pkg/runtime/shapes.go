/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package runtime is the typed catalog of the Picasso runtime: calls,
// storage entries, events and constants of the pallets this client
// supports, each declared with the shape it was written against.
package runtime

import (
	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
)

// Shapes are the runtime types shared by several pallets.
type Shapes struct {
	*client.SystemShapes
	Bool           scale.TypeID
	Bytes          scale.TypeID
	CurrencyID     scale.TypeID
	Pair           scale.TypeID
	Balance        scale.TypeID
	Moment         scale.TypeID
	Tokens         scale.TypeID
	DispatchResult scale.TypeID
}

// DeclareShapes adds the catalog's types to types.
func DeclareShapes(types *scale.Types) *Shapes {
	s := &Shapes{SystemShapes: client.DeclareSystemShapes(types)}
	s.Bool = types.Prim(scale.Bool)
	s.Bytes = types.Bytes()
	s.Balance = s.U128
	s.Moment = s.U64
	s.CurrencyID = types.Composite("primitives::currency::CurrencyId", scale.F("", s.U128))
	s.Pair = types.Composite("composable_traits::defi::CurrencyPair",
		scale.F("base", s.CurrencyID),
		scale.F("quote", s.CurrencyID),
	)
	s.Tokens = types.Composite("orml_tokens::AccountData",
		scale.F("free", s.Balance),
		scale.F("reserved", s.Balance),
		scale.F("frozen", s.Balance),
	)
	s.DispatchResult = types.Result(types.Tuple(), s.DispatchError)
	return s
}

// Constant values of the Picasso runtime the catalog was written
// against. A runtime that changes them fails the constant's gate.
const (
	ExistentialDepositValue = 100_000_000_000
	MinimumPeriodValue      = 6000
)

var (
	types  = scale.NewTypes()
	shapes = DeclareShapes(types)
)

// literal is the encoding of a catalog constant value.
func literal(v any) []byte {
	b, err := scale.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
