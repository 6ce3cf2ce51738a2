/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package runtime

import (
	"context"
	"math/big"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

// CurrencyID identifies an asset held in the Tokens pallet.
type CurrencyID struct {
	scale.U128
}

func Currency(id uint64) CurrencyID {
	return CurrencyID{scale.NewU128(id)}
}

// Well-known Picasso assets.
var (
	PICA = Currency(1)
	KSM  = Currency(4)
	PBLO = Currency(5)
	KUSD = Currency(129)
	USDT = Currency(130)
)

// TokenAccount is the orml_tokens balance record.
type TokenAccount struct {
	Free     scale.U128
	Reserved scale.U128
	Frozen   scale.U128
}

type TokensTransferArgs struct {
	Dest       extrinsic.MultiAddress
	CurrencyID CurrencyID
	Amount     scale.U128 `scale:"compact"`
}

type TokensTransfer struct {
	CurrencyID CurrencyID
	From       primitives.AccountID
	To         primitives.AccountID
	Amount     scale.U128
}

type TokensEndowed struct {
	CurrencyID CurrencyID
	Who        primitives.AccountID
	Amount     scale.U128
}

var (
	TokensTransferCall = client.DeclareCall[TokensTransferArgs](types, "Tokens", "transfer",
		scale.F("dest", shapes.MultiAddress),
		scale.F("currency_id", shapes.CurrencyID),
		scale.F("amount", types.Compact(shapes.Balance)))

	TokensAccounts = client.DeclareMap[TokenAccount](types, "Tokens", "Accounts", metadata.Default,
		[]hasher.Hasher{hasher.Blake2_128Concat, hasher.Twox64Concat},
		[]scale.TypeID{shapes.AccountID, shapes.CurrencyID},
		shapes.Tokens)

	TokensTotalIssuance = client.DeclareMap[scale.U128](types, "Tokens", "TotalIssuance", metadata.Default,
		[]hasher.Hasher{hasher.Twox64Concat},
		[]scale.TypeID{shapes.CurrencyID},
		shapes.Balance)

	TokensTransferEvent = client.DeclareEvent[TokensTransfer](types, "Tokens", "Transfer",
		scale.F("currency_id", shapes.CurrencyID),
		scale.F("from", shapes.AccountID),
		scale.F("to", shapes.AccountID),
		scale.F("amount", shapes.Balance))

	TokensEndowedEvent = client.DeclareEvent[TokensEndowed](types, "Tokens", "Endowed",
		scale.F("currency_id", shapes.CurrencyID),
		scale.F("who", shapes.AccountID),
		scale.F("amount", shapes.Balance))
)

func TransferToken(c *client.Client, dest primitives.AccountID, currency CurrencyID, amount *big.Int) (*client.Submittable, error) {
	v, err := u128s("TransferToken", amount)
	if err != nil {
		return nil, err
	}
	return client.BuildCall(c, TokensTransferCall, TokensTransferArgs{
		Dest:       extrinsic.NewAddressId(dest),
		CurrencyID: currency,
		Amount:     v[0],
	})
}

// TokenBalance reads the balance of who in one currency.
func TokenBalance(ctx context.Context, c *client.Client, who primitives.AccountID, currency CurrencyID, at *primitives.Hash) (TokenAccount, error) {
	return client.FetchOrDefault(ctx, c, TokensAccounts, at, who, currency)
}

// Holding is one currency held by an account.
type Holding struct {
	Currency CurrencyID
	Account  TokenAccount
}

// Holdings lists every currency who holds, by iterating the second
// dimension of Tokens.Accounts.
func Holdings(ctx context.Context, c *client.Client, who primitives.AccountID, at *primitives.Hash) ([]Holding, error) {
	it, err := client.Iter(c, TokensAccounts, at, who)
	if err != nil {
		return nil, err
	}
	var out []Holding
	for it.Next(ctx) {
		e := it.Entry()
		var h Holding
		if err := scale.UnmarshalExact(e.Keys[1].Key, &h.Currency); err != nil {
			return nil, &client.Error{Kind: client.KindCodec, Op: "Holdings", Err: errors.Wrapf(err, "key %x", e.Key)}
		}
		h.Account = e.Value
		out = append(out, h)
	}
	return out, it.Err()
}

func TokenIssuance(ctx context.Context, c *client.Client, currency CurrencyID, at *primitives.Hash) (*big.Int, error) {
	v, err := client.FetchOrDefault(ctx, c, TokensTotalIssuance, at, currency)
	if err != nil {
		return nil, err
	}
	return v.Big(), nil
}
