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
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
)

type CurrencyPair struct {
	Base  CurrencyID
	Quote CurrencyID
}

type PabloBuyArgs struct {
	PoolID    scale.U128
	AssetID   CurrencyID
	Amount    scale.U128
	KeepAlive bool
}

type PabloSwapArgs struct {
	PoolID      scale.U128
	Pair        CurrencyPair
	QuoteAmount scale.U128
	MinReceive  scale.U128
	KeepAlive   bool
}

type PabloAddLiquidityArgs struct {
	PoolID        scale.U128
	BaseAmount    scale.U128
	QuoteAmount   scale.U128
	MinMintAmount scale.U128
	KeepAlive     bool
}

type PabloRemoveLiquidityArgs struct {
	PoolID         scale.U128
	LpAmount       scale.U128
	MinBaseAmount  scale.U128
	MinQuoteAmount scale.U128
}

type PabloPoolCreated struct {
	PoolID scale.U128
	Owner  primitives.AccountID
}

type PabloLiquidityAdded struct {
	Who         primitives.AccountID
	PoolID      scale.U128
	BaseAmount  scale.U128
	QuoteAmount scale.U128
	MintedLp    scale.U128
}

type PabloLiquidityRemoved struct {
	Who           primitives.AccountID
	PoolID        scale.U128
	BaseAmount    scale.U128
	QuoteAmount   scale.U128
	TotalIssuance scale.U128
}

type PabloSwapped struct {
	PoolID      scale.U128
	Who         primitives.AccountID
	BaseAsset   CurrencyID
	QuoteAsset  CurrencyID
	BaseAmount  scale.U128
	QuoteAmount scale.U128
	Fee         scale.U128
}

func declareOrder(name string) *client.Call[PabloBuyArgs] {
	return client.DeclareCall[PabloBuyArgs](types, "Pablo", name,
		scale.F("pool_id", shapes.U128),
		scale.F("asset_id", shapes.CurrencyID),
		scale.F("amount", shapes.Balance),
		scale.F("keep_alive", shapes.Bool))
}

var (
	PabloBuyCall  = declareOrder("buy")
	PabloSellCall = declareOrder("sell")

	PabloSwapCall = client.DeclareCall[PabloSwapArgs](types, "Pablo", "swap",
		scale.F("pool_id", shapes.U128),
		scale.F("pair", shapes.Pair),
		scale.F("quote_amount", shapes.Balance),
		scale.F("min_receive", shapes.Balance),
		scale.F("keep_alive", shapes.Bool))

	PabloAddLiquidityCall = client.DeclareCall[PabloAddLiquidityArgs](types, "Pablo", "add_liquidity",
		scale.F("pool_id", shapes.U128),
		scale.F("base_amount", shapes.Balance),
		scale.F("quote_amount", shapes.Balance),
		scale.F("min_mint_amount", shapes.Balance),
		scale.F("keep_alive", shapes.Bool))

	PabloRemoveLiquidityCall = client.DeclareCall[PabloRemoveLiquidityArgs](types, "Pablo", "remove_liquidity",
		scale.F("pool_id", shapes.U128),
		scale.F("lp_amount", shapes.Balance),
		scale.F("min_base_amount", shapes.Balance),
		scale.F("min_quote_amount", shapes.Balance))

	PabloPoolCount = client.DeclarePlain[scale.U128](types, "Pablo", "PoolCount", metadata.Default, shapes.U128)

	PabloPoolCreatedEvent = client.DeclareEvent[PabloPoolCreated](types, "Pablo", "PoolCreated",
		scale.F("pool_id", shapes.U128),
		scale.F("owner", shapes.AccountID))

	PabloLiquidityAddedEvent = client.DeclareEvent[PabloLiquidityAdded](types, "Pablo", "LiquidityAdded",
		scale.F("who", shapes.AccountID),
		scale.F("pool_id", shapes.U128),
		scale.F("base_amount", shapes.Balance),
		scale.F("quote_amount", shapes.Balance),
		scale.F("minted_lp", shapes.Balance))

	PabloLiquidityRemovedEvent = client.DeclareEvent[PabloLiquidityRemoved](types, "Pablo", "LiquidityRemoved",
		scale.F("who", shapes.AccountID),
		scale.F("pool_id", shapes.U128),
		scale.F("base_amount", shapes.Balance),
		scale.F("quote_amount", shapes.Balance),
		scale.F("total_issuance", shapes.Balance))

	PabloSwappedEvent = client.DeclareEvent[PabloSwapped](types, "Pablo", "Swapped",
		scale.F("pool_id", shapes.U128),
		scale.F("who", shapes.AccountID),
		scale.F("base_asset", shapes.CurrencyID),
		scale.F("quote_asset", shapes.CurrencyID),
		scale.F("base_amount", shapes.Balance),
		scale.F("quote_amount", shapes.Balance),
		scale.F("fee", shapes.Balance))
)

func u128(v *big.Int) (scale.U128, error) {
	if v == nil {
		return scale.U128{}, nil
	}
	return scale.U128FromBig(v)
}

func u128s(op string, vs ...*big.Int) ([]scale.U128, error) {
	out := make([]scale.U128, len(vs))
	for i, v := range vs {
		u, err := u128(v)
		if err != nil {
			return nil, &client.Error{Kind: client.KindCodec, Op: op, Err: err}
		}
		out[i] = u
	}
	return out, nil
}

// Swap exchanges quoteAmount of pair.Quote for at least minReceive of
// pair.Base in pool.
func Swap(c *client.Client, pool uint64, pair CurrencyPair, quoteAmount, minReceive *big.Int, keepAlive bool) (*client.Submittable, error) {
	v, err := u128s("Swap", quoteAmount, minReceive)
	if err != nil {
		return nil, err
	}
	return client.BuildCall(c, PabloSwapCall, PabloSwapArgs{
		PoolID:      scale.NewU128(pool),
		Pair:        pair,
		QuoteAmount: v[0],
		MinReceive:  v[1],
		KeepAlive:   keepAlive,
	})
}

// Buy and Sell trade amount of asset against the pool's other asset.
func Buy(c *client.Client, pool uint64, asset CurrencyID, amount *big.Int, keepAlive bool) (*client.Submittable, error) {
	return order(c, PabloBuyCall, pool, asset, amount, keepAlive)
}

func Sell(c *client.Client, pool uint64, asset CurrencyID, amount *big.Int, keepAlive bool) (*client.Submittable, error) {
	return order(c, PabloSellCall, pool, asset, amount, keepAlive)
}

func order(c *client.Client, call *client.Call[PabloBuyArgs], pool uint64, asset CurrencyID, amount *big.Int, keepAlive bool) (*client.Submittable, error) {
	v, err := u128s(call.Name(), amount)
	if err != nil {
		return nil, err
	}
	return client.BuildCall(c, call, PabloBuyArgs{
		PoolID:    scale.NewU128(pool),
		AssetID:   asset,
		Amount:    v[0],
		KeepAlive: keepAlive,
	})
}

func AddLiquidity(c *client.Client, pool uint64, base, quote, minMint *big.Int, keepAlive bool) (*client.Submittable, error) {
	v, err := u128s("AddLiquidity", base, quote, minMint)
	if err != nil {
		return nil, err
	}
	return client.BuildCall(c, PabloAddLiquidityCall, PabloAddLiquidityArgs{
		PoolID:        scale.NewU128(pool),
		BaseAmount:    v[0],
		QuoteAmount:   v[1],
		MinMintAmount: v[2],
		KeepAlive:     keepAlive,
	})
}

func RemoveLiquidity(c *client.Client, pool uint64, lp, minBase, minQuote *big.Int) (*client.Submittable, error) {
	v, err := u128s("RemoveLiquidity", lp, minBase, minQuote)
	if err != nil {
		return nil, err
	}
	return client.BuildCall(c, PabloRemoveLiquidityCall, PabloRemoveLiquidityArgs{
		PoolID:         scale.NewU128(pool),
		LpAmount:       v[0],
		MinBaseAmount:  v[1],
		MinQuoteAmount: v[2],
	})
}

// PoolCount reads the number of pools ever created.
func PoolCount(ctx context.Context, c *client.Client, at *primitives.Hash) (*big.Int, error) {
	v, err := client.FetchOrDefault(ctx, c, PabloPoolCount, at)
	if err != nil {
		return nil, err
	}
	return v.Big(), nil
}
