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
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
)

type BalancesTransferArgs struct {
	Dest  extrinsic.MultiAddress
	Value scale.U128 `scale:"compact"`
}

type BalancesTransferAllArgs struct {
	Dest      extrinsic.MultiAddress
	KeepAlive bool
}

type BalancesTransfer struct {
	From   primitives.AccountID
	To     primitives.AccountID
	Amount scale.U128
}

type BalancesEndowed struct {
	Account     primitives.AccountID
	FreeBalance scale.U128
}

var (
	BalancesTransferCall = client.DeclareCall[BalancesTransferArgs](types, "Balances", "transfer",
		scale.F("dest", shapes.MultiAddress),
		scale.F("value", types.Compact(shapes.Balance)))

	BalancesTransferKeepAliveCall = client.DeclareCall[BalancesTransferArgs](types, "Balances", "transfer_keep_alive",
		scale.F("dest", shapes.MultiAddress),
		scale.F("value", types.Compact(shapes.Balance)))

	BalancesTransferAllCall = client.DeclareCall[BalancesTransferAllArgs](types, "Balances", "transfer_all",
		scale.F("dest", shapes.MultiAddress),
		scale.F("keep_alive", shapes.Bool))

	BalancesTotalIssuance = client.DeclarePlain[scale.U128](types, "Balances", "TotalIssuance",
		metadata.Default, shapes.Balance)

	BalancesExistentialDeposit = client.DeclareConstant[scale.U128](types, "Balances", "ExistentialDeposit",
		shapes.Balance, literal(scale.NewU128(ExistentialDepositValue)))

	BalancesTransferEvent = client.DeclareEvent[BalancesTransfer](types, "Balances", "Transfer",
		scale.F("from", shapes.AccountID),
		scale.F("to", shapes.AccountID),
		scale.F("amount", shapes.Balance))

	BalancesEndowedEvent = client.DeclareEvent[BalancesEndowed](types, "Balances", "Endowed",
		scale.F("account", shapes.AccountID),
		scale.F("free_balance", shapes.Balance))
)

// Transfer builds Balances.transfer, or transfer_keep_alive when
// keepAlive is set.
func Transfer(c *client.Client, dest primitives.AccountID, amount *big.Int, keepAlive bool) (*client.Submittable, error) {
	v, err := u128s("Transfer", amount)
	if err != nil {
		return nil, err
	}
	call := BalancesTransferCall
	if keepAlive {
		call = BalancesTransferKeepAliveCall
	}
	return client.BuildCall(c, call, BalancesTransferArgs{Dest: extrinsic.NewAddressId(dest), Value: v[0]})
}

func TransferAll(c *client.Client, dest primitives.AccountID, keepAlive bool) (*client.Submittable, error) {
	return client.BuildCall(c, BalancesTransferAllCall, BalancesTransferAllArgs{
		Dest:      extrinsic.NewAddressId(dest),
		KeepAlive: keepAlive,
	})
}

// TotalIssuance reads Balances.TotalIssuance.
func TotalIssuance(ctx context.Context, c *client.Client, at *primitives.Hash) (*big.Int, error) {
	v, err := client.FetchOrDefault(ctx, c, BalancesTotalIssuance, at)
	if err != nil {
		return nil, err
	}
	return v.Big(), nil
}

func ExistentialDeposit(c *client.Client) (*big.Int, error) {
	v, err := client.ConstantValue(c, BalancesExistentialDeposit)
	if err != nil {
		return nil, err
	}
	return v.Big(), nil
}

// Free returns the free balance of who.
func Free(ctx context.Context, c *client.Client, who primitives.AccountID, at *primitives.Hash) (*big.Int, error) {
	info, err := c.Account(ctx, who, at)
	if err != nil {
		return nil, err
	}
	return info.Data.Free.Big(), nil
}
