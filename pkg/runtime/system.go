/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package runtime

import (
	"context"
	"time"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
)

type SystemRemarkArgs struct {
	Remark []byte
}

type SudoArgs struct {
	Call scale.Raw
}

type SudoSudid struct {
	SudoResult scale.Result[scale.Unit, client.DispatchError]
}

var (
	SystemRemarkCall = client.DeclareCall[SystemRemarkArgs](types, "System", "remark",
		scale.F("remark", shapes.Bytes))

	TimestampNow = client.DeclarePlain[uint64](types, "Timestamp", "Now", metadata.Default, shapes.Moment)

	TimestampMinimumPeriod = client.DeclareConstant[uint64](types, "Timestamp", "MinimumPeriod",
		shapes.Moment, literal(uint64(MinimumPeriodValue)))

	SudoCall = client.DeclareCall[SudoArgs](types, "Sudo", "sudo",
		scale.F("call", types.Variant("picasso_runtime::RuntimeCall")))

	SudoKey = client.DeclarePlain[primitives.AccountID](types, "Sudo", "Key", metadata.Optional, shapes.AccountID)

	SudoSudidEvent = client.DeclareEvent[SudoSudid](types, "Sudo", "Sudid",
		scale.F("sudo_result", shapes.DispatchResult))
)

func Remark(c *client.Client, data []byte) (*client.Submittable, error) {
	return client.BuildCall(c, SystemRemarkCall, SystemRemarkArgs{Remark: data})
}

// Sudo wraps inner in Sudo.sudo.
func Sudo(c *client.Client, inner *client.Submittable) (*client.Submittable, error) {
	return client.BuildCall(c, SudoCall, SudoArgs{Call: inner.CallBytes()})
}

// SudoAccount reads the sudo key. ok is false on chains without one.
func SudoAccount(ctx context.Context, c *client.Client, at *primitives.Hash) (primitives.AccountID, bool, error) {
	return client.Fetch(ctx, c, SudoKey, at)
}

// Now reads the timestamp of block at.
func Now(ctx context.Context, c *client.Client, at *primitives.Hash) (time.Time, error) {
	ms, err := client.FetchOrDefault(ctx, c, TimestampNow, at)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(ms)), nil
}

// BlockTime is twice the minimum period between blocks.
func BlockTime(c *client.Client) (time.Duration, error) {
	ms, err := client.ConstantValue(c, TimestampMinimumPeriod)
	if err != nil {
		return 0, err
	}
	return 2 * time.Duration(ms) * time.Millisecond, nil
}
