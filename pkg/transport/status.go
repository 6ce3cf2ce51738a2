/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
)

// FromExtrinsicStatus converts one author_extrinsicUpdate notification.
// Block bearing updates carry Index -1 until the caller resolves it.
func FromExtrinsicStatus(s types.ExtrinsicStatus) (extrinsic.Status, error) {
	st := extrinsic.Status{Index: -1}
	switch {
	case s.IsFuture:
		st.Kind = extrinsic.Future
	case s.IsReady:
		st.Kind = extrinsic.Ready
	case s.IsBroadcast:
		st.Kind = extrinsic.Broadcast
		for _, p := range s.AsBroadcast {
			st.Peers = append(st.Peers, string(p))
		}
	case s.IsInBlock:
		st.Kind, st.Block = extrinsic.InBlock, primitives.Hash(s.AsInBlock)
	case s.IsRetracted:
		st.Kind, st.Block = extrinsic.Retracted, primitives.Hash(s.AsRetracted)
	case s.IsFinalityTimeout:
		st.Kind, st.Block = extrinsic.FinalityTimeout, primitives.Hash(s.AsFinalityTimeout)
	case s.IsFinalized:
		st.Kind, st.Block = extrinsic.Finalized, primitives.Hash(s.AsFinalized)
	case s.IsUsurped:
		st.Kind, st.Usurper = extrinsic.Usurped, primitives.Hash(s.AsUsurped)
	case s.IsDropped:
		st.Kind = extrinsic.Dropped
	case s.IsInvalid:
		st.Kind = extrinsic.Invalid
	default:
		return st, errors.New("[FromExtrinsicStatus] empty status")
	}
	return st, nil
}

// changedValues flattens state_queryStorageAt results by hex key. Keys
// reported without data are left out.
func changedValues(sets []types.StorageChangeSet) map[string][]byte {
	values := make(map[string][]byte)
	for _, set := range sets {
		for _, ch := range set.Changes {
			if !ch.HasStorageData {
				delete(values, ch.StorageKey.Hex())
				continue
			}
			values[ch.StorageKey.Hex()] = ch.StorageData
		}
	}
	return values
}
