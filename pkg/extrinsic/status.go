/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package extrinsic

import "github.com/ComposableFi/composable-sub002/pkg/primitives"

// StatusKind is a state of a submitted transaction as reported by the
// node's pool.
type StatusKind uint8

const (
	Future StatusKind = iota
	Ready
	Broadcast
	InBlock
	Retracted
	FinalityTimeout
	Finalized
	Usurped
	Dropped
	Invalid
)

func (k StatusKind) String() string {
	switch k {
	case Future:
		return "future"
	case Ready:
		return "ready"
	case Broadcast:
		return "broadcast"
	case InBlock:
		return "inBlock"
	case Retracted:
		return "retracted"
	case FinalityTimeout:
		return "finalityTimeout"
	case Finalized:
		return "finalized"
	case Usurped:
		return "usurped"
	case Dropped:
		return "dropped"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Status is one update of a transaction subscription.
type Status struct {
	Kind StatusKind
	// Block is set for InBlock, Retracted, FinalityTimeout and Finalized.
	Block primitives.Hash
	// Index is the position of the transaction in Block, or -1 when the
	// transport could not resolve it.
	Index int
	Peers []string
	// Usurper is the hash of the replacing transaction for Usurped.
	Usurper primitives.Hash
	// Reason carries the node's message for Invalid and Dropped.
	Reason string
}

// IsTerminal reports whether no further updates follow.
func (s Status) IsTerminal() bool {
	switch s.Kind {
	case Finalized, FinalityTimeout, Usurped, Dropped, Invalid:
		return true
	}
	return false
}

// IsFailure reports a terminal state in which the transaction was not
// finalized.
func (s Status) IsFailure() bool {
	switch s.Kind {
	case Usurped, Dropped, Invalid:
		return true
	}
	return false
}
