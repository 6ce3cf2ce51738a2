/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package primitives holds the fixed-size identifiers shared by the
// codec-level packages.
package primitives

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// Hash is a 32-byte block or extrinsic hash.
type Hash [32]byte

// AccountID is a 32-byte public key.
type AccountID [32]byte

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	v, err := HexToHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// HexToHash parses a 0x-prefixed or bare 64 character hex string.
func HexToHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return h, errors.Wrap(err, "[HexToHash]")
	}
	if len(b) != len(h) {
		return h, errors.Errorf("[HexToHash] want 32 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// NewAccountID copies a 32-byte public key.
func NewAccountID(pub []byte) (AccountID, error) {
	var a AccountID
	if len(pub) != len(a) {
		return a, errors.Errorf("[NewAccountID] want 32 bytes, got %d", len(pub))
	}
	copy(a[:], pub)
	return a, nil
}
