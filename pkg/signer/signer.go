/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package signer produces transaction signatures.
package signer

import (
	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/pkg/errors"
)

// Signer signs a payload for one account.
type Signer interface {
	AccountID() primitives.AccountID
	Scheme() extrinsic.SignatureScheme
	Sign(payload []byte) ([]byte, error)
}

// Keyring is an sr25519 signer derived from a mnemonic, seed or dev URI.
type Keyring struct {
	pair    signature.KeyringPair
	account primitives.AccountID
}

// NewKeyring derives the key pair. network is the ss58 prefix used for
// the printable address.
func NewKeyring(secret string, network uint16) (*Keyring, error) {
	pair, err := signature.KeyringPairFromSecret(secret, network)
	if err != nil {
		return nil, errors.Wrap(err, "[KeyringPairFromSecret]")
	}
	return FromPair(pair)
}

func FromPair(pair signature.KeyringPair) (*Keyring, error) {
	acc, err := primitives.NewAccountID(pair.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Keyring{pair: pair, account: acc}, nil
}

func (k *Keyring) AccountID() primitives.AccountID {
	return k.account
}

func (k *Keyring) Scheme() extrinsic.SignatureScheme {
	return extrinsic.Sr25519
}

// Address is the ss58 address of the key pair.
func (k *Keyring) Address() string {
	return k.pair.Address
}

func (k *Keyring) Sign(payload []byte) ([]byte, error) {
	sig, err := signature.Sign(payload, k.pair.URI)
	if err != nil {
		return nil, errors.Wrap(err, "[Sign]")
	}
	return sig, nil
}

// Verify checks a signature made by this key pair.
func (k *Keyring) Verify(payload, sig []byte) (bool, error) {
	return signature.Verify(payload, sig, k.pair.URI)
}
