/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

var SSPrefix = []byte{0x53, 0x53, 0x35, 0x38, 0x50, 0x52, 0x45}

// Network prefixes.
const (
	SubstratePrefix  uint16 = 42
	PicassoPrefix    uint16 = 49
	ComposablePrefix uint16 = 50
)

var (
	ErrInvalidAddress = errors.New("invalid ss58 address")
	ErrWrongNetwork   = errors.New("address belongs to another network")
)

// prefixBytes returns the one or two byte ss58 network identifier.
func prefixBytes(network uint16) ([]byte, error) {
	switch {
	case network < 64:
		return []byte{byte(network)}, nil
	case network < 16384:
		first := byte((network&0xfc)>>2) | 0x40
		second := byte(network>>8) | byte(network&0x03)<<6
		return []byte{first, second}, nil
	}
	return nil, errors.Errorf("ss58 prefix %d out of range", network)
}

func checksum(payload []byte) []byte {
	ck := blake2b.Sum512(append(append([]byte(nil), SSPrefix...), payload...))
	return ck[:2]
}

// EncodeAddress renders a 32 byte public key as an ss58 address of network.
func EncodeAddress(publicKey []byte, network uint16) (string, error) {
	if len(publicKey) != 32 {
		return "", errors.Errorf("public key length %d, want 32", len(publicKey))
	}
	prefix, err := prefixBytes(network)
	if err != nil {
		return "", err
	}
	payload := append(prefix, publicKey...)
	return base58.Encode(append(payload, checksum(payload)...)), nil
}

// DecodeAddress returns the public key and network of an ss58 address.
func DecodeAddress(address string) ([]byte, uint16, error) {
	data := base58.Decode(address)
	if len(data) < 35 {
		return nil, 0, ErrInvalidAddress
	}
	var (
		network uint16
		plen    = 1
	)
	switch {
	case data[0] < 64:
		network = uint16(data[0])
	case data[0] < 128:
		plen = 2
		lower := (data[0]<<2)&0xfc | data[1]>>6
		upper := data[1] & 0x3f
		network = uint16(lower) | uint16(upper)<<8
	default:
		return nil, 0, ErrInvalidAddress
	}
	if len(data) != plen+32+2 {
		return nil, 0, ErrInvalidAddress
	}
	payload := data[:plen+32]
	ck := checksum(payload)
	if ck[0] != data[plen+32] || ck[1] != data[plen+33] {
		return nil, 0, errors.Wrap(ErrInvalidAddress, "checksum")
	}
	return append([]byte(nil), data[plen:plen+32]...), network, nil
}

// ParseAccount decodes an address of the given network into an account id.
func ParseAccount(address string, network uint16) (primitives.AccountID, error) {
	var id primitives.AccountID
	pub, got, err := DecodeAddress(address)
	if err != nil {
		return id, err
	}
	if got != network {
		return id, errors.Wrapf(ErrWrongNetwork, "prefix %d, want %d", got, network)
	}
	copy(id[:], pub)
	return id, nil
}

// VerityAddress checks that address is a well-formed address of network.
func VerityAddress(address string, network uint16) error {
	_, err := ParseAccount(address, network)
	return err
}
