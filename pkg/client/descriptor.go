/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
)

// Descriptor is a typed binding to one metadata item. Expected is the
// fingerprint of the shape the binding was declared with.
type Descriptor interface {
	Kind() metadata.ItemKind
	Pallet() string
	Name() string
	Expected() metadata.Fingerprint
	// Live is the fingerprint of the same item in a node's registry.
	Live(reg *metadata.Registry) (metadata.Fingerprint, error)
}

type item struct {
	kind     metadata.ItemKind
	pallet   string
	name     string
	expected metadata.Fingerprint
}

func (i *item) Kind() metadata.ItemKind        { return i.kind }
func (i *item) Pallet() string                 { return i.pallet }
func (i *item) Name() string                   { return i.name }
func (i *item) Expected() metadata.Fingerprint { return i.expected }

func (i *item) Live(reg *metadata.Registry) (metadata.Fingerprint, error) {
	return reg.Fingerprint(i.kind, i.pallet, i.name)
}

// Call binds an extrinsic whose arguments encode as A.
type Call[A any] struct {
	item
}

// DeclareCall declares a call with the given argument fields. Fields
// must follow the order of A's struct fields.
func DeclareCall[A any](types *scale.Types, pallet, name string, args ...scale.Field) *Call[A] {
	return &Call[A]{item{
		kind:     metadata.ItemCall,
		pallet:   pallet,
		name:     name,
		expected: metadata.HashCall(types, pallet, name, args),
	}}
}

// Storage binds a storage entry whose value decodes as V.
type Storage[V any] struct {
	item
	hashers []hasher.Hasher
}

// DeclarePlain declares a storage entry without keys.
func DeclarePlain[V any](types *scale.Types, pallet, name string, mod metadata.Modifier, value scale.TypeID) *Storage[V] {
	return DeclareMap[V](types, pallet, name, mod, nil, nil, value)
}

// DeclareMap declares a storage map with one hasher per key type.
func DeclareMap[V any](types *scale.Types, pallet, name string, mod metadata.Modifier, hashers []hasher.Hasher, keys []scale.TypeID, value scale.TypeID) *Storage[V] {
	entry := &metadata.StorageEntry{
		Name:     name,
		Modifier: mod,
		Hashers:  hashers,
		Keys:     keys,
		Value:    value,
	}
	return &Storage[V]{
		item: item{
			kind:     metadata.ItemStorage,
			pallet:   pallet,
			name:     name,
			expected: metadata.HashStorage(types, pallet, entry),
		},
		hashers: hashers,
	}
}

// Arity is the number of keys of a full key.
func (s *Storage[V]) Arity() int {
	return len(s.hashers)
}

// Constant binds a runtime constant decoding as V.
type Constant[V any] struct {
	item
	typeOnly bool
}

// DeclareConstant pins both the type and the literal value of a
// constant.
func DeclareConstant[V any](types *scale.Types, pallet, name string, ty scale.TypeID, value []byte) *Constant[V] {
	return &Constant[V]{item: item{
		kind:     metadata.ItemConstant,
		pallet:   pallet,
		name:     name,
		expected: metadata.HashConstant(types, pallet, name, ty, value),
	}}
}

// DeclareConstantType pins only the type of a constant whose value is
// read at run time.
func DeclareConstantType[V any](types *scale.Types, pallet, name string, ty scale.TypeID) *Constant[V] {
	c := DeclareConstant[V](types, pallet, name, ty, nil)
	c.typeOnly = true
	return c
}

func (c *Constant[V]) Live(reg *metadata.Registry) (metadata.Fingerprint, error) {
	if !c.typeOnly {
		return c.item.Live(reg)
	}
	_, k, err := reg.Constant(c.pallet, c.name)
	if err != nil {
		return metadata.Fingerprint{}, err
	}
	return metadata.HashConstant(reg.Types, c.pallet, c.name, k.Type, nil), nil
}

// Event binds an event whose fields decode as E.
type Event[E any] struct {
	item
}

func DeclareEvent[E any](types *scale.Types, pallet, name string, fields ...scale.Field) *Event[E] {
	return &Event[E]{item{
		kind:     metadata.ItemEvent,
		pallet:   pallet,
		name:     name,
		expected: metadata.HashEvent(types, pallet, name, fields),
	}}
}
