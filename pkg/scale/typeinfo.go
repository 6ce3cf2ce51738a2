/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import (
	"strings"
	"sync"
)

// TypeID indexes a type in a Types registry.
type TypeID uint32

type Kind uint8

const (
	KindComposite Kind = iota
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindPrimitive
	KindCompact
	KindBitSequence
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindSequence:
		return "sequence"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindPrimitive:
		return "primitive"
	case KindCompact:
		return "compact"
	case KindBitSequence:
		return "bitsequence"
	}
	return "unknown"
}

// Primitive follows the numbering of the portable type registry.
type Primitive uint8

const (
	Bool Primitive = iota
	Char
	Str
	U8
	U16
	U32
	U64
	U128Prim
	U256
	I8
	I16
	I32
	I64
	I128
	I256
)

// Width returns the encoded size of a fixed-width primitive, or 0.
func (p Primitive) Width() int {
	switch p {
	case Bool, U8, I8:
		return 1
	case U16, I16:
		return 2
	case Char, U32, I32:
		return 4
	case U64, I64:
		return 8
	case U128Prim, I128:
		return 16
	case U256, I256:
		return 32
	}
	return 0
}

type Field struct {
	Name string
	Type TypeID
}

type Variant struct {
	Name   string
	Index  uint8
	Fields []Field
}

// TypeDef is one entry of the registry. Only the members relevant to
// Kind are set.
type TypeDef struct {
	Path      []string
	Kind      Kind
	Fields    []Field
	Variants  []Variant
	Elem      TypeID
	Len       uint32
	Tuple     []TypeID
	Primitive Primitive
	BitOrder  TypeID
}

// Name returns the last path segment, or "" for anonymous types.
func (t *TypeDef) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

// VariantByIndex finds the variant carrying discriminant idx.
func (t *TypeDef) VariantByIndex(idx uint8) (*Variant, bool) {
	for i := range t.Variants {
		if t.Variants[i].Index == idx {
			return &t.Variants[i], true
		}
	}
	return nil, false
}

// Types is a portable type registry. It is filled once, either from
// node metadata or through the builder methods, and read concurrently
// afterwards.
type Types struct {
	mu    sync.RWMutex
	defs  map[TypeID]*TypeDef
	next  TypeID
	prims map[Primitive]TypeID
}

func NewTypes() *Types {
	return &Types{
		defs:  make(map[TypeID]*TypeDef),
		prims: make(map[Primitive]TypeID),
	}
}

// Set stores def under an explicit id, as read from node metadata.
func (t *Types) Set(id TypeID, def TypeDef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := def
	t.defs[id] = &d
	if id >= t.next {
		t.next = id + 1
	}
	if def.Kind == KindPrimitive {
		if _, ok := t.prims[def.Primitive]; !ok {
			t.prims[def.Primitive] = id
		}
	}
}

func (t *Types) Lookup(id TypeID) (*TypeDef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.defs[id]
	return d, ok
}

func (t *Types) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.defs)
}

func (t *Types) add(def TypeDef) TypeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	d := def
	t.defs[id] = &d
	return id
}

// Reserve allocates an id whose definition is supplied later with Set,
// for recursive types.
func (t *Types) Reserve() TypeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	return id
}

// Prim returns the id of a primitive, adding it on first use.
func (t *Types) Prim(p Primitive) TypeID {
	t.mu.RLock()
	id, ok := t.prims[p]
	t.mu.RUnlock()
	if ok {
		return id
	}
	id = t.add(TypeDef{Kind: KindPrimitive, Primitive: p})
	t.mu.Lock()
	t.prims[p] = id
	t.mu.Unlock()
	return id
}

func (t *Types) Compact(inner TypeID) TypeID {
	return t.add(TypeDef{Kind: KindCompact, Elem: inner})
}

func (t *Types) Sequence(elem TypeID) TypeID {
	return t.add(TypeDef{Kind: KindSequence, Elem: elem})
}

func (t *Types) Array(n uint32, elem TypeID) TypeID {
	return t.add(TypeDef{Kind: KindArray, Len: n, Elem: elem})
}

func (t *Types) Tuple(items ...TypeID) TypeID {
	return t.add(TypeDef{Kind: KindTuple, Tuple: items})
}

// Composite adds a record. path is a "::" separated type path.
func (t *Types) Composite(path string, fields ...Field) TypeID {
	return t.add(TypeDef{Kind: KindComposite, Path: splitPath(path), Fields: fields})
}

func (t *Types) Variant(path string, variants ...Variant) TypeID {
	return t.add(TypeDef{Kind: KindVariant, Path: splitPath(path), Variants: variants})
}

func (t *Types) BitSequence(store, order TypeID) TypeID {
	return t.add(TypeDef{Kind: KindBitSequence, Elem: store, BitOrder: order})
}

// Bytes is shorthand for Vec<u8>.
func (t *Types) Bytes() TypeID {
	return t.Sequence(t.Prim(U8))
}

// Option adds the Option<inner> variant.
func (t *Types) Option(inner TypeID) TypeID {
	return t.Variant("Option",
		Variant{Name: "None", Index: 0},
		Variant{Name: "Some", Index: 1, Fields: []Field{{Type: inner}}},
	)
}

// Result adds the Result<ok, err> variant.
func (t *Types) Result(ok, err TypeID) TypeID {
	return t.Variant("Result",
		Variant{Name: "Ok", Index: 0, Fields: []Field{{Type: ok}}},
		Variant{Name: "Err", Index: 1, Fields: []Field{{Type: err}}},
	)
}

// F builds a named field.
func F(name string, id TypeID) Field {
	return Field{Name: name, Type: id}
}

// V builds a variant.
func V(name string, index uint8, fields ...Field) Variant {
	return Variant{Name: name, Index: index, Fields: fields}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "::")
}
