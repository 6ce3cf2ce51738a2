/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint is a digest of an item's structural declaration.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return "0x" + hex.EncodeToString(f[:])
}

type ItemKind uint8

const (
	ItemCall ItemKind = iota
	ItemStorage
	ItemConstant
	ItemEvent
)

func (k ItemKind) String() string {
	switch k {
	case ItemCall:
		return "call"
	case ItemStorage:
		return "storage"
	case ItemConstant:
		return "constant"
	case ItemEvent:
		return "event"
	}
	return "unknown"
}

// Types whose layout is the sum of every pallet's calls or events. They
// are hashed by name only; each member is gated on its own.
var opaqueTypes = map[string]bool{
	"RuntimeCall":  true,
	"RuntimeEvent": true,
}

const (
	tagComposite byte = iota + 1
	tagVariant
	tagSequence
	tagArray
	tagTuple
	tagPrimitive
	tagCompact
	tagBitSequence
	tagRecursive
	tagOpaque
	tagMissing
)

// Fingerprint returns the live fingerprint of an item. Results are
// cached; the registry is immutable once loaded.
func (r *Registry) Fingerprint(kind ItemKind, pallet, name string) (Fingerprint, error) {
	key := itemKey{kind: kind, pallet: pallet, name: name}
	r.fpLock.RLock()
	fp, ok := r.fp[key]
	r.fpLock.RUnlock()
	if ok {
		return fp, nil
	}

	switch kind {
	case ItemCall:
		_, c, err := r.Call(pallet, name)
		if err != nil {
			return fp, err
		}
		fp = HashCall(r.Types, pallet, name, c.Args)
	case ItemStorage:
		_, s, err := r.Storage(pallet, name)
		if err != nil {
			return fp, err
		}
		fp = HashStorage(r.Types, pallet, s)
	case ItemConstant:
		_, c, err := r.Constant(pallet, name)
		if err != nil {
			return fp, err
		}
		fp = HashConstant(r.Types, pallet, name, c.Type, c.Value)
	case ItemEvent:
		_, e, err := r.Event(pallet, name)
		if err != nil {
			return fp, err
		}
		fp = HashEvent(r.Types, pallet, name, e.Fields)
	default:
		return fp, errors.Errorf("unknown item kind %d", kind)
	}

	r.fpLock.Lock()
	r.fp[key] = fp
	r.fpLock.Unlock()
	return fp, nil
}

// TypeFingerprint hashes a single type shape, with no item names.
func TypeFingerprint(types *scale.Types, id scale.TypeID) Fingerprint {
	w := newShapeWriter(types)
	w.typ(id)
	return w.sum()
}

func HashCall(types *scale.Types, pallet, name string, args []scale.Field) Fingerprint {
	w := newShapeWriter(types)
	w.header(ItemCall, pallet, name)
	w.fields(args)
	return w.sum()
}

func HashEvent(types *scale.Types, pallet, name string, fields []scale.Field) Fingerprint {
	w := newShapeWriter(types)
	w.header(ItemEvent, pallet, name)
	w.fields(fields)
	return w.sum()
}

// HashStorage covers the modifier, the hashers and the key and value
// shapes. The default bytes are not part of the fingerprint.
func HashStorage(types *scale.Types, pallet string, s *StorageEntry) Fingerprint {
	w := newShapeWriter(types)
	w.header(ItemStorage, pallet, s.Name)
	w.putByte(byte(s.Modifier))
	w.u32(uint32(len(s.Hashers)))
	for i, h := range s.Hashers {
		w.putByte(byte(h))
		if i < len(s.Keys) {
			w.typ(s.Keys[i])
		}
	}
	w.typ(s.Value)
	return w.sum()
}

// HashConstant covers the declared type and the literal value.
func HashConstant(types *scale.Types, pallet, name string, ty scale.TypeID, value []byte) Fingerprint {
	w := newShapeWriter(types)
	w.header(ItemConstant, pallet, name)
	w.typ(ty)
	w.bytes(value)
	return w.sum()
}

type shapeWriter struct {
	h     hash.Hash
	types *scale.Types
	stack []scale.TypeID
	buf   [4]byte
}

func newShapeWriter(types *scale.Types) *shapeWriter {
	h, _ := blake2b.New256(nil)
	return &shapeWriter{h: h, types: types}
}

func (w *shapeWriter) sum() Fingerprint {
	var fp Fingerprint
	copy(fp[:], w.h.Sum(nil))
	return fp
}

func (w *shapeWriter) putByte(b byte) {
	w.h.Write([]byte{b})
}

func (w *shapeWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:], v)
	w.h.Write(w.buf[:])
}

func (w *shapeWriter) bytes(b []byte) {
	w.u32(uint32(len(b)))
	w.h.Write(b)
}

func (w *shapeWriter) str(s string) {
	w.bytes([]byte(s))
}

func (w *shapeWriter) header(kind ItemKind, pallet, name string) {
	w.putByte(byte(kind))
	w.str(pallet)
	w.str(name)
}

func (w *shapeWriter) fields(fs []scale.Field) {
	w.u32(uint32(len(fs)))
	for _, f := range fs {
		w.str(f.Name)
		w.typ(f.Type)
	}
}

func (w *shapeWriter) typ(id scale.TypeID) {
	for i, s := range w.stack {
		if s == id {
			// back-reference by distance; ids differ between registries
			w.putByte(tagRecursive)
			w.u32(uint32(len(w.stack) - i))
			return
		}
	}
	def, ok := w.types.Lookup(id)
	if !ok {
		w.putByte(tagMissing)
		return
	}
	if opaqueTypes[def.Name()] && len(def.Path) <= 2 {
		w.putByte(tagOpaque)
		w.str(def.Name())
		return
	}

	w.stack = append(w.stack, id)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	switch def.Kind {
	case scale.KindComposite:
		w.putByte(tagComposite)
		w.fields(def.Fields)
	case scale.KindVariant:
		w.putByte(tagVariant)
		w.u32(uint32(len(def.Variants)))
		for _, v := range def.Variants {
			w.str(v.Name)
			w.putByte(v.Index)
			w.fields(v.Fields)
		}
	case scale.KindSequence:
		w.putByte(tagSequence)
		w.typ(def.Elem)
	case scale.KindArray:
		w.putByte(tagArray)
		w.u32(def.Len)
		w.typ(def.Elem)
	case scale.KindTuple:
		w.putByte(tagTuple)
		w.u32(uint32(len(def.Tuple)))
		for _, t := range def.Tuple {
			w.typ(t)
		}
	case scale.KindPrimitive:
		w.putByte(tagPrimitive)
		w.putByte(byte(def.Primitive))
	case scale.KindCompact:
		w.putByte(tagCompact)
		w.typ(def.Elem)
	case scale.KindBitSequence:
		w.putByte(tagBitSequence)
		w.typ(def.Elem)
		w.typ(def.BitOrder)
	}
}

