/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import (
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
)

const (
	maxValueDepth = 256
	maxFixedSize  = 1 << 32
)

// Value is a dynamically decoded SCALE value. Concrete forms:
//
//	bool, rune, string, uint8..uint64, int8..int64, U128, *big.Int
//	[]byte           sequences and arrays of u8
//	[]Value          other sequences, arrays and tuples
//	Composite        records
//	VariantValue     tagged unions
//	BitSequence      bit vectors
type Value = any

type NamedValue struct {
	Name  string
	Value Value
}

// Composite holds record fields in declaration order. Unnamed fields
// have an empty Name.
type Composite []NamedValue

// Field returns the value of the named field.
func (c Composite) Field(name string) (Value, bool) {
	for _, f := range c {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

type VariantValue struct {
	Name   string
	Index  uint8
	Fields Composite
}

type BitSequence struct {
	Bits  uint64
	Bytes []byte
}

// DecodeValue decodes one value of type id using the registry.
func DecodeValue(d *Decoder, types *Types, id TypeID) (Value, error) {
	return decodeDynamic(d, types, id, 0)
}

// Skip advances d past one value of type id.
func Skip(d *Decoder, types *Types, id TypeID) error {
	_, err := decodeDynamic(d, types, id, 0)
	return err
}

// DecodeValueBytes decodes b as type id and returns the value and the
// number of bytes consumed.
func DecodeValueBytes(b []byte, types *Types, id TypeID) (Value, int, error) {
	d := NewDecoder(b)
	v, err := DecodeValue(d, types, id)
	return v, d.Offset(), err
}

func decodeDynamic(d *Decoder, types *Types, id TypeID, depth int) (Value, error) {
	if depth > maxValueDepth {
		return nil, errors.Errorf("scale: type %d nested too deeply", id)
	}
	def, ok := types.Lookup(id)
	if !ok {
		return nil, errors.Errorf("scale: unknown type %d", id)
	}
	switch def.Kind {
	case KindPrimitive:
		return decodePrimitive(d, def.Primitive)
	case KindCompact:
		return decodeCompactDynamic(d, types, def.Elem)
	case KindComposite:
		return decodeFields(d, types, def.Fields, depth)
	case KindVariant:
		tag, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		v, ok := def.VariantByIndex(tag)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidDiscriminant, "%s index %d", def.Name(), tag)
		}
		fields, err := decodeFields(d, types, v.Fields, depth)
		if err != nil {
			return nil, errors.Wrapf(err, "%s::%s", def.Name(), v.Name)
		}
		return VariantValue{Name: v.Name, Index: v.Index, Fields: fields}, nil
	case KindSequence:
		if isU8(types, def.Elem) {
			return d.DecodeBytes()
		}
		minItem := 1
		if zeroSized(types, def.Elem, depth) {
			minItem = 0
		}
		n, err := d.DecodeLength(minItem)
		if err != nil {
			return nil, err
		}
		return decodeItems(d, types, def.Elem, n, depth)
	case KindArray:
		if isU8(types, def.Elem) {
			b, err := d.Read(int(def.Len))
			if err != nil {
				return nil, err
			}
			return append([]byte(nil), b...), nil
		}
		return decodeItems(d, types, def.Elem, int(def.Len), depth)
	case KindTuple:
		out := make([]Value, 0, len(def.Tuple))
		for _, item := range def.Tuple {
			v, err := decodeDynamic(d, types, item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case KindBitSequence:
		bits, err := d.DecodeCompactUint()
		if err != nil {
			return nil, err
		}
		store := 1
		if sd, ok := types.Lookup(def.Elem); ok && sd.Kind == KindPrimitive && sd.Primitive.Width() > 0 {
			store = sd.Primitive.Width()
		}
		words := (bits + uint64(store*8) - 1) / uint64(store*8)
		if words > uint64(d.Remaining()/store) {
			return nil, errors.Wrapf(ErrNotEnoughBytes, "%d bits", bits)
		}
		b, err := d.Read(int(words) * store)
		if err != nil {
			return nil, err
		}
		return BitSequence{Bits: bits, Bytes: append([]byte(nil), b...)}, nil
	}
	return nil, errors.Errorf("scale: type %d has unknown kind %d", id, def.Kind)
}

func decodeFields(d *Decoder, types *Types, fields []Field, depth int) (Composite, error) {
	out := make(Composite, 0, len(fields))
	for _, f := range fields {
		v, err := decodeDynamic(d, types, f.Type, depth+1)
		if err != nil {
			if f.Name != "" {
				return nil, errors.Wrap(err, f.Name)
			}
			return nil, err
		}
		out = append(out, NamedValue{Name: f.Name, Value: v})
	}
	return out, nil
}

func decodeItems(d *Decoder, types *Types, elem TypeID, n int, depth int) ([]Value, error) {
	if zeroSized(types, elem, depth) {
		if n > MaxZeroSizedItems {
			return nil, errors.Wrapf(ErrOverflow, "%d zero-sized items", n)
		}
	} else if n > d.Remaining() {
		return nil, errors.Wrapf(ErrNotEnoughBytes, "%d items", n)
	}
	out := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := decodeDynamic(d, types, elem, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// zeroSized reports whether a value of type id can encode to no bytes.
func zeroSized(types *Types, id TypeID, depth int) bool {
	n, ok := fixedSize(types, id, depth)
	return ok && n == 0
}

// FixedSize returns the encoded size shared by every value of type id.
// ok is false when the size depends on the value.
func FixedSize(types *Types, id TypeID) (n int, ok bool) {
	return fixedSize(types, id, 0)
}

func fixedSize(types *Types, id TypeID, depth int) (int, bool) {
	if depth > maxValueDepth {
		return 0, false
	}
	def, ok := types.Lookup(id)
	if !ok {
		return 0, false
	}
	switch def.Kind {
	case KindPrimitive:
		w := def.Primitive.Width()
		return w, w > 0
	case KindComposite:
		total := 0
		for _, f := range def.Fields {
			n, ok := fixedSize(types, f.Type, depth+1)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	case KindTuple:
		total := 0
		for _, t := range def.Tuple {
			n, ok := fixedSize(types, t, depth+1)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	case KindArray:
		if def.Len == 0 {
			return 0, true
		}
		n, ok := fixedSize(types, def.Elem, depth+1)
		if !ok || uint64(n)*uint64(def.Len) > maxFixedSize {
			return 0, false
		}
		return n * int(def.Len), true
	}
	return 0, false
}

func isU8(types *Types, id TypeID) bool {
	def, ok := types.Lookup(id)
	return ok && def.Kind == KindPrimitive && def.Primitive == U8
}

func decodePrimitive(d *Decoder, p Primitive) (Value, error) {
	switch p {
	case Bool:
		return d.DecodeBool()
	case Char:
		v, err := d.DecodeUint32()
		return rune(v), err
	case Str:
		return d.DecodeString()
	case U8:
		return d.DecodeUint8()
	case U16:
		return d.DecodeUint16()
	case U32:
		return d.DecodeUint32()
	case U64:
		return d.DecodeUint64()
	case U128Prim:
		return d.DecodeU128()
	case I8:
		v, err := d.DecodeUint8()
		return int8(v), err
	case I16:
		v, err := d.DecodeUint16()
		return int16(v), err
	case I32:
		v, err := d.DecodeUint32()
		return int32(v), err
	case I64:
		v, err := d.DecodeUint64()
		return int64(v), err
	case U256, I128, I256:
		le, err := d.Read(p.Width())
		if err != nil {
			return nil, err
		}
		be := make([]byte, len(le))
		for i := range le {
			be[len(le)-1-i] = le[i]
		}
		v := new(big.Int).SetBytes(be)
		if p != U256 && be[0]&0x80 != 0 {
			v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(be))))
		}
		return v, nil
	}
	return nil, errors.Errorf("scale: unknown primitive %d", p)
}

// decodeCompactDynamic unwraps single-field composites such as
// Compact<Perbill> down to the numeric primitive.
func decodeCompactDynamic(d *Decoder, types *Types, inner TypeID) (Value, error) {
	for i := 0; i < maxValueDepth; i++ {
		def, ok := types.Lookup(inner)
		if !ok {
			return nil, errors.Errorf("scale: unknown type %d", inner)
		}
		switch {
		case def.Kind == KindPrimitive:
			v, err := d.DecodeCompact()
			if err != nil {
				return nil, err
			}
			if def.Primitive == U128Prim {
				return U128FromBig(v)
			}
			if def.Primitive.Width() > 0 && def.Primitive.Width() <= 8 {
				if !v.IsUint64() || (def.Primitive.Width() < 8 && v.Uint64()>>(8*def.Primitive.Width()) != 0) {
					return nil, errors.Wrapf(ErrOverflow, "compact %s", v)
				}
				return v.Uint64(), nil
			}
			return v, nil
		case def.Kind == KindComposite && len(def.Fields) == 1:
			inner = def.Fields[0].Type
		case def.Kind == KindTuple && len(def.Tuple) == 1:
			inner = def.Tuple[0]
		case def.Kind == KindComposite && len(def.Fields) == 0, def.Kind == KindTuple && len(def.Tuple) == 0:
			return Composite{}, nil
		default:
			return nil, errors.Wrapf(ErrUnsupported, "compact of %s", def.Kind)
		}
	}
	return nil, errors.New("scale: compact wrapper nested too deeply")
}

// Plain converts a dynamic value into strings, maps and slices for
// display. Byte strings become 0x-prefixed hex and 128-bit or wider
// integers become decimal strings.
func Plain(v Value) any {
	switch x := v.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case U128:
		return x.String()
	case *big.Int:
		return x.String()
	case []Value:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Plain(item)
		}
		return out
	case Composite:
		return plainFields(x)
	case VariantValue:
		if len(x.Fields) == 0 {
			return x.Name
		}
		return map[string]any{x.Name: plainFields(x.Fields)}
	case BitSequence:
		return map[string]any{"bits": x.Bits, "bytes": "0x" + hex.EncodeToString(x.Bytes)}
	}
	return v
}

// plainFields renders named fields as an object and unnamed ones as a
// list, or as the single inner value for newtype wrappers.
func plainFields(c Composite) any {
	if len(c) == 0 {
		return nil
	}
	if c[0].Name == "" {
		if len(c) == 1 {
			return Plain(c[0].Value)
		}
		out := make([]any, len(c))
		for i, f := range c {
			out[i] = Plain(f.Value)
		}
		return out
	}
	out := make(map[string]any, len(c))
	for _, f := range c {
		out[f.Name] = Plain(f.Value)
	}
	return out
}
