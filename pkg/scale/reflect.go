/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import (
	"reflect"

	"github.com/pkg/errors"
)

var (
	encodeableType = reflect.TypeOf((*Encodeable)(nil)).Elem()
	decodeableType = reflect.TypeOf((*Decodeable)(nil)).Elem()
	u128Type       = reflect.TypeOf(U128{})
)

// Marshal returns the SCALE encoding of v.
//
// Supported: bool, fixed-width integers, strings, byte slices and arrays,
// slices, arrays, structs (fields in declaration order) and any type that
// implements Encodeable. A struct field tagged `scale:"compact"` is
// written in compact form; `scale:"-"` skips the field.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Unmarshal decodes b into the value pointed to by v and returns the
// number of bytes consumed. Trailing bytes are not an error.
func Unmarshal(b []byte, v any) (int, error) {
	d := NewDecoder(b)
	err := d.Decode(v)
	return d.Offset(), err
}

// UnmarshalExact is Unmarshal that rejects trailing input.
func UnmarshalExact(b []byte, v any) error {
	n, err := Unmarshal(b, v)
	if err != nil {
		return err
	}
	if n != len(b) {
		return errors.Errorf("scale: %d trailing bytes", len(b)-n)
	}
	return nil
}

func encodeValue(e *Encoder, v any) error {
	if v == nil {
		return errors.Wrap(ErrUnsupported, "nil")
	}
	if enc, ok := v.(Encodeable); ok {
		return enc.EncodeTo(e)
	}
	return encodeReflect(e, reflect.ValueOf(v), false)
}

func encodeReflect(e *Encoder, rv reflect.Value, compact bool) error {
	t := rv.Type()
	if compact {
		return encodeCompactReflect(e, rv)
	}
	if t.Implements(encodeableType) {
		if t.Kind() == reflect.Pointer && rv.IsNil() {
			return errors.Wrapf(ErrUnsupported, "nil %v", t)
		}
		return rv.Interface().(Encodeable).EncodeTo(e)
	}
	if rv.CanAddr() && reflect.PointerTo(t).Implements(encodeableType) {
		return rv.Addr().Interface().(Encodeable).EncodeTo(e)
	}
	switch t.Kind() {
	case reflect.Bool:
		e.EncodeBool(rv.Bool())
	case reflect.Uint8:
		e.EncodeUint8(uint8(rv.Uint()))
	case reflect.Uint16:
		e.EncodeUint16(uint16(rv.Uint()))
	case reflect.Uint32:
		e.EncodeUint32(uint32(rv.Uint()))
	case reflect.Uint64:
		e.EncodeUint64(rv.Uint())
	case reflect.Int8:
		e.EncodeUint8(uint8(rv.Int()))
	case reflect.Int16:
		e.EncodeUint16(uint16(rv.Int()))
	case reflect.Int32:
		e.EncodeUint32(uint32(rv.Int()))
	case reflect.Int64:
		e.EncodeUint64(uint64(rv.Int()))
	case reflect.String:
		e.EncodeString(rv.String())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			e.EncodeBytes(rv.Bytes())
			return nil
		}
		e.EncodeCompactUint(uint64(rv.Len()))
		for i := 0; i < rv.Len(); i++ {
			if err := encodeReflect(e, rv.Index(i), false); err != nil {
				return err
			}
		}
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				e.PushByte(uint8(rv.Index(i).Uint()))
			}
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := encodeReflect(e, rv.Index(i), false); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := f.Tag.Get("scale")
			if !f.IsExported() || tag == "-" {
				continue
			}
			if err := encodeReflect(e, rv.Field(i), tag == "compact"); err != nil {
				return errors.Wrapf(err, "%s.%s", t.Name(), f.Name)
			}
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return errors.Wrapf(ErrUnsupported, "nil %v", t)
		}
		return encodeReflect(e, rv.Elem(), false)
	default:
		return errors.Wrapf(ErrUnsupported, "%v", t)
	}
	return nil
}

func encodeCompactReflect(e *Encoder, rv reflect.Value) error {
	switch {
	case rv.Type() == u128Type:
		return e.EncodeCompact(rv.Interface().(U128).Big())
	case rv.Kind() >= reflect.Uint && rv.Kind() <= reflect.Uint64:
		e.EncodeCompactUint(rv.Uint())
		return nil
	}
	return errors.Wrapf(ErrUnsupported, "compact %v", rv.Type())
}

func decodeValue(d *Decoder, v any) error {
	if dec, ok := v.(Decodeable); ok {
		return dec.DecodeFrom(d)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(ErrUnsupported, "decode into %T", v)
	}
	return decodeReflect(d, rv.Elem(), false)
}

func decodeReflect(d *Decoder, rv reflect.Value, compact bool) error {
	t := rv.Type()
	if compact {
		return decodeCompactReflect(d, rv)
	}
	if reflect.PointerTo(t).Implements(decodeableType) {
		return rv.Addr().Interface().(Decodeable).DecodeFrom(d)
	}
	switch t.Kind() {
	case reflect.Bool:
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
	case reflect.Uint8, reflect.Int8:
		b, err := d.DecodeUint8()
		if err != nil {
			return err
		}
		setInt(rv, uint64(b), 8)
	case reflect.Uint16, reflect.Int16:
		b, err := d.DecodeUint16()
		if err != nil {
			return err
		}
		setInt(rv, uint64(b), 16)
	case reflect.Uint32, reflect.Int32:
		b, err := d.DecodeUint32()
		if err != nil {
			return err
		}
		setInt(rv, uint64(b), 32)
	case reflect.Uint64, reflect.Int64:
		b, err := d.DecodeUint64()
		if err != nil {
			return err
		}
		setInt(rv, b, 64)
	case reflect.String:
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		rv.SetString(s)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, err := d.DecodeBytes()
			if err != nil {
				return err
			}
			rv.SetBytes(b)
			return nil
		}
		minItem := 1
		if t.Elem().Size() == 0 {
			minItem = 0
		}
		n, err := d.DecodeLength(minItem)
		if err != nil {
			return err
		}
		s := reflect.MakeSlice(t, n, n)
		for i := 0; i < n; i++ {
			if err := decodeReflect(d, s.Index(i), false); err != nil {
				return err
			}
		}
		rv.Set(s)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b, err := d.Read(rv.Len())
			if err != nil {
				return err
			}
			reflect.Copy(rv, reflect.ValueOf(b))
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := decodeReflect(d, rv.Index(i), false); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := f.Tag.Get("scale")
			if !f.IsExported() || tag == "-" {
				continue
			}
			if err := decodeReflect(d, rv.Field(i), tag == "compact"); err != nil {
				return errors.Wrapf(err, "%s.%s", t.Name(), f.Name)
			}
		}
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(t.Elem()))
		}
		return decodeReflect(d, rv.Elem(), false)
	default:
		return errors.Wrapf(ErrUnsupported, "%v", t)
	}
	return nil
}

func setInt(rv reflect.Value, v uint64, bits int) {
	if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64 {
		// sign-extend from the wire width
		shift := 64 - bits
		rv.SetInt(int64(v<<shift) >> shift)
		return
	}
	rv.SetUint(v)
}

func decodeCompactReflect(d *Decoder, rv reflect.Value) error {
	v, err := d.DecodeCompact()
	if err != nil {
		return err
	}
	switch {
	case rv.Type() == u128Type:
		u, err := U128FromBig(v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(u))
		return nil
	case rv.Kind() >= reflect.Uint && rv.Kind() <= reflect.Uint64:
		if !v.IsUint64() || rv.OverflowUint(v.Uint64()) {
			return errors.Wrapf(ErrOverflow, "compact %s into %v", v, rv.Type())
		}
		rv.SetUint(v.Uint64())
		return nil
	}
	return errors.Wrapf(ErrUnsupported, "compact %v", rv.Type())
}
