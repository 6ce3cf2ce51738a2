/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/pkg/errors"
)

// Decode parses the raw state_getMetadata response.
func Decode(b []byte) (*Registry, error) {
	var meta types.Metadata
	if err := codec.Decode(b, &meta); err != nil {
		return nil, errors.Wrap(err, "[Decode metadata]")
	}
	return FromMetadata(&meta)
}

// FromMetadata builds a registry from parsed V14 metadata.
func FromMetadata(meta *types.Metadata) (*Registry, error) {
	if meta.Version != 14 {
		return nil, errors.Errorf("unsupported metadata version %d", meta.Version)
	}
	m := &meta.AsMetadataV14

	reg := NewRegistry(scale.NewTypes())
	for _, pt := range m.Lookup.Types {
		def, err := convertType(pt.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "type %d", lookupID(pt.ID))
		}
		reg.Types.Set(lookupID(pt.ID), def)
	}

	for _, pm := range m.Pallets {
		p := reg.AddPallet(string(pm.Name), uint8(pm.Index))
		if pm.HasCalls {
			if err := reg.SetCalls(p, lookupID(pm.Calls.Type)); err != nil {
				return nil, err
			}
		}
		if pm.HasEvents {
			if err := reg.SetEvents(p, lookupID(pm.Events.Type)); err != nil {
				return nil, err
			}
		}
		if pm.HasErrors {
			if err := reg.SetErrors(p, lookupID(pm.Errors.Type)); err != nil {
				return nil, err
			}
		}
		if pm.HasStorage {
			p.StoragePrefix = string(pm.Storage.Prefix)
			for _, item := range pm.Storage.Items {
				entry, err := convertStorage(reg.Types, item)
				if err != nil {
					return nil, errors.Wrapf(err, "storage %s.%s", pm.Name, item.Name)
				}
				reg.AddStorage(p, entry)
			}
		}
		for _, c := range pm.Constants {
			reg.AddConstant(p, &Constant{
				Name:  string(c.Name),
				Type:  lookupID(c.Type),
				Value: []byte(c.Value),
			})
		}
	}

	reg.Extrinsic.Version = uint8(m.Extrinsic.Version)
	for _, se := range m.Extrinsic.SignedExtensions {
		reg.Extrinsic.SignedExtensions = append(reg.Extrinsic.SignedExtensions, SignedExtension{
			Identifier:       string(se.Identifier),
			Type:             lookupID(se.Type),
			AdditionalSigned: lookupID(se.AdditionalSigned),
		})
	}
	return reg, nil
}

func lookupID(id types.Si1LookupTypeID) scale.TypeID {
	return scale.TypeID(id.Int64())
}

func convertFields(fs []types.Si1Field) []scale.Field {
	out := make([]scale.Field, 0, len(fs))
	for _, f := range fs {
		var name string
		if f.HasName {
			name = string(f.Name)
		}
		out = append(out, scale.Field{Name: name, Type: lookupID(f.Type)})
	}
	return out
}

func convertType(t types.Si1Type) (scale.TypeDef, error) {
	def := scale.TypeDef{}
	for _, seg := range t.Path {
		def.Path = append(def.Path, string(seg))
	}
	d := t.Def
	switch {
	case d.IsComposite:
		def.Kind = scale.KindComposite
		def.Fields = convertFields(d.Composite.Fields)
	case d.IsVariant:
		def.Kind = scale.KindVariant
		for _, v := range d.Variant.Variants {
			def.Variants = append(def.Variants, scale.Variant{
				Name:   string(v.Name),
				Index:  uint8(v.Index),
				Fields: convertFields(v.Fields),
			})
		}
	case d.IsSequence:
		def.Kind = scale.KindSequence
		def.Elem = lookupID(d.Sequence.Type)
	case d.IsArray:
		def.Kind = scale.KindArray
		def.Len = uint32(d.Array.Len)
		def.Elem = lookupID(d.Array.Type)
	case d.IsTuple:
		def.Kind = scale.KindTuple
		for _, item := range d.Tuple {
			def.Tuple = append(def.Tuple, lookupID(item))
		}
	case d.IsPrimitive:
		def.Kind = scale.KindPrimitive
		def.Primitive = scale.Primitive(d.Primitive.Si0TypeDefPrimitive)
	case d.IsCompact:
		def.Kind = scale.KindCompact
		def.Elem = lookupID(d.Compact.Type)
	case d.IsBitSequence:
		def.Kind = scale.KindBitSequence
		def.Elem = lookupID(d.BitSequence.BitStoreType)
		def.BitOrder = lookupID(d.BitSequence.BitOrderType)
	default:
		return def, errors.New("unsupported type definition")
	}
	return def, nil
}

func convertHasher(h types.StorageHasherV10) (hasher.Hasher, error) {
	switch {
	case h.IsBlake2_128:
		return hasher.Blake2_128, nil
	case h.IsBlake2_256:
		return hasher.Blake2_256, nil
	case h.IsBlake2_128Concat:
		return hasher.Blake2_128Concat, nil
	case h.IsTwox128:
		return hasher.Twox128, nil
	case h.IsTwox256:
		return hasher.Twox256, nil
	case h.IsTwox64Concat:
		return hasher.Twox64Concat, nil
	case h.IsIdentity:
		return hasher.Identity, nil
	}
	return 0, errors.New("unknown hasher")
}

func convertStorage(ts *scale.Types, item types.StorageEntryMetadataV14) (*StorageEntry, error) {
	entry := &StorageEntry{
		Name:     string(item.Name),
		Modifier: Default,
		Default:  []byte(item.Fallback),
	}
	if item.Modifier.IsOptional {
		entry.Modifier = Optional
	}
	if item.Type.IsPlainType {
		entry.Value = lookupID(item.Type.AsPlainType)
		return entry, nil
	}
	m := item.Type.AsMap
	for _, h := range m.Hashers {
		hs, err := convertHasher(h)
		if err != nil {
			return nil, err
		}
		entry.Hashers = append(entry.Hashers, hs)
	}
	entry.Value = lookupID(m.Value)
	key := lookupID(m.Key)
	if len(entry.Hashers) == 1 {
		entry.Keys = []scale.TypeID{key}
		return entry, nil
	}
	kd, ok := ts.Lookup(key)
	if !ok || kd.Kind != scale.KindTuple || len(kd.Tuple) != len(entry.Hashers) {
		return nil, errors.Errorf("key type %d does not split into %d parts", key, len(entry.Hashers))
	}
	entry.Keys = append(entry.Keys, kd.Tuple...)
	return entry, nil
}
