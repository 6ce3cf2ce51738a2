/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package metadata holds a node's self-description: pallets, their
// calls, storage entries, constants and events, plus the portable type
// registry they reference.
package metadata

import (
	"sort"
	"sync"

	"github.com/ComposableFi/composable-sub002/pkg/hasher"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

// ErrNotFound is wrapped by every failed lookup.
var ErrNotFound = errors.New("not found in metadata")

type Modifier uint8

const (
	Optional Modifier = iota
	Default
)

type Call struct {
	Name  string
	Index uint8
	Args  []scale.Field
}

type Event struct {
	Name   string
	Index  uint8
	Fields []scale.Field
}

type Constant struct {
	Name  string
	Type  scale.TypeID
	Value []byte
}

// StorageEntry is a plain value when Hashers is empty, otherwise a map
// with one key type per hasher.
type StorageEntry struct {
	Name     string
	Modifier Modifier
	Hashers  []hasher.Hasher
	Keys     []scale.TypeID
	Value    scale.TypeID
	Default  []byte
}

func (s *StorageEntry) IsMap() bool {
	return len(s.Hashers) > 0
}

type Pallet struct {
	Name          string
	Index         uint8
	StoragePrefix string

	calls     []*Call
	events    []*Event
	errors    map[uint8]string
	storage   map[string]*StorageEntry
	constants map[string]*Constant
}

func (p *Pallet) Calls() []*Call {
	return p.calls
}

func (p *Pallet) Events() []*Event {
	return p.events
}

// StorageEntries lists the pallet's entries by name.
func (p *Pallet) StorageEntries() []*StorageEntry {
	out := make([]*StorageEntry, 0, len(p.storage))
	for _, s := range p.storage {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Constants lists the pallet's constants by name.
func (p *Pallet) Constants() []*Constant {
	out := make([]*Constant, 0, len(p.constants))
	for _, c := range p.constants {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SignedExtension is one entry of the runtime's declared extension list.
type SignedExtension struct {
	Identifier       string
	Type             scale.TypeID
	AdditionalSigned scale.TypeID
}

type ExtrinsicInfo struct {
	Version          uint8
	SignedExtensions []SignedExtension
}

// Registry is loaded once per client and read concurrently afterwards.
type Registry struct {
	Types     *scale.Types
	Extrinsic ExtrinsicInfo

	pallets []*Pallet
	byName  map[string]*Pallet
	byIndex map[uint8]*Pallet

	fpLock sync.RWMutex
	fp     map[itemKey]Fingerprint
}

type itemKey struct {
	kind   ItemKind
	pallet string
	name   string
}

func NewRegistry(types *scale.Types) *Registry {
	if types == nil {
		types = scale.NewTypes()
	}
	return &Registry{
		Types:   types,
		byName:  make(map[string]*Pallet),
		byIndex: make(map[uint8]*Pallet),
		fp:      make(map[itemKey]Fingerprint),
	}
}

// AddPallet registers a pallet. The storage prefix defaults to the name.
func (r *Registry) AddPallet(name string, index uint8) *Pallet {
	p := &Pallet{
		Name:          name,
		Index:         index,
		StoragePrefix: name,
		errors:        make(map[uint8]string),
		storage:       make(map[string]*StorageEntry),
		constants:     make(map[string]*Constant),
	}
	r.pallets = append(r.pallets, p)
	r.byName[name] = p
	r.byIndex[index] = p
	return p
}

func (r *Registry) Pallets() []*Pallet {
	return r.pallets
}

// SetCalls derives the pallet's calls from its call enum.
func (r *Registry) SetCalls(p *Pallet, enum scale.TypeID) error {
	vs, err := r.variants(enum)
	if err != nil {
		return errors.Wrapf(err, "%s calls", p.Name)
	}
	p.calls = p.calls[:0]
	for _, v := range vs {
		p.calls = append(p.calls, &Call{Name: v.Name, Index: v.Index, Args: v.Fields})
	}
	return nil
}

// SetEvents derives the pallet's events from its event enum.
func (r *Registry) SetEvents(p *Pallet, enum scale.TypeID) error {
	vs, err := r.variants(enum)
	if err != nil {
		return errors.Wrapf(err, "%s events", p.Name)
	}
	p.events = p.events[:0]
	for _, v := range vs {
		p.events = append(p.events, &Event{Name: v.Name, Index: v.Index, Fields: v.Fields})
	}
	return nil
}

// SetErrors records the names of the pallet's error enum.
func (r *Registry) SetErrors(p *Pallet, enum scale.TypeID) error {
	vs, err := r.variants(enum)
	if err != nil {
		return errors.Wrapf(err, "%s errors", p.Name)
	}
	for _, v := range vs {
		p.errors[v.Index] = v.Name
	}
	return nil
}

func (r *Registry) AddStorage(p *Pallet, entry *StorageEntry) {
	p.storage[entry.Name] = entry
}

func (r *Registry) AddConstant(p *Pallet, c *Constant) {
	p.constants[c.Name] = c
}

func (r *Registry) variants(id scale.TypeID) ([]scale.Variant, error) {
	def, ok := r.Types.Lookup(id)
	if !ok {
		return nil, errors.Errorf("type %d missing", id)
	}
	if def.Kind != scale.KindVariant {
		return nil, errors.Errorf("type %d is %s, want variant", id, def.Kind)
	}
	return def.Variants, nil
}

func (r *Registry) Pallet(name string) (*Pallet, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "pallet %s", name)
	}
	return p, nil
}

func (r *Registry) PalletByIndex(index uint8) (*Pallet, error) {
	p, ok := r.byIndex[index]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "pallet index %d", index)
	}
	return p, nil
}

func (r *Registry) Call(pallet, name string) (*Pallet, *Call, error) {
	p, err := r.Pallet(pallet)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range p.calls {
		if c.Name == name {
			return p, c, nil
		}
	}
	return nil, nil, errors.Wrapf(ErrNotFound, "call %s.%s", pallet, name)
}

func (r *Registry) Storage(pallet, name string) (*Pallet, *StorageEntry, error) {
	p, err := r.Pallet(pallet)
	if err != nil {
		return nil, nil, err
	}
	s, ok := p.storage[name]
	if !ok {
		return nil, nil, errors.Wrapf(ErrNotFound, "storage %s.%s", pallet, name)
	}
	return p, s, nil
}

func (r *Registry) Constant(pallet, name string) (*Pallet, *Constant, error) {
	p, err := r.Pallet(pallet)
	if err != nil {
		return nil, nil, err
	}
	c, ok := p.constants[name]
	if !ok {
		return nil, nil, errors.Wrapf(ErrNotFound, "constant %s.%s", pallet, name)
	}
	return p, c, nil
}

func (r *Registry) Event(pallet, name string) (*Pallet, *Event, error) {
	p, err := r.Pallet(pallet)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range p.events {
		if e.Name == name {
			return p, e, nil
		}
	}
	return nil, nil, errors.Wrapf(ErrNotFound, "event %s.%s", pallet, name)
}

// EventByIndex resolves the two-level event discriminant.
func (r *Registry) EventByIndex(palletIndex, eventIndex uint8) (*Pallet, *Event, error) {
	p, err := r.PalletByIndex(palletIndex)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range p.events {
		if e.Index == eventIndex {
			return p, e, nil
		}
	}
	return nil, nil, errors.Wrapf(ErrNotFound, "event %d of pallet %s", eventIndex, p.Name)
}

// ModuleError names the error raised by a pallet, as carried in
// DispatchError::Module.
func (r *Registry) ModuleError(palletIndex, errorIndex uint8) (string, string, bool) {
	p, ok := r.byIndex[palletIndex]
	if !ok {
		return "", "", false
	}
	name, ok := p.errors[errorIndex]
	return p.Name, name, ok
}
