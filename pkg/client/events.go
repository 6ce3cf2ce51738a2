/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"fmt"

	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

type PhaseKind uint8

const (
	PhaseApplyExtrinsic PhaseKind = iota
	PhaseFinalization
	PhaseInitialization
)

// Phase is the block stage an event was emitted in. Index is set for
// PhaseApplyExtrinsic only.
type Phase struct {
	Kind  PhaseKind
	Index uint32
}

func ApplyExtrinsic(i uint32) Phase {
	return Phase{Kind: PhaseApplyExtrinsic, Index: i}
}

func (p Phase) String() string {
	switch p.Kind {
	case PhaseApplyExtrinsic:
		return fmt.Sprintf("ApplyExtrinsic(%d)", p.Index)
	case PhaseFinalization:
		return "Finalization"
	case PhaseInitialization:
		return "Initialization"
	}
	return "Unknown"
}

func (p Phase) EncodeTo(e *scale.Encoder) error {
	e.PushByte(byte(p.Kind))
	if p.Kind == PhaseApplyExtrinsic {
		e.EncodeUint32(p.Index)
	}
	return nil
}

func (p *Phase) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.ReadByte()
	if err != nil {
		return err
	}
	*p = Phase{Kind: PhaseKind(tag)}
	switch p.Kind {
	case PhaseApplyExtrinsic:
		p.Index, err = d.DecodeUint32()
		return err
	case PhaseFinalization, PhaseInitialization:
		return nil
	}
	return errors.Wrapf(scale.ErrInvalidDiscriminant, "phase %#x", tag)
}

// EventRecord is one decoded entry of System.Events.
type EventRecord struct {
	Phase       Phase
	Pallet      string
	Name        string
	PalletIndex uint8
	EventIndex  uint8
	// Fields is decoded through the node's type registry.
	Fields scale.Composite
	// Raw is the encoded field data, without the two discriminants.
	Raw    []byte
	Topics []primitives.Hash
}

func (r *EventRecord) String() string {
	return fmt.Sprintf("%s %s.%s", r.Phase, r.Pallet, r.Name)
}

// DecodeEvents decodes the value of System.Events with reg.
func DecodeEvents(reg *metadata.Registry, b []byte) ([]EventRecord, error) {
	d := scale.NewDecoder(b)
	n, err := d.DecodeLength(2)
	if err != nil {
		return nil, errors.Wrap(err, "[DecodeEvents] length")
	}
	out := make([]EventRecord, 0, n)
	for i := 0; i < n; i++ {
		var rec EventRecord
		if err := rec.Phase.DecodeFrom(d); err != nil {
			return nil, errors.Wrapf(err, "[DecodeEvents] record %d phase", i)
		}
		if rec.PalletIndex, err = d.ReadByte(); err != nil {
			return nil, errors.Wrapf(err, "[DecodeEvents] record %d", i)
		}
		if rec.EventIndex, err = d.ReadByte(); err != nil {
			return nil, errors.Wrapf(err, "[DecodeEvents] record %d", i)
		}
		p, ev, err := reg.EventByIndex(rec.PalletIndex, rec.EventIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "[DecodeEvents] record %d", i)
		}
		rec.Pallet, rec.Name = p.Name, ev.Name
		start := d.Offset()
		rec.Fields = make(scale.Composite, 0, len(ev.Fields))
		for _, f := range ev.Fields {
			v, err := scale.DecodeValue(d, reg.Types, f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "[DecodeEvents] %s.%s.%s", p.Name, ev.Name, f.Name)
			}
			rec.Fields = append(rec.Fields, scale.NamedValue{Name: f.Name, Value: v})
		}
		rec.Raw = b[start:d.Offset()]
		if err := d.Decode(&rec.Topics); err != nil {
			return nil, errors.Wrapf(err, "[DecodeEvents] record %d topics", i)
		}
		out = append(out, rec)
	}
	if d.Remaining() != 0 {
		return nil, errors.Errorf("[DecodeEvents] %d trailing bytes", d.Remaining())
	}
	return out, nil
}

// Events fetches and decodes the events of block at.
func (c *Client) Events(ctx context.Context, at *primitives.Hash) ([]EventRecord, error) {
	raw, err := FetchOrDefault(ctx, c, SystemEvents, at)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	recs, err := DecodeEvents(c.registry, raw)
	if err != nil {
		return nil, newError(KindCodec, "Events", err)
	}
	for i := range recs {
		c.log.Event("info", recs[i].String())
	}
	return recs, nil
}

// FilterPhase keeps the records emitted in phase p.
func FilterPhase(recs []EventRecord, p Phase) []EventRecord {
	var out []EventRecord
	for _, r := range recs {
		if r.Phase == p {
			out = append(out, r)
		}
	}
	return out
}

// As decodes rec as the event bound by e. ok is false when rec is a
// different event.
func As[E any](c *Client, e *Event[E], rec *EventRecord) (E, bool, error) {
	var v E
	if err := c.Check(e); err != nil {
		return v, false, err
	}
	if rec.Pallet != e.pallet || rec.Name != e.name {
		return v, false, nil
	}
	if err := scale.UnmarshalExact(rec.Raw, &v); err != nil {
		return v, false, newError(KindCodec, "As "+e.pallet+"."+e.name, err)
	}
	return v, true, nil
}

// Find decodes every record matching e.
func Find[E any](c *Client, e *Event[E], recs []EventRecord) ([]E, error) {
	if err := c.Check(e); err != nil {
		return nil, err
	}
	var out []E
	for i := range recs {
		v, ok, err := As(c, e, &recs[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

var dispatchErrorNames = []string{
	"Other", "CannotLookup", "BadOrigin", "Module", "ConsumerRemaining",
	"NoProviders", "TooManyConsumers", "Token", "Arithmetic", "Transactional",
	"Exhausted", "Corruption", "Unavailable",
}

var dispatchErrorDetails = map[uint8][]string{
	7: {"NoFunds", "WouldDie", "BelowMinimum", "CannotCreate", "UnknownAsset", "Frozen", "Unsupported"},
	8: {"Underflow", "Overflow", "DivisionByZero"},
	9: {"LimitReached", "NoLayer"},
}

// ModuleError is a pallet error raised by a dispatched call.
type ModuleError struct {
	Index uint8
	Error [4]byte
	// Pallet and Name are filled by Resolve.
	Pallet string
	Name   string
}

// DispatchError is the reason an included call failed. It is a value
// carried by TxResult, not a Go error.
type DispatchError struct {
	Kind   string
	Module *ModuleError
	// Detail names the inner variant of Token, Arithmetic and
	// Transactional errors.
	Detail string
}

func (e DispatchError) String() string {
	switch {
	case e.Module != nil && e.Module.Name != "":
		return fmt.Sprintf("Module(%s.%s)", e.Module.Pallet, e.Module.Name)
	case e.Module != nil:
		return fmt.Sprintf("Module(%d, %#x)", e.Module.Index, e.Module.Error[0])
	case e.Detail != "":
		return e.Kind + "(" + e.Detail + ")"
	}
	return e.Kind
}

func (e *DispatchError) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.ReadByte()
	if err != nil {
		return err
	}
	if int(tag) >= len(dispatchErrorNames) {
		return errors.Wrapf(scale.ErrInvalidDiscriminant, "dispatch error %#x", tag)
	}
	*e = DispatchError{Kind: dispatchErrorNames[tag]}
	switch tag {
	case 3:
		m := &ModuleError{}
		if m.Index, err = d.ReadByte(); err != nil {
			return err
		}
		b, err := d.Read(4)
		if err != nil {
			return err
		}
		copy(m.Error[:], b)
		e.Module = m
	case 7, 8, 9:
		inner, err := d.ReadByte()
		if err != nil {
			return err
		}
		names := dispatchErrorDetails[tag]
		if int(inner) >= len(names) {
			return errors.Wrapf(scale.ErrInvalidDiscriminant, "%s error %#x", e.Kind, inner)
		}
		e.Detail = names[inner]
	}
	return nil
}

// Resolve names a module error with reg.
func (e *DispatchError) Resolve(reg *metadata.Registry) {
	if e.Module == nil {
		return
	}
	if p, name, ok := reg.ModuleError(e.Module.Index, e.Module.Error[0]); ok {
		e.Module.Pallet, e.Module.Name = p, name
	}
}
