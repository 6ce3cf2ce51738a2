/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package extrinsic

import (
	"math/bits"

	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/pkg/errors"
)

const (
	minPeriod = 4
	maxPeriod = 1 << 16
)

// Era is the validity window of a transaction. The zero value is
// immortal.
type Era struct {
	Period uint64
	Phase  uint64
}

func Immortal() Era {
	return Era{}
}

// Mortal builds an era valid for about period blocks starting at the
// block numbered current. period is rounded up to a power of two in
// [4, 65536].
func Mortal(period, current uint64) Era {
	p := uint64(minPeriod)
	for p < period && p < maxPeriod {
		p <<= 1
	}
	q := quantizeFactor(p)
	phase := current % p / q * q
	return Era{Period: p, Phase: phase}
}

func (e Era) IsImmortal() bool {
	return e.Period == 0
}

// Birth is the first block of the era that contains current. Its hash
// is signed as the checkpoint.
func (e Era) Birth(current uint64) uint64 {
	if e.IsImmortal() {
		return 0
	}
	n := current
	if n < e.Phase {
		n = e.Phase
	}
	return (n-e.Phase)/e.Period*e.Period + e.Phase
}

// Death is the first block at which the transaction is no longer valid.
func (e Era) Death(current uint64) uint64 {
	if e.IsImmortal() {
		return ^uint64(0)
	}
	return e.Birth(current) + e.Period
}

func quantizeFactor(period uint64) uint64 {
	if q := period >> 12; q > 1 {
		return q
	}
	return 1
}

func (e Era) EncodeTo(enc *scale.Encoder) error {
	if e.IsImmortal() {
		enc.PushByte(0)
		return nil
	}
	if e.Period < minPeriod || e.Period > maxPeriod || bits.OnesCount64(e.Period) != 1 || e.Phase >= e.Period {
		return errors.Errorf("invalid era period %d phase %d", e.Period, e.Phase)
	}
	low := uint64(bits.TrailingZeros64(e.Period)) - 1
	if low < 1 {
		low = 1
	}
	if low > 15 {
		low = 15
	}
	enc.EncodeUint16(uint16(low | (e.Phase/quantizeFactor(e.Period))<<4))
	return nil
}

func (e *Era) DecodeFrom(d *scale.Decoder) error {
	first, err := d.ReadByte()
	if err != nil {
		return err
	}
	if first == 0 {
		*e = Era{}
		return nil
	}
	second, err := d.ReadByte()
	if err != nil {
		return err
	}
	v := uint64(first) | uint64(second)<<8
	period := uint64(2) << (v % 16)
	phase := (v >> 4) * quantizeFactor(period)
	if period < minPeriod || phase >= period {
		return errors.Wrapf(scale.ErrInvalidDiscriminant, "era %#04x", v)
	}
	*e = Era{Period: period, Phase: phase}
	return nil
}
