/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/pkg/errors"
)

// CompatEntry is one line of a compatibility report.
type CompatEntry struct {
	Kind       metadata.ItemKind `json:"-"`
	Item       string            `json:"item"`
	Pallet     string            `json:"pallet"`
	Name       string            `json:"name"`
	Expected   string            `json:"expected"`
	Actual     string            `json:"actual,omitempty"`
	Missing    bool              `json:"missing,omitempty"`
	Compatible bool              `json:"compatible"`
}

// Compat checks every descriptor against reg.
func Compat(reg *metadata.Registry, ds ...Descriptor) []CompatEntry {
	out := make([]CompatEntry, 0, len(ds))
	for _, d := range ds {
		e := CompatEntry{
			Kind:     d.Kind(),
			Item:     d.Kind().String(),
			Pallet:   d.Pallet(),
			Name:     d.Name(),
			Expected: d.Expected().String(),
		}
		live, err := d.Live(reg)
		switch {
		case errors.Is(err, metadata.ErrNotFound):
			e.Missing = true
		case err == nil:
			e.Actual = live.String()
			e.Compatible = live == d.Expected()
		}
		out = append(out, e)
	}
	return out
}

// SystemDescriptors lists the items the client itself relies on.
func SystemDescriptors() []Descriptor {
	return []Descriptor{
		SystemNumber, SystemAccount, SystemBlockHash, SystemEvents,
		SystemVersion, SystemExtrinsicSuccess, SystemExtrinsicFailed,
	}
}
