/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package scale

import "github.com/pkg/errors"

var (
	// ErrNotEnoughBytes is returned when the input ends before the
	// declared shape is complete.
	ErrNotEnoughBytes = errors.New("scale: not enough bytes")
	// ErrInvalidDiscriminant is returned for an option, bool, or tagged
	// union whose leading byte does not select a declared variant.
	ErrInvalidDiscriminant = errors.New("scale: invalid discriminant")
	// ErrOverflow is returned when a decoded integer does not fit the
	// destination width.
	ErrOverflow = errors.New("scale: overflow")
	// ErrUnsupported is returned for Go values that have no SCALE form.
	ErrUnsupported = errors.New("scale: unsupported type")
)
