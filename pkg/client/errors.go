/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"fmt"

	"github.com/ComposableFi/composable-sub002/pkg/extrinsic"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/pkg/errors"
)

// Kind classifies every error returned by the client.
type Kind uint8

const (
	KindIncompatibleMetadata Kind = iota + 1
	KindCodec
	KindTransport
	KindSubmissionRejected
	KindSigner
)

// Sentinels for errors.Is; each matches every Error of its kind.
var (
	ErrIncompatibleMetadata = errors.New("incompatible metadata")
	ErrCodec                = errors.New("codec error")
	ErrTransport            = errors.New("transport error")
	ErrSubmissionRejected   = errors.New("submission rejected")
	ErrSigner               = errors.New("signer error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindIncompatibleMetadata:
		return ErrIncompatibleMetadata
	case KindCodec:
		return ErrCodec
	case KindTransport:
		return ErrTransport
	case KindSubmissionRejected:
		return ErrSubmissionRejected
	case KindSigner:
		return ErrSigner
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

// Error is the single error type of the client.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, or 0 when err did not come from the
// client.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IncompatibleMetadataError describes a failed fingerprint check.
type IncompatibleMetadataError struct {
	Item     metadata.ItemKind
	Pallet   string
	Name     string
	Expected metadata.Fingerprint
	Actual   metadata.Fingerprint
	// Missing is set when the node has no such item at all.
	Missing bool
}

func (e *IncompatibleMetadataError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s %s.%s not found in node metadata", e.Item, e.Pallet, e.Name)
	}
	return fmt.Sprintf("%s %s.%s fingerprint %s, bindings expect %s", e.Item, e.Pallet, e.Name, e.Actual, e.Expected)
}

// RejectedError carries the terminal status of a transaction the node
// did not include.
type RejectedError struct {
	Status extrinsic.Status
}

func (e *RejectedError) Error() string {
	if e.Status.Reason != "" {
		return fmt.Sprintf("transaction %s: %s", e.Status.Kind, e.Status.Reason)
	}
	return fmt.Sprintf("transaction %s", e.Status.Kind)
}
