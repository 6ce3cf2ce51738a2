/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package primitives

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashText(t *testing.T) {
	s := "0x" + strings.Repeat("ab", 32)
	h, err := HexToHash(s)
	require.NoError(t, err)
	assert.Equal(t, s, h.String())
	assert.False(t, h.IsZero())

	b, err := json.Marshal(h)
	require.NoError(t, err)
	var back Hash
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, h, back)

	_, err = HexToHash("0x1234")
	assert.Error(t, err)
	_, err = HexToHash("zz")
	assert.Error(t, err)
}

func TestNewAccountID(t *testing.T) {
	_, err := NewAccountID(make([]byte, 31))
	assert.Error(t, err)
	a, err := NewAccountID(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, AccountID{}, a)
}
