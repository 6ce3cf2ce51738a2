/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package confile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	fpath := filepath.Join(t.TempDir(), DefaultProfile)
	require.NoError(t, os.WriteFile(fpath, []byte(body), configs.FileMode))
	return fpath
}

func TestParseTemplate(t *testing.T) {
	ws := filepath.Join(t.TempDir(), "ws")
	body := strings.Replace(TempleteProfile, `"/opt/picasso-client"`, `"`+ws+`"`, 1)
	c := NewConfigFile()
	require.NoError(t, c.Parse(writeProfile(t, body)))

	assert.Equal(t, ws, c.ReadWorkspace())
	assert.DirExists(t, ws)
	assert.Equal(t, uint16(4001), c.ReadServicePort())
	assert.Equal(t, 16, c.ReadCacheMB())
	assert.Equal(t, 256, c.ReadKeepBlocks())
	assert.Equal(t, uint64(64), c.ReadMortality())
	assert.Equal(t, 100, c.ReadPageSize())
	assert.Equal(t, uint16(49), c.ReadSS58Prefix())
	assert.Equal(t, int64(0), c.ReadTip().Int64())
	assert.Len(t, c.ReadRpcEndpoints(), 2)
	assert.Empty(t, c.ReadMnemonic())
}

func TestParseOverrides(t *testing.T) {
	ws := t.TempDir()
	c := NewConfigFile()
	require.NoError(t, c.Parse(writeProfile(t, `app:
  workspace: "`+ws+`"
chain:
  mnemonic: "//Alice"
  tip: "1500"
  mortality: 0
  pagesize: 7
  rpcs:
    - "127.0.0.1:9944"`)))

	assert.Equal(t, "//Alice", c.ReadMnemonic())
	assert.Equal(t, int64(1500), c.ReadTip().Int64())
	assert.Equal(t, uint64(0), c.ReadMortality())
	assert.Equal(t, 7, c.ReadPageSize())
	assert.Equal(t, []string{"ws://127.0.0.1:9944"}, c.ReadRpcEndpoints())
	assert.Equal(t, uint16(configs.DefaultServicePort), c.ReadServicePort())
	assert.Equal(t, configs.DefaultKeepBlocks, c.ReadKeepBlocks())
}

func TestParseRejects(t *testing.T) {
	ws := t.TempDir()
	for name, body := range map[string]string{
		"port":      "app:\n  workspace: \"" + ws + "\"\n  port: 80\n",
		"tip":       "app:\n  workspace: \"" + ws + "\"\nchain:\n  tip: \"ten\"\n",
		"mortality": "app:\n  workspace: \"" + ws + "\"\nchain:\n  mortality: 2\n",
		"keep":      "app:\n  workspace: \"" + ws + "\"\n  keepblocks: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			c := NewConfigFile()
			assert.Error(t, c.Parse(writeProfile(t, body)))
		})
	}
	assert.Error(t, NewConfigFile().Parse(ws))
}
