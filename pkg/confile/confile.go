/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package confile

import (
	"math/big"
	"os"
	"path"
	"strings"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const DefaultProfile = "conf.yaml"
const TempleteProfile = `app:
  # workspace, holds the cache and the logs
  workspace: "/opt/picasso-client"
  # gateway port
  port: 4001
  # leveldb cache size, the unit is MiB
  cachemb: 16
  # blocks whose pinned reads stay cached while serving, 0 keeps all
  keepblocks: 256

chain:
  # signature account mnemonic, prompted for when empty
  mnemonic: ""
  # tip paid with every transaction, in the smallest unit
  tip: "0"
  # mortal era length in blocks, 0 is immortal
  mortality: 64
  # storage iteration page size
  pagesize: 100
  # ss58 network prefix
  ss58: 49
  # rpc address list, the first reachable one is used
  rpcs:
    - "wss://picasso-rpc.composable.finance"
    - "wss://rpc.composable.finance"`

type Confiler interface {
	Parse(fpath string) error
	ReadRpcEndpoints() []string
	ReadMnemonic() string
	ReadTip() *big.Int
	ReadMortality() uint64
	ReadPageSize() int
	ReadSS58Prefix() uint16
	ReadWorkspace() string
	ReadServicePort() uint16
	ReadCacheMB() int
	ReadKeepBlocks() int
}

type App struct {
	Workspace  string `name:"workspace" toml:"workspace" yaml:"workspace"`
	Port       uint16 `name:"port" toml:"port" yaml:"port"`
	CacheMB    int    `name:"cachemb" toml:"cachemb" yaml:"cachemb" mapstructure:"cachemb"`
	KeepBlocks int    `name:"keepblocks" toml:"keepblocks" yaml:"keepblocks" mapstructure:"keepblocks"`
}

type Chain struct {
	Mnemonic  string   `name:"mnemonic" toml:"mnemonic" yaml:"mnemonic"`
	Tip       string   `name:"tip" toml:"tip" yaml:"tip"`
	Mortality uint64   `name:"mortality" toml:"mortality" yaml:"mortality"`
	PageSize  int      `name:"pagesize" toml:"pagesize" yaml:"pagesize" mapstructure:"pagesize"`
	SS58      uint16   `name:"ss58" toml:"ss58" yaml:"ss58"`
	Rpcs      []string `name:"rpcs" toml:"rpcs" yaml:"rpcs"`
}

type Confile struct {
	App   `yaml:"app"`
	Chain `yaml:"chain"`
}

var _ Confiler = (*Confile)(nil)

// NewConfigFile returns a profile holding the defaults.
func NewConfigFile() *Confile {
	return &Confile{
		App: App{
			Workspace:  configs.DefaultWorkspace,
			Port:       configs.DefaultServicePort,
			CacheMB:    configs.DefaultCacheMB,
			KeepBlocks: configs.DefaultKeepBlocks,
		},
		Chain: Chain{
			Tip:       "0",
			Mortality: configs.DefaultMortality,
			PageSize:  configs.DefaultPageSize,
			SS58:      configs.DefaultSS58Prefix,
			Rpcs:      []string{configs.DefaultRpcAddr1, configs.DefaultRpcAddr2},
		},
	}
}

func (c *Confile) Parse(fpath string) error {
	fstat, err := os.Stat(fpath)
	if err != nil {
		return err
	}
	if fstat.IsDir() {
		return errors.Errorf("The '%v' is not a file", fpath)
	}
	v := viper.New()
	v.SetConfigFile(fpath)
	v.SetConfigType(path.Ext(fpath)[1:])

	err = v.ReadInConfig()
	if err != nil {
		return errors.Errorf("[ReadInConfig] %v", err)
	}
	err = v.Unmarshal(c)
	if err != nil {
		return errors.Errorf("[Unmarshal] %v", err)
	}

	if c.Mnemonic != "" {
		if err = c.SetMnemonic(c.Mnemonic); err != nil {
			return errors.Errorf("invalid mnemonic: %v", err)
		}
	}
	if err = c.SetRpcAddr(c.Rpcs); err != nil {
		return err
	}
	if c.Port != 0 {
		if err = c.SetServicePort(c.Port); err != nil {
			return err
		}
	}
	if c.Tip == "" {
		c.Tip = "0"
	}
	if _, ok := new(big.Int).SetString(c.Tip, 10); !ok {
		return errors.Errorf("invalid tip: %q", c.Tip)
	}
	if c.Mortality != 0 && (c.Mortality < 4 || c.Mortality > 65536) {
		return errors.Errorf("mortality %d outside [4, 65536]", c.Mortality)
	}
	if c.PageSize <= 0 {
		c.PageSize = configs.DefaultPageSize
	}
	if c.CacheMB <= 0 {
		c.CacheMB = configs.DefaultCacheMB
	}
	if c.KeepBlocks < 0 {
		return errors.Errorf("keepblocks %d is negative", c.KeepBlocks)
	}
	if c.SS58 == 0 {
		c.SS58 = configs.DefaultSS58Prefix
	}
	if c.Workspace == "" {
		c.Workspace = configs.DefaultWorkspace
	}
	return c.SetWorkspace(c.Workspace)
}

// SetRpcAddr normalizes bare host names to websocket endpoints.
func (c *Confile) SetRpcAddr(rpc []string) error {
	if len(rpc) == 0 {
		return errors.New("cannot have empty rpc addresses")
	}
	out := make([]string, 0, len(rpc))
	for _, addr := range rpc {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if !strings.Contains(addr, "://") {
			addr = "ws://" + addr
		}
		out = append(out, addr)
	}
	if len(out) == 0 {
		return errors.New("cannot have empty rpc addresses")
	}
	c.Rpcs = out
	return nil
}

func (c *Confile) SetServicePort(port uint16) error {
	if port < 1024 {
		return errors.Errorf("Prohibit the use of system reserved port: %v", port)
	}
	c.Port = port
	return nil
}

func (c *Confile) SetWorkspace(workspace string) error {
	fstat, err := os.Stat(workspace)
	if err != nil {
		err = os.MkdirAll(workspace, configs.DirMode)
		if err != nil {
			return err
		}
	} else {
		if !fstat.IsDir() {
			return errors.Errorf("%s is not a directory", workspace)
		}
	}
	c.Workspace = workspace
	return nil
}

func (c *Confile) SetMnemonic(mnemonic string) error {
	_, err := signature.KeyringPairFromSecret(mnemonic, c.SS58)
	if err != nil {
		return err
	}
	c.Mnemonic = mnemonic
	return nil
}

/////////////////////////////////////////////

func (c *Confile) ReadRpcEndpoints() []string {
	return c.Rpcs
}

func (c *Confile) ReadMnemonic() string {
	return c.Mnemonic
}

func (c *Confile) ReadTip() *big.Int {
	tip, ok := new(big.Int).SetString(c.Tip, 10)
	if !ok {
		return new(big.Int)
	}
	return tip
}

func (c *Confile) ReadMortality() uint64 {
	return c.Mortality
}

func (c *Confile) ReadPageSize() int {
	return c.PageSize
}

func (c *Confile) ReadSS58Prefix() uint16 {
	return c.SS58
}

func (c *Confile) ReadWorkspace() string {
	return c.Workspace
}

func (c *Confile) ReadServicePort() uint16 {
	return c.Port
}

func (c *Confile) ReadCacheMB() int {
	return c.CacheMB
}

func (c *Confile) ReadKeepBlocks() int {
	return c.KeepBlocks
}
