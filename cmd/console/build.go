/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/pkg/cache"
	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/confile"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/logger"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/signer"
	"github.com/ComposableFi/composable-sub002/pkg/transport"
	"github.com/howeyc/gopass"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// buildConfig reads the profile named by --config, or the default one
// when present, then applies the --rpc and --ws overrides.
func buildConfig(cmd *cobra.Command) (*confile.Confile, error) {
	cfg := confile.NewConfigFile()
	fpath, _ := cmd.Flags().GetString("config")
	if fpath != "" {
		if err := cfg.Parse(fpath); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(confile.DefaultProfile); err == nil {
		if err := cfg.Parse(confile.DefaultProfile); err != nil {
			return nil, err
		}
	}
	if rpcs, _ := cmd.Flags().GetStringSlice("rpc"); len(rpcs) > 0 {
		if err := cfg.SetRpcAddr(rpcs); err != nil {
			return nil, err
		}
	}
	if ws, _ := cmd.Flags().GetString("ws"); ws != "" {
		if err := cfg.SetWorkspace(ws); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// session is a connected client with its workspace resources.
type session struct {
	cfg     *confile.Confile
	cli     *client.Client
	rpc     string
	log     logger.Logger
	metrics *prometheus.Registry
	cache   *cache.LevelDB
}

func (s *session) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func openWorkspace(cfg *confile.Confile) (logger.Logger, *cache.LevelDB, error) {
	ws := cfg.ReadWorkspace()
	log, err := logger.WorkspaceLogs(filepath.Join(ws, configs.LogDir))
	if err != nil {
		return nil, nil, err
	}
	db, err := cache.NewCache(filepath.Join(ws, configs.DbDir), cfg.ReadCacheMB(), 0)
	if err != nil {
		return nil, nil, err
	}
	return log, db, nil
}

func connect(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, db, err := openWorkspace(cfg)
	if err != nil {
		return nil, err
	}
	node, err := transport.Dial(cfg.ReadRpcEndpoints()...)
	if err != nil {
		db.Close()
		return nil, err
	}
	reg := prometheus.NewRegistry()
	cli, err := client.New(ctx, transport.NewInstrumented(node, transport.NewMetrics(reg)),
		client.WithCache(db),
		client.WithLogger(log),
		client.WithPageSize(cfg.ReadPageSize()),
	)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Log("info", "connected to "+node.URL()+", cache at "+db.Path())
	return &session{cfg: cfg, cli: cli, rpc: node.URL(), log: log, metrics: reg, cache: db}, nil
}

// keyring derives the signing key from the profile, prompting for the
// mnemonic when the profile has none.
func keyring(cfg *confile.Confile) (*signer.Keyring, error) {
	for cfg.ReadMnemonic() == "" {
		out.Input("Please enter the mnemonic of the signature account:")
		pwd, err := gopass.GetPasswdMasked()
		if err != nil {
			return nil, errors.Wrap(err, "[GetPasswdMasked]")
		}
		if len(pwd) == 0 {
			out.Err("The mnemonic you entered is empty, please re-enter:")
			continue
		}
		if err = cfg.SetMnemonic(string(pwd)); err != nil {
			out.Err("Invalid mnemonic, please check and re-enter:")
			continue
		}
	}
	return signer.NewKeyring(cfg.ReadMnemonic(), cfg.ReadSS58Prefix())
}

// blockFlag reads --at.
func blockFlag(cmd *cobra.Command) (*primitives.Hash, error) {
	s, _ := cmd.Flags().GetString("at")
	if s == "" {
		return nil, nil
	}
	h, err := primitives.HexToHash(s)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
