/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"context"
	"fmt"
	"time"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/node/web"
	"github.com/ComposableFi/composable-sub002/pkg/cache"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/logger"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve read-only queries over http",
	Args:  cobra.NoArgs,
	RunE:  serveCmdFunc,
}

func init() {
	serveCmd.Flags().Uint16("port", 0, "listening port, the profile's when 0")
	rootCmd.AddCommand(serveCmd)
}

func serveCmdFunc(cmd *cobra.Command, args []string) error {
	s, err := connect(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if port, _ := cmd.Flags().GetUint16("port"); port != 0 {
		if err = s.cfg.SetServicePort(port); err != nil {
			return err
		}
	}
	port := s.cfg.ReadServicePort()
	if utils.OpenedPort(int(port)) {
		return errors.Errorf("port %d is already in use", port)
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Pnc(utils.RecoverError(r))
		}
	}()
	if keep := s.cfg.ReadKeepBlocks(); keep > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go expirePinned(ctx, s.cache, keep, configs.PruneInterval, s.log)
	}
	h := web.NewHandler(s.cli, s.cfg.ReadSS58Prefix(), s.rpc, s.log, s.metrics)
	out.Tip(fmt.Sprintf("Gateway started: [GET] localhost:%d/status", port))
	return web.NewEngine(h).Run(fmt.Sprintf(":%d", port))
}

// expirePinned trims the pinned read cache to the keep most recently
// used blocks every interval until ctx ends.
func expirePinned(ctx context.Context, db cache.Pruner, keep int, every time.Duration, log logger.Logger) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			n, err := cache.ExpirePinned(db, keep)
			if err != nil {
				log.Log("err", "expire pinned reads: "+err.Error())
				continue
			}
			if n > 0 {
				log.Log("info", fmt.Sprintf("expired pinned reads of %d blocks", n))
			}
		}
	}
}
