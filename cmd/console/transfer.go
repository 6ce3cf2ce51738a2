/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/pkg/client"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/ComposableFi/composable-sub002/pkg/signer"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <ss58> <amount>",
	Short: "Transfer PICA or a token, amount in the smallest unit",
	Args:  cobra.ExactArgs(2),
	RunE:  transferCmdFunc,
}

func init() {
	transferCmd.Flags().Uint64("token", 0, "Tokens currency id, native PICA when 0")
	transferCmd.Flags().Bool("keep-alive", false, "refuse to reap the sender account")
	transferCmd.Flags().Bool("finalized", false, "wait for finality instead of inclusion")
	rootCmd.AddCommand(transferCmd)
}

// transferOrder is one parsed transfer request.
type transferOrder struct {
	dest      primitives.AccountID
	amount    *big.Int
	token     uint64
	keepAlive bool
	finalized bool
}

func transferCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var o transferOrder
	if o.dest, err = utils.ParseAccount(args[0], s.cfg.ReadSS58Prefix()); err != nil {
		return err
	}
	var ok bool
	if o.amount, ok = new(big.Int).SetString(args[1], 10); !ok || o.amount.Sign() <= 0 {
		return errors.Errorf("invalid amount %q", args[1])
	}
	o.token, _ = cmd.Flags().GetUint64("token")
	o.keepAlive, _ = cmd.Flags().GetBool("keep-alive")
	o.finalized, _ = cmd.Flags().GetBool("finalized")

	key, err := keyring(s.cfg)
	if err != nil {
		return err
	}
	opts := client.TxOptions{Tip: s.cfg.ReadTip(), Mortality: s.cfg.ReadMortality()}
	return transfer(ctx, os.Stdout, s.cli, key, o, opts)
}

func transfer(ctx context.Context, w io.Writer, cli *client.Client, key signer.Signer, o transferOrder, opts client.TxOptions) error {
	var (
		call *client.Submittable
		err  error
	)
	if o.token == 0 {
		call, err = runtime.Transfer(cli, o.dest, o.amount, o.keepAlive)
	} else {
		call, err = runtime.TransferToken(cli, o.dest, runtime.Currency(o.token), o.amount)
	}
	if err != nil {
		return err
	}
	progress, err := call.SignAndSubmit(ctx, key, opts)
	if err != nil {
		return err
	}
	out.Tip(fmt.Sprintf("submitted %s as %s", call, progress.Hash()))

	wait, cancel := context.WithTimeout(ctx, 4*configs.TimeToWaitEvent)
	defer cancel()
	var res *client.TxResult
	if o.finalized {
		res, err = progress.WaitFinalized(wait)
	} else {
		res, err = progress.WaitInBlock(wait)
	}
	if err != nil {
		return err
	}
	printResult(w, res)
	if !res.Success {
		return errors.Errorf("extrinsic %s failed", res.Hash)
	}
	return nil
}
