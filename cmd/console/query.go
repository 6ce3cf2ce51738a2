/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read chain state",
}

func init() {
	queryCmd.PersistentFlags().String("at", "", "block hash, latest when empty")
	queryCmd.AddCommand(
		&cobra.Command{
			Use:   "number",
			Short: "Current block number",
			Args:  cobra.NoArgs,
			RunE:  withSession(queryNumber),
		},
		&cobra.Command{
			Use:   "account <ss58>",
			Short: "System account of an address",
			Args:  cobra.ExactArgs(1),
			RunE:  withSession(queryAccount),
		},
		&cobra.Command{
			Use:   "balance <ss58>",
			Short: "Free PICA balance of an address",
			Args:  cobra.ExactArgs(1),
			RunE:  withSession(queryBalance),
		},
		&cobra.Command{
			Use:   "tokens <ss58> [currency]",
			Short: "Token balances of an address",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  withSession(queryTokens),
		},
		&cobra.Command{
			Use:   "storage <pallet> <entry> [hex key...]",
			Short: "Any storage entry, decoded with the node's types",
			Args:  cobra.MinimumNArgs(2),
			RunE:  withSession(queryStorage),
		},
	)
	rootCmd.AddCommand(queryCmd)
}

// request carries what a subcommand needs once connected.
type request struct {
	ctx     context.Context
	w       io.Writer
	cli     *client.Client
	network uint16
	at      *primitives.Hash
	args    []string
}

func withSession(fn func(r *request) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		at, err := blockFlag(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()
		s, err := connect(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(&request{ctx: ctx, w: os.Stdout, cli: s.cli, network: s.cfg.ReadSS58Prefix(), at: at, args: args})
	}
}

func (r *request) account(i int) (primitives.AccountID, error) {
	return utils.ParseAccount(r.args[i], r.network)
}

func queryNumber(r *request) error {
	n, err := r.cli.BlockNumber(r.ctx, r.at)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.w, n)
	return nil
}

func queryAccount(r *request) error {
	id, err := r.account(0)
	if err != nil {
		return err
	}
	info, err := r.cli.Account(r.ctx, id, r.at)
	if err != nil {
		return err
	}
	out.Table(r.w, nil, []table.Row{
		{"address", address(id, r.network)},
		{"nonce", info.Nonce},
		{"consumers", info.Consumers},
		{"providers", info.Providers},
		{"sufficients", info.Sufficients},
		{"free", formatUnits(info.Data.Free.Big())},
		{"reserved", formatUnits(info.Data.Reserved.Big())},
		{"misc frozen", formatUnits(info.Data.MiscFrozen.Big())},
		{"fee frozen", formatUnits(info.Data.FeeFrozen.Big())},
	})
	return nil
}

func queryBalance(r *request) error {
	id, err := r.account(0)
	if err != nil {
		return err
	}
	free, err := runtime.Free(r.ctx, r.cli, id, r.at)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.w, "%s PICA\n", formatUnits(free))
	return nil
}

func queryTokens(r *request) error {
	id, err := r.account(0)
	if err != nil {
		return err
	}
	var holdings []runtime.Holding
	if len(r.args) > 1 {
		cur, err := strconv.ParseUint(r.args[1], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "currency %q", r.args[1])
		}
		acc, err := runtime.TokenBalance(r.ctx, r.cli, id, runtime.Currency(cur), r.at)
		if err != nil {
			return err
		}
		holdings = []runtime.Holding{{Currency: runtime.Currency(cur), Account: acc}}
	} else {
		if holdings, err = runtime.Holdings(r.ctx, r.cli, id, r.at); err != nil {
			return err
		}
	}
	rows := make([]table.Row, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, table.Row{h.Currency.String(), h.Account.Free.String(), h.Account.Reserved.String(), h.Account.Frozen.String()})
	}
	out.Table(r.w, table.Row{"currency", "free", "reserved", "frozen"}, rows)
	return nil
}

func queryStorage(r *request) error {
	keys := make([][]byte, 0, len(r.args)-2)
	for _, k := range r.args[2:] {
		b, err := hex.DecodeString(utils.TrimHex(k))
		if err != nil {
			return errors.Wrapf(err, "key %q", k)
		}
		keys = append(keys, b)
	}
	v, found, err := r.cli.FetchDynamic(r.ctx, r.args[0], r.args[1], r.at, keys...)
	if err != nil {
		return err
	}
	if !found && v == nil {
		fmt.Fprintln(r.w, "<none>")
		return nil
	}
	fmt.Fprintln(r.w, fieldsJSON(v))
	return nil
}
