/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"fmt"

	"github.com/ComposableFi/composable-sub002/configs"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var constantsCmd = &cobra.Command{
	Use:   "constants",
	Short: "Runtime version and pallet constants",
	Args:  cobra.NoArgs,
	RunE:  withSession(printConstants),
}

func init() {
	rootCmd.AddCommand(constantsCmd)
}

func printConstants(r *request) error {
	ver, err := r.cli.RuntimeVersion()
	if err != nil {
		return err
	}
	ed, err := runtime.ExistentialDeposit(r.cli)
	if err != nil {
		return err
	}
	bt, err := runtime.BlockTime(r.cli)
	if err != nil {
		return err
	}
	genesis, err := r.cli.GenesisHash(r.ctx)
	if err != nil {
		return err
	}
	out.Table(r.w, nil, []table.Row{
		{"spec", fmt.Sprintf("%s/%d", ver.SpecName, ver.SpecVersion)},
		{"transaction version", ver.TransactionVersion},
		{"genesis", genesis.String()},
		{"existential deposit", formatUnits(ed) + " PICA"},
		{"block time", bt.String()},
		{"ss58 prefix", configs.DefaultSS58Prefix},
	})
	return nil
}
