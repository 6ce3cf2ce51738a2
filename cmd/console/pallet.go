/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"fmt"
	"strings"

	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/metadata"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var palletCmd = &cobra.Command{
	Use:   "pallet <name>",
	Short: "List a pallet's storage entries and constants",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(printPallet),
}

func init() {
	rootCmd.AddCommand(palletCmd)
}

func printPallet(r *request) error {
	p, err := r.cli.Registry().Pallet(r.args[0])
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(p.StorageEntries()))
	for _, s := range p.StorageEntries() {
		rows = append(rows, table.Row{"storage", s.Name, describeEntry(s)})
	}
	for _, c := range p.Constants() {
		rows = append(rows, table.Row{"constant", c.Name, codec.HexEncodeToString(c.Value)})
	}
	out.Table(r.w, table.Row{"item", "name", "detail"}, rows)
	return nil
}

func describeEntry(s *metadata.StorageEntry) string {
	modifier := "default"
	if s.Modifier == metadata.Optional {
		modifier = "optional"
	}
	if !s.IsMap() {
		return modifier
	}
	hashers := make([]string, len(s.Hashers))
	for i, h := range s.Hashers {
		hashers[i] = h.String()
	}
	return fmt.Sprintf("%s map(%s)", modifier, strings.Join(hashers, ", "))
}
