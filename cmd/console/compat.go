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
	"os"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var compatCmd = &cobra.Command{
	Use:   "compat",
	Short: "Compare every binding with the node's metadata",
	RunE:  compatCmdFunc,
}

func init() {
	compatCmd.Flags().Bool("offline", false, "use the metadata cached in the workspace")
	compatCmd.Flags().Bool("all", false, "list compatible items too")
	rootCmd.AddCommand(compatCmd)
}

func compatCmdFunc(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		_, db, err := openWorkspace(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		reg, err := client.Offline(db)
		if err != nil {
			return err
		}
		return printCompat(os.Stdout, client.Compat(reg, runtime.Catalog()...), all)
	}
	s, err := connect(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return printCompat(os.Stdout, runtime.Report(s.cli), all)
}

// printCompat lists the report and fails when any item differs.
func printCompat(w io.Writer, report []client.CompatEntry, all bool) error {
	var (
		rows  []table.Row
		stale int
	)
	for _, e := range report {
		status := "ok"
		switch {
		case e.Missing:
			status = "missing"
		case !e.Compatible:
			status = "changed"
		}
		if !e.Compatible {
			stale++
		}
		if e.Compatible && !all {
			continue
		}
		rows = append(rows, table.Row{e.Item, e.Pallet + "." + e.Name, status, short(e.Expected), short(e.Actual)})
	}
	if len(rows) > 0 {
		out.Table(w, table.Row{"kind", "item", "status", "expected", "actual"}, rows)
	}
	if stale > 0 {
		return errors.Wrapf(client.ErrIncompatibleMetadata, "%d of %d items", stale, len(report))
	}
	fmt.Fprintf(w, "all %d items compatible\n", len(report))
	return nil
}

func short(fp string) string {
	if len(fp) > 18 {
		return fp[:18]
	}
	return fp
}
