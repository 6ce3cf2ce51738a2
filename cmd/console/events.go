/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <blockhash>",
	Short: "Decode the events of a block",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(queryEvents),
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func queryEvents(r *request) error {
	block, err := primitives.HexToHash(r.args[0])
	if err != nil {
		return err
	}
	recs, err := r.cli.Events(r.ctx, &block)
	if err != nil {
		return err
	}
	printEvents(r.w, recs)
	return nil
}
