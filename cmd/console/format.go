/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/pkg/client"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/jedib0t/go-pretty/v6/table"
)

// formatUnits renders a balance in whole PICA with all twelve decimals
// trimmed of trailing zeros.
func formatUnits(v *big.Int) string {
	if v == nil {
		return "0"
	}
	unit := big.NewInt(configs.TokenPICA)
	q, r := new(big.Int).QuoRem(v, unit, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%012s", r.String()), "0")
	return q.String() + "." + frac
}

func address(id primitives.AccountID, network uint16) string {
	s, err := utils.EncodeAddress(id[:], network)
	if err != nil {
		return id.String()
	}
	return s
}

func fieldsJSON(v scale.Value) string {
	b, err := json.Marshal(scale.Plain(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func printEvents(w io.Writer, recs []client.EventRecord) {
	rows := make([]table.Row, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, table.Row{r.Phase.String(), r.Pallet + "." + r.Name, fieldsJSON(r.Fields)})
	}
	out.Table(w, table.Row{"phase", "event", "fields"}, rows)
}

func printResult(w io.Writer, res *client.TxResult) {
	status := "success"
	if !res.Success {
		status = "failed"
		if res.DispatchError != nil {
			status = "failed: " + res.DispatchError.String()
		}
	}
	out.Table(w, nil, []table.Row{
		{"extrinsic", res.Hash.String()},
		{"block", res.Block.String()},
		{"index", res.Index},
		{"finalized", res.Finalized},
		{"status", status},
	})
	printEvents(w, res.Events)
}
