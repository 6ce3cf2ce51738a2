/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package runtime

import (
	"github.com/ComposableFi/composable-sub002/pkg/client"
)

// Pallets the catalog binds, in runtime order.
var Pallets = []string{"System", "Timestamp", "Sudo", "Balances", "Tokens", "Pablo"}

// Catalog lists every descriptor, grouped by pallet.
func Catalog() []client.Descriptor {
	out := client.SystemDescriptors()
	return append(out,
		SystemRemarkCall,
		TimestampNow, TimestampMinimumPeriod,
		SudoCall, SudoKey, SudoSudidEvent,
		BalancesTransferCall, BalancesTransferKeepAliveCall, BalancesTransferAllCall,
		BalancesTotalIssuance, BalancesExistentialDeposit,
		BalancesTransferEvent, BalancesEndowedEvent,
		TokensTransferCall, TokensAccounts, TokensTotalIssuance,
		TokensTransferEvent, TokensEndowedEvent,
		PabloBuyCall, PabloSellCall, PabloSwapCall,
		PabloAddLiquidityCall, PabloRemoveLiquidityCall,
		PabloPoolCount,
		PabloPoolCreatedEvent, PabloLiquidityAddedEvent,
		PabloLiquidityRemovedEvent, PabloSwappedEvent,
	)
}

// Compatible reports the first catalog item the client's node does not
// match, or nil.
func Compatible(c *client.Client) error {
	for _, d := range Catalog() {
		if err := c.Check(d); err != nil {
			return err
		}
	}
	return nil
}

// Report checks the whole catalog against the client's node.
func Report(c *client.Client) []client.CompatEntry {
	return client.Compat(c.Registry(), Catalog()...)
}
