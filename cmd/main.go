/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package main

import "github.com/ComposableFi/composable-sub002/cmd/console"

// program entry
func main() {
	console.Execute()
}
