/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package configs

const (
	// Name is the name of the program
	Name = "picasso-client"
	// version
	Version = "v0.3.0"
	// Description is the description of the program
	Description = "Metadata-checked client for the Picasso and Composable parachains"
	// NameSpace is the cached namespace
	NameSpaces = Name
)
