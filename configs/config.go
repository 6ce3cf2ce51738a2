/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package configs

import (
	"io/fs"
	"time"
)

const (
	// PICA has 12 decimals
	TokenPICA = 1_000_000_000_000
	// the time to wait for the event, in seconds
	TimeToWaitEvent = time.Duration(time.Second * 30)
	// Default config file
	DefaultConfigFile = "conf.yaml"
	//
	DefaultWorkspace = "/opt/picasso-client"
	//
	DefaultServicePort = 4001
	//
	DefaultRpcAddr1 = "wss://picasso-rpc.composable.finance"
	DefaultRpcAddr2 = "wss://rpc.composable.finance"
	// ss58 prefix of Picasso and Composable accounts
	DefaultSS58Prefix = 49
	// storage iteration page size
	DefaultPageSize = 100
	// mortal era length in blocks, 0 for immortal
	DefaultMortality = 64
	// leveldb cache size in MiB
	DefaultCacheMB = 16
	// blocks whose pinned reads the gateway keeps cached, 0 keeps all
	DefaultKeepBlocks = 256
	// how often the gateway trims the pinned read cache
	PruneInterval = time.Minute
)

const (
	DirMode  fs.FileMode = 0755
	FileMode fs.FileMode = 0644
)

const (
	DbDir  = "db"
	LogDir = "log"
)
