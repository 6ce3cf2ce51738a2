/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package web

type RespType struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

const (
	// ok
	OK = "ok"

	// server err
	ERR_SystemErr = "system error"

	// rpc err
	ERR_RPCConnection = "failed to reach the node, please try again later."

	// metadata err
	ERR_Incompatible = "the node runtime does not match this client"

	// client err
	ERR_InvalidAddress  = "invalid account address"
	ERR_InvalidHash     = "invalid block hash"
	ERR_InvalidCurrency = "invalid currency id"
	ERR_InvalidKey      = "invalid storage key"
	ERR_NotFound        = "not found"
)

type StatusData struct {
	Rpc                string `json:"rpc"`
	Genesis            string `json:"genesis"`
	Number             uint32 `json:"number"`
	SpecName           string `json:"spec_name"`
	SpecVersion        uint32 `json:"spec_version"`
	TransactionVersion uint32 `json:"transaction_version"`
	Pallets            int    `json:"pallets"`
	Compatible         bool   `json:"compatible"`
}

type AccountData struct {
	Address     string `json:"address"`
	Nonce       uint32 `json:"nonce"`
	Consumers   uint32 `json:"consumers"`
	Providers   uint32 `json:"providers"`
	Sufficients uint32 `json:"sufficients"`
	Free        string `json:"free"`
	Reserved    string `json:"reserved"`
	MiscFrozen  string `json:"misc_frozen"`
	FeeFrozen   string `json:"fee_frozen"`
}

type TokenData struct {
	Currency string `json:"currency"`
	Free     string `json:"free"`
	Reserved string `json:"reserved"`
	Frozen   string `json:"frozen"`
}

type EventData struct {
	Phase  string `json:"phase"`
	Pallet string `json:"pallet"`
	Name   string `json:"name"`
	Fields any    `json:"fields"`
}

type ConstantData struct {
	ExistentialDeposit string `json:"existential_deposit"`
	BlockTimeMs        int64  `json:"block_time_ms"`
	SpecVersion        uint32 `json:"spec_version"`
}
