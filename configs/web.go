/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package configs

// RespMsg
type RespMsg struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// return code
const (
	Code_200 = 200
	Code_400 = 400
	Code_404 = 404
	Code_409 = 409 // metadata no longer matches the bindings
	Code_500 = 500
	Code_502 = 502 // node unreachable
)
