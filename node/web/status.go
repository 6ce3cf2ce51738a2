/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"net/http"

	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	*base
	rpc string
}

func (s *StatusHandler) RegisterRoutes(server *gin.Engine) {
	server.GET("/status", s.getStatus)
	server.GET("/compat", s.getCompat)
}

func (s *StatusHandler) getStatus(c *gin.Context) {
	ver, err := s.cli.RuntimeVersion()
	if err != nil {
		s.fail(c, "RuntimeVersion", err)
		return
	}
	genesis, err := s.cli.GenesisHash(c.Request.Context())
	if err != nil {
		s.fail(c, "GenesisHash", err)
		return
	}
	number, err := s.cli.BlockNumber(c.Request.Context(), nil)
	if err != nil {
		s.fail(c, "BlockNumber", err)
		return
	}
	s.reply(c, http.StatusOK, OK, StatusData{
		Rpc:                s.rpc,
		Genesis:            genesis.String(),
		Number:             number,
		SpecName:           ver.SpecName,
		SpecVersion:        ver.SpecVersion,
		TransactionVersion: ver.TransactionVersion,
		Pallets:            len(s.cli.Registry().Pallets()),
		Compatible:         runtime.Compatible(s.cli) == nil,
	})
}

// getCompat lists every catalog item with both fingerprints. The code
// is 409 when any item differs.
func (s *StatusHandler) getCompat(c *gin.Context) {
	report := runtime.Report(s.cli)
	code, msg := http.StatusOK, OK
	for _, e := range report {
		if !e.Compatible {
			code, msg = http.StatusConflict, ERR_Incompatible
			break
		}
	}
	s.reply(c, code, msg, report)
}
