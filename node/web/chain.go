/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/runtime"
	"github.com/ComposableFi/composable-sub002/pkg/scale"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/gin-gonic/gin"
)

type ChainHandler struct {
	*base
}

func (h *ChainHandler) RegisterRoutes(server *gin.Engine) {
	chaingroup := server.Group("/chain")
	chaingroup.GET("/number", h.getNumber)
	chaingroup.GET("/constants", h.getConstants)
	chaingroup.GET("/account/:address", h.getAccount)
	chaingroup.GET("/tokens/:address", h.getHoldings)
	chaingroup.GET("/tokens/:address/:currency", h.getToken)
	chaingroup.GET("/events/:block", h.getEvents)
	chaingroup.GET("/storage/:pallet/:entry", h.getStorage)
}

func (h *ChainHandler) account(c *gin.Context) (primitives.AccountID, bool) {
	id, err := utils.ParseAccount(c.Param("address"), h.network)
	if err != nil {
		h.reply(c, http.StatusBadRequest, ERR_InvalidAddress, nil)
		return id, false
	}
	return id, true
}

func (h *ChainHandler) getNumber(c *gin.Context) {
	at, ok := h.at(c)
	if !ok {
		return
	}
	n, err := h.cli.BlockNumber(c.Request.Context(), at)
	if err != nil {
		h.fail(c, "BlockNumber", err)
		return
	}
	h.reply(c, http.StatusOK, OK, n)
}

func (h *ChainHandler) getConstants(c *gin.Context) {
	ed, err := runtime.ExistentialDeposit(h.cli)
	if err != nil {
		h.fail(c, "ExistentialDeposit", err)
		return
	}
	bt, err := runtime.BlockTime(h.cli)
	if err != nil {
		h.fail(c, "BlockTime", err)
		return
	}
	ver, err := h.cli.RuntimeVersion()
	if err != nil {
		h.fail(c, "RuntimeVersion", err)
		return
	}
	h.reply(c, http.StatusOK, OK, ConstantData{
		ExistentialDeposit: ed.String(),
		BlockTimeMs:        bt.Milliseconds(),
		SpecVersion:        ver.SpecVersion,
	})
}

func (h *ChainHandler) getAccount(c *gin.Context) {
	id, ok := h.account(c)
	if !ok {
		return
	}
	at, ok := h.at(c)
	if !ok {
		return
	}
	info, err := h.cli.Account(c.Request.Context(), id, at)
	if err != nil {
		h.fail(c, "Account", err)
		return
	}
	h.reply(c, http.StatusOK, OK, AccountData{
		Address:     h.address(id),
		Nonce:       info.Nonce,
		Consumers:   info.Consumers,
		Providers:   info.Providers,
		Sufficients: info.Sufficients,
		Free:        info.Data.Free.String(),
		Reserved:    info.Data.Reserved.String(),
		MiscFrozen:  info.Data.MiscFrozen.String(),
		FeeFrozen:   info.Data.FeeFrozen.String(),
	})
}

func tokenData(currency runtime.CurrencyID, acc runtime.TokenAccount) TokenData {
	return TokenData{
		Currency: currency.String(),
		Free:     acc.Free.String(),
		Reserved: acc.Reserved.String(),
		Frozen:   acc.Frozen.String(),
	}
}

func (h *ChainHandler) getHoldings(c *gin.Context) {
	id, ok := h.account(c)
	if !ok {
		return
	}
	at, ok := h.at(c)
	if !ok {
		return
	}
	holdings, err := runtime.Holdings(c.Request.Context(), h.cli, id, at)
	if err != nil {
		h.fail(c, "Holdings", err)
		return
	}
	out := make([]TokenData, 0, len(holdings))
	for _, v := range holdings {
		out = append(out, tokenData(v.Currency, v.Account))
	}
	h.reply(c, http.StatusOK, OK, out)
}

func (h *ChainHandler) getToken(c *gin.Context) {
	id, ok := h.account(c)
	if !ok {
		return
	}
	currency, err := strconv.ParseUint(c.Param("currency"), 10, 64)
	if err != nil {
		h.reply(c, http.StatusBadRequest, ERR_InvalidCurrency, nil)
		return
	}
	at, ok := h.at(c)
	if !ok {
		return
	}
	cur := runtime.Currency(currency)
	acc, err := runtime.TokenBalance(c.Request.Context(), h.cli, id, cur, at)
	if err != nil {
		h.fail(c, "TokenBalance", err)
		return
	}
	h.reply(c, http.StatusOK, OK, tokenData(cur, acc))
}

func eventData(recs []client.EventRecord) []EventData {
	out := make([]EventData, 0, len(recs))
	for _, r := range recs {
		out = append(out, EventData{
			Phase:  r.Phase.String(),
			Pallet: r.Pallet,
			Name:   r.Name,
			Fields: scale.Plain(r.Fields),
		})
	}
	return out
}

func (h *ChainHandler) getEvents(c *gin.Context) {
	block, err := primitives.HexToHash(c.Param("block"))
	if err != nil {
		h.reply(c, http.StatusBadRequest, ERR_InvalidHash, nil)
		return
	}
	recs, err := h.cli.Events(c.Request.Context(), &block)
	if err != nil {
		h.fail(c, "Events", err)
		return
	}
	h.reply(c, http.StatusOK, OK, eventData(recs))
}

// getStorage reads any entry dynamically. Each ?key= is one hex encoded
// key of the entry.
func (h *ChainHandler) getStorage(c *gin.Context) {
	var keys [][]byte
	for _, k := range c.QueryArray("key") {
		b, err := hex.DecodeString(utils.TrimHex(k))
		if err != nil {
			h.reply(c, http.StatusBadRequest, ERR_InvalidKey, nil)
			return
		}
		keys = append(keys, b)
	}
	at, ok := h.at(c)
	if !ok {
		return
	}
	v, found, err := h.cli.FetchDynamic(c.Request.Context(), c.Param("pallet"), c.Param("entry"), at, keys...)
	if err != nil {
		h.fail(c, "FetchDynamic", err)
		return
	}
	if !found && v == nil {
		h.reply(c, http.StatusNotFound, ERR_NotFound, nil)
		return
	}
	h.reply(c, http.StatusOK, OK, scale.Plain(v))
}
