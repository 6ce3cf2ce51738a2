/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"fmt"
	"net/http"

	"github.com/ComposableFi/composable-sub002/pkg/client"
	"github.com/ComposableFi/composable-sub002/pkg/logger"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/ComposableFi/composable-sub002/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	*ChainHandler
	*StatusHandler
	gatherer prometheus.Gatherer
}

// NewHandler serves cli. Addresses are read and printed with the ss58
// network prefix; gatherer backs /metrics and may be nil.
func NewHandler(cli *client.Client, network uint16, rpc string, log logger.Logger, gatherer prometheus.Gatherer) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	base := &base{cli: cli, network: network, log: log}
	return &Handler{
		ChainHandler:  &ChainHandler{base: base},
		StatusHandler: &StatusHandler{base: base, rpc: rpc},
		gatherer:      gatherer,
	}
}

func (h *Handler) RegisterRoutes(server *gin.Engine) {
	h.ChainHandler.RegisterRoutes(server)
	h.StatusHandler.RegisterRoutes(server)
	if h.gatherer != nil {
		server.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

// NewEngine builds the read-only gateway.
func NewEngine(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowHeaders:    []string{"Content-Type"},
		AllowMethods:    []string{"GET", "OPTIONS"},
	}))
	h.RegisterRoutes(engine)
	return engine
}

type base struct {
	cli     *client.Client
	network uint16
	log     logger.Logger
}

func (b *base) address(id primitives.AccountID) string {
	addr, err := utils.EncodeAddress(id[:], b.network)
	if err != nil {
		return id.String()
	}
	return addr
}

// at reads the optional ?at= block hash.
func (b *base) at(c *gin.Context) (*primitives.Hash, bool) {
	s := c.Query("at")
	if s == "" {
		return nil, true
	}
	h, err := primitives.HexToHash(s)
	if err != nil {
		b.reply(c, http.StatusBadRequest, ERR_InvalidHash, nil)
		return nil, false
	}
	return &h, true
}

func (b *base) reply(c *gin.Context, code int, msg string, data any) {
	c.JSON(http.StatusOK, RespType{Code: code, Msg: msg, Data: data})
}

// fail maps a client error onto a response code.
func (b *base) fail(c *gin.Context, op string, err error) {
	b.log.Log("err", fmt.Sprintf("[%s] %v", op, err))
	switch client.KindOf(err) {
	case client.KindIncompatibleMetadata:
		b.reply(c, http.StatusConflict, ERR_Incompatible, err.Error())
	case client.KindTransport:
		b.reply(c, http.StatusBadGateway, ERR_RPCConnection, nil)
	case client.KindCodec:
		b.reply(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		b.reply(c, http.StatusInternalServerError, ERR_SystemErr, nil)
	}
}
