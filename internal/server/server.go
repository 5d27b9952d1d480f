// Package server wires the HTTP surface: routing, middleware and handlers.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azhao/scanpay/internal/auth"
	"github.com/azhao/scanpay/internal/middleware"
	"github.com/azhao/scanpay/internal/service"
)

// New builds the gin engine with all routes registered.
func New(svc *service.ReceiptService, tokens *auth.TokenManager, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	h := &handler{svc: svc, tokens: tokens}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/sessions", h.createSession)
	v1.GET("/receipts", h.listReceipts)
	v1.GET("/receipts/:id", h.getReceipt)

	session := v1.Group("")
	session.Use(middleware.RequireSession(tokens))
	session.POST("/receipts/scan", h.scanLines)
	session.POST("/receipts/recognize", h.scanImage)
	session.GET("/split", h.splitState)
	session.GET("/split/summary", h.splitSummary)
	session.POST("/split/people", h.addPerson)
	session.PUT("/split/people/:id", h.renamePerson)
	session.DELETE("/split/people/:id", h.removePerson)
	session.POST("/split/toggle", h.toggleAssignment)

	return r
}
