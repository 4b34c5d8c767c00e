package handlers

import (
	"log/slog"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"

	"github.com/fitstack/reepay-payments/config"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(handler *PaymentHandler, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))

	// Health check (public)
	router.GET("/health", handler.Health)
	router.GET("/metrics", func(c *gin.Context) {
		metrics.WritePrometheus(c.Writer, true)
	})

	// API v1 routes (requires Bearer auth)
	v1 := router.Group("/api/v1")
	v1.Use(ServiceAuthMiddleware(cfg.Security.JWTSecret))
	{
		v1.POST("/checkout/:order_id/session", handler.CreateCheckout)
	}

	// Customer redirects from the hosted checkout
	checkout := router.Group("/checkout/:order_id")
	{
		checkout.GET("/return", handler.HandleReturn)
		checkout.GET("/cancel", handler.HandleCancel)
	}

	// Webhook endpoint (public, validates the body signature)
	router.POST("/webhooks/reepay", handler.HandleWebhook)

	return router
}
