package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/api/handlers"
	"github.com/tienditamx/orderbot/internal/api/middleware"
	"github.com/tienditamx/orderbot/internal/config"
	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/internal/service"
	"github.com/tienditamx/orderbot/internal/whatsapp"
)

// Dependencies bundles the services the handlers need
type Dependencies struct {
	Conversation *service.ConversationService
	Orders       *service.OrderService
	Pricing      *service.PricingService
	Sender       whatsapp.Sender
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, deps *Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Twilio posts inbound WhatsApp messages here
	router.POST("/webhooks/whatsapp", handlers.HandleWhatsAppWebhook(repos, deps.Conversation, deps.Sender, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
		v1.POST("/orders/:id/price", handlers.HandlePriceOrder(deps.Pricing, logger))
		v1.POST("/orders/:id/confirm", handlers.HandleConfirmOrder(deps.Orders, logger))
		v1.POST("/orders/:id/cancel", handlers.HandleCancelOrder(deps.Orders, logger))

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuthMiddleware(cfg, logger))
		{
			adminRoutes.GET("/promotions", handlers.HandleListPromotions(repos, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
