package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nexapay/nexapay-backend/config"
	"github.com/nexapay/nexapay-backend/internal/app/controller"
	"github.com/nexapay/nexapay-backend/internal/middleware"
)

type Router struct {
	kycController          *controller.KYCController
	webhookController      *controller.WebhookController
	notificationController *controller.NotificationController
	reportController       *controller.ReportController
	authMiddleware         *middleware.AuthMiddleware
	webhookAuthMiddleware  *middleware.WebhookAuthMiddleware
	config                 *config.Config
}

func NewRouter(
	kycController *controller.KYCController,
	webhookController *controller.WebhookController,
	notificationController *controller.NotificationController,
	reportController *controller.ReportController,
	authMiddleware *middleware.AuthMiddleware,
	webhookAuthMiddleware *middleware.WebhookAuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		kycController:          kycController,
		webhookController:      webhookController,
		notificationController: notificationController,
		reportController:       reportController,
		authMiddleware:         authMiddleware,
		webhookAuthMiddleware:  webhookAuthMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "NEXAPAY API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Provider webhooks authenticate by payload digest, not JWT.
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/sumsub",
				r.webhookAuthMiddleware.Verify(),
				r.webhookController.HandleSumsubWebhook,
			)
		}

		kyc := v1.Group("/kyc", r.authMiddleware.Authenticate())
		{
			kyc.POST("/start", r.kycController.StartVerification)
			kyc.GET("/status", r.kycController.GetStatus)
			kyc.GET("/records/:id/audit", r.kycController.GetAuditTrail)
			kyc.GET("/stream", r.notificationController.StreamStatus)
		}

		notifications := v1.Group("/notifications", r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.ListNotifications)
			notifications.PATCH("/:id/read", r.notificationController.MarkAsRead)
		}

		admin := v1.Group("/admin/kyc",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("compliance", "admin"),
		)
		{
			admin.POST("/reset", r.kycController.ResetVerification)
			admin.POST("/users/:id/archive", r.kycController.ArchiveDocuments)
			admin.GET("/report", r.reportController.DownloadComplianceReport)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
