package main

import (
	"github.com/gin-gonic/gin"

	"github.com/reviewloop/backend/internal/middleware"
	"github.com/reviewloop/backend/pkg/logger"
	"github.com/reviewloop/backend/pkg/metrics"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public submission endpoint
	submitLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "reviewloop"})
	})

	if svc.cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API routes
	api := r.Group("/api")
	{
		// Public QR flow: scan landing plus submission
		api.GET("/qr/:token", svc.businessHandler.GetByQRToken)
		api.POST("/reviews", submitLimiter.Middleware(), svc.reviewHandler.Submit)

		// Reviews
		api.GET("/reviews/:id", svc.reviewHandler.GetByID)

		// Businesses
		api.GET("/businesses", svc.businessHandler.List)
		api.GET("/businesses/:id", svc.businessHandler.Get)
		api.POST("/businesses", svc.businessHandler.Create)
		api.PUT("/businesses/:id", svc.businessHandler.Update)
		api.DELETE("/businesses/:id", svc.businessHandler.Delete)
		api.GET("/businesses/:id/reviews", svc.reviewHandler.GetByBusiness)
		api.GET("/businesses/:id/bonuses", svc.businessHandler.Bonuses)
		api.GET("/businesses/:id/analytics", svc.businessHandler.Analytics)

		// Users
		api.GET("/users", svc.userHandler.GetByEmail)
		api.GET("/users/:id", svc.userHandler.Get)
		api.PUT("/users/:id", svc.userHandler.UpdateProfile)
		api.GET("/users/:id/reviews", svc.reviewHandler.GetByUser)
		api.GET("/users/:id/bonuses", svc.userHandler.GetBonuses)

		// Bonuses
		api.POST("/bonuses", svc.bonusHandler.Create)
		api.PUT("/bonuses/:id", svc.bonusHandler.Update)
		api.DELETE("/bonuses/:id", svc.bonusHandler.Deactivate)

		// System Logs
		api.GET("/system-logs", svc.systemLogHandler.List)
		api.POST("/system-logs/cleanup", svc.systemLogHandler.Cleanup)
	}
}
