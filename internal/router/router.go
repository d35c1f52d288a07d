package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindplate/backend/internal/api"
	"github.com/mindplate/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	foodHandler *api.FoodHandler,
	adminHandler *api.AdminHandler,
	validator middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	// CORS and error handling middleware
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Public food routes
	foods := v1.Group("/foods")
	{
		foods.GET("", foodHandler.SearchFoods)
		foods.GET("/:id", foodHandler.GetFood)
	}

	// Admin routes: service token plus rate limiting
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(validator))
	admin.Use(middleware.RequireAdmin())
	if rateLimiter != nil {
		admin.Use(rateLimiter.RateLimitMiddleware())
	}
	{
		admin.POST("/evaluate", adminHandler.Evaluate)
		admin.GET("/metrics/:type", adminHandler.Metrics)
		admin.POST("/calibrate", adminHandler.Calibrate)
		admin.POST("/merge", adminHandler.Merge)
		admin.POST("/merge-all", adminHandler.MergeAll)
		admin.POST("/classify", adminHandler.Classify)
	}

	return router
}
