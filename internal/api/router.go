package api

import (
	"net/http"
	"time"

	"github.com/bhajan-portal/internal/config"
	"github.com/bhajan-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	// Logging wraps recovery so panicking requests still get an access line.
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	bhajanHandler := NewBhajanHandler(services, log)
	staticHandler := NewStaticHandler(cfg.Static.Dir, cfg.Static.Index, log)

	// Health check
	router.GET("/health", healthCheck(services, log))

	api := router.Group("/api")
	{
		bhajans := api.Group("/bhajans")
		{
			bhajans.GET("", bhajanHandler.List)
			bhajans.POST("", bhajanHandler.Create)
			bhajans.GET("/:id", bhajanHandler.Get)
			bhajans.PUT("/:id", bhajanHandler.Update)
			bhajans.DELETE("/:id", bhajanHandler.Delete)
		}

		api.GET("/tags", bhajanHandler.Tags)
		api.GET("/stats", bhajanHandler.Stats)
	}

	// Static assets and SPA fallback
	router.Static("/static", cfg.Static.Dir)
	router.GET("/", staticHandler.Index)
	router.NoRoute(staticHandler.Fallback)

	return router
}

// healthCheck returns the health status
func healthCheck(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services.Health != nil {
			if err := services.Health.HealthCheck(c.Request.Context()); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				c.JSON(http.StatusInternalServerError, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "bhajan-portal",
		})
	}
}
