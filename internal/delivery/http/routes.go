package http

import (
	"github.com/gin-gonic/gin"

	"github.com/marketwatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/search", handler.Search)

		products := v1.Group("/products")
		{
			products.GET("/:id", handler.GetProduct)
		}

		offers := v1.Group("/offers")
		{
			offers.GET("/:id/history", handler.GetPriceHistory)
		}

		watches := v1.Group("/watches")
		{
			watches.POST("", handler.CreateWatch)
			watches.GET("", handler.ListWatches)
			watches.DELETE("/:id", handler.DeleteWatch)
		}
	}

	return router
}
