package routes

import (
	"net/http"
	"time"

	"cargomarket_backend/internal/handlers"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	db *gorm.DB,
) {
	ginRouter.GET("/health", healthHandler(db))
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.FileHandler.RegisterRoutes(api)
		appHandlers.ProfileHandler.RegisterRoutes(api)
		appHandlers.ListingHandler.RegisterRoutes(api)
		appHandlers.OfferHandler.RegisterRoutes(api)
		appHandlers.ChatHandler.RegisterRoutes(api)
		appHandlers.NewsHandler.RegisterRoutes(api)
		appHandlers.AdHandler.RegisterRoutes(api)
		appHandlers.BalanceHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.EmailHandler.RegisterRoutes(api)
	}

	// Регистрация WebSocket (токен допускается в ?token=)
	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "Health check: database unavailable", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"time":   time.Now().UTC(),
		})
	}
}
