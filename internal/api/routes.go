package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/cueroom/backend/internal/api/handlers"
	"github.com/cueroom/backend/internal/config"
	"github.com/cueroom/backend/internal/ws"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config) {
	// CORS middleware for the rendering client. FRONTEND_URL pins the
	// allowed origin; unset means any origin (development).
	allowOrigin := cfg.FrontendURL
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Admin-Pin")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		table := v1.Group("/table")
		{
			table.POST("", handlers.CreateTable(cfg))
			table.GET("/:token", handlers.GetTable)
			table.GET("/:token/shots", handlers.GetTableShots(db))
			table.GET("/:token/ws", ws.HandleWebSocket(cfg))
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/tables", handlers.AdminListTables(cfg))
			admin.GET("/history", handlers.AdminSessionHistory(db, cfg))
			admin.DELETE("/tables/:token", handlers.AdminRemoveTable(cfg))
		}
	}
}
