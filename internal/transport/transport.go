package transport

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"face-enhancer/internal/transport/middleware"
)

func InitRoutes(handler *EnhanceHandler, webDir string) *gin.Engine {
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	api := router.Group("/api")
	{
		api.GET("/status", handler.Status)
		api.POST("/enhance", handler.Enhance)
		api.POST("/batch", handler.CreateBatch)
		api.GET("/batch/:id", handler.GetBatch)
	}

	router.Static("/static", webDir)

	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(webDir, "index.html"))
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "face-enhancer",
		})
	})
	return router
}
