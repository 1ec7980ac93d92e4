package server

import (
	"net/http"
	"time"

	"postpilot/infrastructure/realtime"
	httpHandler "postpilot/interfaces/http"
	"postpilot/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	postHandler httpHandler.IPostHandler,
	connectionHandler httpHandler.IConnectionHandler,
	executionHandler httpHandler.IExecutionHandler,
	oauthHandler httpHandler.IOAuthHandler,
	hub *realtime.Hub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OAuth provider callbacks arrive without our Authorization header; the
	// CSRF state carries the user binding.
	if oauthHandler != nil {
		router.GET("/auth/meta/callback", oauthHandler.MetaCallback)
		router.GET("/auth/tiktok/callback", oauthHandler.TikTokCallback)
	}

	api := router.Group("api")
	api.Use(middleware.Auth())

	if oauthHandler != nil {
		api.GET("/auth/meta", oauthHandler.MetaAuthURL)
		api.GET("/auth/tiktok", oauthHandler.TikTokAuthURL)
		api.POST("/connections/whatsapp", oauthHandler.ConnectWhatsApp)
	}

	api.POST("/posts", postHandler.Schedule)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:postId", postHandler.Get)
	api.DELETE("/posts/:postId", postHandler.Cancel)

	api.GET("/connections", connectionHandler.List)
	api.DELETE("/connections/:credentialId", connectionHandler.Disconnect)

	execution := api.Group("/execution")
	{
		execution.GET("/history", executionHandler.History)
		execution.GET("/stats", executionHandler.Stats)
		execution.GET("/archive", executionHandler.Archive)
		execution.POST("/run", executionHandler.Run)
		if hub != nil {
			execution.GET("/stream", hub.Serve)
		}
	}

	return router
}
