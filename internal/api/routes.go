package api

import (
	"github.com/gin-gonic/gin"

	"quizrelay/internal/api/handlers"
	"quizrelay/internal/config"
)

// SetupRoutes sets up the web and API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, cfg *config.Config) {
	router.Use(CORSMiddleware(cfg))
	router.Use(BodySizeLimit(cfg.MaxUploadBytes))

	// --- Quiz form and generation flow ---
	router.GET("/", handler.HandleIndex)
	router.POST("/generate", handler.HandleGenerate)

	// --- Card retrieval ---
	router.GET("/poll_cards/:deck_id", handler.HandlePollCards)
	router.GET("/stream_cards/:deck_id", handler.HandleStreamCards)

	// --- Telegram mini-app API ---
	api := router.Group("/api")
	{
		api.POST("/notify-admin", handler.HandleNotifyAdmin)
		api.POST("/get-telegram-user-id", handler.HandleGetTelegramUserID)
		api.POST("/send-to-telegram", handler.HandleSendToTelegram)
	}

	// Direct deck links. Static routes above take priority over the
	// parameter at the same level.
	router.GET("/:deck_id", handler.HandleViewDeck)
}
