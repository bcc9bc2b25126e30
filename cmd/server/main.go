package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"quizrelay/internal/api"
	"quizrelay/internal/api/handlers"
	"quizrelay/internal/backend"
	"quizrelay/internal/config"
	"quizrelay/internal/r2"
	"quizrelay/internal/telegram"
	"quizrelay/internal/upload"
)

const storeName = "quizrelay_session"

func init() {
	// Load environment variables FIRST
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	} else {
		log.Println(".env file loaded successfully.")
	}
}

func main() {
	cfg := config.Load()

	// Outbound clients. R2 and Telegram are optional and may be nil.
	backendClient := backend.NewClient(cfg)
	uploader := upload.NewClient(cfg)

	r2Client, err := r2.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}
	bot := telegram.NewClient(cfg)

	// Set up Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// --- Session Configuration ---
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		Secure:   false,     // TODO: set Secure=true behind HTTPS
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, store))

	router.LoadHTMLGlob("web/templates/*.html")

	handler := handlers.NewHandler(cfg, backendClient, uploader, r2Client, bot)
	api.SetupRoutes(router, handler, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give server 5 seconds to shut down gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
