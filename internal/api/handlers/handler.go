// Package handlers implements the web front end: the quiz form, the
// generation flow, the card polling and streaming endpoints, and the
// Telegram mini-app API.
package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"quizrelay/internal/backend"
	"quizrelay/internal/config"
	"quizrelay/internal/r2"
	"quizrelay/internal/stream"
	"quizrelay/internal/telegram"
	"quizrelay/internal/upload"
)

// Session keys - keep these consistent
const (
	userIDSessionKey   = "user_id"
	lastDeckSessionKey = "last_deck_id"
)

// Handler contains the web handlers' dependencies
type Handler struct {
	Config    *config.Config
	Backend   *backend.Client
	Uploader  *upload.Client
	R2        *r2.Client       // nil when the R2 fallback is not configured
	Telegram  *telegram.Client // nil when the bot is not configured
	Relay     *stream.Relay
	Deliverer *telegram.Deliverer
}

// NewHandler creates a new Handler
func NewHandler(cfg *config.Config, backendClient *backend.Client, uploader *upload.Client, r2Client *r2.Client, bot *telegram.Client) *Handler {
	h := &Handler{
		Config:   cfg,
		Backend:  backendClient,
		Uploader: uploader,
		R2:       r2Client,
		Telegram: bot,
		Relay:    stream.NewRelay(cfg, backendClient),
	}
	if bot != nil {
		h.Deliverer = telegram.NewDeliverer(bot)
	}
	return h
}

// renderError re-renders the index page with a user-facing error message
func (h *Handler) renderError(c *gin.Context, message string) {
	c.HTML(http.StatusOK, "index.html", gin.H{"error": message})
}

// fail handles a pipeline or backend failure: log it, alert the admin chat
// in the background, and re-render the form. The alert runs detached from
// the request context so a finished response does not cancel it.
func (h *Handler) fail(c *gin.Context, message string) {
	log.Printf("ERROR: %s", message)
	if h.Telegram != nil {
		go h.Telegram.AlertAdmin(context.Background(), message)
	}
	h.renderError(c, message)
}

// resolveUserID prefers an explicit form or query value, then the value
// remembered in the session, then the configured default. Explicit values
// are saved so later visits keep the same identity.
func (h *Handler) resolveUserID(c *gin.Context, explicit string) string {
	session := sessions.Default(c)
	if explicit != "" {
		if saved, ok := session.Get(userIDSessionKey).(string); !ok || saved != explicit {
			session.Set(userIDSessionKey, explicit)
			if err := session.Save(); err != nil {
				log.Printf("WARN: Failed to save session: %v", err)
			}
		}
		return explicit
	}
	if saved, ok := session.Get(userIDSessionKey).(string); ok && saved != "" {
		return saved
	}
	return h.Config.DefaultUserID
}
