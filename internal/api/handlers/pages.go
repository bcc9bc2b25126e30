package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// HandleIndex renders the landing page, or redirects straight to the quiz
// page when a quiz_id query parameter is present (shared links).
func (h *Handler) HandleIndex(c *gin.Context) {
	quizID := strings.TrimSpace(c.Query("quiz_id"))
	if quizID != "" {
		c.Redirect(http.StatusFound, "/"+url.PathEscape(quizID))
		return
	}

	session := sessions.Default(c)
	lastDeckID, _ := session.Get(lastDeckSessionKey).(string)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"last_deck_id": lastDeckID,
	})
}

// HandleViewDeck renders the quiz page for an existing deck id (direct link
// support) and remembers the deck for the next visit.
func (h *Handler) HandleViewDeck(c *gin.Context) {
	deckID := c.Param("deck_id")

	session := sessions.Default(c)
	session.Set(lastDeckSessionKey, deckID)
	if err := session.Save(); err != nil {
		log.Printf("WARN: Failed to save session: %v", err)
	}

	c.HTML(http.StatusOK, "quiz.html", gin.H{
		"deck_id": deckID,
	})
}
