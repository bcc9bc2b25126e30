package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizrelay/internal/cards"
)

// HandlePollCards fetches the current cards for a deck once and returns them
// normalized, raw payloads included.
func (h *Handler) HandlePollCards(c *gin.Context) {
	deckID := c.Param("deck_id")
	userID := h.resolveUserID(c, c.Query("user_id"))

	batch, err := h.Backend.FetchDeckCards(c.Request.Context(), deckID, userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards.NormalizeAll(batch)})
}
