package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// sseWriter writes server-sent event frames straight to the response,
// flushing after every frame so intermediaries don't buffer the stream.
type sseWriter struct {
	w gin.ResponseWriter
}

func (s sseWriter) Event(name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

func (s sseWriter) Data(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

func (s sseWriter) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// HandleStreamCards opens the live card stream for a deck. The connection
// stays open until the relay hits one of its termination conditions or the
// client goes away.
func (h *Handler) HandleStreamCards(c *gin.Context) {
	deckID := c.Param("deck_id")
	userID := h.resolveUserID(c, c.Query("user_id"))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	// Disable nginx buffering
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	h.Relay.Run(c.Request.Context(), sseWriter{c.Writer}, deckID, userID)
}
