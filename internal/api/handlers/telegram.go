package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quizrelay/internal/models"
	"quizrelay/internal/telegram"
)

// HandleNotifyAdmin tells the admin chat that the mini app was opened
func (h *Handler) HandleNotifyAdmin(c *gin.Context) {
	var req models.NotifyAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID not provided"})
		return
	}

	success := h.Telegram.NotifyAdmin(c.Request.Context(), req.UserID, req.UserName)
	c.JSON(http.StatusOK, gin.H{"success": success})
}

// HandleGetTelegramUserID extracts the numeric user id from the WebApp
// initData the mini app sends.
func (h *Handler) HandleGetTelegramUserID(c *gin.Context) {
	var req models.InitDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.InitData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No initData provided"})
		return
	}

	userID, ok := telegram.UserIDFromInitData(req.InitData)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Could not extract user ID from initData"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": userID})
}

// HandleSendToTelegram delivers accepted cards to the user's Telegram chat
func (h *Handler) HandleSendToTelegram(c *gin.Context) {
	if h.Telegram == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Telegram bot not available"})
		return
	}

	var req models.SendToTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if len(req.Cards) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No questions to send"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User ID not provided"})
		return
	}
	chatID, err := strconv.ParseInt(req.UserID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID format"})
		return
	}

	log.Printf("INFO: Sending %d questions to Telegram chat %d", len(req.Cards), chatID)
	result := h.Deliverer.Deliver(c.Request.Context(), chatID, req.Cards)

	response := gin.H{
		"success": true,
		"message": result.Message(),
		"sent":    result.Sent,
		"skipped": result.Skipped,
	}
	if len(result.Errors) > 0 {
		errs := result.Errors
		if len(errs) > 5 {
			errs = errs[:5]
		}
		response["errors"] = errs
	}
	c.JSON(http.StatusOK, response)
}
